package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/alang8/Help-Restaurant-Review/pkg/response"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

const (
	maxImageBytes = 10 << 20
	// maxUploadBytes bounds the whole multipart body, form overhead included.
	maxUploadBytes = maxImageBytes + 1<<20
)

// ImageStore is the object storage the upload route writes to.
type ImageStore interface {
	SaveImage(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

// RegisterMediaRoutes mounts POST /media/upload. The multipart "file" must be
// an image; the answer carries its storage key and a presigned URL that
// restaurant nodes can use as imageUrl. store may be nil when object storage
// is not configured.
func RegisterMediaRoutes(r gin.IRouter, store ImageStore) {
	r.POST("/media/upload", func(c *gin.Context) {
		if store == nil {
			response.Failure(c, http.StatusServiceUnavailable, "object storage not configured")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Failure(c, http.StatusRequestEntityTooLarge, "image too large")
				return
			}
			response.Failure(c, http.StatusBadRequest, "missing file: "+err.Error())
			return
		}
		if fh.Size > maxImageBytes {
			response.Failure(c, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		defer f.Close()

		mt, err := mimetype.DetectReader(f)
		if err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		if !strings.HasPrefix(mt.String(), "image/") {
			response.Failure(c, http.StatusUnsupportedMediaType, "not an image: "+mt.String())
			return
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			response.Failure(c, http.StatusInternalServerError, "internal error")
			return
		}

		ctx := c.Request.Context()
		key, err := store.SaveImage(ctx, fh.Filename, f, fh.Size, mt.String())
		if err != nil {
			logger.Errorf("save image %q: %v", fh.Filename, err)
			response.Failure(c, http.StatusInternalServerError, "upload failed")
			return
		}
		url, err := store.URL(ctx, key)
		if err != nil {
			logger.Errorf("presign %s: %v", key, err)
			response.Failure(c, http.StatusInternalServerError, "upload failed")
			return
		}
		response.Success(c, http.StatusCreated, gin.H{"key": key, "url": url})
	})
}
