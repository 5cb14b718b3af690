package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/render"
	"github.com/alang8/Help-Restaurant-Review/internal/review"
	"github.com/alang8/Help-Restaurant-Review/internal/review/service"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/alang8/Help-Restaurant-Review/pkg/middleware"
	"github.com/alang8/Help-Restaurant-Review/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"
)

const feedSize = 20

// FeedConfig controls the RSS feed. Nodes is optional and only used to put
// the restaurant title in the feed header.
type FeedConfig struct {
	BaseURL string
	Nodes   service.Nodes
}

// reviewInput mirrors the wire review with pointers so missing fields can be
// told apart from zero values.
type reviewInput struct {
	ReviewID       *string  `json:"reviewId"`
	Author         *string  `json:"author"`
	NodeID         *string  `json:"nodeId"`
	ParentReviewID *string  `json:"parentReviewId"`
	Content        *string  `json:"content"`
	Rating         *float64 `json:"rating"`
}

func (in *reviewInput) toReview() (*review.Review, bool) {
	if in == nil || in.Author == nil || in.NodeID == nil || in.Content == nil || in.Rating == nil {
		return nil, false
	}
	r := &review.Review{
		Author:         *in.Author,
		NodeID:         *in.NodeID,
		ParentReviewID: in.ParentReviewID,
		Content:        *in.Content,
		Rating:         *in.Rating,
	}
	if in.ReviewID != nil {
		r.ReviewID = *in.ReviewID
	}
	return r, true
}

func RegisterReviewRoutes(r gin.IRouter, svc service.Service, fc FeedConfig) {
	g := r.Group("/review")

	g.POST("/create", func(c *gin.Context) {
		var req struct {
			Review *reviewInput `json:"review"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Failure(c, http.StatusBadRequest, "not a valid review: "+err.Error())
			return
		}
		in, ok := req.Review.toReview()
		if !ok {
			response.Failure(c, http.StatusBadRequest, service.ErrInvalid.Error())
			return
		}
		if strings.TrimSpace(in.Author) == "" {
			in.Author = middleware.DisplayName(c)
		}
		created, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusCreated, created)
	})

	getByID := func(c *gin.Context) {
		rv, err := svc.Get(c.Request.Context(), c.Param("reviewId"))
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, rv)
	}
	g.GET("/getByReviewId/:reviewId", getByID)
	g.GET("/getReviewById/:reviewId", getByID)

	g.GET("/getByNodeId/:nodeId", func(c *gin.Context) {
		list, err := svc.GetByNode(c.Request.Context(), c.Param("nodeId"))
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, list)
	})

	g.GET("/thread/:nodeId", func(c *gin.Context) {
		thread, err := svc.Thread(c.Request.Context(), c.Param("nodeId"))
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, thread)
	})

	g.GET("/rating/:nodeId", func(c *gin.Context) {
		rating, err := svc.Rating(c.Request.Context(), c.Param("nodeId"))
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, rating)
	})

	g.GET("/feed/:nodeId", func(c *gin.Context) {
		nodeID := c.Param("nodeId")
		list, err := svc.Recent(c.Request.Context(), nodeID, feedSize)
		if err != nil {
			fail(c, err)
			return
		}
		title := nodeID
		if fc.Nodes != nil {
			if n, err := fc.Nodes.Get(c.Request.Context(), nodeID); err == nil {
				title = n.Title
			}
		}
		c.Header("Content-Type", "application/rss+xml")
		if err := buildFeed(baseURL(c, fc.BaseURL), nodeID, title, list).WriteRss(c.Writer); err != nil {
			logger.Errorf("write feed %s: %v", nodeID, err)
		}
	})

	g.PUT("/:reviewId", func(c *gin.Context) {
		var req struct {
			Data []review.Property `json:"data"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		rv, err := svc.Update(c.Request.Context(), c.Param("reviewId"), req.Data)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, rv)
	})

	g.DELETE("/:reviewId", func(c *gin.Context) {
		removed, err := svc.Delete(c.Request.Context(), c.Param("reviewId"))
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"deleted": removed})
	})
}

func buildFeed(base, nodeID, title string, list []*review.Review) *feeds.Feed {
	link := base + "/node/get/" + nodeID
	feed := &feeds.Feed{
		Title:       "Reviews of " + title,
		Link:        &feeds.Link{Href: link},
		Description: "Latest reviews and replies for " + title,
		Created:     time.Now(),
	}
	for _, r := range list {
		kind := "Review"
		if !r.IsRoot() {
			kind = "Reply"
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          r.ReviewID,
			Title:       fmt.Sprintf("%s by %s (%.1f/5)", kind, r.Author, r.Rating),
			Link:        &feeds.Link{Href: base + "/review/getByReviewId/" + r.ReviewID},
			Author:      &feeds.Author{Name: r.Author},
			Description: render.Markdown(r.Content),
			Created:     r.DateCreated,
			Updated:     r.DateModified,
		})
	}
	return feed
}

func baseURL(c *gin.Context, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Failure(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicate):
		response.Failure(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalid), errors.Is(err, service.ErrParentNotFound), errors.Is(err, service.ErrNodeNotFound):
		response.Failure(c, http.StatusBadRequest, err.Error())
	default:
		logger.Errorf("review handler %s %s: %v", c.Request.Method, c.FullPath(), err)
		response.Failure(c, http.StatusInternalServerError, "internal error")
	}
}
