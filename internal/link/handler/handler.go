package handler

import (
	"errors"
	"net/http"

	"github.com/alang8/Help-Restaurant-Review/internal/link"
	"github.com/alang8/Help-Restaurant-Review/internal/link/service"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/alang8/Help-Restaurant-Review/pkg/response"
	"github.com/gin-gonic/gin"
)

func RegisterLinkRoutes(r gin.IRouter, svc service.Service) {
	g := r.Group("/link")

	g.POST("/create", func(c *gin.Context) {
		var req struct {
			Link *link.Link `json:"link"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		l, err := svc.Create(c.Request.Context(), req.Link)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusCreated, l)
	})

	g.GET("/:linkId", func(c *gin.Context) {
		l, err := svc.Get(c.Request.Context(), c.Param("linkId"))
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, l)
	})

	g.POST("/getLinksById", func(c *gin.Context) {
		var req struct {
			LinkIDs []string `json:"linkIds"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		list, err := svc.GetMany(c.Request.Context(), req.LinkIDs)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, list)
	})

	g.GET("/getByAnchorId/:anchorId", func(c *gin.Context) {
		list, err := svc.GetByAnchor(c.Request.Context(), c.Param("anchorId"))
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, list)
	})

	g.POST("/getLinksByAnchorIds", func(c *gin.Context) {
		var req struct {
			AnchorIDs []string `json:"anchorIds"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		list, err := svc.GetByAnchors(c.Request.Context(), req.AnchorIDs)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, list)
	})

	g.PUT("/:linkId", func(c *gin.Context) {
		var req struct {
			Data []link.Property `json:"data"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		l, err := svc.Update(c.Request.Context(), c.Param("linkId"), req.Data)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, l)
	})

	g.DELETE("/:linkId", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("linkId")); err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, nil)
	})
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Failure(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicate):
		response.Failure(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalid), errors.Is(err, service.ErrAnchorNotFound):
		response.Failure(c, http.StatusBadRequest, err.Error())
	default:
		logger.Errorf("link handler %s %s: %v", c.Request.Method, c.FullPath(), err)
		response.Failure(c, http.StatusInternalServerError, "internal error")
	}
}
