package handler

import (
	"errors"
	"net/http"

	"github.com/alang8/Help-Restaurant-Review/internal/anchor"
	"github.com/alang8/Help-Restaurant-Review/internal/anchor/service"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/alang8/Help-Restaurant-Review/pkg/response"
	"github.com/gin-gonic/gin"
)

func RegisterAnchorRoutes(r gin.IRouter, svc service.Service) {
	g := r.Group("/anchor")

	g.POST("/create", func(c *gin.Context) {
		var req struct {
			Anchor *anchor.Anchor `json:"anchor"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		a, err := svc.Create(c.Request.Context(), req.Anchor)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusCreated, a)
	})

	g.GET("/:anchorId", func(c *gin.Context) {
		a, err := svc.Get(c.Request.Context(), c.Param("anchorId"))
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, a)
	})

	g.POST("/getAnchorsById", func(c *gin.Context) {
		var req struct {
			AnchorIDs []string `json:"anchorIds"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		list, err := svc.GetMany(c.Request.Context(), req.AnchorIDs)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, list)
	})

	g.GET("/getByNodeId/:nodeId", func(c *gin.Context) {
		list, err := svc.GetByNode(c.Request.Context(), c.Param("nodeId"))
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, list)
	})

	g.PUT("/:anchorId", func(c *gin.Context) {
		var req struct {
			Extent *anchor.Extent `json:"extent"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		a, err := svc.UpdateExtent(c.Request.Context(), c.Param("anchorId"), req.Extent)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, a)
	})

	g.DELETE("/:anchorId", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("anchorId")); err != nil {
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
	case errors.Is(err, service.ErrInvalid), errors.Is(err, service.ErrNodeNotFound):
		response.Failure(c, http.StatusBadRequest, err.Error())
	default:
		logger.Errorf("anchor handler %s %s: %v", c.Request.Method, c.FullPath(), err)
		response.Failure(c, http.StatusInternalServerError, "internal error")
	}
}
