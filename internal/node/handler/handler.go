package handler

import (
	"errors"
	"net/http"

	"github.com/alang8/Help-Restaurant-Review/internal/node"
	"github.com/alang8/Help-Restaurant-Review/internal/node/service"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/alang8/Help-Restaurant-Review/pkg/response"
	"github.com/gin-gonic/gin"
)

func RegisterNodeRoutes(r gin.IRouter, svc service.Service) {
	g := r.Group("/node")

	g.POST("/create", func(c *gin.Context) {
		var req struct {
			Node *node.Node `json:"node"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		if req.Node == nil {
			response.Failure(c, http.StatusBadRequest, "not a valid node")
			return
		}
		n, err := svc.Create(c.Request.Context(), req.Node)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusCreated, n)
	})

	g.GET("/get/:nodeId", func(c *gin.Context) {
		n, err := svc.Get(c.Request.Context(), c.Param("nodeId"))
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, n)
	})

	g.POST("/getNodesById", func(c *gin.Context) {
		var req struct {
			NodeIDs []string `json:"nodeIds"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		list, err := svc.GetMany(c.Request.Context(), req.NodeIDs)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, list)
	})

	g.GET("/roots", func(c *gin.Context) {
		trees, err := svc.Roots(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, trees)
	})

	g.GET("/search", func(c *gin.Context) {
		list, err := svc.Search(c.Request.Context(), c.Query("q"), node.Type(c.Query("type")))
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, list)
	})

	g.POST("/move", func(c *gin.Context) {
		var req struct {
			NodeID      string  `json:"nodeId"`
			NewParentID *string `json:"newParentId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.NodeID == "" {
			response.Failure(c, http.StatusBadRequest, "nodeId is required")
			return
		}
		parent := ""
		if req.NewParentID != nil {
			parent = *req.NewParentID
		}
		n, err := svc.Move(c.Request.Context(), req.NodeID, parent)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, n)
	})

	g.PUT("/:nodeId", func(c *gin.Context) {
		var req struct {
			Data []node.Property `json:"data"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		n, err := svc.Update(c.Request.Context(), c.Param("nodeId"), req.Data)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, n)
	})

	g.DELETE("/:nodeId", func(c *gin.Context) {
		removed, err := svc.Delete(c.Request.Context(), c.Param("nodeId"))
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"deleted": removed})
	})
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Failure(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicate):
		response.Failure(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalid), errors.Is(err, service.ErrParentNotFound), errors.Is(err, service.ErrInvalidMove):
		response.Failure(c, http.StatusBadRequest, err.Error())
	default:
		logger.Errorf("node handler %s %s: %v", c.Request.Method, c.FullPath(), err)
		response.Failure(c, http.StatusInternalServerError, "internal error")
	}
}
