package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alang8/Help-Restaurant-Review/internal/anchor"
	anchorservice "github.com/alang8/Help-Restaurant-Review/internal/anchor/service"
	"github.com/alang8/Help-Restaurant-Review/internal/link/service"
	"github.com/alang8/Help-Restaurant-Review/internal/node"
	nodeservice "github.com/alang8/Help-Restaurant-Review/internal/node/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	nodes := nodeservice.NewMemoryService()
	_, err := nodes.Create(ctx, &node.Node{NodeID: "folder.1", Type: node.TypeFolder, Title: "f"})
	require.NoError(t, err)
	anchors := anchorservice.NewMemoryService(nodes)
	for _, id := range []string{"anchor.1", "anchor.2"} {
		_, err := anchors.Create(ctx, &anchor.Anchor{AnchorID: id, NodeID: "folder.1"})
		require.NoError(t, err)
	}
	g := gin.New()
	RegisterLinkRoutes(g, service.NewMemoryService(anchors))

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		g.ServeHTTP(w, req)
		return w
	}

	w := serve(http.MethodPost, "/link/create", `{"link":{"linkId":"link.1","anchor1Id":"anchor.1","anchor2Id":"anchor.2","title":"t","explainer":"e"}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"anchor1NodeId":"folder.1"`)

	w = serve(http.MethodPost, "/link/create", `{"link":{"anchor1Id":"anchor.1","anchor2Id":"anchor.9"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/link/link.1", "").Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodPost, "/link/getLinksById", `{"linkIds":["link.1"]}`).Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/link/getByAnchorId/anchor.1", "").Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodPost, "/link/getLinksByAnchorIds", `{"anchorIds":["anchor.2"]}`).Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodPut, "/link/link.1", `{"data":[{"fieldName":"title","value":"renamed"}]}`).Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodDelete, "/link/link.1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/link/link.1", "").Code)
}
