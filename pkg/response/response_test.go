package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	g := gin.New()
	g.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"a": 1}) })
	g.GET("/fail", func(c *gin.Context) { Failure(c, http.StatusNotFound, "nope") })

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var ok map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	require.Equal(t, true, ok["success"])
	require.NotNil(t, ok["payload"])

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	var fail map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fail))
	require.Equal(t, false, fail["success"])
	require.Equal(t, "nope", fail["message"])
	_, hasPayload := fail["payload"]
	require.False(t, hasPayload)
}
