package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/alang8/Help-Restaurant-Review/internal/sessions"
	"github.com/alang8/Help-Restaurant-Review/internal/users"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/alang8/Help-Restaurant-Review/pkg/response"
	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			response.Abort(c, http.StatusUnauthorized, "missing Authorization header")
			return
		}
		token, ok := bearer(auth)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "invalid Authorization header")
			return
		}
		claims, status, msg := verify(c, ver, token)
		if claims == nil {
			response.Abort(c, status, msg)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid bearer token is present and lets
// anonymous requests through. Invalid or revoked tokens are still rejected.
func OptionalAuth(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || ver == nil {
			c.Next()
			return
		}
		token, ok := bearer(auth)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "invalid Authorization header")
			return
		}
		claims, status, msg := verify(c, ver, token)
		if claims == nil {
			response.Abort(c, status, msg)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func verify(c *gin.Context, ver Verifier, token string) (map[string]interface{}, int, string) {
	revoked, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), token)
	if err != nil {
		logger.Warnf("blacklist lookup failed: %v", err)
	}
	if revoked {
		return nil, http.StatusUnauthorized, "token revoked"
	}
	idToken, err := ver.Verify(c.Request.Context(), token)
	if err != nil {
		return nil, http.StatusUnauthorized, "invalid token: " + err.Error()
	}
	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, http.StatusUnauthorized, "failed to parse claims"
	}
	return claims, 0, ""
}

// Claims returns the claims attached by AuthMiddleware or OptionalAuth.
func Claims(c *gin.Context) (map[string]interface{}, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	return m, ok
}

// DisplayName picks a human readable name from the request's claims, or ""
// for anonymous requests.
func DisplayName(c *gin.Context) string {
	claims, ok := Claims(c)
	if !ok {
		return ""
	}
	return users.DisplayName(claims)
}
