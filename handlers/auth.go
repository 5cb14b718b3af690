package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/config"
	"github.com/alang8/Help-Restaurant-Review/internal/sessions"
	"github.com/alang8/Help-Restaurant-Review/internal/tokens"
	"github.com/alang8/Help-Restaurant-Review/internal/users"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/alang8/Help-Restaurant-Review/pkg/middleware"
	"github.com/alang8/Help-Restaurant-Review/pkg/response"
	"github.com/gin-gonic/gin"
)

// LoginRequest selects the Keycloak grant: "password" (dev/testing) or
// "auth_code".
type LoginRequest struct {
	Mode        string `json:"mode" binding:"required"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthHandler exchanges Keycloak logins for the service's own access tokens
// and refresh sessions.
type AuthHandler struct {
	keycloak   *keycloakClient
	idTokens   middleware.Verifier
	users      *users.Service
	sessions   *sessions.Service
	signer     *tokens.Signer
	refreshTTL time.Duration
}

// NewAuthHandler wires the auth routes. idTokens verifies the id_token
// returned by Keycloak.
func NewAuthHandler(cfg *config.Config, u *users.Service, s *sessions.Service, signer *tokens.Signer, idTokens middleware.Verifier) *AuthHandler {
	h := &AuthHandler{
		idTokens:   idTokens,
		users:      u,
		sessions:   s,
		signer:     signer,
		refreshTTL: cfg.JWT.RefreshTokenTTL,
	}
	if h.refreshTTL <= 0 {
		h.refreshTTL = 7 * 24 * time.Hour
	}
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" {
		h.keycloak = newKeycloakClient(cfg.Keycloak)
	}
	return h
}

// Register mounts /auth/* and GET /api/v1/me. requireAuth guards /me.
func (h *AuthHandler) Register(r gin.IRouter, requireAuth gin.HandlerFunc) {
	a := r.Group("/auth")
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)

	if requireAuth == nil {
		r.GET("/api/v1/me", h.Me)
		return
	}
	r.GET("/api/v1/me", requireAuth, h.Me)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, http.StatusBadRequest, err.Error())
		return
	}
	if h.keycloak == nil || h.idTokens == nil {
		response.Failure(c, http.StatusServiceUnavailable, "Keycloak not configured")
		return
	}

	var (
		tr  *tokenResponse
		err error
	)
	switch req.Mode {
	case "password":
		tr, err = h.keycloak.password(c.Request.Context(), req.Username, req.Password)
	case "auth_code":
		if req.Code == "" || req.RedirectURI == "" {
			response.Failure(c, http.StatusBadRequest, "code and redirect_uri required for auth_code mode")
			return
		}
		tr, err = h.keycloak.authCode(c.Request.Context(), req.Code, req.RedirectURI)
	default:
		response.Failure(c, http.StatusBadRequest, "unsupported mode")
		return
	}
	if err != nil {
		logger.Warnf("keycloak %s login failed: %v", req.Mode, err)
		response.Failure(c, http.StatusUnauthorized, "authentication failed")
		return
	}

	idt, err := h.idTokens.Verify(c.Request.Context(), tr.IDToken)
	if err != nil {
		response.Failure(c, http.StatusUnauthorized, "invalid id token: "+err.Error())
		return
	}
	var claims map[string]interface{}
	if err := idt.Claims(&claims); err != nil {
		response.Failure(c, http.StatusUnauthorized, "failed to parse claims")
		return
	}
	u, err := h.users.UpsertFromClaims(c.Request.Context(), claims)
	if err != nil {
		logger.Errorf("reviewer upsert: %v", err)
		response.Failure(c, http.StatusInternalServerError, "reviewer upsert failed")
		return
	}
	if u == nil {
		response.Failure(c, http.StatusUnauthorized, "id token has no subject")
		return
	}
	refresh, err := h.sessions.CreateSession(c.Request.Context(), u.Sub, h.refreshTTL)
	if err != nil {
		logger.Errorf("create session: %v", err)
		response.Failure(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	access, err := h.signer.Issue(u)
	if err != nil {
		logger.Errorf("issue access token: %v", err)
		response.Failure(c, http.StatusInternalServerError, "failed to create access token")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  access,
		"refreshToken": refresh,
		"expiresIn":    int(h.signer.TTL().Seconds()),
		"user":         u,
	})
}

// Refresh rotates the refresh token and issues a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, http.StatusBadRequest, err.Error())
		return
	}
	sess, next, err := h.sessions.Rotate(c.Request.Context(), req.RefreshToken, h.refreshTTL)
	if err != nil {
		logger.Errorf("rotate session: %v", err)
		response.Failure(c, http.StatusInternalServerError, "validation failed")
		return
	}
	if sess == nil {
		response.Failure(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	u, err := h.users.GetBySub(c.Request.Context(), sess.Sub)
	if err != nil {
		logger.Errorf("reviewer lookup %s: %v", sess.Sub, err)
		response.Failure(c, http.StatusInternalServerError, "reviewer lookup failed")
		return
	}
	if u == nil {
		_ = h.sessions.DeleteRefresh(c.Request.Context(), next)
		response.Failure(c, http.StatusUnauthorized, "unknown reviewer")
		return
	}
	access, err := h.signer.Issue(u)
	if err != nil {
		response.Failure(c, http.StatusInternalServerError, "failed to create access token")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  access,
		"refreshToken": next,
		"expiresIn":    int(h.signer.TTL().Seconds()),
	})
}

// Logout removes the refresh session and revokes the bearer access token,
// if one is sent, until it would have expired anyway.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, http.StatusBadRequest, err.Error())
		return
	}
	if at, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok && at != "" {
		if exp, err := tokens.ExpiresAt(at); err == nil {
			if err := sessions.BlacklistAccessToken(c.Request.Context(), at, time.Until(exp)); err != nil {
				logger.Errorf("blacklist access token: %v", err)
				response.Failure(c, http.StatusInternalServerError, "failed to blacklist access token")
				return
			}
		}
	}
	if err := h.sessions.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		response.Failure(c, http.StatusInternalServerError, "failed to remove session")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the caller's reviewer profile, creating it on first use.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Failure(c, http.StatusUnauthorized, "not signed in")
		return
	}
	u, err := h.users.UpsertFromClaims(c.Request.Context(), claims)
	if err != nil {
		logger.Errorf("reviewer upsert: %v", err)
		response.Failure(c, http.StatusInternalServerError, "reviewer upsert failed")
		return
	}
	if u == nil {
		response.Failure(c, http.StatusUnauthorized, "token has no subject")
		return
	}
	response.Success(c, http.StatusOK, u)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
}

var errInvalidCode = errors.New("code not valid")

type keycloakClient struct {
	http         *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
}

func newKeycloakClient(cfg config.KeycloakConfig) *keycloakClient {
	return &keycloakClient{
		http:         &http.Client{Timeout: 10 * time.Second},
		tokenURL:     strings.TrimRight(cfg.Issuer(), "/") + "/protocol/openid-connect/token",
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

func (k *keycloakClient) password(ctx context.Context, username, password string) (*tokenResponse, error) {
	return k.exchange(ctx, url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
		"scope":      {"openid"},
	})
}

// authCode exchanges an authorization code. Keycloak occasionally answers
// "Code not valid" for a code that is about to become usable, so that answer
// is retried once.
func (k *keycloakClient) authCode(ctx context.Context, code, redirectURI string) (*tokenResponse, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}
	tr, err := k.exchange(ctx, form)
	if errors.Is(err, errInvalidCode) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(150 * time.Millisecond):
		}
		tr, err = k.exchange(ctx, form)
	}
	return tr, err
}

// exchange posts form to the token endpoint with client_secret_post and
// falls back to HTTP Basic client auth when the client is rejected.
func (k *keycloakClient) exchange(ctx context.Context, form url.Values) (*tokenResponse, error) {
	form.Set("client_id", k.clientID)
	if k.clientSecret != "" {
		form.Set("client_secret", k.clientSecret)
	}
	status, body, err := k.post(ctx, form, false)
	if err == nil && status == http.StatusUnauthorized && k.clientSecret != "" {
		logger.Warnf("token endpoint rejected client_secret_post, retrying with basic auth")
		basic := url.Values{}
		for key, v := range form {
			if key != "client_secret" {
				basic[key] = v
			}
		}
		status, body, err = k.post(ctx, basic, true)
	}
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		if status == http.StatusBadRequest && strings.Contains(string(body), "Code not valid") {
			return nil, fmt.Errorf("token endpoint returned %d: %w", status, errInvalidCode)
		}
		return nil, fmt.Errorf("token endpoint returned %d: %s", status, strings.TrimSpace(string(body)))
	}
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &tr, nil
}

func (k *keycloakClient) post(ctx context.Context, form url.Values, basic bool) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if basic {
		req.SetBasicAuth(k.clientID, k.clientSecret)
	}
	resp, err := k.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, body, err
}
