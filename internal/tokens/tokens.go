// Package tokens issues and verifies the service's own HS256 access tokens.
package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/config"
	"github.com/alang8/Help-Restaurant-Review/internal/models"
	"github.com/alang8/Help-Restaurant-Review/pkg/middleware"
	"github.com/golang-jwt/jwt/v5"
)

const Issuer = "restaurants"

// Signer signs access tokens for reviewers and verifies them again on the
// way in. It satisfies middleware.Verifier.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(cfg config.JWTConfig) (*Signer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is not set")
	}
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Signer{secret: []byte(cfg.Secret), ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued access tokens.
func (s *Signer) TTL() time.Duration { return s.ttl }

// Issue returns a signed access token for r.
func (s *Signer) Issue(r *models.Reviewer) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"iss":   Issuer,
		"sub":   r.Sub,
		"name":  r.DisplayName,
		"email": r.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Signer) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if exp, _ := claims.GetExpirationTime(); exp == nil {
		return nil, errors.New("token has no expiry")
	}
	return mapToken(claims), nil
}

// ExpiresAt reads the exp claim without checking the signature. It is only
// used to size blacklist entries.
func ExpiresAt(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errors.New("exp claim not present")
	}
	return exp.Time, nil
}

type mapToken map[string]interface{}

func (t mapToken) Claims(v interface{}) error {
	b, err := json.Marshal(map[string]interface{}(t))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
