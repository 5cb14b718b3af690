package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Service issues and validates opaque refresh tokens.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service { return &Service{repo: r, now: time.Now} }

// CreateSession stores a new refresh session for sub and returns the raw
// refresh token. The token itself is never persisted.
func (s *Service) CreateSession(ctx context.Context, sub string, ttl time.Duration) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	raw := hex.EncodeToString(b)
	now := s.now().UTC()
	sess := &Session{
		RefreshHash: hashToken(raw),
		Sub:         sub,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", err
	}
	return raw, nil
}

// ValidateRefresh returns the session if refresh token is valid and not
// expired, or nil.
func (s *Service) ValidateRefresh(ctx context.Context, refresh string) (*Session, error) {
	hash := hashToken(refresh)
	sess, err := s.repo.GetByHash(ctx, hash)
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.Expired(s.now().UTC()) {
		_ = s.repo.DeleteByHash(ctx, hash)
		return nil, nil
	}
	return sess, nil
}

// Rotate replaces a valid refresh token with a new one for the same subject.
// It returns a nil session when refresh is not valid.
func (s *Service) Rotate(ctx context.Context, refresh string, ttl time.Duration) (*Session, string, error) {
	sess, err := s.ValidateRefresh(ctx, refresh)
	if err != nil || sess == nil {
		return nil, "", err
	}
	if err := s.repo.DeleteByHash(ctx, sess.RefreshHash); err != nil {
		return nil, "", err
	}
	next, err := s.CreateSession(ctx, sess.Sub, ttl)
	if err != nil {
		return nil, "", err
	}
	return sess, next, nil
}

func (s *Service) DeleteRefresh(ctx context.Context, refresh string) error {
	return s.repo.DeleteByHash(ctx, hashToken(refresh))
}
