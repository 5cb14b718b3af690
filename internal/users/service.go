package users

import (
	"context"

	"github.com/alang8/Help-Restaurant-Review/internal/models"
	"github.com/alang8/Help-Restaurant-Review/internal/render"
)

// Service encapsulates reviewer account logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// UpsertFromClaims creates or updates a reviewer from an OIDC claims map. It
// returns nil, nil when the claims carry no subject.
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.Reviewer, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, nil
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	u := &models.Reviewer{
		Sub:         sub,
		Email:       email,
		Name:        render.PlainText(name),
		DisplayName: render.PlainText(DisplayName(claims)),
	}
	return s.repo.UpsertBySub(ctx, u)
}

func (s *Service) GetBySub(ctx context.Context, sub string) (*models.Reviewer, error) {
	return s.repo.GetBySub(ctx, sub)
}

// DisplayName picks the first non-empty of name, preferred_username, email
// and sub.
func DisplayName(claims map[string]interface{}) string {
	for _, k := range []string{"name", "preferred_username", "email", "sub"} {
		if s, ok := claims[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
