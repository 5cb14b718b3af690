package repository

import (
	"context"
	"errors"

	"github.com/alang8/Help-Restaurant-Review/internal/link"
)

var (
	ErrNotFound  = errors.New("link not found")
	ErrDuplicate = errors.New("link with this id already exists")
)

type Repository interface {
	Create(ctx context.Context, l *link.Link) error
	Get(ctx context.Context, id string) (*link.Link, error)
	GetMany(ctx context.Context, ids []string) ([]*link.Link, error)
	// ListByAnchors returns links with either end on one of anchorIDs.
	ListByAnchors(ctx context.Context, anchorIDs []string) ([]*link.Link, error)
	Update(ctx context.Context, id string, u link.Update) (*link.Link, error)
	Delete(ctx context.Context, id string) error
	DeleteByAnchors(ctx context.Context, anchorIDs []string) (int64, error)
}
