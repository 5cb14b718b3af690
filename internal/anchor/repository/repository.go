package repository

import (
	"context"
	"errors"

	"github.com/alang8/Help-Restaurant-Review/internal/anchor"
)

var (
	ErrNotFound  = errors.New("anchor not found")
	ErrDuplicate = errors.New("anchor with this id already exists")
)

type Repository interface {
	Create(ctx context.Context, a *anchor.Anchor) error
	Get(ctx context.Context, id string) (*anchor.Anchor, error)
	GetMany(ctx context.Context, ids []string) ([]*anchor.Anchor, error)
	ListByNode(ctx context.Context, nodeID string) ([]*anchor.Anchor, error)
	UpdateExtent(ctx context.Context, id string, e *anchor.Extent) (*anchor.Anchor, error)
	Delete(ctx context.Context, ids []string) (int64, error)
	// IDsByNodes lists the anchors placed on any of the given nodes.
	IDsByNodes(ctx context.Context, nodeIDs []string) ([]string, error)
}

func clone(a *anchor.Anchor) *anchor.Anchor {
	c := *a
	if a.Extent != nil {
		e := *a.Extent
		c.Extent = &e
	}
	return &c
}
