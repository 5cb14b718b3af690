package repository

import (
	"context"
	"errors"

	"github.com/alang8/Help-Restaurant-Review/internal/node"
)

var (
	ErrNotFound  = errors.New("node not found")
	ErrDuplicate = errors.New("node with this id already exists")
)

// Repository persists nodes. Implementations must treat the values they
// return as owned by the caller.
type Repository interface {
	Create(ctx context.Context, n *node.Node) error
	Get(ctx context.Context, id string) (*node.Node, error)
	GetMany(ctx context.Context, ids []string) ([]*node.Node, error)
	List(ctx context.Context) ([]*node.Node, error)
	ListByType(ctx context.Context, t node.Type) ([]*node.Node, error)
	// Descendants returns every node whose path contains id, excluding id itself.
	Descendants(ctx context.Context, id string) ([]*node.Node, error)
	Update(ctx context.Context, id string, u node.Update) (*node.Node, error)
	SetPath(ctx context.Context, id string, path []string) error
	AddChild(ctx context.Context, parentID, childID string) error
	RemoveChild(ctx context.Context, parentID, childID string) error
	SetRatingSummary(ctx context.Context, id string, s node.RatingSummary) error
	Delete(ctx context.Context, ids []string) (int64, error)
	// Search matches query case-insensitively against title and text content.
	// An empty t matches every type.
	Search(ctx context.Context, query string, t node.Type) ([]*node.Node, error)
}

func clone(n *node.Node) *node.Node {
	c := *n
	c.FilePath.Path = append([]string{}, n.FilePath.Path...)
	c.FilePath.Children = append([]string{}, n.FilePath.Children...)
	if n.Restaurant != nil {
		r := *n.Restaurant
		r.Reviews = append([]string{}, n.Restaurant.Reviews...)
		if n.Restaurant.Rating != nil {
			v := *n.Restaurant.Rating
			r.Rating = &v
		}
		c.Restaurant = &r
	}
	if n.ImageDim != nil {
		d := *n.ImageDim
		c.ImageDim = &d
	}
	return &c
}
