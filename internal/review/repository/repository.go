package repository

import (
	"context"
	"errors"

	"github.com/alang8/Help-Restaurant-Review/internal/review"
)

var (
	ErrNotFound  = errors.New("review not found")
	ErrDuplicate = errors.New("review with this id already exists")
)

// Repository persists reviews.
type Repository interface {
	Create(ctx context.Context, r *review.Review) error
	Get(ctx context.Context, id string) (*review.Review, error)
	GetMany(ctx context.Context, ids []string) ([]*review.Review, error)
	// ListByNode returns a node's reviews oldest first.
	ListByNode(ctx context.Context, nodeID string) ([]*review.Review, error)
	// Recent returns at most limit reviews of a node, newest first.
	Recent(ctx context.Context, nodeID string, limit int) ([]*review.Review, error)
	Update(ctx context.Context, id string, u review.Update) (*review.Review, error)
	AddReply(ctx context.Context, parentID, childID string) error
	RemoveReply(ctx context.Context, parentID, childID string) error
	Delete(ctx context.Context, ids []string) (int64, error)
	DeleteByNodeIDs(ctx context.Context, nodeIDs []string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	// NodeIDs lists every node that has at least one review.
	NodeIDs(ctx context.Context) ([]string, error)
}

func clone(r *review.Review) *review.Review {
	c := *r
	c.Replies = append([]string{}, r.Replies...)
	if r.ParentReviewID != nil {
		p := *r.ParentReviewID
		c.ParentReviewID = &p
	}
	return &c
}
