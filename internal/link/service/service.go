package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/anchor"
	anchorrepo "github.com/alang8/Help-Restaurant-Review/internal/anchor/repository"
	"github.com/alang8/Help-Restaurant-Review/internal/ids"
	"github.com/alang8/Help-Restaurant-Review/internal/link"
	"github.com/alang8/Help-Restaurant-Review/internal/link/repository"
	"github.com/alang8/Help-Restaurant-Review/internal/render"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound       = repository.ErrNotFound
	ErrDuplicate      = repository.ErrDuplicate
	ErrInvalid        = errors.New("invalid link")
	ErrAnchorNotFound = errors.New("anchor does not exist")
)

// Anchors resolves link endpoints.
type Anchors interface {
	Get(ctx context.Context, id string) (*anchor.Anchor, error)
}

type Service interface {
	Create(ctx context.Context, l *link.Link) (*link.Link, error)
	Get(ctx context.Context, id string) (*link.Link, error)
	GetMany(ctx context.Context, ids []string) ([]*link.Link, error)
	GetByAnchor(ctx context.Context, anchorID string) ([]*link.Link, error)
	GetByAnchors(ctx context.Context, anchorIDs []string) ([]*link.Link, error)
	Update(ctx context.Context, id string, props []link.Property) (*link.Link, error)
	Delete(ctx context.Context, id string) error
	DeleteByAnchorIDs(ctx context.Context, anchorIDs []string) error
}

func New(repo repository.Repository, anchors Anchors) Service {
	return &service{repo: repo, anchors: anchors, now: time.Now}
}

func NewMemoryService(anchors Anchors) Service {
	return New(repository.NewMemoryRepo(), anchors)
}

func NewMongoService(ctx context.Context, col *mongo.Collection, anchors Anchors) (Service, error) {
	repo, err := repository.NewMongoRepo(ctx, col)
	if err != nil {
		return nil, err
	}
	return New(repo, anchors), nil
}

type service struct {
	repo    repository.Repository
	anchors Anchors
	now     func() time.Time
}

func (s *service) Create(ctx context.Context, in *link.Link) (*link.Link, error) {
	if in == nil || in.Anchor1ID == "" || in.Anchor2ID == "" {
		return nil, fmt.Errorf("%w: both anchors are required", ErrInvalid)
	}
	if in.Anchor1ID == in.Anchor2ID {
		return nil, fmt.Errorf("%w: a link needs two different anchors", ErrInvalid)
	}
	l := *in
	a1, err := s.anchor(ctx, l.Anchor1ID)
	if err != nil {
		return nil, err
	}
	a2, err := s.anchor(ctx, l.Anchor2ID)
	if err != nil {
		return nil, err
	}
	if l.LinkID == "" {
		l.LinkID = ids.New("link")
	}
	l.Anchor1NodeID, l.Anchor2NodeID = a1.NodeID, a2.NodeID
	l.Title = render.PlainText(l.Title)
	l.DateCreated = s.now().UTC()
	if err := s.repo.Create(ctx, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *service) anchor(ctx context.Context, id string) (*anchor.Anchor, error) {
	a, err := s.anchors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, anchorrepo.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAnchorNotFound, id)
		}
		return nil, err
	}
	return a, nil
}

func (s *service) Get(ctx context.Context, id string) (*link.Link, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) GetMany(ctx context.Context, ids []string) ([]*link.Link, error) {
	if len(ids) == 0 {
		return []*link.Link{}, nil
	}
	return s.repo.GetMany(ctx, ids)
}

func (s *service) GetByAnchor(ctx context.Context, anchorID string) ([]*link.Link, error) {
	return s.repo.ListByAnchors(ctx, []string{anchorID})
}

func (s *service) GetByAnchors(ctx context.Context, anchorIDs []string) ([]*link.Link, error) {
	if len(anchorIDs) == 0 {
		return []*link.Link{}, nil
	}
	return s.repo.ListByAnchors(ctx, anchorIDs)
}

func (s *service) Update(ctx context.Context, id string, props []link.Property) (*link.Link, error) {
	if len(props) == 0 {
		return nil, fmt.Errorf("%w: no properties to update", ErrInvalid)
	}
	var u link.Update
	for _, p := range props {
		var v string
		if err := json.Unmarshal(p.Value, &v); err != nil {
			return nil, fmt.Errorf("%w: %s must be a string", ErrInvalid, p.FieldName)
		}
		switch p.FieldName {
		case "title":
			v = render.PlainText(v)
			u.Title = &v
		case "explainer":
			u.Explainer = &v
		default:
			return nil, fmt.Errorf("%w: field %q cannot be updated", ErrInvalid, p.FieldName)
		}
	}
	return s.repo.Update(ctx, id, u)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) DeleteByAnchorIDs(ctx context.Context, anchorIDs []string) error {
	if len(anchorIDs) == 0 {
		return nil
	}
	n, err := s.repo.DeleteByAnchors(ctx, anchorIDs)
	if err != nil {
		return err
	}
	logger.Debugf("removed %d links of %d deleted anchors", n, len(anchorIDs))
	return nil
}
