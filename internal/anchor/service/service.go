package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/alang8/Help-Restaurant-Review/internal/anchor"
	"github.com/alang8/Help-Restaurant-Review/internal/anchor/repository"
	"github.com/alang8/Help-Restaurant-Review/internal/ids"
	"github.com/alang8/Help-Restaurant-Review/internal/node"
	noderepo "github.com/alang8/Help-Restaurant-Review/internal/node/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound     = repository.ErrNotFound
	ErrDuplicate    = repository.ErrDuplicate
	ErrInvalid      = errors.New("invalid anchor")
	ErrNodeNotFound = errors.New("node does not exist")
)

// Nodes resolves the node an anchor is placed on.
type Nodes interface {
	Get(ctx context.Context, id string) (*node.Node, error)
}

// Remover is implemented by stores holding data attached to anchors.
type Remover interface {
	DeleteByAnchorIDs(ctx context.Context, anchorIDs []string) error
}

type Service interface {
	Create(ctx context.Context, a *anchor.Anchor) (*anchor.Anchor, error)
	Get(ctx context.Context, id string) (*anchor.Anchor, error)
	GetMany(ctx context.Context, ids []string) ([]*anchor.Anchor, error)
	GetByNode(ctx context.Context, nodeID string) ([]*anchor.Anchor, error)
	UpdateExtent(ctx context.Context, id string, e *anchor.Extent) (*anchor.Anchor, error)
	Delete(ctx context.Context, id string) error
	DeleteByNodeIDs(ctx context.Context, nodeIDs []string) error
	OnDelete(r ...Remover)
}

func New(repo repository.Repository, nodes Nodes) Service {
	return &service{repo: repo, nodes: nodes, now: time.Now}
}

func NewMemoryService(nodes Nodes) Service {
	return New(repository.NewMemoryRepo(), nodes)
}

func NewMongoService(ctx context.Context, col *mongo.Collection, nodes Nodes) (Service, error) {
	repo, err := repository.NewMongoRepo(ctx, col)
	if err != nil {
		return nil, err
	}
	return New(repo, nodes), nil
}

type service struct {
	repo  repository.Repository
	nodes Nodes
	now   func() time.Time

	mu       sync.RWMutex
	removers []Remover
}

func (s *service) OnDelete(r ...Remover) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removers = append(s.removers, r...)
}

func (s *service) Create(ctx context.Context, in *anchor.Anchor) (*anchor.Anchor, error) {
	if in == nil || in.NodeID == "" {
		return nil, fmt.Errorf("%w: nodeId is required", ErrInvalid)
	}
	a := *in
	if err := s.checkExtent(ctx, a.NodeID, a.Extent); err != nil {
		return nil, err
	}
	if a.AnchorID == "" {
		a.AnchorID = ids.New("anchor")
	}
	a.DateCreated = s.now().UTC()
	if err := s.repo.Create(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// checkExtent validates e against the node it will be placed on.
func (s *service) checkExtent(ctx context.Context, nodeID string, e *anchor.Extent) error {
	n, err := s.nodes.Get(ctx, nodeID)
	if err != nil {
		if errors.Is(err, noderepo.ErrNotFound) {
			return ErrNodeNotFound
		}
		return err
	}
	if e == nil {
		return nil
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch e.Type {
	case anchor.ExtentText:
		if n.Type != node.TypeText {
			return fmt.Errorf("%w: text extent on a %s node", ErrInvalid, n.Type)
		}
		if e.EndCharacter > utf8.RuneCountInString(n.Content) {
			return fmt.Errorf("%w: extent ends past the node content", ErrInvalid)
		}
	case anchor.ExtentImage:
		if n.Type != node.TypeImage {
			return fmt.Errorf("%w: image extent on a %s node", ErrInvalid, n.Type)
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*anchor.Anchor, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) GetMany(ctx context.Context, ids []string) ([]*anchor.Anchor, error) {
	if len(ids) == 0 {
		return []*anchor.Anchor{}, nil
	}
	return s.repo.GetMany(ctx, ids)
}

func (s *service) GetByNode(ctx context.Context, nodeID string) ([]*anchor.Anchor, error) {
	return s.repo.ListByNode(ctx, nodeID)
}

func (s *service) UpdateExtent(ctx context.Context, id string, e *anchor.Extent) (*anchor.Anchor, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkExtent(ctx, a.NodeID, e); err != nil {
		return nil, err
	}
	return s.repo.UpdateExtent(ctx, id, e)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.remove(ctx, []string{id})
}

func (s *service) DeleteByNodeIDs(ctx context.Context, nodeIDs []string) error {
	if len(nodeIDs) == 0 {
		return nil
	}
	anchorIDs, err := s.repo.IDsByNodes(ctx, nodeIDs)
	if err != nil {
		return err
	}
	if len(anchorIDs) == 0 {
		return nil
	}
	return s.remove(ctx, anchorIDs)
}

func (s *service) remove(ctx context.Context, anchorIDs []string) error {
	if _, err := s.repo.Delete(ctx, anchorIDs); err != nil {
		return err
	}
	s.mu.RLock()
	removers := append([]Remover{}, s.removers...)
	s.mu.RUnlock()
	for _, r := range removers {
		if err := r.DeleteByAnchorIDs(ctx, anchorIDs); err != nil {
			return fmt.Errorf("cascade delete: %w", err)
		}
	}
	return nil
}
