package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/ids"
	"github.com/alang8/Help-Restaurant-Review/internal/node"
	"github.com/alang8/Help-Restaurant-Review/internal/node/repository"
	"github.com/alang8/Help-Restaurant-Review/internal/render"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/alang8/Help-Restaurant-Review/pkg/metrics"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound       = repository.ErrNotFound
	ErrDuplicate      = repository.ErrDuplicate
	ErrInvalid        = errors.New("invalid node")
	ErrParentNotFound = errors.New("parent node not found")
	ErrInvalidMove    = errors.New("node cannot be moved under itself or a descendant")
)

// Remover is implemented by stores holding data attached to nodes. It is
// called with every id removed by Delete.
type Remover interface {
	DeleteByNodeIDs(ctx context.Context, nodeIDs []string) error
}

// Service defines the node operations used by the handler layer and by the
// review and anchor services.
type Service interface {
	Create(ctx context.Context, n *node.Node) (*node.Node, error)
	Get(ctx context.Context, id string) (*node.Node, error)
	GetMany(ctx context.Context, ids []string) ([]*node.Node, error)
	ListByType(ctx context.Context, t node.Type) ([]*node.Node, error)
	Update(ctx context.Context, id string, props []node.Property) (*node.Node, error)
	Move(ctx context.Context, id, newParentID string) (*node.Node, error)
	// Delete removes the node and its subtree and returns the removed ids.
	Delete(ctx context.Context, id string) ([]string, error)
	Roots(ctx context.Context) ([]*node.RecursiveNodeTree, error)
	Search(ctx context.Context, query string, t node.Type) ([]*node.Node, error)
	// RecordRating stores a restaurant's aggregate rating. Non-restaurant
	// nodes are ignored.
	RecordRating(ctx context.Context, nodeID string, average *float64, rootIDs []string) error
	// OnDelete registers stores to clean up when nodes are deleted.
	OnDelete(r ...Remover)
}

func New(repo repository.Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return New(repository.NewMemoryRepo())
}

// NewMongoService returns a Service backed by a MongoDB collection.
func NewMongoService(ctx context.Context, col *mongo.Collection) (Service, error) {
	repo, err := repository.NewMongoRepo(ctx, col)
	if err != nil {
		return nil, err
	}
	return New(repo), nil
}

type service struct {
	repo repository.Repository
	now  func() time.Time

	mu       sync.RWMutex
	removers []Remover
}

func (s *service) OnDelete(r ...Remover) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removers = append(s.removers, r...)
}

func (s *service) Create(ctx context.Context, in *node.Node) (*node.Node, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: missing body", ErrInvalid)
	}
	n := *in
	if !n.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalid, n.Type)
	}
	n.Title = render.PlainText(n.Title)
	if n.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if n.NodeID == "" {
		n.NodeID = ids.New(string(n.Type))
	}

	path := n.FilePath.Path
	switch {
	case len(path) == 0:
		path = []string{n.NodeID}
	case path[len(path)-1] != n.NodeID:
		return nil, fmt.Errorf("%w: filePath must end with the node id", ErrInvalid)
	}
	n.FilePath = node.FilePath{Path: append([]string{}, path...), Children: []string{}}

	parentID := n.FilePath.ParentID()
	if parentID != "" {
		parent, err := s.repo.Get(ctx, parentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if !samePath(parent.FilePath.Path, path[:len(path)-1]) {
			return nil, fmt.Errorf("%w: filePath does not match parent", ErrInvalid)
		}
	}

	switch n.Type {
	case node.TypeRestaurant:
		if n.Restaurant == nil {
			n.Restaurant = &node.RestaurantContent{}
		}
		rc := *n.Restaurant
		if err := rc.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		rc.Rating = nil
		rc.Reviews = []string{}
		n.Restaurant = &rc
		n.Content = ""
	default:
		n.Restaurant = nil
	}
	if n.Type != node.TypeImage {
		n.ImageDim = nil
	}
	n.Slug = slug.Make(n.Title)
	n.DateCreated = s.now().UTC()

	if err := s.repo.Create(ctx, &n); err != nil {
		return nil, err
	}
	if parentID != "" {
		if err := s.repo.AddChild(ctx, parentID, n.NodeID); err != nil {
			return nil, fmt.Errorf("link %s under %s: %w", n.NodeID, parentID, err)
		}
	}
	metrics.NodesCreated.WithLabelValues(string(n.Type)).Inc()
	return &n, nil
}

func (s *service) Get(ctx context.Context, id string) (*node.Node, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) GetMany(ctx context.Context, ids []string) ([]*node.Node, error) {
	if len(ids) == 0 {
		return []*node.Node{}, nil
	}
	return s.repo.GetMany(ctx, ids)
}

func (s *service) ListByType(ctx context.Context, t node.Type) ([]*node.Node, error) {
	return s.repo.ListByType(ctx, t)
}

func (s *service) Update(ctx context.Context, id string, props []node.Property) (*node.Node, error) {
	if len(props) == 0 {
		return nil, fmt.Errorf("%w: no properties to update", ErrInvalid)
	}
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var u node.Update
	for _, p := range props {
		if err := applyProperty(cur, p, &u); err != nil {
			return nil, err
		}
	}
	return s.repo.Update(ctx, id, u)
}

func applyProperty(cur *node.Node, p node.Property, u *node.Update) error {
	switch p.FieldName {
	case "title":
		var v string
		if err := json.Unmarshal(p.Value, &v); err != nil {
			return fmt.Errorf("%w: title must be a string", ErrInvalid)
		}
		v = render.PlainText(v)
		if v == "" {
			return fmt.Errorf("%w: title is required", ErrInvalid)
		}
		sl := slug.Make(v)
		u.Title, u.Slug = &v, &sl
	case "content":
		if cur.Type == node.TypeRestaurant {
			var rc node.RestaurantContent
			if err := json.Unmarshal(p.Value, &rc); err != nil {
				return fmt.Errorf("%w: content must be restaurant content", ErrInvalid)
			}
			if err := rc.Validate(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalid, err)
			}
			// rating and reviews are derived from the review collection
			rc.Rating, rc.Reviews = nil, []string{}
			if cur.Restaurant != nil {
				rc.Rating = cur.Restaurant.Rating
				rc.Reviews = append(rc.Reviews, cur.Restaurant.Reviews...)
			}
			u.Restaurant = &rc
			return nil
		}
		var v string
		if err := json.Unmarshal(p.Value, &v); err != nil {
			return fmt.Errorf("%w: content must be a string", ErrInvalid)
		}
		u.Content = &v
	case "imageDim":
		if cur.Type != node.TypeImage {
			return fmt.Errorf("%w: imageDim only applies to image nodes", ErrInvalid)
		}
		var d node.ImageDim
		if err := json.Unmarshal(p.Value, &d); err != nil {
			return fmt.Errorf("%w: imageDim must be an object", ErrInvalid)
		}
		u.ImageDim = &d
	default:
		return fmt.Errorf("%w: field %q cannot be updated", ErrInvalid, p.FieldName)
	}
	return nil
}

func (s *service) Move(ctx context.Context, id, newParentID string) (*node.Node, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldParentID := n.FilePath.ParentID()
	if oldParentID == newParentID {
		return n, nil
	}
	newPath := []string{id}
	if newParentID != "" {
		parent, err := s.repo.Get(ctx, newParentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if contains(parent.FilePath.Path, id) {
			return nil, ErrInvalidMove
		}
		newPath = append(append([]string{}, parent.FilePath.Path...), id)
	}

	desc, err := s.repo.Descendants(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPath(ctx, id, newPath); err != nil {
		return nil, err
	}
	depth := len(n.FilePath.Path)
	for _, d := range desc {
		rel := d.FilePath.Path[depth:]
		p := append(append([]string{}, newPath...), rel...)
		if err := s.repo.SetPath(ctx, d.NodeID, p); err != nil {
			return nil, fmt.Errorf("rewrite path of %s: %w", d.NodeID, err)
		}
	}
	if oldParentID != "" {
		if err := s.repo.RemoveChild(ctx, oldParentID, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	if newParentID != "" {
		if err := s.repo.AddChild(ctx, newParentID, id); err != nil {
			return nil, err
		}
	}
	return s.repo.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) ([]string, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	desc, err := s.repo.Descendants(ctx, id)
	if err != nil {
		return nil, err
	}
	removed := make([]string, 0, len(desc)+1)
	removed = append(removed, id)
	for _, d := range desc {
		removed = append(removed, d.NodeID)
	}
	if _, err := s.repo.Delete(ctx, removed); err != nil {
		return nil, err
	}
	if p := n.FilePath.ParentID(); p != "" {
		if err := s.repo.RemoveChild(ctx, p, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	s.mu.RLock()
	removers := append([]Remover{}, s.removers...)
	s.mu.RUnlock()
	for _, r := range removers {
		if err := r.DeleteByNodeIDs(ctx, removed); err != nil {
			logger.Errorf("cascade delete for nodes %v: %v", removed, err)
			return removed, fmt.Errorf("cascade delete: %w", err)
		}
	}
	return removed, nil
}

func (s *service) Roots(ctx context.Context) ([]*node.RecursiveNodeTree, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*node.Node, len(all))
	for _, n := range all {
		byID[n.NodeID] = n
	}
	out := []*node.RecursiveNodeTree{}
	for _, n := range all {
		if n.IsRoot() {
			out = append(out, buildTree(n, byID, map[string]bool{}))
		}
	}
	return out, nil
}

func buildTree(n *node.Node, byID map[string]*node.Node, seen map[string]bool) *node.RecursiveNodeTree {
	seen[n.NodeID] = true
	t := &node.RecursiveNodeTree{Node: n, Children: []*node.RecursiveNodeTree{}}
	for _, cid := range n.FilePath.Children {
		c, ok := byID[cid]
		if !ok || seen[cid] {
			continue
		}
		t.Children = append(t.Children, buildTree(c, byID, seen))
	}
	return t
}

func (s *service) Search(ctx context.Context, query string, t node.Type) ([]*node.Node, error) {
	if t != "" && !t.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalid, t)
	}
	return s.repo.Search(ctx, query, t)
}

func (s *service) RecordRating(ctx context.Context, nodeID string, average *float64, rootIDs []string) error {
	n, err := s.repo.Get(ctx, nodeID)
	if err != nil {
		return err
	}
	if n.Type != node.TypeRestaurant {
		return nil
	}
	return s.repo.SetRatingSummary(ctx, nodeID, node.RatingSummary{Average: average, RootIDs: rootIDs})
}

func samePath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
