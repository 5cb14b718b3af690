package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/alang8/Help-Restaurant-Review/internal/node"
)

// MemoryRepo is an in-memory Repository used by tests and when no MongoDB
// URI is configured.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*node.Node
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*node.Node)}
}

func (m *MemoryRepo) Create(_ context.Context, n *node.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[n.NodeID]; ok {
		return ErrDuplicate
	}
	m.store[n.NodeID] = clone(n)
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*node.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n, ok := m.store[id]; ok {
		return clone(n), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) GetMany(_ context.Context, ids []string) ([]*node.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*node.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := m.store[id]; ok {
			out = append(out, clone(n))
		}
	}
	return out, nil
}

func (m *MemoryRepo) List(_ context.Context) ([]*node.Node, error) {
	return m.filter(func(*node.Node) bool { return true }), nil
}

func (m *MemoryRepo) ListByType(_ context.Context, t node.Type) ([]*node.Node, error) {
	return m.filter(func(n *node.Node) bool { return n.Type == t }), nil
}

func (m *MemoryRepo) Descendants(_ context.Context, id string) ([]*node.Node, error) {
	return m.filter(func(n *node.Node) bool {
		if n.NodeID == id {
			return false
		}
		for _, p := range n.FilePath.Path {
			if p == id {
				return true
			}
		}
		return false
	}), nil
}

func (m *MemoryRepo) Update(_ context.Context, id string, u node.Update) (*node.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	if u.Title != nil {
		n.Title = *u.Title
	}
	if u.Slug != nil {
		n.Slug = *u.Slug
	}
	if u.Content != nil {
		n.Content = *u.Content
	}
	if u.Restaurant != nil {
		n.Restaurant = clone(&node.Node{Restaurant: u.Restaurant}).Restaurant
	}
	if u.ImageDim != nil {
		d := *u.ImageDim
		n.ImageDim = &d
	}
	return clone(n), nil
}

func (m *MemoryRepo) SetPath(_ context.Context, id string, path []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	n.FilePath.Path = append([]string{}, path...)
	return nil
}

func (m *MemoryRepo) AddChild(_ context.Context, parentID, childID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[parentID]
	if !ok {
		return ErrNotFound
	}
	for _, c := range p.FilePath.Children {
		if c == childID {
			return nil
		}
	}
	p.FilePath.Children = append(p.FilePath.Children, childID)
	return nil
}

func (m *MemoryRepo) RemoveChild(_ context.Context, parentID, childID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[parentID]
	if !ok {
		return ErrNotFound
	}
	kept := p.FilePath.Children[:0]
	for _, c := range p.FilePath.Children {
		if c != childID {
			kept = append(kept, c)
		}
	}
	p.FilePath.Children = kept
	return nil
}

func (m *MemoryRepo) SetRatingSummary(_ context.Context, id string, s node.RatingSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.store[id]
	if !ok || n.Restaurant == nil {
		return ErrNotFound
	}
	if s.Average != nil {
		v := *s.Average
		n.Restaurant.Rating = &v
	} else {
		n.Restaurant.Rating = nil
	}
	n.Restaurant.Reviews = append([]string{}, s.RootIDs...)
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, ids []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.store[id]; ok {
			delete(m.store, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepo) Search(_ context.Context, query string, t node.Type) ([]*node.Node, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	return m.filter(func(n *node.Node) bool {
		if t != "" && n.Type != t {
			return false
		}
		if q == "" {
			return true
		}
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			return true
		}
		if r := n.Restaurant; r != nil {
			return strings.Contains(strings.ToLower(r.Description), q) || strings.Contains(strings.ToLower(r.Location), q)
		}
		return false
	}), nil
}

// filter returns matching nodes, newest first.
func (m *MemoryRepo) filter(keep func(*node.Node) bool) []*node.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*node.Node{}
	for _, n := range m.store {
		if keep(n) {
			out = append(out, clone(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateCreated.Equal(out[j].DateCreated) {
			return out[i].NodeID < out[j].NodeID
		}
		return out[i].DateCreated.After(out[j].DateCreated)
	})
	return out
}
