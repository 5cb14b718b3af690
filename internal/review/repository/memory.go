package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/alang8/Help-Restaurant-Review/internal/review"
)

// MemoryRepo keeps reviews in a map. Used by tests and Mongo-less startup.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*review.Review
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*review.Review)}
}

func (m *MemoryRepo) Create(_ context.Context, r *review.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[r.ReviewID]; ok {
		return ErrDuplicate
	}
	m.store[r.ReviewID] = clone(r)
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*review.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

func (m *MemoryRepo) GetMany(_ context.Context, ids []string) ([]*review.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*review.Review, 0, len(ids))
	for _, id := range ids {
		if r, ok := m.store[id]; ok {
			out = append(out, clone(r))
		}
	}
	return out, nil
}

func (m *MemoryRepo) ListByNode(_ context.Context, nodeID string) ([]*review.Review, error) {
	out := m.byNode(nodeID)
	sort.Slice(out, func(i, j int) bool { return older(out[i], out[j]) })
	return out, nil
}

func (m *MemoryRepo) Recent(_ context.Context, nodeID string, limit int) ([]*review.Review, error) {
	out := m.byNode(nodeID)
	sort.Slice(out, func(i, j int) bool { return older(out[j], out[i]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepo) Update(_ context.Context, id string, u review.Update) (*review.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	if u.Author != nil {
		r.Author = *u.Author
	}
	if u.Content != nil {
		r.Content = *u.Content
	}
	if u.Rating != nil {
		r.Rating = *u.Rating
	}
	if !u.DateModified.IsZero() {
		r.DateModified = u.DateModified
	}
	return clone(r), nil
}

func (m *MemoryRepo) AddReply(_ context.Context, parentID, childID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[parentID]
	if !ok {
		return ErrNotFound
	}
	for _, c := range p.Replies {
		if c == childID {
			return nil
		}
	}
	p.Replies = append(p.Replies, childID)
	return nil
}

func (m *MemoryRepo) RemoveReply(_ context.Context, parentID, childID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[parentID]
	if !ok {
		return ErrNotFound
	}
	kept := make([]string, 0, len(p.Replies))
	for _, c := range p.Replies {
		if c != childID {
			kept = append(kept, c)
		}
	}
	p.Replies = kept
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

func (m *MemoryRepo) DeleteByNodeIDs(_ context.Context, nodeIDs []string) (int64, error) {
	set := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		set[id] = struct{}{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.store {
		if _, ok := set[r.NodeID]; ok {
			delete(m.store, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepo) DeleteAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.store))
	m.store = make(map[string]*review.Review)
	return n, nil
}

func (m *MemoryRepo) NodeIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range m.store {
		if _, ok := seen[r.NodeID]; !ok {
			seen[r.NodeID] = struct{}{}
			out = append(out, r.NodeID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryRepo) byNode(nodeID string) []*review.Review {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*review.Review{}
	for _, r := range m.store {
		if r.NodeID == nodeID {
			out = append(out, clone(r))
		}
	}
	return out
}

func older(a, b *review.Review) bool {
	if a.DateCreated.Equal(b.DateCreated) {
		return a.ReviewID < b.ReviewID
	}
	return a.DateCreated.Before(b.DateCreated)
}
