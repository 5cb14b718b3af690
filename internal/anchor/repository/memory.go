package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/alang8/Help-Restaurant-Review/internal/anchor"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*anchor.Anchor
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*anchor.Anchor)}
}

func (m *MemoryRepo) Create(_ context.Context, a *anchor.Anchor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[a.AnchorID]; ok {
		return ErrDuplicate
	}
	m.store[a.AnchorID] = clone(a)
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*anchor.Anchor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(a), nil
}

func (m *MemoryRepo) GetMany(_ context.Context, ids []string) ([]*anchor.Anchor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*anchor.Anchor, 0, len(ids))
	for _, id := range ids {
		if a, ok := m.store[id]; ok {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

func (m *MemoryRepo) ListByNode(_ context.Context, nodeID string) ([]*anchor.Anchor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*anchor.Anchor{}
	for _, a := range m.store {
		if a.NodeID == nodeID {
			out = append(out, clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateCreated.Equal(out[j].DateCreated) {
			return out[i].AnchorID < out[j].AnchorID
		}
		return out[i].DateCreated.Before(out[j].DateCreated)
	})
	return out, nil
}

func (m *MemoryRepo) UpdateExtent(_ context.Context, id string, e *anchor.Extent) (*anchor.Anchor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Extent = nil
	if e != nil {
		c := *e
		a.Extent = &c
	}
	return clone(a), nil
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

func (m *MemoryRepo) IDsByNodes(_ context.Context, nodeIDs []string) ([]string, error) {
	set := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		set[id] = struct{}{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []string{}
	for id, a := range m.store {
		if _, ok := set[a.NodeID]; ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}
