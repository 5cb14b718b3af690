package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/alang8/Help-Restaurant-Review/internal/link"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*link.Link
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*link.Link)}
}

func (m *MemoryRepo) Create(_ context.Context, l *link.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[l.LinkID]; ok {
		return ErrDuplicate
	}
	c := *l
	m.store[l.LinkID] = &c
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*link.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *l
	return &c, nil
}

func (m *MemoryRepo) GetMany(_ context.Context, ids []string) ([]*link.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*link.Link, 0, len(ids))
	for _, id := range ids {
		if l, ok := m.store[id]; ok {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *MemoryRepo) ListByAnchors(_ context.Context, anchorIDs []string) ([]*link.Link, error) {
	set := toSet(anchorIDs)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*link.Link{}
	for _, l := range m.store {
		if touches(l, set) {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateCreated.Equal(out[j].DateCreated) {
			return out[i].LinkID < out[j].LinkID
		}
		return out[i].DateCreated.Before(out[j].DateCreated)
	})
	return out, nil
}

func (m *MemoryRepo) Update(_ context.Context, id string, u link.Update) (*link.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.Explainer != nil {
		l.Explainer = *u.Explainer
	}
	c := *l
	return &c, nil
}

func (m *MemoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepo) DeleteByAnchors(_ context.Context, anchorIDs []string) (int64, error) {
	set := toSet(anchorIDs)
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, l := range m.store {
		if touches(l, set) {
			delete(m.store, id)
			n++
		}
	}
	return n, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func touches(l *link.Link, set map[string]struct{}) bool {
	_, a := set[l.Anchor1ID]
	_, b := set[l.Anchor2ID]
	return a || b
}
