package storage

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/bimtower/pkg/manifest"
)

// MemoryRepository keeps models in memory. Documents are deep-copied on
// the way in and out, so callers never share state with the repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	models map[string]*Model
	now    func() time.Time
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{models: make(map[string]*Model), now: time.Now}
}

func (r *MemoryRepository) Save(ctx context.Context, m *Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.models[m.ID]; ok && m.CreatedAt.IsZero() {
		m.CreatedAt = old.CreatedAt
	}
	if err := prepare(m, r.now().UTC()); err != nil {
		return err
	}
	stored, err := clone(m)
	if err != nil {
		return err
	}
	r.models[m.ID] = stored
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[id]
	if !ok {
		return nil, notFound(id)
	}
	return clone(m)
}

func (r *MemoryRepository) List(ctx context.Context) ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Summary, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m.Summary())
	}
	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.models[id]; !ok {
		return notFound(id)
	}
	delete(r.models, id)
	return nil
}

func (r *MemoryRepository) Close(context.Context) error { return nil }

func clone(m *Model) (*Model, error) {
	data, err := json.Marshal(m.Document)
	if err != nil {
		return nil, fmt.Errorf("copy document: %w", err)
	}
	var doc manifest.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("copy document: %w", err)
	}
	c := *m
	c.Document = &doc
	return &c, nil
}

var _ Repository = (*MemoryRepository)(nil)
