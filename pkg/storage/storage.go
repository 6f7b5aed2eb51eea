// Package storage persists building models for the HTTP API.
//
// A [Repository] saves manifest documents under generated ids. Two
// implementations exist: [MemoryRepository] for tests and single-process
// use, and [MongoRepository] for deployments.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/bimtower/pkg/errors"
	"github.com/matzehuels/bimtower/pkg/manifest"
)

// Model is a stored building model.
type Model struct {
	ID        string             `json:"id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Document  *manifest.Document `json:"document" bson:"document"`
	Elements  int                `json:"elements" bson:"elements"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Summary is a Model without its document, as returned by List.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Elements  int       `json:"elements" bson:"elements"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Summary returns m without its document.
func (m *Model) Summary() Summary {
	return Summary{ID: m.ID, Name: m.Name, Elements: m.Elements, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// Repository stores models.
type Repository interface {
	// Save creates or replaces a model. An empty ID is filled with a new
	// UUID. CreatedAt is kept across replacements; UpdatedAt is refreshed.
	Save(ctx context.Context, m *Model) error
	// Get returns the model with the given id, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Model, error)
	// List returns summaries, most recently updated first.
	List(ctx context.Context) ([]Summary, error)
	// Delete removes a model, or returns a NOT_FOUND error.
	Delete(ctx context.Context, id string) error
	// Close releases backend resources.
	Close(ctx context.Context) error
}

// IsNotFound reports whether err means the model does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeNotFound)
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "model %q not found", id)
}

// prepare fills the id, name, element count and timestamps before a save.
func prepare(m *Model, now time.Time) error {
	if m.Document == nil {
		return errors.New(errors.ErrCodeInvalidInput, "model has no document")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	} else if err := uuid.Validate(m.ID); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid model id %q", m.ID)
	}
	if m.Name == "" {
		m.Name = m.Document.Name
	}
	m.Elements = m.Document.Count()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	return nil
}
