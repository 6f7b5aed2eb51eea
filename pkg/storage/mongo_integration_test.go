//go:build integration

package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/bimtower/pkg/manifest"
)

// Run with: BIMTOWER_TEST_MONGO_URI=mongodb://localhost:27017 go test -tags integration ./pkg/storage
func TestMongoRepository(t *testing.T) {
	uri := os.Getenv("BIMTOWER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BIMTOWER_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	db := "bimtower_test_" + uuid.NewString()[:8]
	r, err := NewMongoRepository(ctx, uri, db)
	if err != nil {
		t.Fatalf("NewMongoRepository: %v", err)
	}
	defer func() {
		_ = r.client.Database(db).Drop(ctx)
		r.Close(ctx)
	}()

	m := &Model{Document: manifest.SimpleHouse()}
	if err := r.Save(ctx, m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := r.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Simple house" || got.Document.Count() != 11 {
		t.Errorf("Get = %+v", got.Summary())
	}
	if !got.CreatedAt.Equal(m.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, m.CreatedAt)
	}

	list, err := r.List(ctx)
	if err != nil || len(list) != 1 || list[0].ID != m.ID {
		t.Fatalf("List = %v, %v", list, err)
	}

	if err := r.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Get(ctx, m.ID); !IsNotFound(err) {
		t.Errorf("Get after Delete = %v", err)
	}
}
