package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bimtower/pkg/cache"
	"github.com/matzehuels/bimtower/pkg/manifest"
	"github.com/matzehuels/bimtower/pkg/model"
	"github.com/matzehuels/bimtower/pkg/observability"
	"github.com/matzehuels/bimtower/pkg/placement"
	"github.com/matzehuels/bimtower/pkg/scene"
	"github.com/matzehuels/bimtower/pkg/step"
)

// Model is a loaded building model.
type Model struct {
	// Name is the document name, used as the project name when the model
	// has no Project element.
	Name string

	// Header holds the document's header overrides, if any.
	Header *step.Header

	// Store is the frozen element store.
	Store *model.Store

	// Snapshot is the store's content at load time.
	Snapshot *model.Snapshot

	// Hash is the content hash of the model, used for cache keys.
	Hash string
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the expiry of cached artifacts (default cache.TTLArtifact).
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLArtifact,
	}
}

// =============================================================================
// Load
// =============================================================================

// LoadFile reads the manifest at path and builds a model from it.
func (r *Runner) LoadFile(ctx context.Context, path string) (*Model, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, path)

	doc, err := manifest.Load(path)
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, path, 0, time.Since(start), err)
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = trimExt(filepath.Base(path))
	}
	return r.build(ctx, doc, path, start)
}

// LoadDocument builds a model from a parsed manifest. source names the
// document in logs and hooks.
func (r *Runner) LoadDocument(ctx context.Context, doc *manifest.Document, source string) (*Model, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, source)
	return r.build(ctx, doc, source, start)
}

func (r *Runner) build(ctx context.Context, doc *manifest.Document, source string, start time.Time) (*Model, error) {
	store, err := manifest.Build(doc, model.WithLogger(r.Logger))
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, source, 0, time.Since(start), err)
		return nil, err
	}
	m, err := NewModel(doc.Name, doc.Header, store)
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, source, 0, time.Since(start), err)
		return nil, err
	}
	observability.Pipeline().OnLoadComplete(ctx, source, m.Snapshot.Len(), time.Since(start), nil)

	r.Logger.Debug("loaded model", "source", source, "elements", m.Snapshot.Len(), "duration", time.Since(start))
	return m, nil
}

// NewModel wraps a store. The store is snapshotted once; later mutations
// of an unfrozen store are not reflected in the model.
func NewModel(name string, header *step.Header, store *model.Store) (*Model, error) {
	snap := store.Snapshot()
	hash, err := cache.HashJSON(struct {
		Name   string             `json:"name"`
		Header *step.Header       `json:"header"`
		Doc    *manifest.Document `json:"doc"`
	}{name, header, manifest.FromSnapshot(snap, name)})
	if err != nil {
		return nil, fmt.Errorf("hash model: %w", err)
	}
	return &Model{Name: name, Header: header, Store: store, Snapshot: snap, Hash: hash}, nil
}

// =============================================================================
// Export
// =============================================================================

// Export serializes the model as an IFC STEP exchange file.
func (r *Runner) Export(ctx context.Context, m *Model, opts Options) []byte {
	start := time.Now()
	observability.Pipeline().OnExportStart(ctx, m.Snapshot.Len())

	if opts.ProjectName == "" && !hasProject(m.Snapshot) {
		opts.ProjectName = m.Name
	}
	r.logIssues(placement.Resolve(m.Snapshot).Issues)
	data := step.Marshal(m.Snapshot, opts.ExportOptions(m.Header)...)

	observability.Pipeline().OnExportComplete(ctx, len(data), time.Since(start), nil)
	r.Logger.Debug("exported model", "elements", m.Snapshot.Len(), "bytes", len(data), "duration", time.Since(start))
	return data
}

func hasProject(snap *model.Snapshot) bool {
	for _, e := range snap.Elements() {
		if e.Kind() == model.KindProject {
			return true
		}
	}
	return false
}

// =============================================================================
// Render
// =============================================================================

// RenderWithCacheInfo renders the model in every requested format and
// reports whether all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *Model, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(m.Hash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				r.Logger.Warn("cache read failed", "error", err)
			}
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	sc := scene.Build(m.Snapshot)
	r.logIssues(sc.Issues)

	rendered, err := RenderScene(ctx, sc, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(m.Hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, m *Model, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, m, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logIssues(issues []placement.Issue) {
	for _, is := range issues {
		r.Logger.Warn("placement issue", "kind", is.Kind, "id", is.ID, "ref", is.Ref)
	}
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
