// Package pkg provides the core libraries for bimtower, a building
// information model toolkit.
//
// # Overview
//
// bimtower keeps building elements (sites, buildings, storeys, walls, doors,
// windows, slabs, ...) in an id-keyed containment hierarchy, resolves where
// each element sits in model space, and writes the result as an IFC STEP
// exchange file or as drawings. The pkg directory is organized into three
// areas:
//
//  1. Domain logic: [model], [placement], [geometry], [step], [scene]
//  2. Input and orchestration: [manifest], [pipeline]
//  3. Infrastructure: [cache], [storage], [config], [observability], [errors]
//
// # Architecture
//
// The typical data flow through bimtower:
//
//	Manifest (JSON or TOML)
//	         ↓
//	    [manifest] package (decode + build a frozen store)
//	         ↓
//	    [model] package (element store + snapshots)
//	         ↓
//	    [placement] package (absolute positions, cycle detection)
//	         ↓
//	    [step] package (IFC exchange file)   [scene] package (SVG/PNG/PDF/DOT/JSON)
//
// # Quick Start
//
// Build a model and export it:
//
//	import (
//	    "github.com/matzehuels/bimtower/pkg/manifest"
//	    "github.com/matzehuels/bimtower/pkg/step"
//	)
//
//	doc, _ := manifest.Load("house.toml")
//	store, _ := manifest.Build(doc)
//	ifc := step.Marshal(store.Snapshot(), step.WithProjectName("House"))
//
// Or let [pipeline] handle loading, caching and rendering:
//
//	r := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	m, _ := r.LoadFile(ctx, "house.toml")
//	artifacts, _ := r.Render(ctx, m, pipeline.Options{View: pipeline.ViewPlan})
//
// # Main Packages
//
// [model] - The element store. Mutations never fail; invalid input is a
// logged no-op. Snapshots give read passes a consistent view.
//
// [placement] - Resolves local offsets into absolute positions by walking
// parents, reporting cycles and dangling parents instead of failing.
//
// [geometry] - Maps element types and dimensions to drawable primitives
// (boxes, slabs, cylinders) with per-kind defaults.
//
// [step] - ISO 10303-21 writer: header section, entity numbering, string
// escaping and the IFC entity graph for projects, spatial structure and
// building elements.
//
// [scene] - Drawing adapter: plan and isometric SVG, hierarchy DOT via
// Graphviz, and scene JSON for external viewers.
//
// [manifest] - JSON and TOML building manifests, nested or flat, with
// deterministic generated ids and bundled demos.
//
// [pipeline] - Load → export/render orchestration with artifact caching,
// shared by the CLI and the HTTP API.
//
// [cache] - Artifact cache backends: file (CLI), Redis (server), null.
//
// [storage] - Saved model repositories: memory and MongoDB.
//
// # Testing
//
// Run tests:
//
//	go test ./...                          # All tests
//	go test ./pkg/model/...                # Specific package
//	go test -tags integration ./pkg/...    # Include Redis and MongoDB tests
//
// [model]: https://pkg.go.dev/github.com/matzehuels/bimtower/pkg/model
// [placement]: https://pkg.go.dev/github.com/matzehuels/bimtower/pkg/placement
// [geometry]: https://pkg.go.dev/github.com/matzehuels/bimtower/pkg/geometry
// [step]: https://pkg.go.dev/github.com/matzehuels/bimtower/pkg/step
// [scene]: https://pkg.go.dev/github.com/matzehuels/bimtower/pkg/scene
// [manifest]: https://pkg.go.dev/github.com/matzehuels/bimtower/pkg/manifest
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/bimtower/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/bimtower/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/bimtower/pkg/storage
// [config]: https://pkg.go.dev/github.com/matzehuels/bimtower/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/bimtower/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/bimtower/pkg/errors
package pkg
