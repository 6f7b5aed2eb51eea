// Package pipeline provides the core model pipeline for bimtower.
//
// This package implements the load → export / render flow shared by the
// CLI and the HTTP API, so both entry points behave identically.
//
// # Architecture
//
// A run has up to three stages:
//
//  1. Load: parse a manifest and register its elements in a frozen store
//  2. Export: serialize a snapshot as an IFC STEP exchange file
//  3. Render: build a scene and draw it (scene JSON, plan, isometric or
//     hierarchy diagrams in SVG, PNG, PDF or DOT)
//
// Rendered artifacts are cached by model content hash and render options.
// Exports are never cached: each carries a fresh timestamp and project id.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	m, err := runner.LoadFile(ctx, "house.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ifc := runner.Export(ctx, m, pipeline.Options{})
//	artifacts, err := runner.Render(ctx, m, pipeline.Options{
//	    View:    pipeline.ViewPlan,
//	    Formats: []string{"svg"},
//	})
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bimtower/pkg/cache"
	"github.com/matzehuels/bimtower/pkg/errors"
	"github.com/matzehuels/bimtower/pkg/scene"
	"github.com/matzehuels/bimtower/pkg/step"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultView is the default render view.
	DefaultView = ViewPlan

	// DefaultScale is the default drawing scale in pixels per meter.
	DefaultScale = scene.DefaultScale

	// DefaultPNGZoom is the rsvg-convert zoom factor used for PNG output.
	DefaultPNGZoom = 2.0
)

// View constants.
const (
	ViewPlan      = "plan"
	ViewIsometric = "iso"
	ViewHierarchy = "hierarchy"
	ViewScene     = "scene"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatIFC  = "ifc"
)

// ValidViews is the set of supported render views.
var ValidViews = map[string]bool{
	ViewPlan:      true,
	ViewIsometric: true,
	ViewHierarchy: true,
	ViewScene:     true,
}

// viewFormats lists the formats each view can produce. The first entry is
// the default.
var viewFormats = map[string][]string{
	ViewPlan:      {FormatSVG, FormatPNG, FormatPDF},
	ViewIsometric: {FormatSVG, FormatPNG, FormatPDF},
	ViewHierarchy: {FormatSVG, FormatPNG, FormatPDF, FormatDOT},
	ViewScene:     {FormatJSON},
}

// FormatsFor returns the formats a view supports.
func FormatsFor(view string) []string {
	return slices.Clone(viewFormats[view])
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains per-run configuration for export and render.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Export options
	Header      step.Header `json:"header,omitzero"`
	ProjectID   string      `json:"project_id,omitempty"`
	ProjectName string      `json:"project_name,omitempty"`
	Absolute    bool        `json:"absolute,omitempty"` // Write absolute coordinates

	// Render options
	View       string   `json:"view,omitempty"`
	Formats    []string `json:"formats,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	Labels     bool     `json:"labels,omitempty"`
	Containers bool     `json:"containers,omitempty"` // Draw spatial containers as outlines
	Detailed   bool     `json:"detailed,omitempty"`   // Hierarchy labels with positions and properties
	Properties bool     `json:"properties,omitempty"` // Include properties in scene JSON
	Refresh    bool     `json:"refresh,omitempty"`    // Bypass the artifact cache

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateView checks that a view is valid.
func ValidateView(view string) error {
	if !ValidViews[view] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid view: %q (must be one of: plan, iso, hierarchy, scene)", view)
	}
	return nil
}

// ValidateFormats checks that all formats are valid for view.
func ValidateFormats(view string, formats []string) error {
	allowed := viewFormats[view]
	for _, f := range formats {
		if !slices.Contains(allowed, f) {
			return errors.New(errors.ErrCodeInvalidFormat,
				"invalid format %q for view %s (must be one of: %s)", f, view, strings.Join(allowed, ", "))
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks render settings and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.View == "" {
		o.View = DefaultView
	}
	if err := ValidateView(o.View); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{viewFormats[o.View][0]}
	}
	o.Formats = dedupe(o.Formats)
	if err := ValidateFormats(o.View, o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ExportOptions converts the export settings to exporter options. Header
// values set on the model's document take precedence over defaults and are
// themselves overridden by o.Header.
func (o *Options) ExportOptions(docHeader *step.Header) []step.Option {
	var opts []step.Option
	if docHeader != nil {
		opts = append(opts, step.WithHeader(*docHeader))
	}
	opts = append(opts, step.WithHeader(o.Header))
	if o.ProjectID != "" {
		opts = append(opts, step.WithProjectID(o.ProjectID))
	}
	if o.ProjectName != "" {
		opts = append(opts, step.WithProjectName(o.ProjectName))
	}
	if o.Absolute {
		opts = append(opts, step.WithAbsolutePlacement())
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		View:       o.View,
		Format:     format,
		Scale:      o.Scale,
		Labels:     o.Labels,
		Containers: o.Containers,
		Detailed:   o.Detailed,
		Properties: o.Properties,
	}
}

func (o *Options) svgOptions() []scene.SVGOption {
	opts := []scene.SVGOption{scene.WithScale(o.Scale)}
	if o.View == ViewIsometric {
		opts = append(opts, scene.WithView(scene.ViewIsometric))
	}
	if o.Labels {
		opts = append(opts, scene.WithLabels())
	}
	if o.Containers {
		opts = append(opts, scene.WithContainers())
	}
	return opts
}

func (o *Options) jsonOptions() []scene.JSONOption {
	var opts []scene.JSONOption
	if o.Properties {
		opts = append(opts, scene.WithJSONProperties())
	}
	return opts
}

func dedupe(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// String summarizes the render settings for log output.
func (o *Options) String() string {
	return fmt.Sprintf("view=%s formats=%s scale=%g", o.View, strings.Join(o.Formats, ","), o.Scale)
}
