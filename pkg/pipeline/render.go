package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/bimtower/pkg/observability"
	"github.com/matzehuels/bimtower/pkg/scene"
)

// RenderScene draws sc in every format named by opts. It applies defaults
// and validates opts first.
func RenderScene(ctx context.Context, sc *scene.Scene, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		start := time.Now()
		observability.Pipeline().OnRenderStart(ctx, opts.View, format)

		data, err := renderOne(ctx, sc, opts, format, artifacts)

		observability.Pipeline().OnRenderComplete(ctx, opts.View, format, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s %s: %w", opts.View, format, err)
		}
		artifacts[format] = data
		opts.Logger.Debug("rendered", "view", opts.View, "format", format, "bytes", len(data))
	}
	return artifacts, nil
}

// renderOne produces one artifact. done holds artifacts already rendered
// in this run so PNG and PDF reuse the SVG.
func renderOne(ctx context.Context, sc *scene.Scene, opts Options, format string, done map[string][]byte) ([]byte, error) {
	if opts.View == ViewScene {
		return scene.RenderJSON(sc, opts.jsonOptions()...)
	}
	if opts.View == ViewHierarchy && format == FormatDOT {
		return []byte(scene.ToDOT(sc, scene.DOTOptions{Detailed: opts.Detailed})), nil
	}

	svg, ok := done[FormatSVG]
	if !ok {
		var err error
		if svg, err = renderSVG(ctx, sc, opts); err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPNG:
		return scene.ToPNG(ctx, svg, DefaultPNGZoom)
	case FormatPDF:
		return scene.ToPDF(ctx, svg)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func renderSVG(ctx context.Context, sc *scene.Scene, opts Options) ([]byte, error) {
	if opts.View == ViewHierarchy {
		return scene.RenderHierarchySVG(ctx, scene.ToDOT(sc, scene.DOTOptions{Detailed: opts.Detailed}))
	}
	return scene.RenderPlanSVG(sc, opts.svgOptions()...), nil
}
