package scene

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/bimtower/pkg/placement"
)

// DOTOptions configures hierarchy diagram generation.
type DOTOptions struct {
	// Detailed adds type, absolute position and properties to node labels.
	// When false, labels show the name and type only.
	Detailed bool
}

// ToDOT converts the scene's containment tree to Graphviz DOT format. The
// result can be rendered with [RenderHierarchySVG].
//
// Spatial containers (site, building, storey, space) are drawn as folders.
// Missing children appear as dashed red placeholder nodes and cycle edges
// are drawn dashed red, so structural issues stay visible.
func ToDOT(sc *Scene, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	placed := make(map[string]bool, len(sc.Items))
	for _, it := range sc.Items {
		placed[it.ID] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", it.ID, strings.Join(fmtAttrs(it, opts.Detailed), ", "))
	}
	for _, is := range sc.Issues {
		if is.Kind == placement.IssueMissingChild && !placed[is.Ref] {
			placed[is.Ref] = true
			fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,dashed\", color=red, fontcolor=red];\n", is.Ref, is.Ref+"\n(missing)")
		}
	}

	buf.WriteString("\n")
	for _, it := range sc.Items {
		for _, c := range it.Children {
			if !placed[c] || isFlaggedEdge(sc.Issues, it.ID, c) {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", it.ID, c)
		}
	}
	for _, is := range sc.Issues {
		switch is.Kind {
		case placement.IssueMissingChild, placement.IssueCycle:
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=red];\n", is.ID, is.Ref)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func isFlaggedEdge(issues []placement.Issue, from, to string) bool {
	for _, is := range issues {
		if (is.Kind == placement.IssueCycle || is.Kind == placement.IssueMissingChild) && is.ID == from && is.Ref == to {
			return true
		}
	}
	return false
}

func fmtLabel(it Item, detailed bool) string {
	label := it.Name
	if label != it.Kind.String() {
		label += "\n" + it.Kind.String()
	}
	if !detailed {
		return label
	}
	parts := []string{
		"id: " + it.ID,
		fmt.Sprintf("at: (%s, %s, %s)", num(it.Absolute.X), num(it.Absolute.Y), num(it.Absolute.Z)),
	}
	for _, k := range slices.Sorted(maps.Keys(it.Properties)) {
		if k == "name" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, it.Properties[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(it Item, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(it, detailed))}
	if it.Kind.IsSpatial() {
		attrs = append(attrs, "shape=folder", "style=filled", fmt.Sprintf("fillcolor=%q", it.Primitive.Hints.Color+"40"))
		return attrs
	}
	attrs = append(attrs, fmt.Sprintf("fillcolor=%q", it.Primitive.Hints.Color))
	return attrs
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// RenderHierarchySVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [ToPDF] or [ToPNG].
func RenderHierarchySVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based svg element with one whose
// width and height match the viewBox, so the diagram scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
