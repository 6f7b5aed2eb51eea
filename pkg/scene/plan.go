package scene

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"math"
	"slices"
	"strconv"

	"github.com/matzehuels/bimtower/pkg/geometry"
	"github.com/matzehuels/bimtower/pkg/model"
)

// View selects the projection used by [RenderPlanSVG].
type View string

const (
	// ViewPlan looks straight down the Y axis; X runs right, Z runs down.
	ViewPlan View = "plan"
	// ViewIsometric projects (x, y, z) to ((x-z), (x+z)/2 - y).
	ViewIsometric View = "iso"
)

// Drawing defaults.
const (
	DefaultScale  = 10.0 // pixels per meter
	DefaultMargin = 20.0 // pixels
)

// SVGOption configures [RenderPlanSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	view       View
	scale      float64
	margin     float64
	labels     bool
	containers bool
	ground     bool
}

// WithView selects the projection. The default is [ViewPlan].
func WithView(v View) SVGOption { return func(r *svgRenderer) { r.view = v } }

// WithScale sets pixels per meter.
func WithScale(s float64) SVGOption {
	return func(r *svgRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithLabels draws element names next to solid items.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithContainers draws dashed outlines for building, storey and space.
func WithContainers() SVGOption { return func(r *svgRenderer) { r.containers = true } }

// WithoutGround omits the site ground plane.
func WithoutGround() SVGOption { return func(r *svgRenderer) { r.ground = false } }

type point struct{ x, y float64 }

type shape struct {
	item   Item
	faces  [][]point
	fills  []string
	dashed bool
	depth  float64 // painter's order key, lower first
}

// RenderPlanSVG draws the scene as a flat SVG. Items are painted back to
// front; each shape carries a title with the element name and type.
func RenderPlanSVG(sc *Scene, opts ...SVGOption) []byte {
	r := svgRenderer{view: ViewPlan, scale: DefaultScale, margin: DefaultMargin, ground: true}
	for _, opt := range opts {
		opt(&r)
	}

	var shapes []shape
	for _, it := range sc.Items {
		switch {
		case it.Kind == model.KindSite && !r.ground:
			continue
		case !it.Solid() && !r.containers:
			continue
		}
		shapes = append(shapes, r.project(it))
	}
	slices.SortStableFunc(shapes, func(a, b shape) int { return cmp.Compare(a.depth, b.depth) })

	minX, minY, maxX, maxY := math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)
	for _, s := range shapes {
		for _, f := range s.faces {
			for _, p := range f {
				minX, maxX = min(minX, p.x), max(maxX, p.x)
				minY, maxY = min(minY, p.y), max(maxY, p.y)
			}
		}
	}
	if len(shapes) == 0 {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}
	width := maxX - minX + 2*r.margin
	height := maxY - minY + 2*r.margin
	offX, offY := r.margin-minX, r.margin-minY

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <g class="%s">`+"\n", r.view)
	for _, s := range shapes {
		renderShape(&buf, s, offX, offY)
	}
	if r.labels {
		for _, s := range shapes {
			if s.item.Solid() && s.item.Kind != model.KindSite {
				renderLabel(&buf, s, offX, offY)
			}
		}
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) project(it Item) shape {
	lo, hi := it.Min(), it.Max()
	s := shape{item: it, dashed: !it.Solid()}
	color := it.Primitive.Hints.Color

	if r.view == ViewIsometric {
		p := func(x, y, z float64) point {
			return point{x: (x - z) * r.scale, y: ((x+z)/2 - y) * r.scale}
		}
		top := []point{p(lo.X, hi.Y, lo.Z), p(hi.X, hi.Y, lo.Z), p(hi.X, hi.Y, hi.Z), p(lo.X, hi.Y, hi.Z)}
		right := []point{p(hi.X, lo.Y, lo.Z), p(hi.X, hi.Y, lo.Z), p(hi.X, hi.Y, hi.Z), p(hi.X, lo.Y, hi.Z)}
		front := []point{p(lo.X, lo.Y, hi.Z), p(hi.X, lo.Y, hi.Z), p(hi.X, hi.Y, hi.Z), p(lo.X, hi.Y, hi.Z)}
		s.faces = [][]point{right, front, top}
		s.fills = []string{shade(color, 0.75), shade(color, 0.6), shade(color, 1)}
		s.depth = hi.X + hi.Z + lo.Y
		return s
	}

	x0, x1 := lo.X*r.scale, hi.X*r.scale
	y0, y1 := lo.Z*r.scale, hi.Z*r.scale
	// Cylinders keep the square footprint for bounds and are drawn as
	// circles inscribed in it.
	s.faces = [][]point{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}}
	s.fills = []string{color}
	s.depth = hi.Y
	return s
}

func renderShape(buf *bytes.Buffer, s shape, offX, offY float64) {
	it := s.item
	opacity := it.Primitive.Hints.Opacity
	fmt.Fprintf(buf, `    <g id="el-%s" data-kind="%s">`+"\n", html.EscapeString(it.ID), it.Kind)
	fmt.Fprintf(buf, "      <title>%s (%s)</title>\n", html.EscapeString(it.Name), it.Kind)
	if s.dashed {
		f := s.faces[len(s.faces)-1]
		fmt.Fprintf(buf, `      <polygon points="%s" fill="none" stroke="%s" stroke-dasharray="4 3" stroke-width="1"/>`+"\n",
			points(f, offX, offY), it.Primitive.Hints.Color)
		buf.WriteString("    </g>\n")
		return
	}
	if it.Primitive.Shape == geometry.ShapeCylinder && len(s.faces) == 1 {
		f := s.faces[0]
		cx, cy := (f[0].x+f[2].x)/2+offX, (f[0].y+f[2].y)/2+offY
		fmt.Fprintf(buf, `      <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%s" stroke="#333333" stroke-width="0.5"/>`+"\n",
			cx, cy, (f[2].x-f[0].x)/2, s.fills[0], fmtOpacity(opacity))
		buf.WriteString("    </g>\n")
		return
	}
	for i, f := range s.faces {
		fmt.Fprintf(buf, `      <polygon points="%s" fill="%s" fill-opacity="%s" stroke="#333333" stroke-width="0.5"/>`+"\n",
			points(f, offX, offY), s.fills[i], fmtOpacity(opacity))
	}
	buf.WriteString("    </g>\n")
}

func renderLabel(buf *bytes.Buffer, s shape, offX, offY float64) {
	f := s.faces[len(s.faces)-1]
	var cx, cy float64
	for _, p := range f {
		cx += p.x
		cy += p.y
	}
	cx, cy = cx/float64(len(f))+offX, cy/float64(len(f))+offY
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-family="sans-serif" font-size="8" text-anchor="middle">%s</text>`+"\n",
		cx, cy, html.EscapeString(s.item.Name))
}

func points(ps []point, offX, offY float64) string {
	var b bytes.Buffer
	for i, p := range ps {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.2f,%.2f", p.x+offX, p.y+offY)
	}
	return b.String()
}

func fmtOpacity(o float64) string {
	if o <= 0 || o > 1 {
		o = 1
	}
	return strconv.FormatFloat(o, 'f', -1, 64)
}

// shade scales a #rrggbb colour by f. Malformed colours are returned as is.
func shade(hex string, f float64) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return hex
	}
	scale := func(c uint64) uint64 { return uint64(math.Round(float64(c) * f)) }
	r, g, b := scale(v>>16&0xff), scale(v>>8&0xff), scale(v&0xff)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
