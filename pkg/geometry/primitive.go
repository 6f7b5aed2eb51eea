package geometry

import "github.com/matzehuels/bimtower/pkg/model"

// Shape is the primitive solid used to draw an element.
type Shape string

const (
	ShapeBox      Shape = "box"
	ShapeCylinder Shape = "cylinder"
)

// Hints are material suggestions for a renderer. Zero Roughness and
// Metalness mean "renderer default".
type Hints struct {
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
	Roughness   float64 `json:"roughness,omitempty"`
	Metalness   float64 `json:"metalness,omitempty"`
	Transparent bool    `json:"transparent,omitempty"`
	Wireframe   bool    `json:"wireframe,omitempty"`
}

// Primitive describes how to draw one element.
type Primitive struct {
	Shape Shape `json:"shape"`
	// Size is the bounding extent as (width, height, depth).
	Size model.Vec3 `json:"size"`
	// Radius and Height are set for cylinders only.
	Radius float64 `json:"radius,omitempty"`
	Height float64 `json:"height,omitempty"`
	// Offset shifts the element origin to the primitive centre. Elements
	// stand on their origin, so boxes are raised by half their height.
	Offset model.Vec3 `json:"offset"`
	Hints  Hints      `json:"hints"`
}

var hints = map[model.Kind]Hints{
	model.KindWall:             {Color: "#cccccc", Opacity: 1, Roughness: 0.7},
	model.KindWallStandardCase: {Color: "#cccccc", Opacity: 1, Roughness: 0.7},
	model.KindCurtainWall:      {Color: "#88ccff", Opacity: 0.4, Roughness: 0.1, Metalness: 0.3, Transparent: true},
	model.KindWindow:           {Color: "#88ccff", Opacity: 0.6, Roughness: 0.1, Metalness: 0.2, Transparent: true},
	model.KindDoor:             {Color: "#8b4513", Opacity: 1, Roughness: 0.8},
	model.KindSlab:             {Color: "#aaaaaa", Opacity: 1, Roughness: 0.5},
	model.KindColumn:           {Color: "#888888", Opacity: 1, Roughness: 0.6},
	model.KindBeam:             {Color: "#999999", Opacity: 1, Roughness: 0.6},
	model.KindRoof:             {Color: "#dd4444", Opacity: 1, Roughness: 0.7},
	model.KindFooting:          {Color: "#777777", Opacity: 1, Roughness: 0.9},
	model.KindSite:             {Color: "#7cad6d", Opacity: 1, Roughness: 0.9},
	model.KindBuilding:         {Color: "#aaaaaa", Opacity: 0.1, Transparent: true, Wireframe: true},
	model.KindBuildingStorey:   {Color: "#aaffaa", Opacity: 0.05, Transparent: true, Wireframe: true},
	model.KindSpace:            {Color: "#ffffaa", Opacity: 0.1, Transparent: true, Wireframe: true},
}

var defaultHints = Hints{Color: "#999999", Opacity: 1, Roughness: 0.6}

// HintsFor returns the material hints for k.
func HintsFor(k model.Kind) Hints {
	if h, ok := hints[k]; ok {
		return h
	}
	return defaultHints
}

// Map returns the primitive for an element of kind k with the given
// dimensions. Columns become cylinders with radius width/2 (0.15 when
// absent) and height defaulting to 3; building, storey and space become
// wireframe boxes; everything else is a solid box.
func Map(k model.Kind, dims *model.Dimensions) Primitive {
	d := ResolveDimensions(k, dims)
	p := Primitive{
		Shape:  ShapeBox,
		Size:   model.Vec3{X: d.Width, Y: d.Height, Z: d.Depth},
		Offset: model.Vec3{Y: d.Height / 2},
		Hints:  HintsFor(k),
	}
	switch k {
	case model.KindColumn:
		r := ColumnRadius
		if dims != nil && dims.Width > 0 {
			r = dims.Width / 2
		}
		p.Shape = ShapeCylinder
		p.Radius = r
		p.Height = d.Height
		p.Size = model.Vec3{X: 2 * r, Y: d.Height, Z: 2 * r}
	case model.KindSite:
		// The ground plane sits just below the site origin.
		p.Offset = model.Vec3{Y: -SiteHeight / 2}
	}
	return p
}

// MapElement is a convenience wrapper around [Map].
func MapElement(e model.Element) Primitive {
	return Map(e.Kind(), e.Dimensions)
}
