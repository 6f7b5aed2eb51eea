package model

import (
	"maps"
	"slices"
)

// Vec3 is a point or offset in model space (meters). Y is up.
type Vec3 struct {
	X float64 `json:"x" toml:"x" bson:"x"`
	Y float64 `json:"y" toml:"y" bson:"y"`
	Z float64 `json:"z" toml:"z" bson:"z"`
}

// Add returns the component-wise sum of v and o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Dimensions is the bounding extent of an element. A component that is zero
// or negative counts as absent and is replaced by the per-type default when
// geometry or exchange output is derived.
type Dimensions struct {
	Width  float64 `json:"width,omitempty" toml:"width" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" toml:"height" bson:"height,omitempty"`
	Depth  float64 `json:"depth,omitempty" toml:"depth" bson:"depth,omitempty"`
}

// Properties holds arbitrary scalar attributes of an element. The "name"
// key is used as the display name when present.
type Properties map[string]any

// Name returns the "name" property when it is a non-empty string.
func (p Properties) Name() (string, bool) {
	s, ok := p["name"].(string)
	return s, ok && s != ""
}

// Element is a single building element in the store.
type Element struct {
	ID         string      // Unique, non-empty identifier
	Type       string      // Element type as given, e.g. "IfcWall" or "Wall"
	Properties Properties  // Free-form attributes (never nil once stored)
	Position   *Vec3       // Local offset relative to the parent; nil means origin
	Dimensions *Dimensions // Extent; nil means per-type defaults
	Children   []string    // Ordered child ids
	Parent     string      // Parent id; empty for roots
}

// Kind returns the parsed element kind.
func (e Element) Kind() Kind { return ParseKind(e.Type) }

// LocalPosition returns the element's local offset, or the origin if unset.
func (e Element) LocalPosition() Vec3 {
	if e.Position == nil {
		return Vec3{}
	}
	return *e.Position
}

// Name returns the element's display name: the "name" property if present,
// otherwise the kind name (the raw type for unknown kinds).
func (e Element) Name() string {
	if n, ok := e.Properties.Name(); ok {
		return n
	}
	if k := e.Kind(); k != KindProxy {
		return k.String()
	}
	return e.Type
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	c := e
	c.Properties = maps.Clone(e.Properties)
	if c.Properties == nil {
		c.Properties = Properties{}
	}
	if e.Position != nil {
		p := *e.Position
		c.Position = &p
	}
	if e.Dimensions != nil {
		d := *e.Dimensions
		c.Dimensions = &d
	}
	c.Children = slices.Clone(e.Children)
	return c
}

// Patch describes a partial update to an element. Nil fields are left
// untouched. Properties are merged key by key; a nil value deletes the key.
type Patch struct {
	Properties Properties
	Position   *Vec3
	Dimensions *Dimensions
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return len(p.Properties) == 0 && p.Position == nil && p.Dimensions == nil
}
