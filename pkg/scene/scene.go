package scene

import (
	"math"

	"github.com/matzehuels/bimtower/pkg/geometry"
	"github.com/matzehuels/bimtower/pkg/model"
	"github.com/matzehuels/bimtower/pkg/placement"
)

// Item is one drawable element.
type Item struct {
	ID         string
	Type       string
	Kind       model.Kind
	Name       string
	Parent     string
	Children   []string
	Depth      int
	Local      model.Vec3 // offset relative to the parent
	Absolute   model.Vec3 // element origin in model space
	Center     model.Vec3 // primitive centre in model space
	Primitive  geometry.Primitive
	Properties model.Properties
}

// Min returns the lower corner of the item's bounding box.
func (it Item) Min() model.Vec3 {
	s := it.Primitive.Size
	return model.Vec3{X: it.Center.X - s.X/2, Y: it.Center.Y - s.Y/2, Z: it.Center.Z - s.Z/2}
}

// Max returns the upper corner of the item's bounding box.
func (it Item) Max() model.Vec3 {
	s := it.Primitive.Size
	return model.Vec3{X: it.Center.X + s.X/2, Y: it.Center.Y + s.Y/2, Z: it.Center.Z + s.Z/2}
}

// Solid reports whether the item is drawn as a filled solid rather than a
// container outline.
func (it Item) Solid() bool { return !it.Primitive.Hints.Wireframe }

// Bounds is an axis-aligned box in model space.
type Bounds struct {
	Min model.Vec3
	Max model.Vec3
}

// Empty reports whether the bounds enclose nothing.
func (b Bounds) Empty() bool { return b.Min.X > b.Max.X }

// Scene is the adapter output.
type Scene struct {
	Items  []Item
	Issues []placement.Issue
	// Bounds covers every item, containers included.
	Bounds Bounds
}

// Item returns the item with the given id.
func (s *Scene) Item(id string) (Item, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Build computes the scene for snap. Elements the resolver cannot reach
// (trapped in cycles) are left out and appear in Issues.
func Build(snap *model.Snapshot) *Scene {
	res := placement.Resolve(snap)
	sc := &Scene{
		Items:  make([]Item, 0, len(res.Order)),
		Issues: res.Issues,
		Bounds: Bounds{
			Min: model.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
			Max: model.Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
		},
	}
	for _, id := range res.Order {
		e, _ := snap.Get(id)
		abs := res.Positions[id]
		prim := geometry.MapElement(e)
		it := Item{
			ID:         e.ID,
			Type:       e.Type,
			Kind:       e.Kind(),
			Name:       e.Name(),
			Parent:     e.Parent,
			Children:   e.Children,
			Depth:      res.Depth[id],
			Local:      e.LocalPosition(),
			Absolute:   abs,
			Center:     abs.Add(prim.Offset),
			Primitive:  prim,
			Properties: e.Properties,
		}
		sc.Items = append(sc.Items, it)
		sc.grow(it)
	}
	if len(sc.Items) == 0 {
		sc.Bounds = Bounds{Min: model.Vec3{X: 1}, Max: model.Vec3{}}
	}
	return sc
}

func (s *Scene) grow(it Item) {
	lo, hi := it.Min(), it.Max()
	s.Bounds.Min = model.Vec3{X: min(s.Bounds.Min.X, lo.X), Y: min(s.Bounds.Min.Y, lo.Y), Z: min(s.Bounds.Min.Z, lo.Z)}
	s.Bounds.Max = model.Vec3{X: max(s.Bounds.Max.X, hi.X), Y: max(s.Bounds.Max.Y, hi.Y), Z: max(s.Bounds.Max.Z, hi.Z)}
}
