package model

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
)

func mustValid(t *testing.T, s *Store) {
	t.Helper()
	if err := s.Validate(); err != nil {
		t.Fatalf("store invalid: %v", err)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	s := New()
	if !s.Add(Element{ID: "w1", Type: "IfcWall", Properties: Properties{"name": "first"}}) {
		t.Fatal("first add should succeed")
	}
	if s.Add(Element{ID: "w1", Type: "IfcSlab", Properties: Properties{"name": "second"}}) {
		t.Fatal("duplicate add should be a no-op")
	}
	e, _ := s.Get("w1")
	if e.Type != "IfcWall" || e.Properties["name"] != "first" {
		t.Errorf("duplicate add changed element: %+v", e)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestAddRejectsEmptyID(t *testing.T) {
	s := New()
	if s.Add(Element{Type: "IfcWall"}) {
		t.Error("add without id should be a no-op")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestAddLinksKnownParent(t *testing.T) {
	s := New()
	s.Add(Element{ID: "site", Type: "Site"})
	s.Add(Element{ID: "b", Type: "Building", Parent: "site", Children: []string{"ghost"}})
	s.Add(Element{ID: "x", Type: "Wall", Parent: "missing"})

	site, _ := s.Get("site")
	if !slices.Equal(site.Children, []string{"b"}) {
		t.Errorf("site children = %v, want [b]", site.Children)
	}
	b, _ := s.Get("b")
	if b.Parent != "site" || len(b.Children) != 0 {
		t.Errorf("building = %+v, want parent site and no children", b)
	}
	x, _ := s.Get("x")
	if x.Parent != "" {
		t.Errorf("unknown parent should be dropped, got %q", x.Parent)
	}
	mustValid(t, s)
}

func TestUpdateMergesSuppliedFields(t *testing.T) {
	s := New()
	s.Add(Element{
		ID:         "w1",
		Type:       "IfcWall",
		Properties: Properties{"name": "north", "fire": "EI60"},
		Position:   &Vec3{X: 1, Y: 2, Z: 3},
		Dimensions: &Dimensions{Width: 4, Height: 3, Depth: 0.2},
	})

	tests := []struct {
		name  string
		patch Patch
		check func(t *testing.T, e Element)
	}{
		{
			name:  "properties merged",
			patch: Patch{Properties: Properties{"name": "south"}},
			check: func(t *testing.T, e Element) {
				if e.Properties["name"] != "south" || e.Properties["fire"] != "EI60" {
					t.Errorf("properties = %v", e.Properties)
				}
				if *e.Position != (Vec3{X: 1, Y: 2, Z: 3}) {
					t.Errorf("position changed: %v", *e.Position)
				}
			},
		},
		{
			name:  "nil property value deletes key",
			patch: Patch{Properties: Properties{"fire": nil}},
			check: func(t *testing.T, e Element) {
				if _, ok := e.Properties["fire"]; ok {
					t.Errorf("fire should be deleted: %v", e.Properties)
				}
			},
		},
		{
			name:  "position replaced",
			patch: Patch{Position: &Vec3{X: 9}},
			check: func(t *testing.T, e Element) {
				if *e.Position != (Vec3{X: 9}) {
					t.Errorf("position = %v", *e.Position)
				}
				if *e.Dimensions != (Dimensions{Width: 4, Height: 3, Depth: 0.2}) {
					t.Errorf("dimensions changed: %v", *e.Dimensions)
				}
			},
		},
		{
			name:  "dimensions replaced",
			patch: Patch{Dimensions: &Dimensions{Width: 1}},
			check: func(t *testing.T, e Element) {
				if *e.Dimensions != (Dimensions{Width: 1}) {
					t.Errorf("dimensions = %v", *e.Dimensions)
				}
				if e.Type != "IfcWall" {
					t.Errorf("type changed: %q", e.Type)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !s.Update("w1", tt.patch) {
				t.Fatal("update should apply")
			}
			e, _ := s.Get("w1")
			tt.check(t, e)
		})
	}

	if s.Update("nope", Patch{Position: &Vec3{}}) {
		t.Error("update of unknown id should be a no-op")
	}
	if s.Len() != 1 {
		t.Errorf("update must not create elements, Len() = %d", s.Len())
	}
}

func TestUpdateRandomPatchesKeepOmittedFields(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	keys := []string{"name", "fire", "usage", "material"}
	vec := func() *Vec3 { return &Vec3{X: rng.Float64() * 10, Y: rng.Float64() * 10, Z: rng.Float64() * 10} }
	dims := func() *Dimensions {
		return &Dimensions{Width: rng.Float64() * 5, Height: rng.Float64() * 5, Depth: rng.Float64()}
	}

	s := New()
	s.Add(Element{
		ID:         "w1",
		Type:       "IfcWall",
		Properties: Properties{"name": "north", "fire": "EI60"},
		Position:   vec(),
		Dimensions: dims(),
	})

	for i := range 500 {
		before, _ := s.Get("w1")

		var p Patch
		if rng.IntN(2) == 0 {
			p.Properties = Properties{}
			for _, k := range keys {
				switch rng.IntN(4) {
				case 0:
					p.Properties[k] = fmt.Sprintf("v%d", rng.IntN(100))
				case 1:
					p.Properties[k] = nil
				}
			}
		}
		if rng.IntN(2) == 0 {
			p.Position = vec()
		}
		if rng.IntN(2) == 0 {
			p.Dimensions = dims()
		}

		if !s.Update("w1", p) {
			t.Fatalf("update %d rejected", i)
		}
		after, _ := s.Get("w1")

		for _, k := range keys {
			v, supplied := p.Properties[k]
			got, has := after.Properties[k]
			switch {
			case !supplied:
				old, hadOld := before.Properties[k]
				if has != hadOld || got != old {
					t.Fatalf("update %d: omitted property %q changed from %v to %v", i, k, old, got)
				}
			case v == nil:
				if has {
					t.Fatalf("update %d: property %q should be deleted", i, k)
				}
			case got != v:
				t.Fatalf("update %d: property %q = %v, want %v", i, k, got, v)
			}
		}

		wantPos, wantDims := *before.Position, *before.Dimensions
		if p.Position != nil {
			wantPos = *p.Position
		}
		if p.Dimensions != nil {
			wantDims = *p.Dimensions
		}
		if *after.Position != wantPos || *after.Dimensions != wantDims {
			t.Fatalf("update %d: position %v dims %v, want %v %v", i, *after.Position, *after.Dimensions, wantPos, wantDims)
		}
		if after.Type != before.Type || after.Parent != before.Parent || !slices.Equal(after.Children, before.Children) {
			t.Fatalf("update %d changed structural fields: %+v", i, after)
		}
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	s.Add(Element{ID: "w1", Type: "Wall", Position: &Vec3{X: 1}})
	e, _ := s.Get("w1")
	e.Position.X = 100
	e.Properties["name"] = "mutated"

	again, _ := s.Get("w1")
	if again.Position.X != 1 {
		t.Error("caller mutation leaked into store position")
	}
	if _, ok := again.Properties["name"]; ok {
		t.Error("caller mutation leaked into store properties")
	}
}

func TestLink(t *testing.T) {
	s := New()
	for _, id := range []string{"a", "b", "c"} {
		s.Add(Element{ID: id, Type: "Proxy"})
	}

	if !s.Link("a", "b") {
		t.Fatal("link should apply")
	}
	if s.Link("a", "b") {
		t.Error("duplicate link should be a no-op")
	}
	if s.Link("a", "zzz") || s.Link("zzz", "a") {
		t.Error("link with unknown endpoint should be a no-op")
	}
	if s.Link("a", "a") {
		t.Error("self link should be a no-op")
	}
	a, _ := s.Get("a")
	if !slices.Equal(a.Children, []string{"b"}) {
		t.Errorf("a children = %v, want [b]", a.Children)
	}
	mustValid(t, s)

	// Re-parenting moves the child.
	if !s.Link("c", "b") {
		t.Fatal("re-parent should apply")
	}
	a, _ = s.Get("a")
	c, _ := s.Get("c")
	b, _ := s.Get("b")
	if len(a.Children) != 0 || !slices.Equal(c.Children, []string{"b"}) || b.Parent != "c" {
		t.Errorf("re-parent: a=%v c=%v b.parent=%q", a.Children, c.Children, b.Parent)
	}
	mustValid(t, s)
}

func TestRemoveOrphansChildren(t *testing.T) {
	s := New()
	s.Add(Element{ID: "site", Type: "Site"})
	s.Add(Element{ID: "b", Type: "Building", Parent: "site"})
	s.Add(Element{ID: "s1", Type: "Storey", Parent: "b"})
	s.Add(Element{ID: "s2", Type: "Storey", Parent: "b"})

	if !s.Remove("b") {
		t.Fatal("remove should apply")
	}
	if s.Remove("b") {
		t.Error("second remove should be a no-op")
	}
	if _, ok := s.Get("b"); ok {
		t.Error("b still present")
	}
	site, _ := s.Get("site")
	if len(site.Children) != 0 {
		t.Errorf("site children = %v, want none", site.Children)
	}
	if got := s.Roots(); !slices.Equal(got, []string{"site", "s1", "s2"}) {
		t.Errorf("Roots() = %v", got)
	}
	if got := s.IDs(); !slices.Equal(got, []string{"site", "s1", "s2"}) {
		t.Errorf("IDs() = %v", got)
	}
	mustValid(t, s)
}

func TestRemoveSubtree(t *testing.T) {
	s := New()
	s.Add(Element{ID: "site", Type: "Site"})
	s.Add(Element{ID: "b", Type: "Building", Parent: "site"})
	s.Add(Element{ID: "s1", Type: "Storey", Parent: "b"})
	s.Add(Element{ID: "w1", Type: "Wall", Parent: "s1"})
	s.Add(Element{ID: "other", Type: "Wall", Parent: "site"})

	if n := s.RemoveSubtree("b"); n != 3 {
		t.Errorf("RemoveSubtree() = %d, want 3", n)
	}
	if got := s.IDs(); !slices.Equal(got, []string{"site", "other"}) {
		t.Errorf("IDs() = %v", got)
	}
	if n := s.RemoveSubtree("b"); n != 0 {
		t.Errorf("second RemoveSubtree() = %d, want 0", n)
	}
	mustValid(t, s)
}

func TestUnlink(t *testing.T) {
	s := New()
	s.Add(Element{ID: "a", Type: "Site"})
	s.Add(Element{ID: "b", Type: "Wall", Parent: "a"})
	if !s.Unlink("b") {
		t.Fatal("unlink should apply")
	}
	if s.Unlink("b") {
		t.Error("unlink of root should be a no-op")
	}
	if got := s.Roots(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Roots() = %v", got)
	}
	mustValid(t, s)
}

func TestFreeze(t *testing.T) {
	s := New()
	s.Add(Element{ID: "a", Type: "Site"})
	s.Freeze()
	if !s.Frozen() {
		t.Fatal("store should be frozen")
	}
	if s.Add(Element{ID: "b"}) || s.Update("a", Patch{Position: &Vec3{}}) || s.Remove("a") || s.Link("a", "a") {
		t.Error("mutations on frozen store should be no-ops")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := New()
	s.Add(Element{ID: "a", Type: "Site"})
	snap := s.Snapshot()
	s.Add(Element{ID: "b", Type: "Wall", Parent: "a"})
	s.Update("a", Patch{Properties: Properties{"name": "changed"}})

	if snap.Len() != 1 {
		t.Errorf("snapshot Len() = %d, want 1", snap.Len())
	}
	a, _ := snap.Get("a")
	if len(a.Children) != 0 || a.Properties["name"] != nil {
		t.Errorf("snapshot observed later writes: %+v", a)
	}
}

func TestConcurrentWritersAndReaders(t *testing.T) {
	s := New(WithInvariantChecks())
	s.Add(Element{ID: "root", Type: "Site"})

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("w%d-%d", w, i)
				s.Add(Element{ID: id, Type: "Wall", Parent: "root"})
				s.Update(id, Patch{Position: &Vec3{X: float64(i)}})
				if i%3 == 0 {
					s.Remove(id)
				}
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if err := s.Snapshot().Validate(); err != nil {
					t.Errorf("reader observed invalid state: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	// 4 writers * (50 - 17 removed) + root
	if got, want := s.Len(), 4*33+1; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	mustValid(t, s)
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	b.Add(Element{ID: "w1", Type: "Wall"}, "s1") // child before parent
	b.Add(Element{ID: "s1", Type: "Storey"}, "")
	b.Add(Element{ID: "w1", Type: "Slab"}, "") // duplicate dropped
	s := b.Build()

	if !s.Frozen() {
		t.Error("built store should be frozen")
	}
	if got := s.IDs(); !slices.Equal(got, []string{"w1", "s1"}) {
		t.Errorf("IDs() = %v", got)
	}
	w, _ := s.Get("w1")
	if w.Parent != "s1" || w.Type != "Wall" {
		t.Errorf("w1 = %+v", w)
	}
	mustValid(t, s)
}

func TestValidateReportsViolations(t *testing.T) {
	tests := []struct {
		name  string
		elems []Element
		want  error
	}{
		{"dangling child", []Element{{ID: "a", Children: []string{"x"}}}, ErrDanglingChild},
		{"dangling parent", []Element{{ID: "a", Parent: "x"}}, ErrDanglingParent},
		{"parent not listing child", []Element{{ID: "a"}, {ID: "b", Parent: "a"}}, ErrLinkMismatch},
		{"child with other parent", []Element{{ID: "a", Children: []string{"b"}}, {ID: "b"}}, ErrLinkMismatch},
		{"duplicate child", []Element{{ID: "a", Children: []string{"b", "b"}}, {ID: "b", Parent: "a"}}, ErrDuplicateChild},
		{"cycle", []Element{
			{ID: "a", Children: []string{"b"}, Parent: "b"},
			{ID: "b", Children: []string{"a"}, Parent: "a"},
		}, ErrCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSnapshot(tt.elems).Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSnapshotRootsIncludeDanglingParents(t *testing.T) {
	snap := NewSnapshot([]Element{
		{ID: "a", Children: []string{"b"}},
		{ID: "b", Parent: "a"},
		{ID: "c", Parent: "gone"},
	})
	if got := snap.Roots(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Roots() = %v, want [a c]", got)
	}
}

func TestElementName(t *testing.T) {
	tests := []struct {
		e    Element
		want string
	}{
		{Element{Type: "IfcWall", Properties: Properties{"name": "North"}}, "North"},
		{Element{Type: "IfcWall"}, "Wall"},
		{Element{Type: "IfcWall", Properties: Properties{"name": ""}}, "Wall"},
		{Element{Type: "IfcFlowTerminal"}, "IfcFlowTerminal"},
		{Element{Type: "storey"}, "BuildingStorey"},
	}
	for _, tt := range tests {
		if got := tt.e.Name(); got != tt.want {
			t.Errorf("Name(%+v) = %q, want %q", tt.e, got, tt.want)
		}
	}
}
