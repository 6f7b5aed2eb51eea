package placement

import (
	"slices"
	"testing"

	"github.com/matzehuels/bimtower/pkg/model"
)

func pos(x, y, z float64) *model.Vec3 { return &model.Vec3{X: x, Y: y, Z: z} }

func TestResolveEmpty(t *testing.T) {
	for _, snap := range []*model.Snapshot{nil, model.New().Snapshot()} {
		res := Resolve(snap)
		if len(res.Positions) != 0 || len(res.Order) != 0 || len(res.Issues) != 0 {
			t.Errorf("Resolve(empty) = %+v, want empty result", res)
		}
	}
}

func TestResolveAccumulatesOffsets(t *testing.T) {
	s := model.New()
	s.Add(model.Element{ID: "site", Type: "Site"})
	s.Add(model.Element{ID: "b", Type: "Building", Parent: "site", Position: pos(10, 0, 10)})
	s.Add(model.Element{ID: "s1", Type: "Storey", Parent: "b", Position: pos(0, 3, 0)})
	s.Add(model.Element{ID: "w1", Type: "Wall", Parent: "s1", Position: pos(2, 0, 0)})
	s.Add(model.Element{ID: "loose", Type: "Wall", Position: pos(-1, 0, 0)})

	res := Resolve(s.Snapshot())

	want := map[string]model.Vec3{
		"site":  {},
		"b":     {X: 10, Z: 10},
		"s1":    {X: 10, Y: 3, Z: 10},
		"w1":    {X: 12, Y: 3, Z: 10},
		"loose": {X: -1},
	}
	for id, w := range want {
		if got, ok := res.Position(id); !ok || got != w {
			t.Errorf("Position(%s) = %v, %v; want %v", id, got, ok, w)
		}
		if got, ok := Absolute(s.Snapshot(), id); !ok || got != w {
			t.Errorf("Absolute(%s) = %v, %v; want %v", id, got, ok, w)
		}
	}
	if !slices.Equal(res.Order, []string{"site", "b", "s1", "w1", "loose"}) {
		t.Errorf("Order = %v", res.Order)
	}
	if res.Depth["w1"] != 3 || res.Depth["loose"] != 0 {
		t.Errorf("Depth = %v", res.Depth)
	}
	if len(res.Issues) != 0 {
		t.Errorf("Issues = %v, want none", res.Issues)
	}
}

func TestResolveRootPlacedAtLocalPosition(t *testing.T) {
	s := model.New()
	s.Add(model.Element{ID: "r", Type: "Site", Position: pos(1, 2, 3)})
	res := Resolve(s.Snapshot())
	if got := res.Positions["r"]; got != *pos(1, 2, 3) {
		t.Errorf("root = %v", got)
	}
}

func TestResolveAnomalies(t *testing.T) {
	snap := model.NewSnapshot([]model.Element{
		{ID: "root", Children: []string{"a", "ghost"}},
		{ID: "a", Parent: "root", Children: []string{"b"}, Position: pos(1, 0, 0)},
		{ID: "b", Parent: "a", Children: []string{"a"}, Position: pos(1, 0, 0)},
		{ID: "orphan", Parent: "gone", Position: pos(5, 0, 0)},
		{ID: "c1", Parent: "c2", Children: []string{"c2"}},
		{ID: "c2", Parent: "c1", Children: []string{"c1"}},
	})
	res := Resolve(snap)

	if got := res.Positions["b"]; got != (model.Vec3{X: 2}) {
		t.Errorf("b = %v, want {2 0 0}", got)
	}
	if got := res.Positions["orphan"]; got != (model.Vec3{X: 5}) {
		t.Errorf("orphan = %v, want {5 0 0}", got)
	}
	if _, ok := res.Positions["c1"]; ok {
		t.Error("cycle-only elements should not be placed")
	}

	want := []Issue{
		{Kind: IssueCycle, ID: "b", Ref: "a"},
		{Kind: IssueMissingChild, ID: "root", Ref: "ghost"},
		{Kind: IssueDanglingParent, ID: "orphan", Ref: "gone"},
		{Kind: IssueUnreachable, ID: "c1"},
		{Kind: IssueUnreachable, ID: "c2"},
	}
	if !slices.Equal(res.Issues, want) {
		t.Errorf("Issues =\n%v\nwant\n%v", res.Issues, want)
	}
	if _, ok := Absolute(snap, "c1"); ok {
		t.Error("Absolute on a parent loop should report false")
	}
}

func TestResolveSharedChild(t *testing.T) {
	snap := model.NewSnapshot([]model.Element{
		{ID: "p1", Children: []string{"x"}, Position: pos(1, 0, 0)},
		{ID: "p2", Children: []string{"x"}, Position: pos(2, 0, 0)},
		{ID: "x", Parent: "p1"},
	})
	res := Resolve(snap)
	if got := res.Positions["x"]; got != (model.Vec3{X: 1}) {
		t.Errorf("x = %v, want first placement {1 0 0}", got)
	}
	if len(res.Issues) != 1 || res.Issues[0].Kind != IssueSharedChild {
		t.Errorf("Issues = %v", res.Issues)
	}
}

func TestIssueString(t *testing.T) {
	if got := (Issue{Kind: IssueMissingChild, ID: "a", Ref: "b"}).String(); got != "missing child: a -> b" {
		t.Errorf("String() = %q", got)
	}
	if got := (Issue{Kind: IssueUnreachable, ID: "a"}).String(); got != "unreachable: a" {
		t.Errorf("String() = %q", got)
	}
}
