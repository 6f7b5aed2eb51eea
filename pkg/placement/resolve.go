package placement

import (
	"fmt"

	"github.com/matzehuels/bimtower/pkg/model"
)

// IssueKind classifies a structural anomaly found during resolution.
type IssueKind int

const (
	// IssueCycle: following children led back to an element on the
	// current path. The repeated edge is not followed.
	IssueCycle IssueKind = iota
	// IssueMissingChild: a children list names an id that does not exist.
	IssueMissingChild
	// IssueDanglingParent: an element's parent id does not exist. The
	// element is treated as a root.
	IssueDanglingParent
	// IssueSharedChild: an element was reached a second time through a
	// different parent. It keeps its first placement.
	IssueSharedChild
	// IssueUnreachable: an element is not reachable from any root, which
	// only happens for elements trapped in a cycle.
	IssueUnreachable
)

var issueNames = [...]string{
	IssueCycle:          "cycle",
	IssueMissingChild:   "missing child",
	IssueDanglingParent: "dangling parent",
	IssueSharedChild:    "shared child",
	IssueUnreachable:    "unreachable",
}

func (k IssueKind) String() string {
	if k < 0 || int(k) >= len(issueNames) {
		return "unknown"
	}
	return issueNames[k]
}

// Issue is one anomaly. ID is the element being processed; Ref is the
// other id involved (child, parent), if any.
type Issue struct {
	Kind IssueKind
	ID   string
	Ref  string
}

func (i Issue) String() string {
	if i.Ref == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.ID)
	}
	return fmt.Sprintf("%s: %s -> %s", i.Kind, i.ID, i.Ref)
}

// Result is the outcome of [Resolve].
type Result struct {
	// Positions maps every reachable element id to its absolute position.
	Positions map[string]model.Vec3
	// Order lists reachable ids in depth-first pre-order: roots in
	// registration order, children in their stored order.
	Order []string
	// Depth is the distance from the element's root (roots are 0).
	Depth map[string]int
	// Issues lists anomalies in the order they were found.
	Issues []Issue
}

// Position returns the absolute position of id.
func (r *Result) Position(id string) (model.Vec3, bool) {
	p, ok := r.Positions[id]
	return p, ok
}

// Resolve computes absolute positions for every element reachable from a
// root. An empty or nil snapshot yields an empty result.
func Resolve(snap *model.Snapshot) *Result {
	res := &Result{
		Positions: make(map[string]model.Vec3),
		Depth:     make(map[string]int),
	}
	if snap == nil || snap.Len() == 0 {
		return res
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, snap.Len())

	var visit func(id string, base model.Vec3, depth int)
	visit = func(id string, base model.Vec3, depth int) {
		e, _ := snap.Get(id)
		abs := base.Add(e.LocalPosition())
		color[id] = gray
		res.Positions[id] = abs
		res.Depth[id] = depth
		res.Order = append(res.Order, id)

		for _, c := range e.Children {
			if !snap.Has(c) {
				res.Issues = append(res.Issues, Issue{Kind: IssueMissingChild, ID: id, Ref: c})
				continue
			}
			switch color[c] {
			case gray:
				res.Issues = append(res.Issues, Issue{Kind: IssueCycle, ID: id, Ref: c})
			case black:
				res.Issues = append(res.Issues, Issue{Kind: IssueSharedChild, ID: id, Ref: c})
			default:
				visit(c, abs, depth+1)
			}
		}
		color[id] = black
	}

	for _, id := range snap.Roots() {
		e, _ := snap.Get(id)
		if e.Parent != "" {
			res.Issues = append(res.Issues, Issue{Kind: IssueDanglingParent, ID: id, Ref: e.Parent})
		}
		if color[id] == white {
			visit(id, model.Vec3{}, 0)
		}
	}

	for _, id := range snap.IDs() {
		if color[id] == white {
			res.Issues = append(res.Issues, Issue{Kind: IssueUnreachable, ID: id})
		}
	}
	return res
}

// Absolute returns the absolute position of a single element by walking
// its parent chain. It reports false when id is unknown or when the chain
// loops before reaching a root.
func Absolute(snap *model.Snapshot, id string) (model.Vec3, bool) {
	if snap == nil || !snap.Has(id) {
		return model.Vec3{}, false
	}
	var pos model.Vec3
	seen := make(map[string]bool)
	for cur := id; cur != ""; {
		if seen[cur] {
			return model.Vec3{}, false
		}
		seen[cur] = true
		e, ok := snap.Get(cur)
		if !ok {
			// Dangling parent: the previous element is a root.
			break
		}
		pos = pos.Add(e.LocalPosition())
		cur = e.Parent
	}
	return pos, true
}
