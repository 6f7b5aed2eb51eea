package pipeline

import (
	"github.com/matzehuels/bimtower/pkg/placement"
	"github.com/matzehuels/bimtower/pkg/scene"
)

// Report summarizes a model for the inspect and validate commands.
type Report struct {
	Name     string            `json:"name"`
	Hash     string            `json:"hash"`
	Elements int               `json:"elements"`
	Types    map[string]int    `json:"types"`
	Roots    []string          `json:"roots"`
	MaxDepth int               `json:"max_depth"`
	Bounds   *scene.Bounds     `json:"bounds,omitempty"`
	Issues   []placement.Issue `json:"-"`
	Problems []string          `json:"problems,omitempty"`

	// Scene is the resolved scene the report was computed from.
	Scene *scene.Scene `json:"-"`
}

// OK reports whether the model has no structural problems or placement
// issues.
func (r *Report) OK() bool {
	return len(r.Problems) == 0 && len(r.Issues) == 0
}

// Inspect resolves the model and reports its structure, store invariant
// violations and placement issues.
func (r *Runner) Inspect(m *Model) *Report {
	sc := scene.Build(m.Snapshot)
	rep := &Report{
		Name:     m.Name,
		Hash:     m.Hash,
		Elements: m.Snapshot.Len(),
		Types:    m.Snapshot.Types(),
		Roots:    m.Snapshot.Roots(),
		Issues:   sc.Issues,
		Scene:    sc,
	}
	for _, it := range sc.Items {
		rep.MaxDepth = max(rep.MaxDepth, it.Depth)
	}
	if !sc.Bounds.Empty() {
		b := sc.Bounds
		rep.Bounds = &b
	}
	for _, is := range sc.Issues {
		rep.Problems = append(rep.Problems, is.String())
	}
	if err := m.Snapshot.Validate(); err != nil {
		rep.Problems = append(rep.Problems, flatten(err)...)
	}
	return rep
}

func flatten(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
