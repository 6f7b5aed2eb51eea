package scene

import (
	"encoding/json"

	"github.com/matzehuels/bimtower/pkg/geometry"
	"github.com/matzehuels/bimtower/pkg/model"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	properties bool
	containers bool
	compact    bool
}

// WithJSONProperties includes each element's free-form properties.
func WithJSONProperties() JSONOption { return func(r *jsonRenderer) { r.properties = true } }

// WithJSONSolidsOnly leaves out container items (building, storey, space)
// that are drawn as wireframes.
func WithJSONSolidsOnly() JSONOption { return func(r *jsonRenderer) { r.containers = false } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Bounds *jsonBounds `json:"bounds,omitempty"`
	Items  []jsonItem  `json:"items"`
	Issues []jsonIssue `json:"issues,omitempty"`
}

type jsonBounds struct {
	Min model.Vec3 `json:"min"`
	Max model.Vec3 `json:"max"`
}

type jsonItem struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Kind       string             `json:"kind"`
	Name       string             `json:"name"`
	Parent     string             `json:"parent,omitempty"`
	Depth      int                `json:"depth"`
	Position   model.Vec3         `json:"position"`
	Center     model.Vec3         `json:"center"`
	Primitive  geometry.Primitive `json:"primitive"`
	Properties model.Properties   `json:"properties,omitempty"`
}

type jsonIssue struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Ref  string `json:"ref,omitempty"`
}

// RenderJSON exports the scene for an external 3-D viewer. Items keep
// traversal order, so parents always precede their children. Positions
// are absolute.
//
// RenderJSON returns an error only if JSON marshaling fails, which cannot
// happen unless properties hold unsupported values.
func RenderJSON(sc *Scene, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{containers: true}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Items: make([]jsonItem, 0, len(sc.Items))}
	if !sc.Bounds.Empty() {
		out.Bounds = &jsonBounds{Min: sc.Bounds.Min, Max: sc.Bounds.Max}
	}
	for _, it := range sc.Items {
		if !r.containers && !it.Solid() {
			continue
		}
		ji := jsonItem{
			ID:        it.ID,
			Type:      it.Type,
			Kind:      it.Kind.String(),
			Name:      it.Name,
			Parent:    it.Parent,
			Depth:     it.Depth,
			Position:  it.Absolute,
			Center:    it.Center,
			Primitive: it.Primitive,
		}
		if r.properties && len(it.Properties) > 0 {
			ji.Properties = it.Properties
		}
		out.Items = append(out.Items, ji)
	}
	for _, is := range sc.Issues {
		out.Issues = append(out.Issues, jsonIssue{Kind: is.Kind.String(), ID: is.ID, Ref: is.Ref})
	}

	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
