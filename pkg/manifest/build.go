package manifest

import (
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/bimtower/pkg/errors"
	"github.com/matzehuels/bimtower/pkg/model"
)

// idNamespace seeds the UUIDv5 ids generated for nodes without an id.
var idNamespace = uuid.MustParse("6f1c2c55-3a9e-4c1b-9d59-2b8e6f0a7d41")

// GenerateID returns the deterministic id for a node of the given type at
// path, where path lists the node's index at each nesting level.
func GenerateID(typ string, path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	key := strings.Join(parts, ".") + "/" + typ
	slug := strings.ToLower(model.ParseKind(typ).String())
	return slug + "-" + uuid.NewSHA1(idNamespace, []byte(key)).String()
}

type pending struct {
	el     model.Element
	parent string
}

// Build validates doc and registers its elements in a frozen store. The
// options are passed to the store. All problems found are returned
// together as one INVALID_MANIFEST error.
func Build(doc *Document, opts ...model.Option) (*model.Store, error) {
	var (
		problems []error
		flat     []pending
		seen     = map[string]bool{}
	)

	var walk func(nodes []Node, nestedParent string, path []int)
	walk = func(nodes []Node, nestedParent string, path []int) {
		for i, n := range nodes {
			p := append(path[:len(path):len(path)], i)
			loc := "elements" + pathString(p)

			if strings.TrimSpace(n.Type) == "" {
				problems = append(problems, fmt.Errorf("%s: missing type", loc))
			}
			id := n.ID
			if id == "" {
				id = GenerateID(n.Type, p)
			}
			if err := errors.ValidateElementID(id); err != nil {
				problems = append(problems, fmt.Errorf("%s: %s", loc, errors.UserMessage(err)))
			} else if seen[id] {
				problems = append(problems, fmt.Errorf("%s: duplicate id %q", loc, id))
			}
			seen[id] = true

			if n.Parent != "" && n.Parent == id {
				problems = append(problems, fmt.Errorf("%s: element %q is its own parent", loc, id))
			}
			if nestedParent != "" && n.Parent != "" && n.Parent != nestedParent {
				problems = append(problems, fmt.Errorf("%s: nested under %q but declares parent %q", loc, nestedParent, n.Parent))
			}

			props := maps.Clone(n.Properties)
			if props == nil {
				props = map[string]any{}
			}
			if n.Name != "" {
				props["name"] = n.Name
			}
			parent := nestedParent
			if parent == "" {
				parent = n.Parent
			}
			flat = append(flat, pending{
				el: model.Element{
					ID:         id,
					Type:       n.Type,
					Properties: props,
					Position:   n.Position,
					Dimensions: n.Dimensions,
				},
				parent: parent,
			})
			walk(n.Children, id, p)
		}
	}
	walk(doc.Elements, "", nil)

	b := model.NewBuilder(opts...)
	for _, p := range flat {
		if p.parent != "" && !seen[p.parent] {
			problems = append(problems, fmt.Errorf("element %q: unknown parent %q", p.el.ID, p.parent))
			p.parent = ""
		}
		b.Add(p.el, p.parent)
	}
	if len(problems) > 0 {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, stderrors.Join(problems...), "%d problem(s)", len(problems))
	}

	s := b.Build()
	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid hierarchy")
	}
	return s, nil
}

func pathString(path []int) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 {
			b.WriteString(".children")
		}
		fmt.Fprintf(&b, "[%d]", p)
	}
	return b.String()
}

// FromSnapshot converts a snapshot back into a document. When a
// depth-first walk from the roots visits elements in registration order the
// document is nested; otherwise it is flat, listing every element in
// registration order with its parent, so that building it again yields the
// same order. Elements that are not reachable from any root (trapped in a
// cycle) become top-level elements without children or parent.
func FromSnapshot(snap *model.Snapshot, name string) *Document {
	doc := &Document{Name: name}
	visited := map[string]bool{}
	var order []string

	var node func(id string) Node
	node = func(id string) Node {
		visited[id] = true
		order = append(order, id)
		e, _ := snap.Get(id)
		n := toNode(e)
		for _, c := range e.Children {
			if snap.Has(c) && !visited[c] {
				n.Children = append(n.Children, node(c))
			}
		}
		return n
	}

	for _, id := range snap.Roots() {
		if !visited[id] {
			doc.Elements = append(doc.Elements, node(id))
		}
	}
	reachable := maps.Clone(visited)
	for _, id := range snap.IDs() {
		if !visited[id] {
			visited[id] = true
			order = append(order, id)
			e, _ := snap.Get(id)
			doc.Elements = append(doc.Elements, toNode(e))
		}
	}
	if slices.Equal(order, snap.IDs()) {
		return doc
	}

	doc.Elements = make([]Node, 0, snap.Len())
	for _, e := range snap.Elements() {
		n := toNode(e)
		if reachable[e.ID] && snap.Has(e.Parent) {
			n.Parent = e.Parent
		}
		doc.Elements = append(doc.Elements, n)
	}
	return doc
}

func toNode(e model.Element) Node {
	n := Node{ID: e.ID, Type: e.Type, Position: e.Position, Dimensions: e.Dimensions}
	props := maps.Clone(e.Properties)
	if name, ok := props.Name(); ok {
		n.Name = name
		delete(props, "name")
	}
	if len(props) > 0 {
		n.Properties = props
	}
	return n
}
