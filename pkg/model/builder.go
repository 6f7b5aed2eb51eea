package model

// Builder collects elements for two-phase registration: every element and
// link is recorded first, then [Builder.Build] produces a frozen [Store].
// Links are applied after all elements exist, so children may be added
// before their parents.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	elements []Element
	links    [][2]string
	opts     []Option
}

// NewBuilder creates an empty builder. The options are passed to the
// resulting store.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{opts: opts}
}

// Add records e. A non-empty parentID records a link from parentID to e.ID;
// e.Parent is used when parentID is empty.
func (b *Builder) Add(e Element, parentID string) *Builder {
	if parentID == "" {
		parentID = e.Parent
	}
	e = e.Clone()
	e.Parent = ""
	e.Children = nil
	b.elements = append(b.elements, e)
	if parentID != "" {
		b.links = append(b.links, [2]string{parentID, e.ID})
	}
	return b
}

// Link records a parent/child link.
func (b *Builder) Link(parentID, childID string) *Builder {
	b.links = append(b.links, [2]string{parentID, childID})
	return b
}

// Len returns the number of recorded elements.
func (b *Builder) Len() int { return len(b.elements) }

// Build registers all recorded elements in order, applies all links, and
// returns the frozen store. Invalid entries are skipped exactly as the
// store's own mutators would skip them.
func (b *Builder) Build() *Store {
	s := New(b.opts...)
	for _, e := range b.elements {
		s.Add(e)
	}
	for _, l := range b.links {
		s.Link(l[0], l[1])
	}
	s.Freeze()
	return s
}
