package model

import (
	"io"
	"reflect"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger used to report ignored mutations. The default
// logger discards everything.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithInvariantChecks makes the store run [Store.Validate] after every
// applied mutation and log any violation at error level.
func WithInvariantChecks() Option {
	return func(s *Store) { s.checks = true }
}

// Store is the id-keyed element registry. The zero value is not usable;
// create one with [New] or [Builder.Build].
type Store struct {
	mu       sync.RWMutex
	elements map[string]*Element
	order    []string // registration order
	frozen   bool
	checks   bool
	logger   *log.Logger
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		elements: make(map[string]*Element),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers e. It is a no-op when e.ID is empty, already registered, or
// the store is frozen. Incoming Children are ignored; if e.Parent names a
// registered element the new element is linked under it, otherwise the
// parent reference is dropped. Add reports whether e was registered.
func (s *Store) Add(e Element) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.writable("add", e.ID) {
		return false
	}
	if e.ID == "" {
		s.logger.Debug("ignoring element without id", "type", e.Type)
		return false
	}
	if _, ok := s.elements[e.ID]; ok {
		s.logger.Debug("element already registered", "id", e.ID)
		return false
	}

	stored := e.Clone()
	stored.Children = nil
	stored.Parent = ""
	s.elements[e.ID] = &stored
	s.order = append(s.order, e.ID)

	if e.Parent != "" {
		if _, ok := s.elements[e.Parent]; ok && e.Parent != e.ID {
			s.link(e.Parent, e.ID)
		} else {
			s.logger.Debug("dropping unknown parent", "id", e.ID, "parent", e.Parent)
		}
	}
	s.check("add")
	return true
}

// Update applies p to the element with the given id. Only supplied fields
// change. It reports whether the element exists and the store is writable.
func (s *Store) Update(id string, p Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.writable("update", id) {
		return false
	}
	e, ok := s.elements[id]
	if !ok {
		s.logger.Debug("update of unknown element", "id", id)
		return false
	}
	for k, v := range p.Properties {
		if v == nil {
			delete(e.Properties, k)
			continue
		}
		e.Properties[k] = v
	}
	if p.Position != nil {
		pos := *p.Position
		e.Position = &pos
	}
	if p.Dimensions != nil {
		dims := *p.Dimensions
		e.Dimensions = &dims
	}
	s.check("update")
	return true
}

// Remove deletes the element with the given id. The element is detached
// from its parent's children and its own children are orphaned: their
// parent is cleared and they become roots. It reports whether anything was
// removed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.writable("remove", id) {
		return false
	}
	e, ok := s.elements[id]
	if !ok {
		s.logger.Debug("remove of unknown element", "id", id)
		return false
	}
	for _, c := range e.Children {
		if child, ok := s.elements[c]; ok && child.Parent == id {
			child.Parent = ""
		}
	}
	s.delete(e)
	s.check("remove")
	return true
}

// RemoveSubtree deletes the element with the given id and every element
// reachable through its children. It returns the number of elements removed.
func (s *Store) RemoveSubtree(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.writable("remove subtree", id) {
		return 0
	}
	root, ok := s.elements[id]
	if !ok {
		s.logger.Debug("remove of unknown element", "id", id)
		return 0
	}

	var doomed []*Element
	seen := map[string]bool{}
	stack := []*Element{root}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		doomed = append(doomed, e)
		for _, c := range e.Children {
			if child, ok := s.elements[c]; ok {
				stack = append(stack, child)
			}
		}
	}
	for _, e := range doomed {
		s.delete(e)
	}
	s.check("remove subtree")
	return len(doomed)
}

// delete unregisters e and detaches it from its parent. Callers hold mu.
func (s *Store) delete(e *Element) {
	if p, ok := s.elements[e.Parent]; ok {
		p.Children = slices.DeleteFunc(p.Children, func(c string) bool { return c == e.ID })
	}
	delete(s.elements, e.ID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == e.ID })
}

// Get returns a copy of the element with the given id.
func (s *Store) Get(id string) (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elements[id]
	if !ok {
		return Element{}, false
	}
	return e.Clone(), true
}

// Link appends childID to parentID's children and sets the child's parent.
// Both must exist and differ. Linking an existing pair is a no-op. A child
// that already has another parent is moved: it is removed from the old
// parent's children first. Link reports whether anything changed.
func (s *Store) Link(parentID, childID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.writable("link", childID) {
		return false
	}
	if parentID == childID {
		s.logger.Debug("ignoring self link", "id", childID)
		return false
	}
	if _, ok := s.elements[parentID]; !ok {
		s.logger.Debug("link to unknown parent", "parent", parentID, "child", childID)
		return false
	}
	if _, ok := s.elements[childID]; !ok {
		s.logger.Debug("link of unknown child", "parent", parentID, "child", childID)
		return false
	}
	changed := s.link(parentID, childID)
	if changed {
		s.check("link")
	}
	return changed
}

// link connects both sides of a parent/child pair. Callers hold mu and have
// checked that both ids exist.
func (s *Store) link(parentID, childID string) bool {
	parent, child := s.elements[parentID], s.elements[childID]
	if child.Parent == parentID && slices.Contains(parent.Children, childID) {
		s.logger.Debug("link already present", "parent", parentID, "child", childID)
		return false
	}
	if old, ok := s.elements[child.Parent]; ok && child.Parent != parentID {
		old.Children = slices.DeleteFunc(old.Children, func(c string) bool { return c == childID })
	}
	if !slices.Contains(parent.Children, childID) {
		parent.Children = append(parent.Children, childID)
	}
	child.Parent = parentID
	return true
}

// Unlink detaches childID from its parent, making it a root. It reports
// whether the child had a parent.
func (s *Store) Unlink(childID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.writable("unlink", childID) {
		return false
	}
	child, ok := s.elements[childID]
	if !ok || child.Parent == "" {
		return false
	}
	if p, ok := s.elements[child.Parent]; ok {
		p.Children = slices.DeleteFunc(p.Children, func(c string) bool { return c == childID })
	}
	child.Parent = ""
	s.check("unlink")
	return true
}

// Len returns the number of registered elements.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

// IDs returns all element ids in registration order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Roots returns the ids of elements whose parent is unset or unknown, in
// registration order.
func (s *Store) Roots() []string {
	return s.Snapshot().Roots()
}

// Freeze makes the store read-only. Subsequent mutations are logged no-ops.
func (s *Store) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

// Frozen reports whether the store has been frozen.
func (s *Store) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Snapshot returns an immutable deep copy of the store's current state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elems := make(map[string]Element, len(s.elements))
	for id, e := range s.elements {
		elems[id] = e.Clone()
	}
	return &Snapshot{elements: elems, order: slices.Clone(s.order)}
}

// Validate checks link consistency and reports dangling references and
// cycles. See [Snapshot.Validate].
func (s *Store) Validate() error {
	return s.Snapshot().Validate()
}

func (s *Store) writable(op, id string) bool {
	if s.frozen {
		s.logger.Debug("ignoring mutation of frozen store", "op", op, "id", id)
		return false
	}
	return true
}

// check runs the invariant checks when enabled. Callers hold mu.
func (s *Store) check(op string) {
	if !s.checks {
		return
	}
	elems := make(map[string]Element, len(s.elements))
	for id, e := range s.elements {
		elems[id] = *e
	}
	snap := &Snapshot{elements: elems, order: s.order}
	if err := snap.Validate(); err != nil {
		s.logger.Error("store invariant violated", "op", op, "err", err)
	}
}

// Snapshot is an immutable view of a store. All accessors return copies.
type Snapshot struct {
	elements map[string]Element
	order    []string
}

// NewSnapshot builds a snapshot from elements as given, without enforcing
// link consistency. It exists for consumers that receive element sets from
// outside a [Store]; the first occurrence of a duplicate id wins.
func NewSnapshot(elements []Element) *Snapshot {
	snap := &Snapshot{elements: make(map[string]Element, len(elements))}
	for _, e := range elements {
		if e.ID == "" {
			continue
		}
		if _, ok := snap.elements[e.ID]; ok {
			continue
		}
		snap.elements[e.ID] = e.Clone()
		snap.order = append(snap.order, e.ID)
	}
	return snap
}

// Len returns the number of elements.
func (s *Snapshot) Len() int { return len(s.order) }

// IDs returns element ids in registration order.
func (s *Snapshot) IDs() []string { return slices.Clone(s.order) }

// Get returns a copy of the element with the given id.
func (s *Snapshot) Get(id string) (Element, bool) {
	e, ok := s.elements[id]
	if !ok {
		return Element{}, false
	}
	return e.Clone(), true
}

// Has reports whether id is present.
func (s *Snapshot) Has(id string) bool {
	_, ok := s.elements[id]
	return ok
}

// Elements returns copies of all elements in registration order.
func (s *Snapshot) Elements() []Element {
	out := make([]Element, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.elements[id].Clone())
	}
	return out
}

// Roots returns the ids of elements whose parent is unset or not present,
// in registration order.
func (s *Snapshot) Roots() []string {
	var roots []string
	for _, id := range s.order {
		p := s.elements[id].Parent
		if _, ok := s.elements[p]; p == "" || !ok {
			roots = append(roots, id)
		}
	}
	return roots
}

// Children returns the child ids of id as stored, including ids that are
// not present in the snapshot.
func (s *Snapshot) Children(id string) []string {
	return slices.Clone(s.elements[id].Children)
}

// Types returns the number of elements per raw type string.
func (s *Snapshot) Types() map[string]int {
	counts := make(map[string]int)
	for _, e := range s.elements {
		counts[e.Type]++
	}
	return counts
}

// Equal reports whether two snapshots hold the same elements in the same
// registration order.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if !slices.Equal(s.order, o.order) {
		return false
	}
	for id, a := range s.elements {
		b, ok := o.elements[id]
		if !ok || !elementsEqual(a, b) {
			return false
		}
	}
	return true
}

func elementsEqual(a, b Element) bool {
	if a.ID != b.ID || a.Type != b.Type || a.Parent != b.Parent {
		return false
	}
	if !slices.Equal(a.Children, b.Children) {
		return false
	}
	if (a.Position == nil) != (b.Position == nil) || (a.Position != nil && *a.Position != *b.Position) {
		return false
	}
	if (a.Dimensions == nil) != (b.Dimensions == nil) || (a.Dimensions != nil && *a.Dimensions != *b.Dimensions) {
		return false
	}
	return reflect.DeepEqual(a.Properties, b.Properties)
}
