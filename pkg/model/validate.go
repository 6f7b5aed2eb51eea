package model

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDanglingChild is reported by [Snapshot.Validate] when an element
	// lists a child id that is not present.
	ErrDanglingChild = errors.New("dangling child reference")

	// ErrDanglingParent is reported when an element's parent id is set but
	// not present. Such elements are treated as roots by every read pass.
	ErrDanglingParent = errors.New("dangling parent reference")

	// ErrLinkMismatch is reported when the two sides of a parent/child link
	// disagree: a child listed by p whose Parent is not p, or an element
	// whose parent does not list it.
	ErrLinkMismatch = errors.New("inconsistent parent/child link")

	// ErrDuplicateChild is reported when a children list names the same id
	// more than once.
	ErrDuplicateChild = errors.New("duplicate child reference")

	// ErrCycle is reported when following children leads back to an
	// element already on the current path. Cycles are detected using
	// depth-first search with white/gray/black coloring.
	ErrCycle = errors.New("containment cycle")
)

// Validate checks the snapshot's structural invariants and returns all
// violations joined into one error, or nil. Individual violations wrap the
// package's sentinel errors and can be matched with [errors.Is].
func (s *Snapshot) Validate() error {
	var errs []error

	for _, id := range s.order {
		e := s.elements[id]
		seen := make(map[string]bool, len(e.Children))
		for _, c := range e.Children {
			if seen[c] {
				errs = append(errs, fmt.Errorf("%w: %s lists %s twice", ErrDuplicateChild, id, c))
				continue
			}
			seen[c] = true
			child, ok := s.elements[c]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrDanglingChild, id, c))
				continue
			}
			if child.Parent != id {
				errs = append(errs, fmt.Errorf("%w: %s lists %s whose parent is %q", ErrLinkMismatch, id, c, child.Parent))
			}
		}
		if e.Parent == "" {
			continue
		}
		parent, ok := s.elements[e.Parent]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrDanglingParent, id, e.Parent))
			continue
		}
		if !slices.Contains(parent.Children, id) {
			errs = append(errs, fmt.Errorf("%w: %s has parent %s which does not list it", ErrLinkMismatch, id, e.Parent))
		}
	}

	if cyc := s.findCycle(); cyc != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrCycle, cyc))
	}
	return errors.Join(errs...)
}

// findCycle returns the ids forming the first containment cycle found, or
// nil if the children relation is acyclic.
func (s *Snapshot) findCycle() []string {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(s.elements))
	var path []string

	var visit func(id string) []string
	visit = func(id string) []string {
		color[id] = gray
		path = append(path, id)
		for _, c := range s.elements[id].Children {
			if _, ok := s.elements[c]; !ok {
				continue
			}
			switch color[c] {
			case gray:
				start := slices.Index(path, c)
				return append(slices.Clone(path[start:]), c)
			case white:
				if cyc := visit(c); cyc != nil {
					return cyc
				}
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return nil
	}

	for _, id := range s.order {
		if color[id] == white {
			if cyc := visit(id); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}
