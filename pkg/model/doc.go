// Package model provides the element store at the heart of bimtower: a
// registry of building elements keyed by id, linked into a spatial
// containment hierarchy (site, building, storey, wall, ...).
//
// # Overview
//
// Each [Element] carries a type, free-form [Properties], an optional local
// [Vec3] position relative to its parent, optional [Dimensions], and the
// ids of its parent and children. Relationships are stored as ids, never as
// pointers, so the store is the single source of truth for every lookup.
//
// # Basic Usage
//
//	s := model.New()
//	s.Add(model.Element{ID: "site", Type: "IfcSite"})
//	s.Add(model.Element{ID: "w1", Type: "IfcWall", Position: &model.Vec3{X: 2}})
//	s.Link("site", "w1")
//
//	snap := s.Snapshot() // immutable copy for read passes
//
// Mutations never fail. Invalid input (duplicate ids, unknown ids, missing
// link endpoints) is a logged no-op and each mutator reports whether it
// changed anything.
//
// # Link Consistency
//
// For every element p and id c: c is in p.Children exactly when c's Parent
// is p. [Store.Link], [Store.Remove] and [Store.RemoveSubtree] keep both
// sides of every link in sync, and [Store.Validate] reports any violation.
//
// Acyclicity is not enforced; consumers such as the placement resolver
// guard against cycles themselves.
//
// # Concurrency
//
// A [Store] is safe for concurrent use. Writers are serialized; readers take
// a consistent [Snapshot] and never observe a partially applied update.
// [Builder] offers a two-phase alternative: collect elements, then Build a
// frozen store whose mutators are no-ops.
package model
