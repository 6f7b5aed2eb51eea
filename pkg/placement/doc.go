// Package placement resolves absolute element positions from the local
// offsets stored in a [model.Snapshot].
//
// Resolution walks the containment hierarchy depth-first from every root
// (an element whose parent is unset or missing) and accumulates offsets:
// a child's absolute position is its parent's absolute position plus its
// own local position. Positions are additive only; there is no rotation
// or scale.
//
// The walk never fails. Cycles, missing children and elements shared by
// two parents are skipped and reported as [Issue] values, and an element
// is placed at most once.
package placement
