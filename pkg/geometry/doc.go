// Package geometry maps element kinds and dimensions to renderable
// primitive descriptors.
//
// The per-kind default dimensions live in one table ([Defaults]) shared
// with the exchange exporter, so a wall without dimensions is 1 x 3 x 0.3
// in both the 3-D scene and the exported file.
//
// Mapping is a pure function of (kind, dimensions): it never fails and
// unknown kinds get a unit box.
package geometry
