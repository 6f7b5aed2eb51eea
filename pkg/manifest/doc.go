// Package manifest reads and writes building description files.
//
// A manifest describes a building as a tree of elements in TOML or JSON.
// Children may be nested, or listed flat with an explicit parent id:
//
//	name = "Simple house"
//
//	[[elements]]
//	type = "IfcSite"
//	id = "site"
//
//	  [[elements.children]]
//	  type = "IfcBuilding"
//	  name = "House"
//	  position = { x = 10, y = 0, z = 10 }
//
//	[[elements]]
//	type = "IfcWall"
//	parent = "storey-1"
//	dimensions = { width = 4, height = 3, depth = 0.2 }
//
// [Build] turns a [Document] into a frozen [model.Store]. Elements are
// registered in document pre-order, which becomes the export order.
// Elements without an id get a deterministic one derived from their place
// in the document, so the same file always yields the same ids.
//
// Unlike the store itself, the loader is strict: duplicate ids, invalid
// ids and unknown parents are reported as errors because they indicate a
// mistake in a user-authored file.
package manifest
