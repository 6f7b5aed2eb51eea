// Package scene is the rendering adapter: it combines placement and
// geometry into a flat, ordered list of drawable items and renders that
// list to several outputs.
//
// # Overview
//
// [Build] takes a [model.Snapshot], resolves absolute positions with
// [placement.Resolve], maps each element to a [geometry.Primitive], and
// returns a [Scene] whose items are in depth-first traversal order. An
// external 3-D engine can consume the scene directly (see [RenderJSON]);
// the engine owns camera, lighting and lifecycle.
//
// # Outputs
//
//   - [RenderJSON]: the scene as JSON for web viewers
//   - [RenderPlanSVG]: a 2-D drawing, top-down plan or isometric view
//   - [ToDOT] / [RenderHierarchySVG]: the containment tree as a Graphviz
//     node-link diagram
//   - [ToPDF] / [ToPNG]: conversion of any SVG output
//
// # Dependencies
//
// Hierarchy diagrams use [github.com/goccy/go-graphviz] in process. PDF and
// PNG conversion requires librsvg (rsvg-convert).
package scene
