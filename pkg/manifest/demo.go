package manifest

import "github.com/matzehuels/bimtower/pkg/model"

func at(x, y, z float64) *model.Vec3 { return &model.Vec3{X: x, Y: y, Z: z} }

func size(w, h, d float64) *model.Dimensions {
	return &model.Dimensions{Width: w, Height: h, Depth: d}
}

// Demos lists the bundled demo documents by name.
var Demos = map[string]func() *Document{
	"simple-house": SimpleHouse,
	"two-storey":   DemoBuilding,
}

// SimpleHouse returns a one-room house: four walls with a door and a
// window on a strip footing.
func SimpleHouse() *Document {
	return &Document{
		Name: "Simple house",
		Elements: []Node{{
			ID: "project", Type: "IfcProject", Name: "Simple house",
			Children: []Node{{
				ID: "site", Type: "IfcSite",
				Children: []Node{{
					ID: "building", Type: "IfcBuilding",
					Children: []Node{{
						ID: "storey", Type: "IfcBuildingStorey",
						Children: []Node{
							{ID: "north-wall", Type: "IfcWall", Position: at(0, 0, 0), Dimensions: size(4, 3, 0.2)},
							{ID: "south-wall", Type: "IfcWall", Position: at(0, 0, 4), Dimensions: size(4, 3, 0.2),
								Children: []Node{
									{ID: "main-door", Type: "IfcDoor", Position: at(1, 0, 0), Dimensions: size(0.8, 2, 0.2)},
								}},
							{ID: "east-wall", Type: "IfcWall", Position: at(2, 0, 2), Dimensions: size(0.2, 3, 4),
								Children: []Node{
									{ID: "east-window", Type: "IfcWindow", Position: at(0, 1, 1), Dimensions: size(0.2, 1, 1)},
								}},
							{ID: "west-wall", Type: "IfcWall", Position: at(-2, 0, 2), Dimensions: size(0.2, 3, 4)},
							{ID: "foundation", Type: "IfcFooting", Position: at(0, -0.25, 2), Dimensions: size(4, 0.5, 4)},
						},
					}},
				}},
			}},
		}},
	}
}

// DemoBuilding returns a two-storey building with slabs, rooms, walls,
// openings, columns and a roof. Ids are generated.
func DemoBuilding() *Document {
	wall := func(name string, pos *model.Vec3, dims *model.Dimensions, children ...Node) Node {
		return Node{Type: "IfcWall", Name: name, Position: pos, Dimensions: dims,
			Properties: map[string]any{"is_external": true}, Children: children}
	}
	window := func(name string, pos *model.Vec3, dims *model.Dimensions) Node {
		return Node{Type: "IfcWindow", Name: name, Position: pos, Dimensions: dims,
			Properties: map[string]any{"glazing": "DOUBLE"}}
	}
	column := func(name string, x, z float64) Node {
		return Node{Type: "IfcColumn", Name: name, Position: at(x, 0, z), Dimensions: size(0.3, 3, 0.3),
			Properties: map[string]any{"profile": "RECTANGULAR"}}
	}

	ground := Node{
		Type: "IfcBuildingStorey", Name: "Ground floor", Position: at(0, 0, 0),
		Properties: map[string]any{"elevation": 0.0},
		Children: []Node{
			{Type: "IfcSlab", Name: "Ground slab", Position: at(0, 0, 0), Dimensions: size(20, 0.3, 15),
				Properties: map[string]any{"type": "FLOOR"}},
			{Type: "IfcSpace", Name: "Living room", Position: at(5, 0, 5), Dimensions: size(10, 3, 8),
				Properties: map[string]any{"usage": "LIVING"},
				Children: []Node{
					wall("North wall", at(0, 0, 0), size(10, 3, 0.2)),
					wall("East wall", at(10, 0, 4), size(0.2, 3, 8),
						window("East window", at(0, 1, 3), size(0.2, 1.2, 1.5))),
					wall("South wall", at(5, 0, 8), size(10, 3, 0.2),
						Node{Type: "IfcDoor", Name: "Front door", Position: at(5, 0, 0), Dimensions: size(1, 2.1, 0.2),
							Properties: map[string]any{"operation": "SINGLE_SWING"}}),
					wall("West wall", at(0, 0, 4), size(0.2, 3, 8),
						window("West window", at(0, 1, 3), size(0.2, 1.2, 1.5))),
				}},
			column("Column A1", 0, 0),
			column("Column A2", 20, 0),
			column("Column B1", 0, 15),
			column("Column B2", 20, 15),
		},
	}
	upper := Node{
		Type: "IfcBuildingStorey", Name: "First floor", Position: at(0, 3.3, 0),
		Properties: map[string]any{"elevation": 3.3},
		Children: []Node{
			{Type: "IfcSlab", Name: "First floor slab", Position: at(0, 0, 0), Dimensions: size(20, 0.3, 15),
				Properties: map[string]any{"type": "FLOOR"}},
			{Type: "IfcSpace", Name: "Bedroom", Position: at(5, 0, 5), Dimensions: size(8, 3, 6),
				Properties: map[string]any{"usage": "SLEEPING"},
				Children: []Node{
					wall("North wall 2", at(0, 0, 0), size(8, 3, 0.2),
						window("North window", at(4, 1, 0), size(1.5, 1.2, 0.2))),
				}},
			{Type: "IfcRoof", Name: "Main roof", Position: at(0, 3, 0), Dimensions: size(20, 1.5, 15),
				Properties: map[string]any{"type": "GABLE"}},
		},
	}

	return &Document{
		Name: "Demo building",
		Elements: []Node{{
			Type: "IfcSite", Name: "Construction site", Position: at(0, 0, 0),
			Properties: map[string]any{"address": "Example street 1"},
			Children: []Node{{
				Type: "IfcBuilding", Name: "Main building", Position: at(10, 0, 10), Dimensions: size(20, 8, 15),
				Properties: map[string]any{"type": "OFFICE"},
				Children:   []Node{ground, upper},
			}},
		}},
	}
}
