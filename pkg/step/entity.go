package step

import (
	"strings"

	"github.com/matzehuels/bimtower/pkg/geometry"
	"github.com/matzehuels/bimtower/pkg/model"
)

// entity is the resolved input of one DATA line.
type entity struct {
	el   model.Element
	kind model.Kind
	name string
	pos  model.Vec3
	dims model.Dimensions
}

// template renders the keyword and ordered argument list for a kind.
type template struct {
	keyword string
	args    func(e entity) []string
}

// Argument shapes per keyword. Every shape starts with the element id, the
// unset owner history and the display name.
var templates = map[model.Kind]template{
	model.KindSite: {"IFCSITE", func(e entity) []string {
		return join(head(e), repeat(7), xyz(e), repeat(1))
	}},
	model.KindBuilding: {"IFCBUILDING", func(e entity) []string {
		return join(head(e), repeat(5), xyz(e), repeat(2))
	}},
	model.KindBuildingStorey: {"IFCBUILDINGSTOREY", func(e entity) []string {
		return join(head(e), repeat(5), []string{Real(e.pos.Y)}, repeat(1))
	}},
	model.KindWall:             {"IFCWALL", wallArgs},
	model.KindWallStandardCase: {"IFCWALLSTANDARDCASE", wallArgs},
	model.KindCurtainWall:      {"IFCCURTAINWALL", wallArgs},
	model.KindSpace:            {"IFCSPACE", wallArgs},
	model.KindRoof:             {"IFCROOF", wallArgs},
	model.KindBeam:             {"IFCBEAM", wallArgs},
	model.KindFooting:          {"IFCFOOTING", wallArgs},
	model.KindSlab: {"IFCSLAB", func(e entity) []string {
		return join(head(e), repeat(2), xyz(e), repeat(1),
			[]string{Real(e.dims.Width), Real(e.dims.Depth), Real(e.dims.Height), slabType(e.el.Properties)})
	}},
	model.KindWindow: {"IFCWINDOW", openingArgs},
	model.KindDoor:   {"IFCDOOR", openingArgs},
	model.KindColumn: {"IFCCOLUMN", func(e entity) []string {
		return join(head(e), repeat(2), xyz(e), []string{Real(e.dims.Height), Real(e.dims.Width)})
	}},
}

// proxy is used for every kind without a template. The raw type string
// takes the place of the name.
var proxy = template{"IFCBUILDINGELEMENTPROXY", func(e entity) []string {
	typ := e.el.Type
	if typ == "" {
		typ = e.kind.String()
	}
	return join([]string{String(e.el.ID), unset, String(typ)}, repeat(2), xyz(e), repeat(3))
}}

func templateFor(k model.Kind) template {
	if t, ok := templates[k]; ok {
		return t
	}
	return proxy
}

func wallArgs(e entity) []string {
	return join(head(e), repeat(2), xyz(e),
		[]string{Real(e.dims.Height), Real(e.dims.Width), Real(e.dims.Depth)}, repeat(1))
}

func openingArgs(e entity) []string {
	return join(head(e), repeat(2), xyz(e),
		[]string{Real(e.dims.Height), Real(e.dims.Width)}, repeat(2))
}

func head(e entity) []string {
	return []string{String(e.el.ID), unset, String(e.name)}
}

func xyz(e entity) []string {
	return []string{Real(e.pos.X), Real(e.pos.Y), Real(e.pos.Z)}
}

func repeat(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = unset
	}
	return out
}

func join(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// slabType returns the slab's predefined type as a STEP enumeration,
// FLOOR unless the "type" property names another one.
func slabType(p model.Properties) string {
	t := strings.ToUpper(text(p["type"]))
	t = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return -1
	}, t)
	if t == "" {
		t = "FLOOR"
	}
	return "." + t + "."
}

// newEntity resolves names and dimensions for e. pos is the coordinate to
// write, local or absolute depending on the export options.
func newEntity(e model.Element, pos model.Vec3) entity {
	k := e.Kind()
	name := e.Kind().String()
	if n := text(e.Properties["name"]); n != "" {
		name = n
	} else if k == model.KindProxy && e.Type != "" {
		name = e.Type
	}
	return entity{
		el:   e,
		kind: k,
		name: name,
		pos:  pos,
		dims: geometry.ResolveDimensions(k, e.Dimensions),
	}
}
