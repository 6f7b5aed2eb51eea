package model

import "strings"

// Kind is the closed set of element types bimtower understands. Types that
// do not parse to a known kind map to [KindProxy] and keep their raw type
// string for display and export.
type Kind int

const (
	KindProxy Kind = iota
	KindProject
	KindSite
	KindBuilding
	KindBuildingStorey
	KindSpace
	KindWall
	KindWallStandardCase
	KindCurtainWall
	KindSlab
	KindColumn
	KindBeam
	KindRoof
	KindWindow
	KindDoor
	KindOpening
	KindFooting
	KindPile
	KindStair
	KindRamp
	KindCovering
	KindFurniture
)

var kindNames = [...]string{
	KindProxy:            "BuildingElementProxy",
	KindProject:          "Project",
	KindSite:             "Site",
	KindBuilding:         "Building",
	KindBuildingStorey:   "BuildingStorey",
	KindSpace:            "Space",
	KindWall:             "Wall",
	KindWallStandardCase: "WallStandardCase",
	KindCurtainWall:      "CurtainWall",
	KindSlab:             "Slab",
	KindColumn:           "Column",
	KindBeam:             "Beam",
	KindRoof:             "Roof",
	KindWindow:           "Window",
	KindDoor:             "Door",
	KindOpening:          "OpeningElement",
	KindFooting:          "Footing",
	KindPile:             "Pile",
	KindStair:            "Stair",
	KindRamp:             "Ramp",
	KindCovering:         "Covering",
	KindFurniture:        "Furniture",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames)+4)
	for k, name := range kindNames {
		m[strings.ToLower(name)] = Kind(k)
	}
	// Common aliases.
	m["storey"] = KindBuildingStorey
	m["story"] = KindBuildingStorey
	m["opening"] = KindOpening
	m["furnishingelement"] = KindFurniture
	delete(m, "buildingelementproxy")
	return m
}()

// String returns the kind's type name without the "Ifc" prefix.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindProxy]
	}
	return kindNames[k]
}

// ParseKind maps an element type string to a Kind. Matching is
// case-insensitive and an optional "Ifc" prefix is ignored, so "IfcWall",
// "Wall" and "wall" all yield [KindWall]. Anything else is [KindProxy].
func ParseKind(typ string) Kind {
	s := strings.ToLower(strings.TrimSpace(typ))
	if k, ok := kindByName[s]; ok {
		return k
	}
	if rest, ok := strings.CutPrefix(s, "ifc"); ok {
		if k, ok := kindByName[rest]; ok {
			return k
		}
	}
	return KindProxy
}

// IsSpatial reports whether the kind is a spatial container (project,
// site, building, storey or space) rather than a physical element.
func (k Kind) IsSpatial() bool {
	switch k {
	case KindProject, KindSite, KindBuilding, KindBuildingStorey, KindSpace:
		return true
	}
	return false
}

// Kinds returns every known kind except [KindProxy], in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames)-1)
	for k := KindProject; int(k) < len(kindNames); k++ {
		out = append(out, k)
	}
	return out
}
