package geometry

import "github.com/matzehuels/bimtower/pkg/model"

// Site extents used when the element does not describe a real site area.
const (
	SiteWidth     = 100.0
	SiteDepth     = 100.0
	SiteHeight    = 0.1
	siteMinExtent = 10.0
)

// Column profile defaults.
const (
	ColumnRadius = 0.15
	ColumnHeight = 3.0
)

var unit = model.Dimensions{Width: 1, Height: 1, Depth: 1}

var defaults = map[model.Kind]model.Dimensions{
	model.KindWall:             {Width: 1, Height: 3, Depth: 0.3},
	model.KindWallStandardCase: {Width: 1, Height: 3, Depth: 0.3},
	model.KindCurtainWall:      {Width: 1, Height: 3, Depth: 0.1},
	model.KindWindow:           {Width: 1.2, Height: 1.2, Depth: 0.1},
	model.KindDoor:             {Width: 1, Height: 2.1, Depth: 0.1},
	model.KindSlab:             {Width: 5, Height: 0.3, Depth: 5},
	model.KindRoof:             {Width: 5, Height: 0.2, Depth: 5},
	model.KindColumn:           {Width: 2 * ColumnRadius, Height: ColumnHeight, Depth: 2 * ColumnRadius},
	model.KindBeam:             {Width: 4, Height: 0.4, Depth: 0.2},
	model.KindFooting:          {Width: 1, Height: 0.5, Depth: 1},
	model.KindSite:             {Width: SiteWidth, Height: SiteHeight, Depth: SiteDepth},
}

// Defaults returns the default dimensions for k. Kinds without an entry
// default to a unit cube.
func Defaults(k model.Kind) model.Dimensions {
	if d, ok := defaults[k]; ok {
		return d
	}
	return unit
}

// ResolveDimensions fills absent components of dims (nil, zero or
// negative) from the defaults for k.
//
// Sites are special: their own extent is only used when both width and
// depth exceed 10; otherwise the site is drawn as a 100 x 0.1 x 100 ground
// plane. The site height is always SiteHeight.
func ResolveDimensions(k model.Kind, dims *model.Dimensions) model.Dimensions {
	def := Defaults(k)
	if k == model.KindSite {
		if dims != nil && dims.Width > siteMinExtent && dims.Depth > siteMinExtent {
			return model.Dimensions{Width: dims.Width, Height: SiteHeight, Depth: dims.Depth}
		}
		return def
	}
	if dims == nil {
		return def
	}
	return model.Dimensions{
		Width:  pick(dims.Width, def.Width),
		Height: pick(dims.Height, def.Height),
		Depth:  pick(dims.Depth, def.Depth),
	}
}

func pick(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
