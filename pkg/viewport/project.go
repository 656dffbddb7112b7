package viewport

import "math"

// Mapping converts between viewport and content coordinates for one
// (view, content, transform) combination.
type Mapping struct {
	// Scale is content units to viewport units: fit factor times Transform.Scale.
	Scale float64

	// OriginX and OriginY locate the content's top-left corner in viewport units.
	OriginX, OriginY float64
}

// Project computes the mapping that places content inside view under t.
//
// At the default transform the content is scaled so that it exactly fits
// the view along its tighter axis, and centered on both axes.
func Project(view, content Size, t Transform) Mapping {
	if view.Empty() || content.Empty() {
		return Mapping{Scale: 1}
	}
	fit := math.Min(view.W/content.W, view.H/content.H)
	s := fit * t.Scale
	return Mapping{
		Scale:   s,
		OriginX: (view.W-content.W*s)/2 + t.X,
		OriginY: (view.H-content.H*s)/2 + t.Y,
	}
}

// ToContent maps a viewport point to content coordinates.
func (m Mapping) ToContent(x, y float64) (float64, float64) {
	return (x - m.OriginX) / m.Scale, (y - m.OriginY) / m.Scale
}

// ToView maps a content point to viewport coordinates.
func (m Mapping) ToView(x, y float64) (float64, float64) {
	return x*m.Scale + m.OriginX, y*m.Scale + m.OriginY
}
