// Package viewport implements the pan/zoom transform applied to a rendered
// diagram.
//
// A [Transform] is expressed relative to the fitted placement: scale 1 with
// zero offset shows the whole artifact centered in the viewport, whatever the
// two sizes are. [Project] turns a transform into a concrete mapping between
// viewport and artifact coordinates. The controller never touches the
// artifact itself.
package viewport

import "math"

// Scale bounds and zoom step.
const (
	MinScale = 0.5
	MaxScale = 4.0

	// ZoomStep is the relative change applied by one ZoomIn or ZoomOut.
	ZoomStep = 0.1
)

// Transform is a scale factor and a translation in viewport units.
type Transform struct {
	Scale float64
	X, Y  float64
}

// Default returns the centered, fully visible, scale-1 transform.
func Default() Transform {
	return Transform{Scale: 1}
}

// IsDefault reports whether t equals [Default].
func (t Transform) IsDefault() bool {
	return t == Default()
}

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Controller holds the transform for the currently installed artifact.
// It is not safe for concurrent use; hosts drive it from their event loop.
type Controller struct {
	t       Transform
	content Size
}

// New returns a controller at the default transform.
func New() *Controller {
	return &Controller{t: Default()}
}

// Install records the size of a newly installed artifact and resets the
// transform.
func (c *Controller) Install(content Size) {
	c.content = content
	c.t = Default()
}

// Content returns the size recorded by the last Install.
func (c *Controller) Content() Size {
	return c.content
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform {
	return c.t
}

// ZoomIn enlarges the artifact by one step, up to MaxScale.
func (c *Controller) ZoomIn() {
	c.zoomTo(c.t.Scale * (1 + ZoomStep))
}

// ZoomOut shrinks the artifact by one step, down to MinScale.
func (c *Controller) ZoomOut() {
	c.zoomTo(c.t.Scale / (1 + ZoomStep))
}

// zoomTo changes the scale around the viewport center, keeping the point
// under the center fixed.
func (c *Controller) zoomTo(scale float64) {
	scale = clamp(scale, MinScale, MaxScale)
	if c.t.Scale == 0 {
		c.t.Scale = 1
	}
	ratio := scale / c.t.Scale
	c.t.X *= ratio
	c.t.Y *= ratio
	c.t.Scale = scale
}

// ResetToFit restores the centered, fully visible placement.
func (c *Controller) ResetToFit() {
	c.t = Default()
}

// Pan moves the artifact by (dx, dy) viewport units. Translation is not
// clamped; the artifact may leave the viewport entirely.
func (c *Controller) Pan(dx, dy float64) {
	c.t.X += dx
	c.t.Y += dy
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
