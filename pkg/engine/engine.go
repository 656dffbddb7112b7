package engine

import (
	"context"
	"image"

	"github.com/google/uuid"
)

// Engine names accepted by configuration.
const (
	NameGraphviz = "graphviz"
	NameMermaid  = "mermaid"
)

// Engine renders markup into a visual artifact.
//
// Render must be called with a fresh id per attempt. Implementations must be
// safe to call from multiple goroutines; calls may be serialized internally.
type Engine interface {
	// Name identifies the engine in logs and status output.
	Name() string

	// Render converts markup into an artifact or fails with the engine's
	// diagnostic.
	Render(ctx context.Context, id, markup string) (*Rendered, error)

	// Close releases engine resources.
	Close() error
}

// Rendered is the output of a single successful render.
type Rendered struct {
	// SVG is the self-contained vector artifact.
	SVG []byte

	// Width and Height are the intrinsic size of the artifact in CSS pixels.
	Width, Height float64

	// Preview is an optional raster of the artifact, used by hosts that
	// cannot display vector output (terminals). Nil when unavailable.
	Preview image.Image
}

// NewID returns a fresh diagram identifier that is safe to use as a DOM id.
func NewID() string {
	return "diagram-" + uuid.NewString()
}
