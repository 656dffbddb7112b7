package diagram

import (
	"fmt"
	"image"
	"strings"
	"time"
)

// Token identifies one render attempt. Tokens increase monotonically per
// controller; zero is never issued.
type Token uint64

// Phase is the active view state.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseRendering
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseRendering:
		return "rendering"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsEmptyMarkup reports whether markup carries no diagram.
func IsEmptyMarkup(markup string) bool {
	return strings.TrimSpace(markup) == ""
}

// Artifact is the visual output of the last successful render.
type Artifact struct {
	ID            string
	Source        string
	SVG           []byte
	Width, Height float64
	Preview       image.Image
}

// Diagnostic describes a failed render together with the markup that
// produced it.
type Diagnostic struct {
	Message string
	Source  string
	Err     error
}

// Request is one issued render attempt.
type Request struct {
	Token  Token
	ID     string
	Markup string
}

// Result is the outcome of a [Request]. Exactly one of Artifact and
// Diagnostic is set.
type Result struct {
	Token      Token
	Artifact   *Artifact
	Diagnostic *Diagnostic
	Duration   time.Duration
}

// OK reports whether the render succeeded.
func (r Result) OK() bool {
	return r.Artifact != nil
}

// State is a snapshot of the controller's view state.
//
// While rendering, Artifact and Diagnostic keep whatever the previous
// settled state held so hosts can keep presenting it; Settled records which
// of them is current.
type State struct {
	Phase      Phase
	Source     string
	Token      Token
	Artifact   *Artifact
	Diagnostic *Diagnostic

	// Settled is the phase of the last applied result (PhaseEmpty if none).
	Settled Phase

	// Duration is how long the last applied render took.
	Duration time.Duration
}

// String implements fmt.Stringer for log output.
func (s State) String() string {
	return fmt.Sprintf("%s#%d", s.Phase, s.Token)
}
