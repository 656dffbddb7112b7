package diagram

// View is the sub-view a host should present.
type View int

const (
	ViewPlaceholder View = iota
	ViewViewport
	ViewDiagnostic
)

func (v View) String() string {
	switch v {
	case ViewPlaceholder:
		return "placeholder"
	case ViewViewport:
		return "viewport"
	case ViewDiagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

// Presentation is the outcome of [Select].
type Presentation struct {
	View       View
	Artifact   *Artifact   // set for ViewViewport
	Diagnostic *Diagnostic // set for ViewDiagnostic

	// Loading is true while a newer render is in flight. Hosts may show a
	// neutral indicator next to the (previous) view.
	Loading bool
}

// Select maps a state to exactly one view.
//
// While rendering, the previously settled view stays selected so the
// display does not flicker; it is replaced in one step when the new result
// is applied.
func Select(s State) Presentation {
	phase := s.Phase
	loading := false
	if phase == PhaseRendering {
		phase = s.Settled
		loading = true
	}

	switch {
	case phase == PhaseReady && s.Artifact != nil:
		return Presentation{View: ViewViewport, Artifact: s.Artifact, Loading: loading}
	case phase == PhaseFailed && s.Diagnostic != nil:
		return Presentation{View: ViewDiagnostic, Diagnostic: s.Diagnostic, Loading: loading}
	default:
		return Presentation{View: ViewPlaceholder, Loading: loading}
	}
}
