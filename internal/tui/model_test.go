package tui

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagramview/pkg/clipboard"
	"github.com/matzehuels/diagramview/pkg/diagram"
	"github.com/matzehuels/diagramview/pkg/engine"
)

type stubEngine struct{}

func (stubEngine) Name() string { return "stub" }
func (stubEngine) Close() error { return nil }

func (stubEngine) Render(_ context.Context, _, markup string) (*engine.Rendered, error) {
	if strings.HasSuffix(markup, "--") {
		return nil, errors.New("Parse error on line 1: expecting 'ARROW'")
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	return &engine.Rendered{SVG: []byte("<svg/>"), Width: 8, Height: 4, Preview: img}, nil
}

func newTestModel(t *testing.T, src Source, clip clipboard.Clipboard) Model {
	t.Helper()
	logger := log.New(io.Discard)
	ctrl := diagram.New(stubEngine{}, diagram.WithLogger(logger))
	m := New(context.Background(), Options{
		Source:     src,
		Controller: ctrl,
		Clipboard:  clip,
		Logger:     logger,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	return next.(Model)
}

// step feeds msg into the model and runs the resulting command once,
// feeding its message back in.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	if out := cmd(); out != nil {
		next, _ = m.Update(out)
		m = next.(Model)
	}
	return m
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelRendersReady(t *testing.T) {
	m := newTestModel(t, StaticSource{Label: "test"}, &clipboard.Memory{})
	m = step(t, m, loadedMsg{markup: "graph TD; A-->B"})

	st := m.ctrl.State()
	if st.Phase != diagram.PhaseReady {
		t.Fatalf("Phase = %v, want ready", st.Phase)
	}
	if !m.ctrl.Viewport().Transform().IsDefault() {
		t.Error("viewport should be at the default transform after install")
	}
	if !strings.Contains(m.View(), halfBlock) {
		t.Error("ready view should paint the preview")
	}
}

func TestModelEmptyShowsPlaceholder(t *testing.T) {
	m := newTestModel(t, StaticSource{Label: "test"}, &clipboard.Memory{})
	m = step(t, m, loadedMsg{markup: ""})

	if !strings.Contains(m.View(), "no diagram available") {
		t.Error("empty markup should show the placeholder")
	}
}

func TestModelDiagnosticAndCopy(t *testing.T) {
	clip := &clipboard.Memory{}
	m := newTestModel(t, StaticSource{Label: "test"}, clip)

	const markup = "graph TD; A--"
	m = step(t, m, loadedMsg{markup: markup})

	if m.ctrl.State().Phase != diagram.PhaseFailed {
		t.Fatalf("Phase = %v, want failed", m.ctrl.State().Phase)
	}
	view := m.View()
	if !strings.Contains(view, markup) {
		t.Errorf("diagnostic view should show the raw markup %q", markup)
	}
	if !strings.Contains(view, "expecting 'ARROW'") {
		t.Error("diagnostic view should show the engine message")
	}

	m = step(t, m, keyPress("c"))
	if clip.Text() != markup {
		t.Errorf("clipboard = %q, want %q", clip.Text(), markup)
	}
	if !strings.Contains(m.status, "copied") {
		t.Errorf("status = %q, want copy confirmation", m.status)
	}
}

func TestModelCopyPreservesWhitespace(t *testing.T) {
	clip := &clipboard.Memory{}
	m := newTestModel(t, StaticSource{Label: "test"}, clip)

	markup := "graph TD;\n\tA -->\n   B --"
	m = step(t, m, loadedMsg{markup: markup})
	step(t, m, keyPress("c"))

	if clip.Text() != markup {
		t.Errorf("clipboard = %q, want exact markup %q", clip.Text(), markup)
	}
}

func TestModelZoomKeys(t *testing.T) {
	m := newTestModel(t, StaticSource{Label: "test"}, &clipboard.Memory{})
	m = step(t, m, loadedMsg{markup: "graph TD; A-->B"})

	for i := 0; i < 50; i++ {
		m = step(t, m, keyPress("+"))
	}
	if s := m.ctrl.Viewport().Transform().Scale; s != 4.0 {
		t.Errorf("scale after zooming in = %v, want 4", s)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = step(t, m, keyPress("0"))
	if !m.ctrl.Viewport().Transform().IsDefault() {
		t.Errorf("fit should restore the default transform, got %+v", m.ctrl.Viewport().Transform())
	}
}

func TestModelDragPans(t *testing.T) {
	m := newTestModel(t, StaticSource{Label: "test"}, &clipboard.Memory{})
	m = step(t, m, loadedMsg{markup: "graph TD; A-->B"})

	m = step(t, m, tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = step(t, m, tea.MouseMsg{X: 15, Y: 7, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = step(t, m, tea.MouseMsg{X: 15, Y: 7, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	got := m.ctrl.Viewport().Transform()
	if got.X != 5 || got.Y != 4 {
		t.Errorf("transform after drag = %+v, want X=5 Y=4", got)
	}
}

func TestModelIgnoresSupersededResult(t *testing.T) {
	m := newTestModel(t, StaticSource{Label: "test"}, &clipboard.Memory{})

	next, slow := m.Update(loadedMsg{markup: "graph TD; A--"})
	m = next.(Model)
	m = step(t, m, loadedMsg{markup: "graph TD; A-->B"})

	next, _ = m.Update(slow())
	m = next.(Model)

	if st := m.ctrl.State(); st.Phase != diagram.PhaseReady || st.Source != "graph TD; A-->B" {
		t.Errorf("state = %v (%q), want ready for the newer markup", st, st.Source)
	}
}

func TestModelReloadResubmits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "d.dot")
	if err := os.WriteFile(path, []byte("graph TD; A--"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := newTestModel(t, FileSource{Path: path}, &clipboard.Memory{})
	m = step(t, m, m.loadCmd()())
	if m.ctrl.State().Phase != diagram.PhaseFailed {
		t.Fatalf("Phase = %v, want failed", m.ctrl.State().Phase)
	}

	if err := os.WriteFile(path, []byte("graph TD; A-->B"), 0o644); err != nil {
		t.Fatal(err)
	}
	next, cmd := m.Update(keyPress("r"))
	m = next.(Model)
	m = step(t, m, cmd())

	if m.ctrl.State().Phase != diagram.PhaseReady {
		t.Errorf("Phase after reload = %v, want ready", m.ctrl.State().Phase)
	}
}

func TestModelLoadError(t *testing.T) {
	m := newTestModel(t, FileSource{Path: filepath.Join(t.TempDir(), "missing.dot")}, &clipboard.Memory{})
	m = step(t, m, m.loadCmd()())

	if m.loadErr == nil {
		t.Fatal("missing file should record a load error")
	}
	if !strings.Contains(m.View(), "could not load markup") {
		t.Error("load error should show in the placeholder")
	}
}
