package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/matzehuels/diagramview/pkg/diagram"
)

// diagnosticModel shows a failed render: the engine message above the raw
// markup, verbatim and scrollable. It never renders or rewrites the markup;
// long lines are only broken for display.
type diagnosticModel struct {
	d      *diagram.Diagnostic
	source viewport.Model
	width  int
}

func newDiagnosticModel() diagnosticModel {
	return diagnosticModel{source: viewport.New(0, 0)}
}

func (m *diagnosticModel) set(d *diagram.Diagnostic, width, height int) {
	m.d = d
	m.setSize(width, height)
	if d != nil {
		m.source.GotoTop()
	}
}

func (m *diagnosticModel) setSize(width, height int) {
	m.width = width
	frameW, frameH := styleSourceBox.GetFrameSize()
	m.source.Width = max(1, width-frameW)
	m.source.Height = max(1, height-frameH-m.headerHeight())
	if m.d != nil {
		m.source.SetContent(ansi.Hardwrap(m.d.Source, m.source.Width, true))
	}
}

func (m diagnosticModel) headerHeight() int {
	return lipgloss.Height(m.header())
}

func (m diagnosticModel) header() string {
	msg := ""
	if m.d != nil {
		msg = m.d.Message
	}
	return styleError.Render(iconError+" Could not render diagram") + "\n" +
		lipgloss.NewStyle().Width(max(1, m.width)).Foreground(colorGray).Render(msg) + "\n" +
		styleDim.Render("Raw markup (press c to copy):")
}

func (m *diagnosticModel) scroll(k string) {
	switch k {
	case "pgup", "b":
		m.source.ViewUp()
	case "pgdown", " ":
		m.source.ViewDown()
	case "up", "k":
		m.source.LineUp(1)
	case "down", "j":
		m.source.LineDown(1)
	}
}

func (m diagnosticModel) view() string {
	if m.d == nil {
		return ""
	}
	return strings.Join([]string{m.header(), styleSourceBox.Render(m.source.View())}, "\n")
}
