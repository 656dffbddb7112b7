// Package tui hosts a diagram in a terminal: it feeds markup into a
// diagram.Controller from the bubbletea event loop, paints the rendered
// artifact in a pannable, zoomable viewport, and falls back to a
// diagnostic view with the raw markup when rendering fails.
package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagramview/pkg/clipboard"
	"github.com/matzehuels/diagramview/pkg/diagram"
	"github.com/matzehuels/diagramview/pkg/observability"
)

const (
	panStepCols = 4
	panStepRows = 2

	defaultWatchInterval = time.Second
)

// Options configures a [Model].
type Options struct {
	Source        Source
	Controller    *diagram.Controller
	Clipboard     clipboard.Clipboard
	Logger        *log.Logger
	Watch         bool
	WatchInterval time.Duration

	// Background fills canvas cells outside the artifact.
	Background color.Color
}

// Model is the bubbletea model of the viewer.
type Model struct {
	ctx    context.Context
	src    Source
	ctrl   *diagram.Controller
	clip   clipboard.Clipboard
	logger *log.Logger
	keys   keyMap

	spinner spinner.Model
	diag    diagnosticModel

	width, height int
	bg            color.Color

	watch         bool
	watchInterval time.Duration
	lastMod       time.Time

	dragging     bool
	dragX, dragY int

	status    string
	statusErr bool
	loadErr   error
}

// New creates the viewer model. ctx bounds engine calls.
func New(ctx context.Context, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleSpinner

	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.NewOSC52(nil)
	}
	if opts.WatchInterval <= 0 {
		opts.WatchInterval = defaultWatchInterval
	}
	if opts.Background == nil {
		opts.Background = color.White
	}

	return Model{
		ctx:           ctx,
		src:           opts.Source,
		ctrl:          opts.Controller,
		clip:          opts.Clipboard,
		logger:        opts.Logger,
		keys:          defaultKeyMap(),
		spinner:       sp,
		diag:          newDiagnosticModel(),
		width:         80,
		height:        24,
		bg:            opts.Background,
		watch:         opts.Watch,
		watchInterval: opts.WatchInterval,
	}
}

// =============================================================================
// Messages
// =============================================================================

type loadedMsg struct {
	markup  string
	modTime time.Time
	err     error
}

type settledMsg struct {
	result diagram.Result
}

type watchTickMsg struct{}

type copiedMsg struct {
	size int
	err  error
}

// =============================================================================
// Commands
// =============================================================================

func (m Model) loadCmd() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		markup, err := src.Load()
		if err != nil {
			return loadedMsg{err: err}
		}
		mod, _ := src.ModTime()
		return loadedMsg{markup: markup, modTime: mod}
	}
}

func (m Model) renderCmd(req diagram.Request) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return settledMsg{result: ctrl.Render(ctx, req)}
	}
}

func (m Model) watchCmd() tea.Cmd {
	return tea.Tick(m.watchInterval, func(time.Time) tea.Msg { return watchTickMsg{} })
}

func (m Model) copyCmd(text string) tea.Cmd {
	clip := m.clip
	return func() tea.Msg {
		return copiedMsg{size: len(text), err: clip.Copy(text)}
	}
}

// =============================================================================
// bubbletea
// =============================================================================

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd(), m.spinner.Tick}
	if m.watch {
		cmds = append(cmds, m.watchCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.diag.setSize(m.width, m.bodyHeight())
		return m, nil

	case loadedMsg:
		return m.submit(msg)

	case settledMsg:
		if m.ctrl.Settle(msg.result) {
			m.diag.set(m.ctrl.State().Diagnostic, m.width, m.bodyHeight())
			if msg.result.OK() {
				m.setStatus(fmt.Sprintf("%s rendered in %s", iconSuccess, msg.result.Duration.Round(time.Millisecond)), false)
			} else {
				m.setStatus(iconError+" render failed", true)
			}
		}
		return m, nil

	case watchTickMsg:
		if !m.watch {
			return m, nil
		}
		mod, err := m.src.ModTime()
		if err == nil && !mod.IsZero() && mod.After(m.lastMod) {
			return m, tea.Batch(m.loadCmd(), m.watchCmd())
		}
		return m, m.watchCmd()

	case copiedMsg:
		observability.View().OnCopy(m.ctx, msg.size, msg.err)
		if msg.err != nil {
			m.logger.Warn("copy failed", "err", msg.err)
			m.setStatus(iconError+" copy failed: "+msg.err.Error(), true)
		} else {
			m.setStatus(fmt.Sprintf("%s copied %d bytes of markup to the clipboard", iconSuccess, msg.size), false)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) submit(msg loadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.loadErr = msg.err
		m.logger.Error("load markup", "source", m.src.Name(), "err", msg.err)
		m.setStatus(iconError+" "+msg.err.Error(), true)
		return m, nil
	}
	m.loadErr = nil
	m.lastMod = msg.modTime

	req, ok := m.ctrl.Submit(msg.markup)
	if !ok {
		m.diag.set(nil, m.width, m.bodyHeight())
		m.setStatus("", false)
		return m, nil
	}
	m.setStatus("", false)
	return m, m.renderCmd(req)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := diagram.Select(m.ctrl.State())
	vp := m.ctrl.Viewport()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reload):
		return m, m.loadCmd()
	case key.Matches(msg, m.keys.Watch):
		m.watch = !m.watch
		if m.watch {
			m.setStatus("watching "+m.src.Name(), false)
			return m, m.watchCmd()
		}
		m.setStatus("stopped watching", false)
		return m, nil
	}

	if p.View == diagram.ViewDiagnostic {
		switch {
		case key.Matches(msg, m.keys.Copy):
			return m, m.copyCmd(p.Diagnostic.Source)
		case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.Up):
			m.diag.scroll(msg.String())
		case key.Matches(msg, m.keys.PageDown), key.Matches(msg, m.keys.Down):
			m.diag.scroll(msg.String())
		}
		return m, nil
	}

	if p.View != diagram.ViewViewport {
		return m, nil
	}

	action := ""
	switch {
	case key.Matches(msg, m.keys.ZoomIn):
		vp.ZoomIn()
		action = "zoom-in"
	case key.Matches(msg, m.keys.ZoomOut):
		vp.ZoomOut()
		action = "zoom-out"
	case key.Matches(msg, m.keys.Fit):
		vp.ResetToFit()
		action = "fit"
	case key.Matches(msg, m.keys.Left):
		vp.Pan(panStepCols, 0)
		action = "pan"
	case key.Matches(msg, m.keys.Right):
		vp.Pan(-panStepCols, 0)
		action = "pan"
	case key.Matches(msg, m.keys.Up):
		vp.Pan(0, panStepRows*2)
		action = "pan"
	case key.Matches(msg, m.keys.Down):
		vp.Pan(0, -panStepRows*2)
		action = "pan"
	}
	if action != "" {
		observability.View().OnViewportChange(m.ctx, action, vp.Transform().Scale)
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if diagram.Select(m.ctrl.State()).View != diagram.ViewViewport {
		return m, nil
	}
	vp := m.ctrl.Viewport()

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		vp.ZoomIn()
	case msg.Button == tea.MouseButtonWheelDown:
		vp.ZoomOut()
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.dragging, m.dragX, m.dragY = true, msg.X, msg.Y
	case msg.Action == tea.MouseActionMotion && m.dragging:
		vp.Pan(float64(msg.X-m.dragX), float64((msg.Y-m.dragY)*2))
		m.dragX, m.dragY = msg.X, msg.Y
	case msg.Action == tea.MouseActionRelease:
		m.dragging = false
	}
	return m, nil
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

// =============================================================================
// View
// =============================================================================

// bodyHeight is the number of rows between header and status bar.
func (m Model) bodyHeight() int {
	return max(1, m.height-2)
}

func (m Model) View() string {
	st := m.ctrl.State()
	p := diagram.Select(st)

	var body string
	switch p.View {
	case diagram.ViewViewport:
		body = m.viewCanvas(p.Artifact)
	case diagram.ViewDiagnostic:
		body = m.diag.view()
	default:
		body = m.viewPlaceholder()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(st),
		lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body),
		m.viewStatus(p),
	)
}

func (m Model) viewHeader(st diagram.State) string {
	name := "diagram"
	if m.src != nil {
		name = truncate(m.src.Name(), max(8, m.width/2))
	}
	parts := []string{styleTitle.Render(name), styleDim.Render(m.ctrl.Engine().Name())}
	if st.Phase == diagram.PhaseReady || (st.Phase == diagram.PhaseRendering && st.Settled == diagram.PhaseReady) {
		parts = append(parts, styleValue.Render(fmt.Sprintf("%.0f%%", m.ctrl.Viewport().Transform().Scale*100)))
	}
	if m.watch {
		parts = append(parts, styleWarning.Render("watching"))
	}
	return strings.Join(parts, styleDim.Render(" · "))
}

func (m Model) viewCanvas(a *diagram.Artifact) string {
	t := m.ctrl.Viewport().Transform()
	if a.Preview != nil {
		return paintImage(a.Preview, m.width, m.bodyHeight(), t, m.bg)
	}
	return paintText(string(a.SVG), m.width, m.bodyHeight(), t)
}

func (m Model) viewPlaceholder() string {
	msg := "no diagram available"
	if m.loadErr != nil {
		msg = "could not load markup"
	}
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, stylePlaceholder.Render(msg))
}

func (m Model) viewStatus(p diagram.Presentation) string {
	left := ""
	if p.Loading {
		left = m.spinner.View() + styleDim.Render(" rendering… ")
	}
	if m.status != "" {
		if m.statusErr {
			left += styleError.Render(m.status)
		} else {
			left += styleSuccess.Render(m.status)
		}
	}

	var hints []string
	for _, b := range m.keys.hints(p.View == diagram.ViewDiagnostic) {
		h := b.Help()
		hints = append(hints, styleKey.Render(h.Key)+" "+styleDim.Render(h.Desc))
	}
	right := strings.Join(hints, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}
