package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Fit      key.Binding
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Copy     key.Binding
	Reload   key.Binding
	Watch    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Fit:      key.NewBinding(key.WithKeys("0", "f"), key.WithHelp("0", "fit")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan")),
		Copy:     key.NewBinding(key.WithKeys("c", "y"), key.WithHelp("c", "copy markup")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "re-render")),
		Watch:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watch")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "scroll")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", " "), key.WithHelp("pgdn", "scroll")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// hints returns the bindings worth showing for the current view.
func (k keyMap) hints(diagnostic bool) []key.Binding {
	if diagnostic {
		return []key.Binding{k.Copy, k.PageDown, k.Reload, k.Watch, k.Quit}
	}
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Fit, k.Left, k.Reload, k.Watch, k.Quit}
}
