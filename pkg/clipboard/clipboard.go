// Package clipboard places text on the user's clipboard.
//
// Terminal hosts use [OSC52], which asks the terminal emulator to set the
// system clipboard through an escape sequence and therefore also works over
// SSH. [Memory] keeps the last copied text and serves tests and hosts without
// a terminal.
package clipboard

import (
	"io"
	"os"
	"sync"

	"github.com/aymanbagabas/go-osc52/v2"

	"github.com/matzehuels/diagramview/pkg/errors"
)

// Clipboard receives copied text.
type Clipboard interface {
	Copy(text string) error
}

// OSC52 writes OSC 52 escape sequences to a terminal.
type OSC52 struct {
	w    io.Writer
	mode osc52.Mode
}

// NewOSC52 returns a clipboard writing to w (os.Stderr when nil). Inside
// tmux or screen the sequence is wrapped so it reaches the outer terminal.
func NewOSC52(w io.Writer) *OSC52 {
	if w == nil {
		w = os.Stderr
	}
	mode := osc52.DefaultMode
	switch {
	case os.Getenv("TMUX") != "":
		mode = osc52.TmuxMode
	case os.Getenv("STY") != "":
		mode = osc52.ScreenMode
	}
	return &OSC52{w: w, mode: mode}
}

// Copy implements [Clipboard]. The text is sent byte-for-byte.
func (c *OSC52) Copy(text string) error {
	seq := osc52.New(text).Mode(c.mode)
	if _, err := seq.WriteTo(c.w); err != nil {
		return errors.Wrap(errors.ErrCodeClipboard, err, "write clipboard sequence")
	}
	return nil
}

// Memory is an in-process clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
	n    int
}

// Copy implements [Clipboard].
func (m *Memory) Copy(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.n++
	return nil
}

// Text returns the last copied text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Count returns how many times Copy was called.
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.n
}

// Ensure implementations satisfy Clipboard.
var (
	_ Clipboard = (*OSC52)(nil)
	_ Clipboard = (*Memory)(nil)
)
