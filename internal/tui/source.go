package tui

import (
	"fmt"
	"os"
	"time"
)

// Source supplies markup to the viewer.
type Source interface {
	// Name is shown in the header.
	Name() string

	// Load returns the current markup.
	Load() (string, error)

	// ModTime reports when the markup last changed. Sources that cannot
	// change return the zero time.
	ModTime() (time.Time, error)
}

// FileSource reads markup from a file on every Load.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.Path, err)
	}
	return string(data), nil
}

func (s FileSource) ModTime() (time.Time, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// StaticSource serves markup captured once, e.g. from stdin.
type StaticSource struct {
	Label  string
	Markup string
}

func (s StaticSource) Name() string                { return s.Label }
func (s StaticSource) Load() (string, error)       { return s.Markup, nil }
func (s StaticSource) ModTime() (time.Time, error) { return time.Time{}, nil }
