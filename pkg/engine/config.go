package engine

import (
	"fmt"

	"github.com/matzehuels/diagramview/pkg/errors"
)

// Base palettes.
const (
	PaletteDefault = "default"
	PaletteDark    = "dark"
	PaletteNeutral = "neutral"
	PaletteForest  = "forest"
)

// Security controls whether interactive content survives in the artifact.
type Security string

const (
	// SecurityStrict removes hyperlinks, scripts and event handlers.
	SecurityStrict Security = "strict"

	// SecurityLoose keeps inline interactivity (links, click handlers).
	SecurityLoose Security = "loose"
)

// Theme describes the colors applied to rendered diagrams.
// Empty fields are filled from the Base palette.
type Theme struct {
	Base       string `toml:"base"`
	Primary    string `toml:"primary"`    // node fill
	Secondary  string `toml:"secondary"`  // cluster fill
	Line       string `toml:"line"`       // edges and outlines
	Text       string `toml:"text"`       // labels
	Background string `toml:"background"` // canvas
}

var palettes = map[string]Theme{
	PaletteDefault: {Primary: "#ECECFF", Secondary: "#FFFFDE", Line: "#333333", Text: "#333333", Background: "#FFFFFF"},
	PaletteDark:    {Primary: "#1F2020", Secondary: "#2C2C2C", Line: "#D3D3D3", Text: "#F0F0F0", Background: "#111111"},
	PaletteNeutral: {Primary: "#EEEEEE", Secondary: "#DDDDDD", Line: "#666666", Text: "#222222", Background: "#FFFFFF"},
	PaletteForest:  {Primary: "#CDE498", Secondary: "#CDFFB2", Line: "#13540C", Text: "#000000", Background: "#FFFFFF"},
}

// Palettes returns the names of the built-in base palettes.
func Palettes() []string {
	return []string{PaletteDefault, PaletteDark, PaletteNeutral, PaletteForest}
}

// Config is the process-wide engine configuration.
// It is passed once at engine construction and never mutated afterwards.
type Config struct {
	Theme    Theme    `toml:"theme"`
	Security Security `toml:"security"`

	// Preview requests a raster preview alongside the SVG.
	Preview bool `toml:"preview"`
}

// DefaultConfig returns the configuration used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Theme:    Theme{Base: PaletteDefault},
		Security: SecurityLoose,
		Preview:  true,
	}
}

// WithDefaults returns a copy of c with empty fields filled in.
func (c Config) WithDefaults() Config {
	if c.Theme.Base == "" {
		c.Theme.Base = PaletteDefault
	}
	if c.Security == "" {
		c.Security = SecurityLoose
	}
	base, ok := palettes[c.Theme.Base]
	if !ok {
		return c
	}
	if c.Theme.Primary == "" {
		c.Theme.Primary = base.Primary
	}
	if c.Theme.Secondary == "" {
		c.Theme.Secondary = base.Secondary
	}
	if c.Theme.Line == "" {
		c.Theme.Line = base.Line
	}
	if c.Theme.Text == "" {
		c.Theme.Text = base.Text
	}
	if c.Theme.Background == "" {
		c.Theme.Background = base.Background
	}
	return c
}

// Validate checks a configuration that has had defaults applied.
func (c Config) Validate() error {
	if _, ok := palettes[c.Theme.Base]; !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown base palette %q (want one of %v)", c.Theme.Base, Palettes())
	}
	switch c.Security {
	case SecurityStrict, SecurityLoose:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown security mode %q", c.Security)
	}
	colors := []struct{ name, value string }{
		{"theme.primary", c.Theme.Primary},
		{"theme.secondary", c.Theme.Secondary},
		{"theme.line", c.Theme.Line},
		{"theme.text", c.Theme.Text},
		{"theme.background", c.Theme.Background},
	}
	for _, col := range colors {
		if err := errors.ValidateColor(col.name, col.value); err != nil {
			return err
		}
	}
	return nil
}

// prepare applies defaults and validates, returning the frozen copy.
func (c Config) prepare() (Config, error) {
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("engine config: %w", err)
	}
	return c, nil
}
