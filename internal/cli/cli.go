package cli

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/diagramview/pkg/buildinfo"
	"github.com/matzehuels/diagramview/pkg/engine"
	"github.com/matzehuels/diagramview/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "diagramview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the persistent --config flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
// At debug level the render and view hooks log every lifecycle event.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.SetRenderHooks(logHooks{c.Logger})
		observability.SetViewHooks(logHooks{c.Logger})
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Diagramview renders diagram markup and lets you explore it",
		Long:         `Diagramview renders textual diagram markup (Graphviz DOT or Mermaid) into SVG and shows it in an interactive terminal viewer with zoom and pan. Markup that fails to render is shown verbatim alongside the error.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/diagramview/config.toml)")

	root.AddCommand(c.viewCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Engine Factory
// =============================================================================

// newEngine starts the engine named in cfg.
func newEngine(ctx context.Context, cfg Config) (engine.Engine, error) {
	var (
		eng engine.Engine
		err error
	)
	switch cfg.Engine.Name {
	case engine.NameGraphviz:
		eng, err = engine.NewGraphviz(ctx, cfg.EngineConfig())
	case engine.NameMermaid:
		eng, err = engine.NewMermaid(ctx, cfg.EngineConfig(), cfg.Mermaid)
	default:
		return nil, fmt.Errorf("unknown engine %q (want %s or %s)", cfg.Engine.Name, engine.NameGraphviz, engine.NameMermaid)
	}
	if err != nil {
		return nil, err
	}
	return eng, nil
}

// startEngine starts the configured engine behind a spinner.
// The mermaid engine launches a browser and can take a few seconds.
func (c *CLI) startEngine(ctx context.Context, cfg Config) (engine.Engine, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Starting %s engine...", cfg.Engine.Name))
	spinner.Start()
	prog := newProgress(c.Logger)
	eng, err := newEngine(ctx, cfg)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	prog.done("Engine " + eng.Name() + " ready")
	return eng, nil
}

// =============================================================================
// Color Helpers
// =============================================================================

// parseHexColor converts #rgb, #rrggbb or #rrggbbaa into a color.
// Named colors are not resolved and yield ok=false.
func parseHexColor(s string) (color.Color, bool) {
	hex, found := strings.CutPrefix(s, "#")
	if !found {
		return nil, false
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return nil, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, false
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}
