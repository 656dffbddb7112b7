package cli

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/diagramview/internal/tui"
	"github.com/matzehuels/diagramview/pkg/clipboard"
	"github.com/matzehuels/diagramview/pkg/diagram"
	"github.com/matzehuels/diagramview/pkg/observability"
)

type viewOpts struct {
	engine   engineFlags
	watch    bool
	interval time.Duration
	logFile  string
}

// viewCommand creates the interactive viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view [file|-]",
		Short: "Render markup and explore it in the terminal",
		Long: `Render diagram markup and show it in an interactive terminal viewer.

Keys:
  +/-          zoom in/out
  0            reset to fit
  arrows/hjkl  pan (or drag with the mouse)
  r            reload the file
  w            toggle watching the file for changes
  c            copy the markup when it failed to render
  q            quit

Reads standard input when no file or "-" is given.`,
		Example: `  # View a Graphviz file and reload it whenever it changes
  diagramview view graph.dot --watch

  # View Mermaid markup from a pipe
  cat flow.mmd | diagramview view -e mermaid`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), argOrStdin(args), opts)
		},
	}

	opts.engine.register(cmd)
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render when the file changes")
	cmd.Flags().DurationVar(&opts.interval, "watch-interval", 0, "file polling interval (0 keeps the configured value)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file while the viewer runs")

	return cmd
}

func (c *CLI) runView(ctx context.Context, arg string, opts viewOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg, err = opts.engine.apply(cfg); err != nil {
		return err
	}
	if opts.interval > 0 {
		cfg.Viewer.WatchInterval = opts.interval
	}

	src, fromStdin, err := openSource(arg, os.Stdin)
	if err != nil {
		return err
	}

	logger, closeLog, err := c.viewLogger(opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	if c.Logger.GetLevel() <= log.DebugLevel {
		observability.SetRenderHooks(logHooks{logger})
		observability.SetViewHooks(logHooks{logger})
	}

	eng, err := c.startEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctrl := diagram.New(eng,
		diagram.WithLogger(logger),
		diagram.WithTimeout(cfg.Engine.Timeout),
		diagram.WithErrorHandler(func(d diagram.Diagnostic) {
			logger.Warn("render failed", "err", d.Message)
		}),
	)

	model := tui.New(ctx, tui.Options{
		Source:        src,
		Controller:    ctrl,
		Clipboard:     clipboard.NewOSC52(os.Stderr),
		Logger:        logger,
		Watch:         opts.watch && !fromStdin,
		WatchInterval: cfg.Viewer.WatchInterval,
		Background:    backgroundColor(cfg),
	})

	progOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}
	if fromStdin {
		// Markup came through the pipe; keys come from the terminal.
		progOpts = append(progOpts, tea.WithInputTTY())
	}

	if _, err := tea.NewProgram(model, progOpts...).Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// viewLogger returns the logger used while the alternate screen is active.
// Without a log file, output is discarded.
func (c *CLI) viewLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return newLogger(io.Discard, c.Logger.GetLevel()), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f, c.Logger.GetLevel()), func() { _ = f.Close() }, nil
}

// backgroundColor returns the theme background for canvas cells, or nil
// when it is a named color.
func backgroundColor(cfg Config) color.Color {
	if bg, ok := parseHexColor(cfg.EngineConfig().Theme.Background); ok {
		return bg
	}
	return nil
}
