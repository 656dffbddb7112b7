package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diagramview/pkg/diagram"
	"github.com/matzehuels/diagramview/pkg/errors"
)

type renderOpts struct {
	engine engineFlags
	output string
}

// renderCommand creates the one-shot render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render markup to an SVG file",
		Long: `Render diagram markup once and write the SVG.

When the markup fails to render, the error is printed together with the
markup exactly as given and the command exits with a non-zero status.`,
		Example: `  diagramview render graph.dot -o graph.svg
  echo 'graph TD; A-->B' | diagramview render -e mermaid -o flow.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), argOrStdin(args), opts)
		},
	}

	opts.engine.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, arg string, opts renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg, err = opts.engine.apply(cfg); err != nil {
		return err
	}
	// The raster preview is only used by the viewer.
	cfg.Engine.Preview = false

	src, _, err := openSource(arg, os.Stdin)
	if err != nil {
		return err
	}
	markup, err := src.Load()
	if err != nil {
		return err
	}
	if err := errors.ValidateMarkup(markup); err != nil {
		return err
	}
	if diagram.IsEmptyMarkup(markup) {
		return errors.New(errors.ErrCodeInvalidInput, "%s: no markup to render", src.Name())
	}

	eng, err := c.startEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctrl := diagram.New(eng, diagram.WithLogger(loggerFromContext(ctx)), diagram.WithTimeout(cfg.Engine.Timeout))

	spinner := newSpinnerWithContext(ctx, "Rendering "+src.Name()+"...")
	spinner.Start()
	st := ctrl.Run(ctx, markup)
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if st.Phase != diagram.PhaseReady {
		printDiagnostic(os.Stderr, st.Diagnostic)
		return fmt.Errorf("render %s failed", src.Name())
	}

	if err := writeArtifact(opts.output, st.Artifact); err != nil {
		return err
	}
	if opts.output != "" {
		printSuccess("Rendered %s", src.Name())
		printFile(opts.output)
		printArtifactStats(eng.Name(), st.Artifact, st.Duration)
	}
	return nil
}

// writeArtifact writes the SVG to path, or stdout when path is empty.
func writeArtifact(path string, a *diagram.Artifact) error {
	if path == "" {
		_, err := os.Stdout.Write(a.SVG)
		return err
	}
	if err := os.WriteFile(path, a.SVG, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// printDiagnostic prints the failure message followed by the markup that
// produced it, unmodified.
func printDiagnostic(w io.Writer, d *diagram.Diagnostic) {
	if d == nil {
		return
	}
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+d.Message)
	fmt.Fprintln(w)
	fmt.Fprint(w, d.Source)
	if !strings.HasSuffix(d.Source, "\n") {
		fmt.Fprintln(w)
	}
}

// printArtifactStats prints engine, size and timing on a single line.
func printArtifactStats(engineName string, a *diagram.Artifact, d time.Duration) {
	parts := []string{
		engineName,
		fmt.Sprintf("%.0f×%.0f", a.Width, a.Height),
		formatBytes(len(a.SVG)),
		d.Round(time.Millisecond).String(),
	}
	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Println(line)
}

// formatBytes renders n as B, KB or MB.
func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
