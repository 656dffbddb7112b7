// Package pkg provides the core libraries for Diagramview diagram rendering.
//
// # Overview
//
// Diagramview turns textual diagram markup (Graphviz DOT, Mermaid) into SVG
// and keeps a per-diagram render lifecycle: the newest markup always wins,
// results of older renders are discarded, and a failed render is reported
// together with the exact markup that produced it. The pkg directory is
// organized into these areas:
//
//  1. [engine] - Rendering engines (markup → SVG plus optional raster preview)
//  2. [diagram] - Render lifecycle and presentation selection
//  3. [viewport] - Zoom and pan transform over a rendered artifact
//  4. [clipboard] - Copying raw markup out of the terminal
//  5. [errors] and [observability] - Shared error codes and event hooks
//
// # Architecture
//
// The typical data flow through Diagramview:
//
//	markup
//	   ↓
//	[diagram.Controller.Submit] (tag with a token, enter Rendering)
//	   ↓
//	[engine.Engine.Render] (SVG, size, preview)
//	   ↓
//	[diagram.Controller.Settle] (drop if stale, install viewport)
//	   ↓
//	[diagram.Select] → placeholder | viewport | diagnostic
//
// # Quick Start
//
//	eng, _ := engine.NewGraphviz(ctx, engine.DefaultConfig())
//	defer eng.Close()
//
//	ctrl := diagram.New(eng)
//	st := ctrl.Run(ctx, "digraph { A -> B }")
//
//	switch p := diagram.Select(st); p.View {
//	case diagram.ViewViewport:
//	    os.WriteFile("out.svg", p.Artifact.SVG, 0o644)
//	case diagram.ViewDiagnostic:
//	    fmt.Println(p.Diagnostic.Message)
//	    fmt.Println(p.Diagnostic.Source)
//	}
//
// Hosts that render asynchronously call Submit and Render themselves and
// hand each result back through Settle; see internal/tui for a bubbletea
// host and internal/server for an HTTP one.
//
// [engine]: https://pkg.go.dev/github.com/matzehuels/diagramview/pkg/engine
// [diagram]: https://pkg.go.dev/github.com/matzehuels/diagramview/pkg/diagram
// [viewport]: https://pkg.go.dev/github.com/matzehuels/diagramview/pkg/viewport
// [clipboard]: https://pkg.go.dev/github.com/matzehuels/diagramview/pkg/clipboard
// [errors]: https://pkg.go.dev/github.com/matzehuels/diagramview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/diagramview/pkg/observability
package pkg
