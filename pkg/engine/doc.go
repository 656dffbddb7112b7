// Package engine adapts external markup-to-visual rendering engines.
//
// # Overview
//
// An [Engine] turns diagram markup into a serialized vector artifact (SVG).
// Adapters are thin pass-throughs: they do not cache, and they do not validate
// markup beyond what the underlying engine enforces. Every call receives a
// fresh diagram identifier (see [NewID]) so engines that keep render-target
// state in a shared document never collide.
//
// Two adapters are provided:
//
//   - [Graphviz] renders Graphviz DOT markup in-process using go-graphviz.
//   - [Mermaid] renders mermaid markup in headless Chrome driven by go-rod.
//
// # Configuration
//
// Engines are configured once, at construction, with a [Config]: a visual
// [Theme] (base palette plus primary, secondary and line colors) and a
// [Security] mode. The configuration is copied into the engine and never
// mutated afterwards.
//
//	eng, err := engine.NewGraphviz(ctx, engine.Config{
//	    Theme:    engine.Theme{Base: engine.PaletteDark},
//	    Security: engine.SecurityLoose,
//	})
//	defer eng.Close()
//
//	out, err := eng.Render(ctx, engine.NewID(), "digraph { A -> B }")
//
// Rejected markup yields an [errors.Error] with code ENGINE_RENDER whose cause
// carries the engine's own message.
//
// [errors.Error]: github.com/matzehuels/diagramview/pkg/errors.Error
package engine
