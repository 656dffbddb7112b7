package engine

import (
	"bytes"
	"context"
	"image/png"
	"sync"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/diagramview/pkg/errors"
)

// Graphviz renders DOT markup in-process.
//
// A single Graphviz instance is reused for every render; calls are
// serialized because the underlying runtime is not reentrant.
type Graphviz struct {
	cfg Config

	mu sync.Mutex
	gv *graphviz.Graphviz
}

// NewGraphviz initializes the Graphviz runtime with the given configuration.
func NewGraphviz(ctx context.Context, cfg Config) (*Graphviz, error) {
	cfg, err := cfg.prepare()
	if err != nil {
		return nil, err
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEngineUnavailable, err, "init graphviz")
	}
	return &Graphviz{cfg: cfg, gv: gv}, nil
}

// Name implements [Engine].
func (e *Graphviz) Name() string { return NameGraphviz }

// Config returns the frozen engine configuration.
func (e *Graphviz) Config() Config { return e.cfg }

// Render implements [Engine].
func (e *Graphviz) Render(ctx context.Context, id, markup string) (*Rendered, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gv == nil {
		return nil, errors.New(errors.ErrCodeEngineUnavailable, "graphviz engine is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "render %s", id)
	}

	g, err := graphviz.ParseBytes([]byte(markup))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEngineRender, err, "parse DOT")
	}
	if g == nil {
		return nil, errors.New(errors.ErrCodeEngineRender, "parse DOT: no graph in markup")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := e.gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEngineRender, err, "layout")
	}

	svg, w, h := normalizeSVG(buf.Bytes(), id)
	svg = injectAfterRoot(svg, themeStylesheet(id, e.cfg.Theme))
	if e.cfg.Security == SecurityStrict {
		svg = stripInteractive(svg)
	}

	out := &Rendered{SVG: svg, Width: w, Height: h}
	if e.cfg.Preview {
		buf.Reset()
		if err := e.gv.Render(ctx, g, graphviz.PNG, &buf); err == nil {
			if img, err := png.Decode(&buf); err == nil {
				out.Preview = img
			}
		}
	}
	return out, nil
}

// Close releases the Graphviz runtime. Subsequent renders fail.
func (e *Graphviz) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gv == nil {
		return nil
	}
	// go-graphviz reports its last parse error here, not a close failure.
	_ = e.gv.Close()
	e.gv = nil
	return nil
}

// Ensure Graphviz implements Engine.
var _ Engine = (*Graphviz)(nil)
