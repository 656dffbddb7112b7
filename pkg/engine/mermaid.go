package engine

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"image/png"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/matzehuels/diagramview/pkg/errors"
)

// DefaultMermaidScript is the mermaid bundle loaded into the render page.
const DefaultMermaidScript = "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.min.js"

const mermaidHostID = "diagramview-host"

// Browser connection and script loading are retried with backoff.
const (
	startAttempts = 3
	startDelay    = 500 * time.Millisecond
)

// MermaidOptions locates the browser and the mermaid bundle.
type MermaidOptions struct {
	// ControlURL is the DevTools WebSocket URL of a running Chrome.
	// Empty launches a local headless Chrome.
	ControlURL string `toml:"control_url"`

	// ScriptURL is the mermaid bundle to load. Default: [DefaultMermaidScript].
	ScriptURL string `toml:"script_url"`
}

// Mermaid renders mermaid markup inside a headless browser page.
//
// The page is initialized once with the theme and security level; renders
// share it and are serialized.
type Mermaid struct {
	cfg Config

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
}

// NewMermaid starts (or connects to) Chrome, loads mermaid and initializes it.
func NewMermaid(ctx context.Context, cfg Config, opts MermaidOptions) (*Mermaid, error) {
	cfg, err := cfg.prepare()
	if err != nil {
		return nil, err
	}
	if opts.ScriptURL == "" {
		opts.ScriptURL = DefaultMermaidScript
	}

	m := &Mermaid{cfg: cfg}
	wsURL := opts.ControlURL
	if wsURL == "" {
		l := launcher.New().Context(ctx).Headless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeEngineUnavailable, err, "launch chrome")
		}
		wsURL = u
		m.lnch = l
	}

	// A remote browser may still be coming up.
	err = retry(ctx, startAttempts, startDelay, func() error {
		b := rod.New().ControlURL(wsURL)
		if err := b.Connect(); err != nil {
			return transient(err)
		}
		m.browser = b
		return nil
	})
	if err != nil {
		m.cleanup()
		return nil, errors.Wrap(errors.ErrCodeEngineUnavailable, err, "connect chrome")
	}

	page, err := m.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		m.cleanup()
		return nil, errors.Wrap(errors.ErrCodeEngineUnavailable, err, "open render page")
	}
	m.page = page

	p := page.Context(ctx)
	err = retry(ctx, startAttempts, startDelay, func() error {
		return transient(p.AddScriptTag(opts.ScriptURL, ""))
	})
	if err != nil {
		m.cleanup()
		return nil, errors.Wrap(errors.ErrCodeEngineUnavailable, err, "load mermaid from %s", opts.ScriptURL)
	}
	if _, err := p.Eval(`(cfg, hostID) => {
		mermaid.initialize(cfg);
		const host = document.createElement('div');
		host.id = hostID;
		document.body.appendChild(host);
	}`, mermaidInitConfig(cfg), mermaidHostID); err != nil {
		m.cleanup()
		return nil, errors.Wrap(errors.ErrCodeEngineUnavailable, err, "initialize mermaid")
	}
	return m, nil
}

// mermaidInitConfig maps [Config] onto mermaid's initialize() options.
// An unmodified base palette selects mermaid's theme of the same name;
// color overrides switch to the "base" theme, the only one that honors
// themeVariables.
func mermaidInitConfig(cfg Config) map[string]any {
	theme := cfg.Theme.Base
	if cfg.Theme != (Config{Theme: Theme{Base: cfg.Theme.Base}}).WithDefaults().Theme {
		theme = "base"
	}
	return map[string]any{
		"startOnLoad":   false,
		"securityLevel": string(cfg.Security),
		"theme":         theme,
		"themeVariables": map[string]string{
			"primaryColor":     cfg.Theme.Primary,
			"secondaryColor":   cfg.Theme.Secondary,
			"lineColor":        cfg.Theme.Line,
			"primaryTextColor": cfg.Theme.Text,
			"background":       cfg.Theme.Background,
		},
	}
}

// Name implements [Engine].
func (m *Mermaid) Name() string { return NameMermaid }

// Render implements [Engine].
func (m *Mermaid) Render(ctx context.Context, id, markup string) (*Rendered, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.page == nil {
		return nil, errors.New(errors.ErrCodeEngineUnavailable, "mermaid engine is closed")
	}

	p := m.page.Context(ctx)
	res, err := p.Eval(`async (id, src, hostID) => {
		const host = document.getElementById(hostID);
		host.innerHTML = '';
		const { svg } = await mermaid.render(id, src);
		host.innerHTML = svg;
		const box = host.querySelector('svg').getBoundingClientRect();
		return { svg: svg, width: box.width, height: box.height };
	}`, id, markup, mermaidHostID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctxErr, "render %s", id)
		}
		var evalErr *rod.EvalError
		if stderrors.As(err, &evalErr) && evalErr.Exception != nil {
			return nil, errors.Wrap(errors.ErrCodeEngineRender, stderrors.New(evalErr.Exception.Description), "mermaid")
		}
		return nil, errors.Wrap(errors.ErrCodeEngineRender, err, "mermaid")
	}

	out := &Rendered{
		SVG:    []byte(res.Value.Get("svg").Str()),
		Width:  res.Value.Get("width").Num(),
		Height: res.Value.Get("height").Num(),
	}
	if m.cfg.Security == SecurityStrict {
		out.SVG = stripInteractive(out.SVG)
	}
	if m.cfg.Preview {
		if el, err := p.Element("#" + mermaidHostID + " svg"); err == nil {
			if shot, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0); err == nil {
				if img, err := png.Decode(bytes.NewReader(shot)); err == nil {
					out.Preview = img
				}
			}
		}
	}
	return out, nil
}

// Close shuts down the page and, if it was launched here, Chrome.
func (m *Mermaid) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanup()
}

func (m *Mermaid) cleanup() error {
	var errs []error
	if m.page != nil {
		if err := m.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
		m.page = nil
	}
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return stderrors.Join(errs...)
}

// Ensure Mermaid implements Engine.
var _ Engine = (*Mermaid)(nil)
