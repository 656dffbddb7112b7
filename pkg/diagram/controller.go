package diagram

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagramview/pkg/engine"
	"github.com/matzehuels/diagramview/pkg/errors"
	"github.com/matzehuels/diagramview/pkg/observability"
	"github.com/matzehuels/diagramview/pkg/viewport"
)

// Controller drives the render lifecycle for one diagram.
//
// Submit, Settle and State are safe for concurrent use; Render touches no
// controller state beyond the immutable engine and may run on any goroutine.
type Controller struct {
	engine   engine.Engine
	logger   *log.Logger
	onError  func(Diagnostic)
	newID    func() string
	timeout  time.Duration
	viewport *viewport.Controller

	mu     sync.Mutex
	latest Token
	state  State
}

// Option configures a [Controller].
type Option func(*Controller)

// WithErrorHandler registers a function called once for every applied
// failure. Superseded failures are never reported.
func WithErrorHandler(fn func(Diagnostic)) Option {
	return func(c *Controller) { c.onError = fn }
}

// WithLogger sets the logger. Default: log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithIDGenerator overrides diagram id generation. Default: [engine.NewID].
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithTimeout bounds each engine call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithViewport shares a viewport controller that is reset whenever a new
// artifact is installed. Default: a private one, see [Controller.Viewport].
func WithViewport(vp *viewport.Controller) Option {
	return func(c *Controller) {
		if vp != nil {
			c.viewport = vp
		}
	}
}

// New creates a controller rendering with eng.
func New(eng engine.Engine, opts ...Option) *Controller {
	c := &Controller{
		engine:   eng,
		logger:   log.Default(),
		newID:    engine.NewID,
		viewport: viewport.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Engine returns the engine the controller renders with.
func (c *Controller) Engine() engine.Engine {
	return c.engine
}

// Viewport returns the viewport controller reset on every installed artifact.
func (c *Controller) Viewport() *viewport.Controller {
	return c.viewport
}

// State returns a snapshot of the current view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit records new markup. Empty markup moves to [PhaseEmpty] and returns
// false; nothing is rendered. Otherwise a fresh request is issued, the state
// moves to [PhaseRendering] and the request is returned for the host to run.
//
// Either way every earlier request becomes stale. Submitting markup
// identical to the current source still issues a new request.
func (c *Controller) Submit(markup string) (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest++
	if IsEmptyMarkup(markup) {
		c.state = State{Phase: PhaseEmpty, Token: c.latest}
		c.logger.Debug("markup cleared", "token", c.latest)
		return Request{}, false
	}

	req := Request{Token: c.latest, ID: c.newID(), Markup: markup}
	prev := c.state
	c.state = State{
		Phase:      PhaseRendering,
		Source:     markup,
		Token:      req.Token,
		Artifact:   prev.Artifact,
		Diagnostic: prev.Diagnostic,
		Settled:    prev.Settled,
		Duration:   prev.Duration,
	}
	c.logger.Debug("render requested", "token", req.Token, "id", req.ID, "bytes", len(markup))
	return req, true
}

// Render runs req against the engine and converts the outcome into a
// [Result]. Engine errors and panics become a [Diagnostic]; Render never
// fails.
//
// Render returns once ctx is done even if the engine does not honor it.
// The engine call then keeps running in the background and its result is
// dropped.
func (c *Controller) Render(ctx context.Context, req Request) (res Result) {
	name := c.engine.Name()
	start := time.Now()
	observability.Render().OnRenderStart(ctx, name, req.ID)

	defer func() {
		res.Duration = time.Since(start)
		var err error
		if res.Diagnostic != nil {
			err = res.Diagnostic.Err
		}
		observability.Render().OnRenderComplete(ctx, name, req.ID, res.Duration, err)
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := c.callEngine(ctx, req)
	if err != nil {
		return failure(req, err)
	}
	if out == nil || len(out.SVG) == 0 {
		return failure(req, errors.New(errors.ErrCodeEngineRender, "%s returned an empty artifact", name))
	}
	return Result{
		Token: req.Token,
		Artifact: &Artifact{
			ID:      req.ID,
			Source:  req.Markup,
			SVG:     out.SVG,
			Width:   out.Width,
			Height:  out.Height,
			Preview: out.Preview,
		},
	}
}

type engineOutcome struct {
	out *engine.Rendered
	err error
}

// callEngine runs the engine on its own goroutine and waits for it or for
// ctx, whichever comes first.
func (c *Controller) callEngine(ctx context.Context, req Request) (*engine.Rendered, error) {
	done := make(chan engineOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- engineOutcome{err: errors.New(errors.ErrCodeInternal, "engine panic: %v", r)}
			}
		}()
		out, err := c.engine.Render(ctx, req.ID, req.Markup)
		done <- engineOutcome{out: out, err: err}
	}()

	select {
	case o := <-done:
		return o.out, o.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "%s did not finish %s in time", c.engine.Name(), req.ID)
		}
		return nil, errors.Wrap(errors.ErrCodeSuperseded, ctx.Err(), "render %s cancelled", req.ID)
	}
}

func failure(req Request, err error) Result {
	return Result{
		Token: req.Token,
		Diagnostic: &Diagnostic{
			Message: errors.UserMessage(err),
			Source:  req.Markup,
			Err:     err,
		},
	}
}

// Settle applies res if it belongs to the latest request and reports
// whether it did. Stale results, and repeated settlement of the same
// request, leave the state untouched.
func (c *Controller) Settle(res Result) bool {
	c.mu.Lock()
	if res.Token != c.latest {
		latest := c.latest
		c.mu.Unlock()
		c.logger.Debug("discarding superseded result", "token", res.Token, "latest", latest)
		observability.Render().OnSuperseded(context.Background(), uint64(res.Token), uint64(latest))
		return false
	}
	if c.state.Phase != PhaseRendering {
		c.mu.Unlock()
		c.logger.Debug("ignoring duplicate result", "token", res.Token)
		return false
	}

	source := c.state.Source
	if res.Artifact != nil {
		c.state = State{
			Phase:    PhaseReady,
			Source:   source,
			Token:    res.Token,
			Artifact: res.Artifact,
			Settled:  PhaseReady,
			Duration: res.Duration,
		}
		c.viewport.Install(viewport.Size{W: res.Artifact.Width, H: res.Artifact.Height})
		c.mu.Unlock()
		c.logger.Debug("render installed", "token", res.Token, "id", res.Artifact.ID, "duration", res.Duration)
		return true
	}

	diag := res.Diagnostic
	if diag == nil {
		diag = &Diagnostic{Message: "render produced no result", Source: source}
	}
	c.state = State{
		Phase:      PhaseFailed,
		Source:     source,
		Token:      res.Token,
		Diagnostic: diag,
		Settled:    PhaseFailed,
		Duration:   res.Duration,
	}
	c.mu.Unlock()

	c.logger.Debug("render failed", "token", res.Token, "err", diag.Message)
	if c.onError != nil {
		c.onError(*diag)
	}
	return true
}

// Start submits markup and renders it on a new goroutine. The result is
// delivered on the returned channel, which is buffered so an abandoned
// result never blocks; the host still has to Settle it. The boolean is
// false for empty markup, in which case no channel is returned.
func (c *Controller) Start(ctx context.Context, markup string) (<-chan Result, bool) {
	req, ok := c.Submit(markup)
	if !ok {
		return nil, false
	}
	ch := make(chan Result, 1)
	go func() {
		ch <- c.Render(ctx, req)
	}()
	return ch, true
}

// Run submits markup, renders it synchronously and settles the result.
// It returns the resulting state; a failed render is reported through the
// state, not as an error.
func (c *Controller) Run(ctx context.Context, markup string) State {
	req, ok := c.Submit(markup)
	if !ok {
		return c.State()
	}
	c.Settle(c.Render(ctx, req))
	return c.State()
}
