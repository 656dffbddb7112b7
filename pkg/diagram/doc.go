// Package diagram owns the asynchronous render lifecycle of a single
// diagram.
//
// # Lifecycle
//
// A [Controller] observes markup submitted by its host. Each non-empty
// submission issues a new request [Token] and moves the [State] to
// [PhaseRendering]; the host runs the request (on any goroutine) with
// [Controller.Render] and hands the [Result] back to [Controller.Settle].
// Settle applies a result only if its token is still the latest one issued,
// so a slow render of old markup can never overwrite the outcome of newer
// markup: the last request wins, regardless of settlement order.
//
//	req, ok := ctrl.Submit(markup)
//	if !ok {
//	    return // empty markup: State is PhaseEmpty, nothing to render
//	}
//	go func() { results <- ctrl.Render(ctx, req) }()
//	...
//	ctrl.Settle(<-results)
//
// Engine failures never escape the controller: they become a [Diagnostic]
// carrying the exact markup that failed. Hosts that want to react to
// failures register [WithErrorHandler]; the handler runs once per applied
// failure.
//
// # Presentation
//
// [Select] is a pure function from [State] to the view the host should
// present: a placeholder, the viewport, or the diagnostic view.
package diagram
