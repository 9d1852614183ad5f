// Package transport carries the "request ready" and "result ready" signals
// between a guest and the host executing its requests.
//
// Direct executes inline on the caller's goroutine. Channel executes on a
// dedicated goroutine, the way a trap would hand off to a host thread; a
// caller that stops waiting on it gets an error for which Abandoned is true.
package transport
