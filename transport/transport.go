package transport

import (
	"context"
	stderrors "errors"

	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/errors"
)

// Transport signals "request ready" to the host and waits for "result
// ready". When Call returns nil the result word and every output range in
// the block are final.
type Transport interface {
	Call(ctx context.Context) error
}

// Executor performs the request currently held in mem.
type Executor interface {
	Execute(ctx context.Context, mem hostcall.Memory) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, mem hostcall.Memory) error

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, mem hostcall.Memory) error {
	return f(ctx, mem)
}

var abandonedKind = &errors.Error{Phase: errors.PhaseTransport, Kind: errors.KindInvalidState}

func abandoned(cause error) error {
	return errors.New(errors.PhaseTransport, errors.KindInvalidState).
		Cause(cause).
		Detail("request abandoned while the host may still be writing the block").
		Build()
}

// Abandoned reports whether err means the caller stopped waiting for a
// request the host had already accepted. The block must not be reused
// after that.
func Abandoned(err error) bool {
	return stderrors.Is(err, abandonedKind)
}

// Direct runs the executor on the calling goroutine.
type Direct struct {
	exec Executor
	mem  hostcall.Memory
}

// NewDirect creates a transport that executes requests inline.
func NewDirect(exec Executor, mem hostcall.Memory) *Direct {
	return &Direct{exec: exec, mem: mem}
}

// Call executes the pending request unless ctx is already done.
func (d *Direct) Call(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Transport("request not sent", err)
	}
	if err := d.exec.Execute(ctx, d.mem); err != nil {
		return errors.Transport("host execution failed", err)
	}
	return nil
}
