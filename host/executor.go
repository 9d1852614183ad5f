package host

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/fdtable"
)

// Handler performs one call described by f and returns the result word.
// Failures are reported as negated errno values, never as Go errors.
type Handler func(ctx context.Context, f *Frame) abi.Ret

// Option configures an Executor.
type Option func(*Executor)

// WithTable sets the descriptor table handlers resolve guest descriptors in.
func WithTable(t *fdtable.Table) Option {
	return func(e *Executor) {
		e.table = t
	}
}

// WithHandler installs h for num, replacing any platform handler.
// A nil h removes the call, so it answers ENOSYS.
func WithHandler(num abi.Number, h Handler) Option {
	return func(e *Executor) {
		if h == nil {
			delete(e.handlers, num)
			return
		}
		e.handlers[num] = h
	}
}

// Executor is the host end of the block: it decodes the header, runs the
// matching handler and writes the result word back.
type Executor struct {
	handlers map[abi.Number]Handler
	table    *fdtable.Table
}

// New creates an executor with the platform's handlers installed.
func New(opts ...Option) *Executor {
	e := &Executor{handlers: platformHandlers()}
	for _, opt := range opts {
		opt(e)
	}
	if e.table == nil {
		e.table = fdtable.New()
	}
	return e
}

// Table returns the descriptor table in use.
func (e *Executor) Table() *fdtable.Table {
	return e.table
}

// Supports reports whether num has a handler.
func (e *Executor) Supports(num abi.Number) bool {
	_, ok := e.handlers[num]
	return ok
}

// Execute serves the request currently in mem. An error means the header
// itself could not be accessed; call failures go into the result word.
func (e *Executor) Execute(ctx context.Context, mem hostcall.Memory) error {
	req, err := abi.ReadRequest(mem)
	if err != nil {
		return errors.Wrap(errors.PhaseHost, errors.KindOutOfBounds, err, "read request header")
	}

	var ret abi.Ret
	h, ok := e.handlers[req.Num]
	if ok {
		ret = h(ctx, &Frame{Mem: mem, Table: e.table, Argv: req.Argv, Num: req.Num})
	} else {
		ret = abi.FromErrno(abi.ENOSYS)
	}

	Logger().Debug("call executed",
		zap.Stringer("call", req.Num),
		zap.Int64("ret", int64(ret)),
		zap.Bool("supported", ok))

	if err := abi.WriteRet(mem, ret); err != nil {
		return errors.Wrap(errors.PhaseHost, errors.KindOutOfBounds, err, "write result")
	}
	return nil
}
