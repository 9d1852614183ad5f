package guest

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/arena"
	"github.com/wippyai/hostcall/call"
	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/metrics"
	"github.com/wippyai/hostcall/transport"
)

// Guest issues calls through one shared block. Calls are serialized: only
// one request occupies the block at a time.
type Guest struct {
	mem      hostcall.Memory
	tr       transport.Transport
	arena    *arena.Arena
	metrics  *metrics.Metrics
	timeout  time.Duration
	poisoned error
	mu       sync.Mutex
}

// Option configures a Guest.
type Option func(*Guest)

// WithMetrics records call outcomes and staging sizes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guest) {
		g.metrics = m
	}
}

// WithTimeout bounds each host round trip. Zero means no bound beyond the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(g *Guest) {
		g.timeout = d
	}
}

// New creates a guest over mem. The first abi.HeaderSize bytes hold the
// request header; the rest is the staging arena.
func New(mem hostcall.Memory, tr transport.Transport, opts ...Option) (*Guest, error) {
	if mem == nil || tr == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "guest needs a memory and a transport")
	}
	if mem.Size() <= abi.HeaderSize {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Value(mem.Size()).
			Detail("block of %d bytes has no room past the %d byte header", mem.Size(), abi.HeaderSize).
			Build()
	}

	a, err := arena.New(abi.HeaderSize, mem.Size()-abi.HeaderSize)
	if err != nil {
		return nil, err
	}

	g := &Guest{mem: mem, tr: tr, arena: a}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Poisoned reports the abandoned request that made the guest unusable, or nil.
func (g *Guest) Poisoned() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.poisoned
}

// Capacity returns the number of arena bytes available to one call.
func (g *Guest) Capacity() uint32 {
	return g.arena.Capacity()
}

// Execute runs one call to completion: stage, commit, send, collect.
//
// The returned error covers failures on the guest side and in the
// transport. Host-reported errors and discarded responses are carried in R.
// A staging failure leaves the arena as it was and nothing is sent.
func Execute[S call.Staged[C], C, R any](ctx context.Context, g *Guest, sc call.Syscall[S, C, R]) (R, error) {
	var zero R
	name := sc.Num().String()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.poisoned != nil {
		g.observe(name, call.OutcomeError)
		return zero, errors.New(errors.PhaseTransport, errors.KindInvalidState).
			Call(name).
			Cause(g.poisoned).
			Detail("guest unusable after an abandoned request").
			Build()
	}

	txn := g.arena.Begin()
	defer txn.Close()

	argv, staged, err := sc.Stage(g.arena)
	if err != nil {
		if stderrors.Is(err, errors.AllocationExhausted(0, 0, 0)) {
			g.observe(name, call.OutcomeExhausted)
		} else {
			g.observe(name, call.OutcomeError)
		}
		return zero, err
	}

	committed, err := staged.Commit(g.mem)
	if err != nil {
		g.observe(name, call.OutcomeError)
		return zero, errors.Wrap(errors.PhaseCommit, errors.KindOutOfBounds, err, name)
	}
	req := abi.Request{Num: sc.Num(), Argv: argv.Truncate(sc.Arity())}
	if err := abi.WriteRequest(g.mem, req); err != nil {
		g.observe(name, call.OutcomeError)
		return zero, errors.Wrap(errors.PhaseCommit, errors.KindOutOfBounds, err, name)
	}

	// Sent requests are always collected before the arena is reused.
	txn.Commit()
	defer g.arena.Reset()

	stagedBytes := g.arena.Offset() - g.arena.Base()
	g.metrics.ObserveStaged(stagedBytes, g.arena.Peak())

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := g.tr.Call(callCtx); err != nil {
		if transport.Abandoned(err) {
			g.poisoned = err
			Logger().Error("guest poisoned", zap.String("call", name), zap.Error(err))
		}
		g.observe(name, call.OutcomeTransportError)
		return zero, err
	}

	ret, err := abi.ReadRet(g.mem)
	if err != nil {
		g.observe(name, call.OutcomeError)
		return zero, errors.Wrap(errors.PhaseCollect, errors.KindOutOfBounds, err, name)
	}

	r := sc.Collect(committed, ret, g.mem)

	outcome := call.OutcomeOK
	if o, ok := any(r).(interface{ Outcome() call.Outcome }); ok {
		outcome = o.Outcome()
	}
	if outcome == call.OutcomeDiscarded {
		var reason error
		if d, ok := any(r).(interface{ DiscardReason() error }); ok {
			reason = d.DiscardReason()
		}
		Logger().Warn("discarded host response",
			zap.String("call", name),
			zap.Int64("ret", int64(ret)),
			zap.Uint32("staged", stagedBytes),
			zap.Error(reason))
	} else {
		Logger().Debug("call complete",
			zap.String("call", name),
			zap.Int64("ret", int64(ret)),
			zap.String("outcome", string(outcome)))
	}
	g.observe(name, outcome)
	return r, nil
}

func (g *Guest) observe(name string, outcome call.Outcome) {
	g.metrics.ObserveCall(name, string(outcome))
}
