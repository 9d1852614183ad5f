package call

import (
	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/errors"
)

// Outcome labels how a call ended.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeHostError      Outcome = "host_error"
	OutcomeDiscarded      Outcome = "discarded"
	OutcomeExhausted      Outcome = "exhausted"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeError          Outcome = "error"
)

// Collected is the result of collecting one call.
//
// Present is false when the host's response failed validation and was
// discarded; Discard then says why and nothing was copied. When Present,
// either Err holds the host-reported *errors.Errno or Value holds the result.
type Collected[T any] struct {
	Value   T
	Err     error
	Discard error
	Present bool
}

// Some returns a present successful result.
func Some[T any](v T) Collected[T] {
	return Collected[T]{Value: v, Present: true}
}

// Failed returns a present result carrying a host error.
func Failed[T any](err error) Collected[T] {
	return Collected[T]{Err: err, Present: true}
}

// Discarded returns an absent result.
func Discarded[T any](reason error) Collected[T] {
	return Collected[T]{Discard: reason}
}

// Outcome classifies the result.
func (c Collected[T]) Outcome() Outcome {
	switch {
	case !c.Present:
		return OutcomeDiscarded
	case c.Err != nil:
		return OutcomeHostError
	default:
		return OutcomeOK
	}
}

// DiscardReason returns why the result is absent, or nil.
func (c Collected[T]) DiscardReason() error {
	return c.Discard
}

// CollectCount handles the common "ret is a byte count into out" result.
// A count outside [0, out.Len()] is discarded before any copy; otherwise the
// first ret bytes are copied into the destination.
func CollectCount(name string, ret abi.Ret, out Output, col Collector) Collected[int64] {
	if code, ok := ret.Errno(); ok {
		return Failed[int64](errors.NewErrno(name, code))
	}
	n := ret.Value()
	if n < 0 || uint64(n) > out.Len() {
		return Discarded[int64](errors.InvalidHostResponse(name, uint64(n), out.Len()))
	}
	if err := out.CollectRange(col, 0, uint64(n)); err != nil {
		return Discarded[int64](errors.Wrap(errors.PhaseCollect, errors.KindOutOfBounds, err, name))
	}
	return Some(n)
}

// CheckCount is CollectCount for counts of bytes the host consumed rather
// than produced: nothing is copied.
func CheckCount(name string, ret abi.Ret, staged uint64) Collected[int64] {
	if code, ok := ret.Errno(); ok {
		return Failed[int64](errors.NewErrno(name, code))
	}
	n := ret.Value()
	if n < 0 || uint64(n) > staged {
		return Discarded[int64](errors.InvalidHostResponse(name, uint64(n), staged))
	}
	return Some(n)
}

// CollectZero handles calls whose only success value is 0.
func CollectZero(name string, ret abi.Ret) Collected[int64] {
	if code, ok := ret.Errno(); ok {
		return Failed[int64](errors.NewErrno(name, code))
	}
	if ret.Value() != 0 {
		return Discarded[int64](errors.New(errors.PhaseCollect, errors.KindInvalidHostResponse).
			Call(name).
			Value(ret.Value()).
			Detail("expected 0, host returned %d", ret.Value()).
			Build())
	}
	return Some[int64](0)
}
