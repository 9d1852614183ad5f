package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseCollect,
				Kind:   KindInvalidHostResponse,
				Call:   "recvfrom",
				Detail: "host claimed 40 bytes, 16 allocated",
			},
			contains: []string{"[collect]", "invalid_host_response", "in recvfrom", "40 bytes"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseStage,
				Kind:  KindAllocation,
			},
			contains: []string{"[stage]", "allocation"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseTransport,
				Kind:   KindTransport,
				Detail: "host gone",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[transport]", "transport", "host gone", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseTransport,
		Kind:  KindTransport,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	// Test with errors.Unwrap
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseStage,
		Kind:  KindAllocation,
		Call:  "read",
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseStage, Kind: KindAllocation}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseCollect, Kind: KindAllocation}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseStage, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseStage, Kind: KindAllocation}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseStage, KindAllocation).
		Call("recvfrom").
		Value(42).
		Cause(cause).
		Detail("need %d bytes, have %d", 40, 24).
		Build()

	if err.Phase != PhaseStage {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseStage)
	}
	if err.Kind != KindAllocation {
		t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
	}
	if err.Call != "recvfrom" {
		t.Errorf("Call = %v, want 'recvfrom'", err.Call)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "need 40 bytes, have 24" {
		t.Errorf("Detail = %v, want 'need 40 bytes, have 24'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("AllocationExhausted", func(t *testing.T) {
		err := AllocationExhausted(40, 8, 24)
		if err.Kind != KindAllocation || err.Phase != PhaseStage {
			t.Errorf("got %v/%v, want stage/allocation", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Detail, "40") || !strings.Contains(err.Detail, "24 remaining") {
			t.Errorf("Detail = %v, should contain size and remaining", err.Detail)
		}
	})

	t.Run("InvalidHostResponse", func(t *testing.T) {
		err := InvalidHostResponse("read", 40, 16)
		if err.Kind != KindInvalidHostResponse {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidHostResponse)
		}
		if err.Value != uint64(40) {
			t.Errorf("Value = %v, want 40", err.Value)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseHost, 4090, 16, 4096)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if !strings.Contains(err.Detail, "[4090, 4106)") {
			t.Errorf("Detail = %v", err.Detail)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseHost, "call 999")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("Transport", func(t *testing.T) {
		cause := errors.New("closed")
		err := Transport("send request", cause)
		if !errors.Is(err, cause) {
			t.Error("Transport should wrap cause")
		}
	})
}

func TestErrno(t *testing.T) {
	err := NewErrno("recvfrom", 11)

	msg := err.Error()
	for _, s := range []string{"errno 11", "EAGAIN", "recvfrom"} {
		if !strings.Contains(msg, s) {
			t.Errorf("message %q does not contain %q", msg, s)
		}
	}

	if !errors.Is(err, &Errno{Code: 11}) {
		t.Error("errors.Is should match same code")
	}
	if errors.Is(err, &Errno{Code: 9}) {
		t.Error("errors.Is should not match different code")
	}

	unknown := NewErrno("", 4000)
	if strings.Contains(unknown.Error(), "(") {
		t.Errorf("unknown code should have no name: %q", unknown.Error())
	}
}
