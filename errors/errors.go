package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseStage     Phase = "stage"     // reserving shared buffer ranges
	PhaseCommit    Phase = "commit"    // copying guest data into the buffer
	PhaseCollect   Phase = "collect"   // validating host output
	PhaseHost      Phase = "host"      // host-side execution
	PhaseTransport Phase = "transport" // guest/host signalling
	PhaseConfig    Phase = "config"    // configuration loading
	PhaseLoad      Phase = "load"      // shared memory setup
	PhaseMemory    Phase = "memory"    // shared memory access
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation          Kind = "allocation"
	KindOutOfBounds         Kind = "out_of_bounds"
	KindInvalidHostResponse Kind = "invalid_host_response"
	KindInvalidInput        Kind = "invalid_input"
	KindInvalidState        Kind = "invalid_state"
	KindUnsupported         Kind = "unsupported"
	KindTransport           Kind = "transport"
	KindNotFound            Kind = "not_found"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Call   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Call != "" {
		b.WriteString(" in ")
		b.WriteString(e.Call)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Call sets the name of the system call being marshalled
func (b *Builder) Call(name string) *Builder {
	b.err.Call = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// AllocationExhausted reports that the shared buffer cannot satisfy a
// staging request. The arena state is unchanged when this is returned.
func AllocationExhausted(size, align, remaining uint32) *Error {
	return &Error{
		Phase:  PhaseStage,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d, %d remaining)", size, align, remaining),
		Value:  size,
	}
}

// InvalidHostResponse reports a host claim larger than what was allocated.
// Collectors never surface it to callers; it exists for logging.
func InvalidHostResponse(call string, claimed, allocated uint64) *Error {
	return &Error{
		Phase:  PhaseCollect,
		Kind:   KindInvalidHostResponse,
		Call:   call,
		Detail: fmt.Sprintf("host claimed %d bytes, %d allocated", claimed, allocated),
		Value:  claimed,
	}
}

// OutOfBounds creates an out of bounds error for a shared memory access
func OutOfBounds(phase Phase, offset, length uint64, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("range [%d, %d) out of bounds (size %d)", offset, offset+length, size),
		Value:  offset,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidState creates an invalid state error
func InvalidState(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidState,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Transport wraps a signalling failure between guest and host
func Transport(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseTransport,
		Kind:   KindTransport,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Config creates a configuration error
func Config(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a shared memory setup error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidState,
		Detail: detail,
		Cause:  cause,
	}
}

// Errno is an error code the host reported for a call that genuinely failed.
// Codes use Linux numbering regardless of the platform the guest runs on, so
// only Linux builds unwrap to syscall.Errno. Elsewhere match with
// errors.Is(err, &Errno{Code: abi.EAGAIN}).
type Errno struct {
	Call string
	Code uint32
}

// Error implements the error interface
func (e *Errno) Error() string {
	var b strings.Builder
	b.WriteString("[host] errno ")
	b.WriteString(fmt.Sprint(e.Code))
	if name := errnoName(e.Code); name != "" {
		b.WriteString(" (")
		b.WriteString(name)
		b.WriteByte(')')
	}
	if e.Call != "" {
		b.WriteString(" in ")
		b.WriteString(e.Call)
	}
	return b.String()
}

// Is reports whether target is an Errno with the same code
func (e *Errno) Is(target error) bool {
	if t, ok := target.(*Errno); ok {
		return e.Code == t.Code
	}
	return false
}

// NewErrno creates a host-reported error
func NewErrno(call string, code uint32) *Errno {
	return &Errno{Call: call, Code: code}
}

var errnoNames = map[uint32]string{
	1:   "EPERM",
	2:   "ENOENT",
	4:   "EINTR",
	5:   "EIO",
	9:   "EBADF",
	11:  "EAGAIN",
	12:  "ENOMEM",
	13:  "EACCES",
	14:  "EFAULT",
	22:  "EINVAL",
	24:  "EMFILE",
	32:  "EPIPE",
	38:  "ENOSYS",
	88:  "ENOTSOCK",
	90:  "EMSGSIZE",
	97:  "EAFNOSUPPORT",
	104: "ECONNRESET",
	107: "ENOTCONN",
	110: "ETIMEDOUT",
	111: "ECONNREFUSED",
}

func errnoName(code uint32) string {
	return errnoNames[code]
}
