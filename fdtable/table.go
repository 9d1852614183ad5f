package fdtable

import (
	stderrors "errors"
	"sync"

	"github.com/wippyai/hostcall/errors"
)

// FD is a descriptor number as the guest sees it.
type FD int32

// FirstFD is the first number handed out. 0 to 2 are reserved for stdio.
const FirstFD FD = 3

// Kind describes what a host descriptor refers to.
type Kind string

const (
	KindStdio  Kind = "stdio"
	KindFile   Kind = "file"
	KindSocket Kind = "socket"
)

// Entry is the host side of a guest descriptor.
type Entry struct {
	Name   string
	Kind   Kind
	HostFD int
}

// EventType identifies a table change.
type EventType uint8

const (
	EventInserted EventType = iota
	EventRemoved
)

// Event is sent to observers after every table change.
type Event struct {
	Entry Entry
	FD    FD
	Type  EventType
}

// Observer receives table change notifications.
type Observer interface {
	OnFDEvent(Event)
}

// ErrClosed is returned by Insert after Close.
var ErrClosed = errors.InvalidState(errors.PhaseHost, "descriptor table closed")

// Option configures a Table.
type Option func(*Table)

// WithStdio maps guest descriptors 0, 1 and 2 to the host's own.
func WithStdio() Option {
	return func(t *Table) {
		for i, name := range []string{"stdin", "stdout", "stderr"} {
			t.slots[i] = slot{entry: Entry{Name: name, Kind: KindStdio, HostFD: i}, valid: true}
		}
	}
}

// WithCloser sets the function Close uses to release host descriptors that
// are still in the table. Without it Close only forgets them.
func WithCloser(fn func(hostFD int) error) Option {
	return func(t *Table) {
		t.closer = fn
	}
}

type slot struct {
	entry Entry
	valid bool
}

// Table maps guest descriptor numbers to host descriptors. The host only
// acts on descriptors it registered here, so a guest cannot name an
// arbitrary host descriptor.
type Table struct {
	closer    func(hostFD int) error
	slots     []slot
	freeList  []FD
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

// New creates an empty table.
func New(opts ...Option) *Table {
	t := &Table{
		slots:    make([]slot, FirstFD, 64),
		freeList: make([]FD, 0, 16),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Insert registers e and returns the guest descriptor for it.
func (t *Table) Insert(e Entry) (FD, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return -1, ErrClosed
	}

	var fd FD
	if n := len(t.freeList); n > 0 {
		fd = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.slots[fd] = slot{entry: e, valid: true}
	} else {
		fd = FD(len(t.slots))
		t.slots = append(t.slots, slot{entry: e, valid: true})
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventInserted, FD: fd, Entry: e})
	return fd, nil
}

// Lookup returns the entry for fd.
func (t *Table) Lookup(fd FD) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if fd < 0 || int(fd) >= len(t.slots) || !t.slots[fd].valid {
		return Entry{}, false
	}
	return t.slots[fd].entry, true
}

// Remove forgets fd and returns its entry. The host descriptor is not
// closed; that is the caller's job.
func (t *Table) Remove(fd FD) (Entry, bool) {
	t.mu.Lock()
	if fd < 0 || int(fd) >= len(t.slots) || !t.slots[fd].valid {
		t.mu.Unlock()
		return Entry{}, false
	}
	e := t.slots[fd].entry
	t.slots[fd] = slot{}
	t.freeList = append(t.freeList, fd)
	t.mu.Unlock()

	t.notify(Event{Type: EventRemoved, FD: fd, Entry: e})
	return e, true
}

// Len returns the number of live descriptors.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, s := range t.slots {
		if s.valid {
			n++
		}
	}
	return n
}

// Each calls fn for every live descriptor in ascending order until fn
// returns false.
func (t *Table) Each(fn func(FD, Entry) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, s := range t.slots {
		if s.valid && !fn(FD(i), s.entry) {
			return
		}
	}
}

// Subscribe adds an observer for table changes.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Close releases every non-stdio descriptor still registered and stops
// accepting new ones.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	slots := t.slots
	t.slots = nil
	t.freeList = nil
	t.mu.Unlock()

	var errs []error
	for i, s := range slots {
		if !s.valid {
			continue
		}
		if t.closer != nil && s.entry.Kind != KindStdio {
			if err := t.closer(s.entry.HostFD); err != nil {
				errs = append(errs, err)
			}
		}
		t.notify(Event{Type: EventRemoved, FD: FD(i), Entry: s.entry})
	}
	return stderrors.Join(errs...)
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnFDEvent(e)
	}
}
