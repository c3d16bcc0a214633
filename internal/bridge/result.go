package bridge

import (
	"sync"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
)

// Code is the closed set of outcomes reported across the boundary
type Code int32

const (
	Success      Code = 0
	NetworkError Code = 1
	IOError      Code = 2
	DecodeError  Code = 3
)

func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case NetworkError:
		return "network_error"
	case IOError:
		return "io_error"
	case DecodeError:
		return "decode_error"
	default:
		return "unknown"
	}
}

// CodeOf maps an error onto the boundary codes. A precondition error is a
// programmer error and is raised again instead of being encoded.
func CodeOf(err error) Code {
	switch errs.KindOf(err) {
	case "":
		return Success
	case errs.KindNetwork:
		return NetworkError
	case errs.KindDecode:
		return DecodeError
	case errs.KindPrecondition:
		panic(err)
	default:
		return IOError
	}
}

// OwnedString is a lease on a string held by a StringTable. The zero value is the empty string.
type OwnedString struct {
	ID  uint64
	Len int
}

// Result is returned by value from every consuming boundary call.
// A non-empty Error must be released with FreeString.
type Result struct {
	Code  Code
	Error OwnedString
}

// StringTable hands out strings to callers that cannot share Go memory.
// Every lease is released exactly once.
type StringTable struct {
	mu     sync.Mutex
	next   uint64
	leases map[uint64]string
}

func NewStringTable() *StringTable {
	return &StringTable{leases: make(map[uint64]string), next: 1}
}

// Lease stores s and returns its handle. The empty string is never stored.
func (t *StringTable) Lease(s string) OwnedString {
	if s == "" {
		return OwnedString{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	t.next++
	t.leases[id] = s
	return OwnedString{ID: id, Len: len(s)}
}

// Text returns the leased string without releasing it
func (t *StringTable) Text(o OwnedString) string {
	if o.ID == 0 {
		return ""
	}

	t.mu.Lock()
	s, ok := t.leases[o.ID]
	t.mu.Unlock()
	if !ok {
		errs.Fault("read of unknown or freed string %d", o.ID)
	}
	return s
}

// Free releases a lease. Freeing twice, or freeing a lease this table did not issue, is a fault.
func (t *StringTable) Free(o OwnedString) {
	if o.ID == 0 {
		return
	}

	t.mu.Lock()
	s, ok := t.leases[o.ID]
	if ok && len(s) == o.Len {
		delete(t.leases, o.ID)
	}
	t.mu.Unlock()

	if !ok {
		errs.Fault("free of unknown or already freed string %d", o.ID)
	}
	if len(s) != o.Len {
		errs.Fault("free of string %d with length %d, leased with %d", o.ID, o.Len, len(s))
	}
}

// Outstanding returns how many leases have not been freed
func (t *StringTable) Outstanding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.leases)
}
