package buffer

import (
	"go.uber.org/atomic"
)

// Shared holds immutable bytes with single-goroutine shared ownership.
//
// Shared is not safe for concurrent use; use Atomic to share bytes between
// goroutines.
type Shared struct {
	data []byte
	refs int
	opts options
}

// NewShared wraps b, which must not be modified afterwards.
func NewShared(b []byte, opts ...Option) *Shared {
	return &Shared{data: b, refs: 1, opts: applyOptions(opts)}
}

// Retain adds a reference and returns s.
func (s *Shared) Retain() *Shared {
	if s.refs <= 0 {
		panic(ErrReleased)
	}
	s.refs++
	return s
}

// Release drops a reference.
func (s *Shared) Release() {
	s.refs--
	switch {
	case s.refs == 0:
		s.opts.release(s.data)
	case s.refs < 0:
		overReleased("shared")
	}
}

// Refs returns the number of live references.
func (s *Shared) Refs() int {
	return s.refs
}

// View calls fn with the contents.
func (s *Shared) View(fn func(b []byte)) error {
	if s.refs <= 0 {
		return ErrReleased
	}
	fn(s.data)
	return nil
}

// Bytes returns the contents, or nil once released. The slice aliases the
// container and must not be modified.
func (s *Shared) Bytes() []byte {
	if s.refs <= 0 {
		return nil
	}
	return s.data
}

// Len returns the length of the contents.
func (s *Shared) Len() int {
	return len(s.Bytes())
}

// Atomic holds immutable bytes whose ownership may be shared between
// goroutines.
type Atomic struct {
	data []byte
	refs *atomic.Int32
	opts options
}

// NewAtomic wraps b, which must not be modified afterwards.
func NewAtomic(b []byte, opts ...Option) *Atomic {
	return &Atomic{data: b, refs: atomic.NewInt32(1), opts: applyOptions(opts)}
}

// Retain adds a reference and returns a.
func (a *Atomic) Retain() *Atomic {
	retain(a.refs)
	return a
}

// Release drops a reference.
func (a *Atomic) Release() {
	switch n := a.refs.Dec(); {
	case n == 0:
		a.opts.release(a.data)
	case n < 0:
		overReleased("atomic")
	}
}

// Refs returns the number of live references.
func (a *Atomic) Refs() int {
	return int(a.refs.Load())
}

// View calls fn with the contents.
func (a *Atomic) View(fn func(b []byte)) error {
	if a.refs.Load() <= 0 {
		return ErrReleased
	}
	fn(a.data)
	return nil
}

// Bytes returns the contents, or nil once released. The slice aliases the
// container and must not be modified.
func (a *Atomic) Bytes() []byte {
	if a.refs.Load() <= 0 {
		return nil
	}
	return a.data
}

// Len returns the length of the contents.
func (a *Atomic) Len() int {
	return len(a.Bytes())
}
