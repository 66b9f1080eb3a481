package buffer

import (
	"sync"

	"go.uber.org/atomic"
)

// Locked holds bytes that its owner may replace between reads. Every access
// holds a mutex, so any number of goroutines may share it.
//
// If a callback panics while holding the lock the container is poisoned and
// every later View or Update panics with ErrPoisoned.
type Locked struct {
	mu       sync.Mutex
	data     []byte
	poisoned bool

	refs *atomic.Int32
	opts options
}

// NewLocked wraps b.
func NewLocked(b []byte, opts ...Option) *Locked {
	return &Locked{data: b, refs: atomic.NewInt32(1), opts: applyOptions(opts)}
}

// Retain adds a reference and returns l.
func (l *Locked) Retain() *Locked {
	retain(l.refs)
	return l
}

// Release drops a reference.
func (l *Locked) Release() {
	switch n := l.refs.Dec(); {
	case n == 0:
		l.mu.Lock()
		defer l.mu.Unlock()
		l.opts.release(l.data)
	case n < 0:
		overReleased("locked")
	}
}

// Refs returns the number of live references.
func (l *Locked) Refs() int {
	return int(l.refs.Load())
}

// View calls fn with the contents while holding the lock.
func (l *Locked) View(fn func(b []byte)) error {
	if l.refs.Load() <= 0 {
		return ErrReleased
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.guard(func() { fn(l.data) })
	return nil
}

// Update replaces the contents with the result of fn while holding the lock.
func (l *Locked) Update(fn func(b []byte) []byte) error {
	if l.refs.Load() <= 0 {
		return ErrReleased
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.guard(func() { l.data = fn(l.data) })
	return nil
}

// Poisoned reports whether a lock holder has panicked.
func (l *Locked) Poisoned() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.poisoned
}

// guard runs fn and poisons l if fn panics. l.mu must be held.
func (l *Locked) guard(fn func()) {
	if l.poisoned {
		log.Errorw("access to poisoned buffer", "container", "locked")
		panic(ErrPoisoned)
	}
	done := false
	defer func() {
		if !done {
			l.poisoned = true
			log.Errorw("lock holder panicked, buffer poisoned", "container", "locked")
		}
	}()
	fn()
	done = true
}
