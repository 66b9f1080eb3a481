// Package buffer provides reference-counted containers for byte slices that
// are shared between several readers.
//
// There are four containers, one per ownership discipline:
//
//   - Shared: immutable contents, not safe for concurrent use.
//   - Cell: contents replaceable by the owner between reads, guarded by
//     dynamic borrow accounting, not safe for concurrent use.
//   - Atomic: immutable contents, safe to share between goroutines.
//   - Locked: contents replaceable by the owner, guarded by a mutex, safe to
//     share between goroutines.
//
// Every container starts with one reference. Retain adds one and Release
// drops one; the last Release runs the container's release hooks, which is how
// pooled byte slices find their way back to the pool.
package buffer

import (
	"errors"

	logging "github.com/ipfs/go-log/v2"
	pool "github.com/libp2p/go-buffer-pool"
	"go.uber.org/atomic"
)

var log = logging.Logger("sharedcursor/buffer")

var (
	// ErrReleased is returned when viewing a container whose last reference
	// has already been released.
	ErrReleased = errors.New("buffer has been released")

	// ErrBorrowConflict is returned by Cell when a borrow is requested while an
	// incompatible borrow is outstanding.
	ErrBorrowConflict = errors.New("buffer is already borrowed")

	// ErrPoisoned is the panic value raised by Locked once a holder of its lock
	// has panicked.
	ErrPoisoned = errors.New("buffer lock is poisoned")

	errOverRelease = errors.New("buffer released more times than retained")
)

// Viewer is implemented by containers that can lend out their current
// contents for the duration of a call.
//
// The slice passed to fn must not be retained or modified after fn returns.
type Viewer interface {
	View(fn func(b []byte)) error
}

// Handle is a Viewer with shared ownership.
type Handle interface {
	Viewer
	Release()
}

var (
	_ Handle = (*Shared)(nil)
	_ Handle = (*Cell)(nil)
	_ Handle = (*Atomic)(nil)
	_ Handle = (*Locked)(nil)
)

type options struct {
	onRelease []func([]byte)
}

// Option configures a container at construction.
type Option func(*options)

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// OnRelease registers fn to be called with the container's final contents
// once its last reference is released.
func OnRelease(fn func([]byte)) Option {
	return func(o *options) {
		o.onRelease = append(o.onRelease, fn)
	}
}

// Pooled returns the container's contents to the libp2p buffer pool when its
// last reference is released. Use it with slices obtained from Get.
func Pooled() Option {
	return OnRelease(pool.Put)
}

// Get returns a slice of length n from the libp2p buffer pool, to be filled
// before it is handed to a container constructed with Pooled.
func Get(n int) []byte {
	return pool.Get(n)
}

func (o options) release(b []byte) {
	for _, fn := range o.onRelease {
		fn(b)
	}
}

// retain increments refs unless it has already dropped to zero.
func retain(refs *atomic.Int32) {
	for {
		n := refs.Load()
		if n <= 0 {
			panic(ErrReleased)
		}
		if refs.CompareAndSwap(n, n+1) {
			return
		}
	}
}

func overReleased(kind string) {
	log.Errorw("over-release", "container", kind)
	panic(errOverRelease)
}
