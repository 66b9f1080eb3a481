package cursor

import (
	"github.com/ipfs/go-sharedcursor/buffer"
)

// SharedCursor reads a *buffer.Shared. Like its buffer, it is confined to a
// single goroutine.
type SharedCursor struct {
	core[*buffer.Shared]
}

// NewShared returns a cursor at the start of s. The cursor holds its own
// reference to s until Close.
func NewShared(s *buffer.Shared) *SharedCursor {
	return &SharedCursor{core[*buffer.Shared]{buf: s.Retain()}}
}

// Bytes returns the unread part of the buffer, or nil once closed.
func (c *SharedCursor) Bytes() []byte {
	if c.closed {
		return nil
	}
	return tail(c.buf.Bytes(), c.pos)
}

func (c *SharedCursor) Consume(n int) error {
	return c.consume(n)
}

// Fork returns an independent cursor over the same buffer at the same
// position.
func (c *SharedCursor) Fork() (*SharedCursor, error) {
	if c.closed {
		return nil, ErrClosed
	}
	f := NewShared(c.buf)
	f.pos = c.pos
	return f, nil
}

func (c *SharedCursor) String() string {
	return c.format("SharedCursor")
}

// CellCursor reads a *buffer.Cell, taking a shared borrow for each operation.
// Operations fail with buffer.ErrBorrowConflict while the owner is inside
// Update.
type CellCursor struct {
	core[*buffer.Cell]
}

// NewCell returns a cursor at the start of c. The cursor holds its own
// reference to c until Close.
func NewCell(c *buffer.Cell) *CellCursor {
	return &CellCursor{core[*buffer.Cell]{buf: c.Retain()}}
}

func (c *CellCursor) Fork() (*CellCursor, error) {
	if c.closed {
		return nil, ErrClosed
	}
	f := NewCell(c.buf)
	f.pos = c.pos
	return f, nil
}

func (c *CellCursor) String() string {
	return c.format("CellCursor")
}

// AtomicCursor reads a *buffer.Atomic. The buffer may be shared by cursors on
// different goroutines; each cursor still belongs to one goroutine at a time.
type AtomicCursor struct {
	core[*buffer.Atomic]
}

// NewAtomic returns a cursor at the start of a. The cursor holds its own
// reference to a until Close.
func NewAtomic(a *buffer.Atomic) *AtomicCursor {
	return &AtomicCursor{core[*buffer.Atomic]{buf: a.Retain()}}
}

// Bytes returns the unread part of the buffer, or nil once closed.
func (c *AtomicCursor) Bytes() []byte {
	if c.closed {
		return nil
	}
	return tail(c.buf.Bytes(), c.pos)
}

func (c *AtomicCursor) Consume(n int) error {
	return c.consume(n)
}

func (c *AtomicCursor) Fork() (*AtomicCursor, error) {
	if c.closed {
		return nil, ErrClosed
	}
	f := NewAtomic(c.buf)
	f.pos = c.pos
	return f, nil
}

func (c *AtomicCursor) String() string {
	return c.format("AtomicCursor")
}

// LockedCursor reads a *buffer.Locked, holding its lock for each operation.
// Cursors over the same buffer therefore serialize, even for reads. WriteTo
// holds the lock while writing.
//
// A poisoned buffer makes every operation panic with buffer.ErrPoisoned.
type LockedCursor struct {
	core[*buffer.Locked]
}

// NewLocked returns a cursor at the start of l. The cursor holds its own
// reference to l until Close.
func NewLocked(l *buffer.Locked) *LockedCursor {
	return &LockedCursor{core[*buffer.Locked]{buf: l.Retain()}}
}

func (c *LockedCursor) Fork() (*LockedCursor, error) {
	if c.closed {
		return nil, ErrClosed
	}
	f := NewLocked(c.buf)
	f.pos = c.pos
	return f, nil
}

func (c *LockedCursor) String() string {
	return c.format("LockedCursor")
}
