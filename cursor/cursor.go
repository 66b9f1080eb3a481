// Package cursor provides independent read cursors over shared byte buffers.
//
// A cursor pairs a buffer container from package buffer with a private
// position. Many cursors may read the same buffer without copying it, each
// seeking and reading on its own. There is one cursor type per container:
//
//	SharedCursor  over *buffer.Shared
//	CellCursor    over *buffer.Cell
//	AtomicCursor  over *buffer.Atomic
//	LockedCursor  over *buffer.Locked
//
// All of them implement Cursor. SharedCursor and AtomicCursor also implement
// Buffered, exposing the unread bytes in place.
//
// The position is an unsigned machine word and may lie past the end of the
// buffer, in which case reads report io.EOF. The buffer length is looked up on
// every operation, so cursors over a Cell or Locked observe replacements made
// by the buffer's owner.
//
// A cursor is not safe for concurrent use. Fork one per goroutine.
package cursor

import (
	"errors"
	"io"
	"io/fs"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("sharedcursor")

// ErrInvalidSeek is returned when a seek would move the position below zero
// or above the largest uint. It matches fs.ErrInvalid under errors.Is.
var ErrInvalidSeek error = invalidSeekError{}

var (
	// ErrClosed is returned by every operation on a closed cursor.
	ErrClosed = errors.New("cursor is closed")

	// ErrInvalidWhence is returned by Seek for an unknown whence.
	ErrInvalidWhence = errors.New("invalid whence")

	// ErrNegativeOffset is returned by ReadAt for an offset below zero.
	ErrNegativeOffset = errors.New("negative offset")
)

type invalidSeekError struct{}

func (invalidSeekError) Error() string {
	return "invalid seek to a negative or overflowing position"
}

func (invalidSeekError) Is(target error) bool {
	return target == fs.ErrInvalid
}

// Cursor is a read position over a shared buffer.
type Cursor interface {
	io.Reader
	io.ReaderAt
	io.ByteReader
	io.WriterTo
	io.Seeker
	io.Closer

	// ReadExact fills p or fails with io.ErrUnexpectedEOF. On failure the
	// position has advanced past the bytes that were copied.
	ReadExact(p []byte) error

	// SeekTo moves the position and returns the new one. On error the
	// position is unchanged.
	SeekTo(s SeekFrom) (uint64, error)

	// Position returns the current position.
	Position() uint64

	// Size returns the current length of the buffer.
	Size() (int64, error)

	// Len returns the number of unread bytes, or 0 if the buffer cannot be
	// viewed.
	Len() int
}

// Buffered is a Cursor whose unread bytes can be inspected in place.
type Buffered interface {
	Cursor

	// Bytes returns the unread part of the buffer without advancing. The
	// slice aliases the shared buffer and must not be modified.
	Bytes() []byte

	// Consume advances the position by n, normally after inspecting Bytes.
	Consume(n int) error
}

var (
	_ Buffered = (*SharedCursor)(nil)
	_ Cursor   = (*CellCursor)(nil)
	_ Buffered = (*AtomicCursor)(nil)
	_ Cursor   = (*LockedCursor)(nil)
)
