package cursor

import (
	"fmt"
	"io"
	"math"

	"go.uber.org/zap/zapcore"

	"github.com/ipfs/go-sharedcursor/buffer"
)

// core holds the position arithmetic and read path shared by every cursor.
// The only thing that differs between cursors is how H lends out its bytes.
type core[H buffer.Handle] struct {
	buf    H
	pos    uint
	closed bool
}

func (c *core[H]) view(fn func(b []byte)) error {
	if c.closed {
		return ErrClosed
	}
	return c.buf.View(fn)
}

// Read copies unread bytes into p. It returns io.EOF once the position is at
// or past the end of the buffer.
func (c *core[H]) Read(p []byte) (int, error) {
	var n int
	eof := false
	err := c.view(func(b []byte) {
		rest := tail(b, c.pos)
		if len(rest) == 0 {
			eof = true
			return
		}
		n = copy(p, rest)
	})
	if err != nil {
		return 0, err
	}
	if eof {
		return 0, io.EOF
	}
	c.pos += uint(n)
	return n, nil
}

func (c *core[H]) ReadExact(p []byte) error {
	var n int
	err := c.view(func(b []byte) {
		n = copy(p, tail(b, c.pos))
	})
	if err != nil {
		return err
	}
	c.pos += uint(n)
	if n < len(p) {
		return io.ErrUnexpectedEOF
	}
	return nil
}

// ReadAt reads len(p) bytes at off without moving the position.
func (c *core[H]) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	var n int
	err := c.view(func(b []byte) {
		if off < int64(len(b)) {
			n = copy(p, b[off:])
		}
	})
	if err != nil {
		return 0, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (c *core[H]) ReadByte() (byte, error) {
	var (
		v   byte
		eof bool
	)
	err := c.view(func(b []byte) {
		rest := tail(b, c.pos)
		if len(rest) == 0 {
			eof = true
			return
		}
		v = rest[0]
	})
	if err != nil {
		return 0, err
	}
	if eof {
		return 0, io.EOF
	}
	c.pos++
	return v, nil
}

// WriteTo writes the unread bytes straight from the buffer to w.
func (c *core[H]) WriteTo(w io.Writer) (int64, error) {
	var (
		n, want int
		werr    error
	)
	err := c.view(func(b []byte) {
		rest := tail(b, c.pos)
		want = len(rest)
		if want > 0 {
			n, werr = w.Write(rest)
		}
	})
	if err != nil {
		return 0, err
	}
	c.pos += uint(n)
	if werr == nil && n < want {
		werr = io.ErrShortWrite
	}
	return int64(n), werr
}

func (c *core[H]) SeekTo(s SeekFrom) (uint64, error) {
	pos, err := c.target(s)
	if err != nil {
		return 0, err
	}
	c.pos = pos
	return uint64(pos), nil
}

// Seek implements io.Seeker. Targets that do not fit an int64 are rejected
// with ErrInvalidSeek.
func (c *core[H]) Seek(offset int64, whence int) (int64, error) {
	s, err := seekFrom(offset, whence)
	if err != nil {
		return 0, err
	}
	pos, err := c.target(s)
	if err != nil {
		return 0, err
	}
	if uint64(pos) > math.MaxInt64 {
		log.Debugw("seek target does not fit int64", "from", s, "target", uint64(pos))
		return 0, ErrInvalidSeek
	}
	c.pos = pos
	return int64(pos), nil
}

func (c *core[H]) target(s SeekFrom) (uint, error) {
	if c.closed {
		return 0, ErrClosed
	}
	var (
		pos uint
		err error
	)
	switch s.whence {
	case io.SeekStart:
		return saturateUint(s.start), nil
	case io.SeekEnd:
		var size int
		if err := c.buf.View(func(b []byte) { size = len(b) }); err != nil {
			return 0, err
		}
		pos, err = offsetFrom(uint(size), s.offset)
	default:
		pos, err = offsetFrom(c.pos, s.offset)
	}
	if err != nil {
		log.Debugw("rejected seek", "from", s, "pos", uint64(c.pos))
	}
	return pos, err
}

// consume is the unchecked half of a Bytes/Consume pair.
func (c *core[H]) consume(n int) error {
	if c.closed {
		return ErrClosed
	}
	if n < 0 {
		return ErrInvalidSeek
	}
	pos, err := offsetFrom(c.pos, int64(n))
	if err != nil {
		return err
	}
	c.pos = pos
	return nil
}

func (c *core[H]) Position() uint64 {
	return uint64(c.pos)
}

func (c *core[H]) Size() (int64, error) {
	var size int
	if err := c.view(func(b []byte) { size = len(b) }); err != nil {
		return 0, err
	}
	return int64(size), nil
}

func (c *core[H]) Len() int {
	var n int
	_ = c.view(func(b []byte) { n = len(tail(b, c.pos)) })
	return n
}

// Close releases the cursor's reference to the buffer.
func (c *core[H]) Close() error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.buf.Release()
	return nil
}

// MarshalLogObject renders the buffer contents and position as structured
// log fields.
func (c *core[H]) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint64("pos", uint64(c.pos))
	return c.view(func(b []byte) {
		enc.AddBinary("data", b)
	})
}

func (c *core[H]) format(name string) string {
	var data string
	err := c.view(func(b []byte) {
		data = fmt.Sprint(b)
	})
	if err != nil {
		data = "<" + err.Error() + ">"
	}
	return fmt.Sprintf("%s{data: %s, pos: %d}", name, data, c.pos)
}
