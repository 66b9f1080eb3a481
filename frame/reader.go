package frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-varint"

	"github.com/ipfs/go-sharedcursor/cursor"
)

// Reader reads consecutive frames.
type Reader struct {
	r    io.Reader
	buf  cursor.Buffered
	br   io.ByteReader
	opts options
}

// NewReader returns a Reader over r. If r is a cursor.Buffered, frames are
// sliced out of the shared buffer in place.
func NewReader(r io.Reader, opts ...Option) *Reader {
	fr := &Reader{r: r, opts: applyOptions(opts)}
	if b, ok := r.(cursor.Buffered); ok {
		fr.buf = b
	} else {
		fr.br = toByteReader(r)
	}
	return fr
}

// Next returns the payload of the next frame. It returns io.EOF when the
// input ends cleanly between frames and io.ErrUnexpectedEOF when it ends
// inside one.
//
// Frames read from a cursor.Buffered alias the shared buffer and must not be
// modified. On that path a failed Next leaves the cursor where it was.
func (r *Reader) Next() ([]byte, error) {
	if r.buf != nil {
		return r.nextInPlace()
	}
	return r.nextCopy()
}

func (r *Reader) nextInPlace() ([]byte, error) {
	view := r.buf.Bytes()
	if len(view) == 0 {
		// Bytes is also empty on a closed cursor.
		if _, err := r.buf.Size(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	l, n, err := varint.FromUvarint(view)
	if err != nil {
		if errors.Is(err, varint.ErrUnderflow) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if l == 0 && r.opts.zeroLengthAsEOF {
		return nil, io.EOF
	}
	if err := r.opts.check(l); err != nil {
		return nil, err
	}
	if uint64(len(view)-n) < l {
		return nil, io.ErrUnexpectedEOF
	}

	end := n + int(l)
	if err := r.buf.Consume(end); err != nil {
		return nil, err
	}
	return view[n:end:end], nil
}

func (r *Reader) nextCopy() ([]byte, error) {
	l, err := varint.ReadUvarint(r.br)
	if err != nil {
		return nil, err
	}
	if l == 0 && r.opts.zeroLengthAsEOF {
		return nil, io.EOF
	}
	if err := r.opts.check(l); err != nil {
		return nil, err
	}

	buf := make([]byte, l)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if err == io.EOF {
			// don't silently pretend this is a clean EOF
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// ReadNode reads a frame holding a CID followed by block data.
func (r *Reader) ReadNode() (cid.Cid, []byte, error) {
	data, err := r.Next()
	if err != nil {
		return cid.Undef, nil, err
	}

	n, c, err := cid.CidFromBytes(data)
	if err != nil {
		return cid.Undef, nil, fmt.Errorf("reading frame cid: %w", err)
	}
	return c, data[n:], nil
}

type readerPlusByte struct {
	io.Reader
}

func toByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &readerPlusByte{r}
}

func (rb *readerPlusByte) ReadByte() (byte, error) {
	var p [1]byte
	_, err := io.ReadFull(rb, p[:])
	return p[0], err
}
