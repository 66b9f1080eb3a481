// Package frame reads and writes uvarint length-delimited frames, the
// framing used by CARv1 sections.
//
// Reading from a cursor.Buffered returns frames that alias the shared buffer,
// so a whole file can be walked without copying a byte.
package frame

import (
	"errors"
	"fmt"
	"io"

	logging "github.com/ipfs/go-log/v2"
	"github.com/multiformats/go-varint"
)

var log = logging.Logger("sharedcursor/frame")

// DefaultMaxFrameSize bounds the length prefix accepted by a Reader.
const DefaultMaxFrameSize uint64 = 32 << 20 // 32MiB

var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

type options struct {
	maxFrameSize    uint64
	zeroLengthAsEOF bool
}

// Option configures a Reader.
type Option func(*options)

func applyOptions(opts []Option) options {
	o := options{maxFrameSize: DefaultMaxFrameSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// MaxFrameSize sets the largest frame a Reader accepts.
func MaxFrameSize(n uint64) Option {
	return func(o *options) {
		o.maxFrameSize = n
	}
}

// ZeroLengthAsEOF treats a zero length prefix as the end of input, which
// allows null padding after the last frame.
func ZeroLengthAsEOF(enable bool) Option {
	return func(o *options) {
		o.zeroLengthAsEOF = enable
	}
}

// LdWrite writes the concatenation of d as a single frame.
func LdWrite(w io.Writer, d ...[]byte) error {
	var sum uint64
	for _, s := range d {
		sum += uint64(len(s))
	}

	buf := make([]byte, varint.MaxLenUvarint63)
	n := varint.PutUvarint(buf, sum)
	if _, err := w.Write(buf[:n]); err != nil {
		return err
	}

	for _, s := range d {
		if _, err := w.Write(s); err != nil {
			return err
		}
	}
	return nil
}

// LdSize returns the encoded size of the frame LdWrite would produce for d.
func LdSize(d ...[]byte) uint64 {
	var sum uint64
	for _, s := range d {
		sum += uint64(len(s))
	}
	return sum + uint64(varint.UvarintSize(sum))
}

func (o options) check(l uint64) error {
	if l > o.maxFrameSize {
		log.Debugw("rejecting frame", "size", l, "max", o.maxFrameSize)
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, l, o.maxFrameSize)
	}
	return nil
}
