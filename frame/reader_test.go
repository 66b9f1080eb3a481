package frame

import (
	"bytes"
	"io"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/go-test/random"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"

	"github.com/ipfs/go-sharedcursor/buffer"
	"github.com/ipfs/go-sharedcursor/cursor"
)

func encode(t *testing.T, frames ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range frames {
		require.NoError(t, LdWrite(&buf, f))
	}
	return buf.Bytes()
}

type opener func(b []byte) io.Reader

var openers = map[string]opener{
	"shared": func(b []byte) io.Reader {
		return cursor.NewShared(buffer.NewShared(b))
	},
	"atomic": func(b []byte) io.Reader {
		return cursor.NewAtomic(buffer.NewAtomic(b))
	},
	"cell": func(b []byte) io.Reader {
		return cursor.NewCell(buffer.NewCell(b))
	},
	"locked": func(b []byte) io.Reader {
		return cursor.NewLocked(buffer.NewLocked(b))
	},
	"plain": func(b []byte) io.Reader {
		return struct{ io.Reader }{bytes.NewReader(b)}
	},
}

func TestLdSize(t *testing.T) {
	for _, n := range []int{0, 1, 127, 128, 300, 1 << 16} {
		payload := make([]byte, n)
		var buf bytes.Buffer
		require.NoError(t, LdWrite(&buf, payload[:n/2], payload[n/2:]))
		require.Equal(t, uint64(buf.Len()), LdSize(payload[:n/2], payload[n/2:]))
	}
}

func TestReaderFrames(t *testing.T) {
	frames := [][]byte{
		[]byte("first"),
		{},
		random.Bytes(300),
		[]byte("last"),
	}
	data := encode(t, frames...)

	for name, open := range openers {
		open := open
		t.Run(name, func(t *testing.T) {
			r := NewReader(open(data))
			for i, want := range frames {
				got, err := r.Next()
				require.NoError(t, err, "frame %d", i)
				require.Equal(t, len(want), len(got))
				require.True(t, bytes.Equal(want, got))
			}
			_, err := r.Next()
			require.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestReaderInPlace(t *testing.T) {
	data := encode(t, []byte("abc"), []byte("defg"))
	c := cursor.NewShared(buffer.NewShared(data))
	r := NewReader(c)

	f, err := r.Next()
	require.NoError(t, err)
	require.Same(t, &data[1], &f[0], "frame must alias the buffer")
	require.Equal(t, 3, cap(f))
	require.Equal(t, uint64(4), c.Position())

	f, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, "defg", string(f))
	require.Equal(t, uint64(len(data)), c.Position())
}

func TestReaderTruncated(t *testing.T) {
	full := encode(t, []byte("hello world"))
	// a multi-byte prefix cut in half
	longPrefix := encode(t, make([]byte, 200))[:1]

	for name, open := range openers {
		open := open
		t.Run(name, func(t *testing.T) {
			_, err := NewReader(open(full[:5])).Next()
			require.ErrorIs(t, err, io.ErrUnexpectedEOF)

			_, err = NewReader(open(full[:1])).Next()
			require.ErrorIs(t, err, io.ErrUnexpectedEOF)

			_, err = NewReader(open(longPrefix)).Next()
			require.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}
}

func TestReaderTruncatedLeavesCursor(t *testing.T) {
	data := encode(t, []byte("ok"), []byte("truncated"))
	data = data[:len(data)-2]
	c := cursor.NewAtomic(buffer.NewAtomic(data))
	r := NewReader(c)

	_, err := r.Next()
	require.NoError(t, err)
	pos := c.Position()

	_, err = r.Next()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Equal(t, pos, c.Position())
}

func TestReaderClosedCursor(t *testing.T) {
	data := encode(t, []byte("frame"))
	for name, open := range openers {
		if name == "plain" {
			continue
		}
		open := open
		t.Run(name, func(t *testing.T) {
			c := open(data).(cursor.Cursor)
			require.NoError(t, c.Close())
			_, err := NewReader(c).Next()
			require.ErrorIs(t, err, cursor.ErrClosed)
		})
	}
}

func TestReaderMaxFrameSize(t *testing.T) {
	data := encode(t, make([]byte, 100))
	for name, open := range openers {
		open := open
		t.Run(name, func(t *testing.T) {
			_, err := NewReader(open(data), MaxFrameSize(99)).Next()
			require.ErrorIs(t, err, ErrFrameTooLarge)

			f, err := NewReader(open(data), MaxFrameSize(100)).Next()
			require.NoError(t, err)
			require.Len(t, f, 100)
		})
	}
}

func TestReaderZeroLengthAsEOF(t *testing.T) {
	data := append(encode(t, []byte("data")), 0, 0, 0)
	for name, open := range openers {
		open := open
		t.Run(name, func(t *testing.T) {
			r := NewReader(open(data), ZeroLengthAsEOF(true))
			f, err := r.Next()
			require.NoError(t, err)
			require.Equal(t, "data", string(f))
			_, err = r.Next()
			require.ErrorIs(t, err, io.EOF)

			r = NewReader(open(data))
			for i := 0; i < 4; i++ {
				_, err = r.Next()
				require.NoError(t, err)
			}
			_, err = r.Next()
			require.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestReadNode(t *testing.T) {
	block := []byte("block data")
	mh, err := multihash.Sum(block, multihash.SHA2_256, -1)
	require.NoError(t, err)
	c := cid.NewCidV1(cid.Raw, mh)

	var buf bytes.Buffer
	require.NoError(t, LdWrite(&buf, c.Bytes(), block))
	require.NoError(t, LdWrite(&buf, []byte{0xff, 0xff}))

	for name, open := range openers {
		open := open
		t.Run(name, func(t *testing.T) {
			r := NewReader(open(buf.Bytes()))
			gotCid, data, err := r.ReadNode()
			require.NoError(t, err)
			require.True(t, c.Equals(gotCid))
			require.Equal(t, block, data)

			_, _, err = r.ReadNode()
			require.Error(t, err)

			_, _, err = r.ReadNode()
			require.ErrorIs(t, err, io.EOF)
		})
	}
}
