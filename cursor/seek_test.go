package cursor

import (
	"errors"
	"io"
	"io/fs"
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
)

func TestSaturateUint(t *testing.T) {
	require.Equal(t, uint(0), saturateUint(0))
	require.Equal(t, uint(12), saturateUint(12))
	require.Equal(t, uint(math.MaxUint), saturateUint(math.MaxUint64))
}

func TestSaturateInt(t *testing.T) {
	require.Equal(t, 0, saturateInt(0))
	require.Equal(t, -7, saturateInt(-7))
	require.Equal(t, math.MaxInt, saturateInt(math.MaxInt64))
	require.Equal(t, math.MinInt, saturateInt(math.MinInt64))
}

func TestOffsetFrom(t *testing.T) {
	tests := []struct {
		name    string
		base    uint
		off     int64
		want    uint
		wantErr bool
	}{
		{"zero", 5, 0, 5, false},
		{"forward", 5, 10, 15, false},
		{"backward", 5, -5, 0, false},
		{"underflow", 5, -6, 0, true},
		{"overflow", math.MaxUint, 1, 0, true},
		{"max", math.MaxUint - 1, 1, math.MaxUint, false},
		{"min offset from zero", 0, math.MinInt64, 0, true},
		{"min offset from max", math.MaxUint, math.MinInt64, math.MaxInt, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := offsetFrom(tt.base, tt.off)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSeek)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestOffsetFromAddSubInverse(t *testing.T) {
	f := func(base uint32, off int32) bool {
		pos, err := offsetFrom(uint(base), int64(off))
		if int64(base)+int64(off) < 0 {
			return errors.Is(err, ErrInvalidSeek)
		}
		if err != nil || pos != uint(int64(base)+int64(off)) {
			return false
		}
		back, err := offsetFrom(pos, -int64(off))
		return err == nil && back == uint(base)
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestSeekFromIO(t *testing.T) {
	s, err := seekFrom(3, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, Start(3), s)

	s, err = seekFrom(-3, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, End(-3), s)

	s, err = seekFrom(-3, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, Current(-3), s)

	_, err = seekFrom(-1, io.SeekStart)
	require.ErrorIs(t, err, ErrInvalidSeek)

	_, err = seekFrom(0, 42)
	require.ErrorIs(t, err, ErrInvalidWhence)
}

func TestSeekFromString(t *testing.T) {
	require.Equal(t, "Start(7)", Start(7).String())
	require.Equal(t, "End(-2)", End(-2).String())
	require.Equal(t, "Current(0)", Current(0).String())
}

func TestInvalidSeekError(t *testing.T) {
	require.EqualError(t, ErrInvalidSeek, "invalid seek to a negative or overflowing position")
	require.ErrorIs(t, ErrInvalidSeek, fs.ErrInvalid)
	require.NotErrorIs(t, ErrInvalidSeek, fs.ErrNotExist)
}
