package cursor

import (
	"fmt"
	"io"
	"math"
)

// SeekFrom describes the target of a seek. Build one with Start, End or
// Current.
type SeekFrom struct {
	whence int
	start  uint64
	offset int64
}

// Start seeks to n bytes from the start of the buffer. Offsets beyond the
// range of uint saturate. The buffer length is ignored, so the cursor may end
// up past the end.
func Start(n uint64) SeekFrom {
	return SeekFrom{whence: io.SeekStart, start: n}
}

// End seeks to n bytes relative to the length of the buffer.
func End(n int64) SeekFrom {
	return SeekFrom{whence: io.SeekEnd, offset: n}
}

// Current seeks to n bytes relative to the current position.
func Current(n int64) SeekFrom {
	return SeekFrom{whence: io.SeekCurrent, offset: n}
}

func (s SeekFrom) String() string {
	switch s.whence {
	case io.SeekStart:
		return fmt.Sprintf("Start(%d)", s.start)
	case io.SeekEnd:
		return fmt.Sprintf("End(%d)", s.offset)
	default:
		return fmt.Sprintf("Current(%d)", s.offset)
	}
}

// seekFrom converts io.Seeker arguments.
func seekFrom(offset int64, whence int) (SeekFrom, error) {
	switch whence {
	case io.SeekStart:
		if offset < 0 {
			return SeekFrom{}, ErrInvalidSeek
		}
		return Start(uint64(offset)), nil
	case io.SeekEnd:
		return End(offset), nil
	case io.SeekCurrent:
		return Current(offset), nil
	default:
		return SeekFrom{}, ErrInvalidWhence
	}
}

func saturateUint(n uint64) uint {
	if n > uint64(math.MaxUint) {
		return math.MaxUint
	}
	return uint(n)
}

func saturateInt(n int64) int {
	switch {
	case n > int64(math.MaxInt):
		return math.MaxInt
	case n < int64(math.MinInt):
		return math.MinInt
	default:
		return int(n)
	}
}

// offsetFrom returns base+n, failing if the result leaves [0, MaxUint].
func offsetFrom(base uint, n int64) (uint, error) {
	off := saturateInt(n)
	if off >= 0 {
		pos := base + uint(off)
		if pos < base {
			return 0, ErrInvalidSeek
		}
		return pos, nil
	}
	// -math.MinInt wraps back to itself, which as a uint is its magnitude.
	mag := uint(-off)
	if mag > base {
		return 0, ErrInvalidSeek
	}
	return base - mag, nil
}

// tail returns b[min(pos, len(b)):].
func tail(b []byte, pos uint) []byte {
	if pos >= uint(len(b)) {
		return nil
	}
	return b[pos:]
}
