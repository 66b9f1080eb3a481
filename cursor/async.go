package cursor

// Result is the outcome of an asynchronous operation: a byte count for reads,
// a position for seeks.
type Result struct {
	N   uint64
	Err error
}

// AsyncCursor presents an AtomicCursor through a start/poll interface for
// callers built around asynchronous I/O. Nothing here ever waits: every
// returned channel already holds its result.
type AsyncCursor struct {
	c *AtomicCursor
}

// Async returns an asynchronous view of c. Both share the same position.
func (c *AtomicCursor) Async() *AsyncCursor {
	return &AsyncCursor{c: c}
}

// Cursor returns the underlying cursor.
func (a *AsyncCursor) Cursor() *AtomicCursor {
	return a.c
}

// ReadAsync reads into p.
func (a *AsyncCursor) ReadAsync(p []byte) <-chan Result {
	n, err := a.c.Read(p)
	return resolved(Result{N: uint64(n), Err: err})
}

// StartSeek performs the seek. Its result is collected with PollComplete.
func (a *AsyncCursor) StartSeek(s SeekFrom) error {
	_, err := a.c.SeekTo(s)
	return err
}

// PollComplete reports the position reached by the last StartSeek.
func (a *AsyncCursor) PollComplete() <-chan Result {
	if a.c.closed {
		return resolved(Result{Err: ErrClosed})
	}
	return resolved(Result{N: a.c.Position()})
}

func resolved(r Result) <-chan Result {
	ch := make(chan Result, 1)
	ch <- r
	close(ch)
	return ch
}
