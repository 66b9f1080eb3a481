package buffer

// Cell holds bytes that its owner may replace between reads. Access goes
// through dynamically checked borrows: any number of concurrent View calls,
// or a single Update.
//
// Cell is not safe for concurrent use. Borrow accounting only guards against
// re-entrant access from within a View or Update callback.
type Cell struct {
	data []byte
	refs int
	// >0: shared borrows outstanding, -1: exclusive borrow outstanding.
	borrows int
	opts    options
}

// NewCell wraps b.
func NewCell(b []byte, opts ...Option) *Cell {
	return &Cell{data: b, refs: 1, opts: applyOptions(opts)}
}

// Retain adds a reference and returns c.
func (c *Cell) Retain() *Cell {
	if c.refs <= 0 {
		panic(ErrReleased)
	}
	c.refs++
	return c
}

// Release drops a reference.
func (c *Cell) Release() {
	c.refs--
	switch {
	case c.refs == 0:
		c.opts.release(c.data)
	case c.refs < 0:
		overReleased("cell")
	}
}

// Refs returns the number of live references.
func (c *Cell) Refs() int {
	return c.refs
}

// View calls fn with the contents under a shared borrow. It fails with
// ErrBorrowConflict while an Update is in progress.
func (c *Cell) View(fn func(b []byte)) error {
	if c.refs <= 0 {
		return ErrReleased
	}
	if c.borrows < 0 {
		log.Debugw("shared borrow during exclusive borrow", "container", "cell")
		return ErrBorrowConflict
	}
	c.borrows++
	defer func() { c.borrows-- }()
	fn(c.data)
	return nil
}

// Update replaces the contents with the result of fn under an exclusive
// borrow. It fails with ErrBorrowConflict while any other borrow is
// outstanding.
func (c *Cell) Update(fn func(b []byte) []byte) error {
	if c.refs <= 0 {
		return ErrReleased
	}
	if c.borrows != 0 {
		log.Debugw("exclusive borrow during outstanding borrow", "container", "cell", "borrows", c.borrows)
		return ErrBorrowConflict
	}
	c.borrows = -1
	defer func() { c.borrows = 0 }()
	c.data = fn(c.data)
	return nil
}
