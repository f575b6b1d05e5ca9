package internal

// Batcher holds tick enablement reports while graph edits are in progress.
type Batcher struct {
	// each nested batch increases the depth by 1
	depth int
	// a report was requested while batching
	held bool
}

func NewBatcher() *Batcher {
	return &Batcher{}
}

func (b *Batcher) IsBatching() bool {
	return b.depth > 0
}

// Hold records a report request and reports whether it must wait for the
// outermost batch to complete.
func (b *Batcher) Hold() bool {
	if b.depth == 0 {
		return false
	}
	b.held = true
	return true
}

// Batch runs fn. flush runs once the outermost batch completes, and only if
// a report was held meanwhile.
func (b *Batcher) Batch(fn, flush func()) {
	b.depth++
	defer func() {
		b.depth--
		if b.depth > 0 || !b.held {
			return
		}
		b.held = false
		if flush != nil {
			flush()
		}
	}()

	fn()
}

// Batch runs fn, typically a series of graph edits, and reports tick
// enablement once at the end instead of after each edit.
func (c *Container) Batch(fn func()) {
	c.batcher.Batch(fn, c.syncTickEnabled)
}
