package gc

// pushConstructing records an allocation whose constructor has started.
// Newest entries sit at the top so classification can search them first.
// Caller holds c.mu.
func (c *Collector) pushConstructing(a *allocation) {
	c.constructing = append(c.constructing, a)
}

// popConstructing removes the allocation by identity, not position, so
// nested constructions unwind correctly even when a panic pops an outer
// entry while inner cleanup is still pending. A missing entry means the
// collector's bookkeeping is broken.
// Caller holds c.mu.
func (c *Collector) popConstructing(a *allocation) {
	for i := len(c.constructing) - 1; i >= 0; i-- {
		if c.constructing[i] != a {
			continue
		}
		c.constructing = append(c.constructing[:i], c.constructing[i+1:]...)
		return
	}
	critical(ErrConstructingStack, "allocation with payload %#x", uintptr(a.payload))
}

// isConstructing reports whether the allocation is currently between
// "memory carved" and "constructor returned". The stack is short lived and
// small; a linear scan is fine. Caller holds c.mu.
func (c *Collector) isConstructing(a *allocation) bool {
	for _, e := range c.constructing {
		if e == a {
			return true
		}
	}
	return false
}
