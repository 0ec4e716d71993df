package gc

import "unsafe"

// containerMarker is implemented by every managed container. The type
// registry uses it to recognize container fields during the offset scan.
type containerMarker interface {
	gcContainerNode()
}

// enumerateFunc is the static per-container-type function that yields each
// managed pointer the container currently stores. self is the container's
// own address; implementations cast it back to their concrete type. No
// dynamic dispatch is involved.
type enumerateFunc func(self unsafe.Pointer, visit func(*ptrBase))

// containerBase is the shared base of managed containers.
//
// Contract for implementing a new container type:
//   - containerBase must be the container's first field, so the tracer can
//     reach it through a learned offset;
//   - elements are managed pointers stored by value; stored copies are never
//     registered as roots;
//   - every operation that mutates the backing storage, and every copy, move
//     or assign of the container itself, runs under the collector mutex;
//   - the static enumeration function is installed with ensureEnumerator
//     before the first element is stored;
//   - a free-standing container calls dropLocked when released.
//
// Managed containers must not be nested inside managed containers.
type containerBase struct {
	noCopy    noCopy
	node      nodeBase
	enumerate enumerateFunc
}

func (*containerBase) gcContainerNode() {}

// ensureEnumerator installs the container's enumeration function. An
// embedded container field starts life as a zero value; the function is
// installed on its first mutation, under the collector mutex, so the tracer
// only ever observes "no enumerator, hence empty" or a coherent sequence.
// Caller holds c.mu.
func (ct *containerBase) ensureEnumerator(fn enumerateFunc) {
	if ct.enumerate == nil {
		ct.enumerate = fn
	}
}

// dropLocked removes a free-standing container from the root set.
// Caller holds c.mu.
func (ct *containerBase) dropLocked(c *Collector) {
	if ct.node.isRoot {
		delete(c.containerRoots, ct)
	}
}
