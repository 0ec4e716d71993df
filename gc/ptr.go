package gc

import "unsafe"

// pointerMarker is implemented by every managed pointer instantiation. The
// type registry uses it to recognize pointer fields during the offset scan.
type pointerMarker interface {
	gcPointerNode()
}

// ptrBase carries the state shared by every Ptr instantiation. It must be
// the first field of Ptr: the tracer reads embedded pointer fields through
// this layout at their learned offsets.
type ptrBase struct {
	node   nodeBase
	target *allocation
}

func (*ptrBase) gcPointerNode() {}

// Ptr is a traced, non-counting managed pointer to a T produced by MakeGc.
// Reachability is decided by tracing from the root set, so cycles of managed
// pointers are reclaimed.
//
// Free-standing pointers (MakeGc, NewPtr, FromRaw, Clone) are roots of the
// node graph and must be released with Drop. Pointer fields inside managed
// structs are plain Ptr values: the zero value is a null pointer, and the
// field is traced through its enclosing object rather than the root set.
//
// Do not copy a Ptr with plain assignment; the copy is invisible to the
// tracer. Use Clone for a new root, or SetPtr to overwrite a field.
type Ptr[T any] struct {
	ptrBase
}

// MakeGc allocates a managed T, runs init on the new payload when init is
// non-nil, and returns a root pointer to the finished object.
//
// init runs without the collector mutex held, so it may call MakeGc and any
// other collector operation; the constructing stack keeps the new allocation
// alive and classifiable for the whole window. If init panics the partial
// allocation is unregistered and the panic continues.
func MakeGc[T any](init func(*T)) *Ptr[T] {
	c := sharedCollector()
	p := NewPtr[T]()
	defer func() {
		if r := recover(); r != nil {
			p.Drop()
			panic(r)
		}
	}()
	registerNewAllocation(c, &p.ptrBase, init)
	return p
}

// NewPtr creates an empty free-standing pointer and registers it as a root.
func NewPtr[T any]() *Ptr[T] {
	c := sharedCollector()
	p := new(Ptr[T])
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registerPtrNode(&p.ptrBase)
	return p
}

// FromRaw creates a root pointer bound to a raw payload previously obtained
// from a managed pointer's Get. Binding a pointer that did not come from
// MakeGc is a critical error. A nil raw produces a null pointer.
func FromRaw[T any](raw *T) *Ptr[T] {
	p := NewPtr[T]()
	defer func() {
		if r := recover(); r != nil {
			p.Drop()
			panic(r)
		}
	}()
	p.Set(raw)
	return p
}

// Get returns the payload address, or nil for a null pointer.
func (p *Ptr[T]) Get() *T {
	if t := p.target; t != nil {
		return (*T)(t.payload)
	}
	return nil
}

// Equal reports whether both pointers reference the same payload. A nil
// other compares equal to a null pointer.
func (p *Ptr[T]) Equal(other *Ptr[T]) bool {
	if other == nil {
		return p.target == nil
	}
	return p.Get() == other.Get()
}

// Set rebinds the pointer to a raw payload, with the same contract as
// FromRaw: raw must be nil or an address previously returned by Get.
func (p *Ptr[T]) Set(raw *T) {
	c := sharedCollector()
	c.mu.Lock()
	defer c.mu.Unlock()
	p.bindLocked(c, raw)
}

// SetPtr copies another pointer's binding into p. Self-assignment is a
// no-op; a nil other clears the binding.
func (p *Ptr[T]) SetPtr(other *Ptr[T]) {
	if other == p {
		return
	}
	c := sharedCollector()
	c.mu.Lock()
	defer c.mu.Unlock()
	if other == nil {
		p.target = nil
		return
	}
	p.target = other.target
}

// MoveFrom transfers another pointer's binding into p, leaving other null.
func (p *Ptr[T]) MoveFrom(other *Ptr[T]) {
	if other == p {
		return
	}
	c := sharedCollector()
	c.mu.Lock()
	defer c.mu.Unlock()
	p.target = other.target
	other.target = nil
}

// Clone returns a new root pointer with the same binding.
func (p *Ptr[T]) Clone() *Ptr[T] {
	c := sharedCollector()
	out := new(Ptr[T])
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registerPtrNode(&out.ptrBase)
	out.target = p.target
	return out
}

// Drop releases a free-standing pointer: it leaves the root set and its
// binding is cleared. Dropping twice is harmless. Pointer fields inside
// managed objects are never dropped; they die with their object.
func (p *Ptr[T]) Drop() {
	c := sharedCollector()
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.node.isRoot {
		delete(c.ptrRoots, &p.ptrBase)
	}
	p.target = nil
}

// bindLocked resolves a raw payload to its allocation through the info
// index. The header sits directly before the payload in the block, so the
// candidate header address is payload minus header size; an address with no
// index entry was not produced by MakeGc. Caller holds c.mu.
func (p *Ptr[T]) bindLocked(c *Collector, raw *T) {
	if raw == nil {
		p.target = nil
		return
	}
	addr := uintptr(unsafe.Pointer(raw))
	h := headerSize[T]()
	if addr < h {
		critical(ErrNotManagedPointer, "address %#x has no room for an allocation header", addr)
	}
	a, ok := c.infoIndex[addr-h]
	if !ok || uintptr(a.payload) != addr {
		critical(ErrNotManagedPointer, "address %#x", addr)
	}
	p.target = a
}
