package gc

import "unsafe"

// nodeKind distinguishes the two traceable node families. The collector needs
// the distinction in exactly two places: root set selection and offset table
// selection.
type nodeKind uint8

const (
	kindPointer nodeKind = iota
	kindContainer
)

// nodeBase is the shared base of managed pointers and managed containers.
// isRoot is decided once, at registration, and never changes afterwards.
type nodeBase struct {
	kind   nodeKind
	isRoot bool
}

// classifyNode decides whether a freshly created node is a field of an
// in-flight allocation or a free-standing root. The constructing stack is
// searched newest-first so that a nested MakeGc inside an outer constructor
// attributes inner nodes to the inner allocation.
//
// Caller holds c.mu.
func (c *Collector) classifyNode(addr unsafe.Pointer) (isRoot bool) {
	for i := len(c.constructing) - 1; i >= 0; i-- {
		a := c.constructing[i]
		if a.info.rec.containsAddress(addr, a) {
			return false
		}
	}
	return true
}

// registerPtrNode classifies a dynamically created pointer node and, when it
// is free-standing, enters it into the pointer root set. Caller holds c.mu.
func (c *Collector) registerPtrNode(p *ptrBase) {
	p.node.kind = kindPointer
	p.node.isRoot = c.classifyNode(unsafe.Pointer(p))
	if p.node.isRoot {
		c.ptrRoots[p] = struct{}{}
	}
}

// registerContainerNode does the same for container nodes. Caller holds c.mu.
func (c *Collector) registerContainerNode(ct *containerBase) {
	ct.node.kind = kindContainer
	ct.node.isRoot = c.classifyNode(unsafe.Pointer(ct))
	if ct.node.isRoot {
		c.containerRoots[ct] = struct{}{}
	}
}

// noCopy may be added to structs which must not be copied after first use.
// See https://golang.org/issues/8005#issuecomment-190753527 for details.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
