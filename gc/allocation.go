package gc

import (
	"fmt"
	"unsafe"
)

// color is an allocation's mark state. The gray stage of the classic
// tri-color scheme lives in the collector's gray buffer instead of the
// header.
type color uint8

const (
	colorWhite color = iota // not reached yet; swept if still white
	colorBlack              // reached by the tracer
)

// allocationInfo is the header co-located with each payload at the start of
// its block.
type allocationInfo struct {
	color color
	rec   *typeRecord
}

// blockFor is the contiguous [ header | payload ] layout of one managed
// block. The compiler pads the header so the payload is aligned for T;
// subtracting the header size from a payload address recovers the header.
type blockFor[T any] struct {
	info    allocationInfo
	payload T
}

// headerSize returns the byte distance from block start to payload for T.
func headerSize[T any]() uintptr {
	var b blockFor[T]
	return unsafe.Offsetof(b.payload)
}

// allocation is the collector's handle on one managed block. The info
// pointer keeps the block reachable for the host runtime until sweep drops
// it.
type allocation struct {
	info    *allocationInfo
	payload unsafe.Pointer
}

func (a *allocation) infoAddr() uintptr {
	return uintptr(unsafe.Pointer(a.info))
}

// registerNewAllocation carves a block for a new T, registers it with the
// collector, runs the user initializer, and binds dst to the finished
// allocation.
//
// The collector mutex is held while the allocation is registered and again
// while the construction guard is released, but not while init
// runs: init is user code and may call MakeGc and every other collector
// operation. The allocation sits on the constructing stack for the whole
// window, which keeps a concurrent collection from sweeping it and lets
// nodes created inside init classify themselves against it.
//
// If init panics the partial allocation is unregistered, the type's offsets
// stay unfrozen, and the panic continues.
func registerNewAllocation[T any](c *Collector, dst *ptrBase, init func(*T)) *T {
	blk := new(blockFor[T])
	alloc := &allocation{info: &blk.info, payload: unsafe.Pointer(&blk.payload)}

	var rec *typeRecord
	func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		rec = recordFor[T](c)
		blk.info = allocationInfo{color: colorWhite, rec: rec}
		c.allocations[alloc] = struct{}{}
		c.infoIndex[alloc.infoAddr()] = alloc
		c.pushConstructing(alloc)
	}()
	if l := debugLog(); l != nil {
		l.Debug("allocation registered",
			"type", rec.typ.String(), "payload", fmt.Sprintf("%#x", uintptr(alloc.payload)))
	}

	constructed := false
	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.popConstructing(alloc)
		if !constructed {
			delete(c.allocations, alloc)
			delete(c.infoIndex, alloc.infoAddr())
			return
		}
		rec.offsetsFrozen = true
		dst.target = alloc
	}()
	if init != nil {
		init(&blk.payload)
	}
	constructed = true
	return &blk.payload
}
