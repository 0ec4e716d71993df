package gc

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// Collector is the process-wide collector. It exclusively owns every live
// allocation and holds the node graph's root sets; a single mutex guards all
// of its state.
type Collector struct {
	mu sync.Mutex

	// allocations is the set of live managed blocks. infoIndex maps each
	// block's header address back to its allocation, which validates
	// raw-to-managed conversions in O(1).
	allocations map[*allocation]struct{}
	infoIndex   map[uintptr]*allocation

	// Root sets. A node lives in exactly one of these, and only while it is
	// free-standing.
	ptrRoots       map[*ptrBase]struct{}
	containerRoots map[*containerBase]struct{}

	records map[reflect.Type]*typeRecord

	// constructing holds allocations between "memory carved" and
	// "constructor returned", newest last: nested MakeGc calls push inner
	// allocations on top. Entries double as mark roots so an in-flight
	// object cannot be swept from under its constructor.
	constructing []*allocation

	// gray is the scratch stack of allocations seen but not yet scanned,
	// reused across collections.
	gray []*allocation
}

var (
	sharedOnce     sync.Once
	sharedInstance *Collector
)

// sharedCollector returns the lazily initialized collector singleton.
func sharedCollector() *Collector {
	sharedOnce.Do(func() {
		sharedInstance = &Collector{
			allocations:    make(map[*allocation]struct{}),
			infoIndex:      make(map[uintptr]*allocation),
			ptrRoots:       make(map[*ptrBase]struct{}),
			containerRoots: make(map[*containerBase]struct{}),
			records:        make(map[reflect.Type]*typeRecord),
		}
	})
	return sharedInstance
}

// CollectGarbage runs one full mark-sweep collection and returns the number
// of user objects freed. It blocks every other collector operation for the
// duration of the reset, mark, and unlink phases; destructors run after the
// mutex is released so they may themselves use the collector.
func CollectGarbage() int {
	return sharedCollector().collect()
}

// AliveAllocationCount returns the number of live managed allocations.
func AliveAllocationCount() int {
	c := sharedCollector()
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.allocations)
}

// RootNodes returns the current sizes of the pointer and container root
// sets. Intended for diagnostics and tests.
func RootNodes() (pointerRoots, containerRoots int) {
	c := sharedCollector()
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ptrRoots), len(c.containerRoots)
}

// CollectorMutex exposes the collector mutex for callers that must
// synchronize external bookkeeping with collections.
func CollectorMutex() *sync.Mutex {
	return &sharedCollector().mu
}

func (c *Collector) collect() int {
	c.mu.Lock()
	locked := true
	defer func() {
		if locked {
			c.mu.Unlock()
		}
	}()

	// Reset phase: everything starts white. The gray buffer is cleared too,
	// in case an earlier collection aborted mid-mark.
	c.gray = c.gray[:0]
	for a := range c.allocations {
		a.info.color = colorWhite
	}

	// Mark phase: trace from every root pointer, every root container, and
	// every in-flight construction.
	for p := range c.ptrRoots {
		c.visit(p)
		c.drainGray()
	}
	for ct := range c.containerRoots {
		if ct.enumerate != nil {
			ct.enumerate(unsafe.Pointer(ct), c.visit)
		}
		c.drainGray()
	}
	for _, a := range c.constructing {
		if a.info.color == colorWhite {
			c.mark(a)
			c.drainGray()
		}
	}

	// Sweep phase: unlink every allocation still white.
	var doomed []*allocation
	for a := range c.allocations {
		if a.info.color != colorWhite {
			continue
		}
		delete(c.allocations, a)
		if _, ok := c.infoIndex[a.infoAddr()]; !ok {
			warn(fmt.Sprintf("allocation with payload %#x had no info index entry during sweep",
				uintptr(a.payload)))
		}
		delete(c.infoIndex, a.infoAddr())
		doomed = append(doomed, a)
	}
	alive := len(c.allocations)

	locked = false
	c.mu.Unlock()

	// Destructors run unlocked and in no particular order.
	for _, a := range doomed {
		if fin := a.info.rec.finalize; fin != nil {
			fin(a.payload)
		}
		a.info = nil
		a.payload = nil
	}
	if l := debugLog(); l != nil {
		l.Debug("collection finished", "freed", len(doomed), "alive", alive)
	}
	return len(doomed)
}

// visit queues a pointer's target for scanning when it is still white.
func (c *Collector) visit(p *ptrBase) {
	if t := p.target; t != nil && t.info.color == colorWhite {
		c.gray = append(c.gray, t)
	}
}

func (c *Collector) drainGray() {
	for n := len(c.gray); n > 0; n = len(c.gray) {
		a := c.gray[n-1]
		c.gray = c.gray[:n-1]
		c.mark(a)
	}
}

// mark colors an allocation black and queues every white allocation its
// pointer and container fields reference. Reaching a type that never
// completed a construction means the object cannot be scanned; the only
// exception is an allocation that is still on the constructing stack during
// its type's first construction.
func (c *Collector) mark(a *allocation) {
	a.info.color = colorBlack
	rec := a.info.rec
	if !rec.offsetsFrozen && !c.isConstructing(a) {
		critical(ErrOffsetsNotFrozen, "type %s", rec.typ)
	}
	for _, off := range rec.ptrOffsets {
		c.visit((*ptrBase)(unsafe.Add(a.payload, uintptr(off))))
	}
	for _, off := range rec.containerOffsets {
		ct := (*containerBase)(unsafe.Add(a.payload, uintptr(off)))
		if ct.enumerate != nil {
			ct.enumerate(unsafe.Pointer(ct), c.visit)
		}
	}
}
