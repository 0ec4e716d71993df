package gc

import (
	"math"
	"reflect"
	"unsafe"
)

// Finalizer is implemented by managed types that need teardown logic when the
// collector frees them. Finalize runs during sweep with the collector mutex
// released, so it may drop roots and mutate containers like any other code.
type Finalizer interface {
	Finalize()
}

var (
	pointerMarkerType   = reflect.TypeOf((*pointerMarker)(nil)).Elem()
	containerMarkerType = reflect.TypeOf((*containerMarker)(nil)).Elem()
)

// typeRecord stores what the collector knows about one managed type: its
// size, its destructor trampoline, and the byte offsets of every managed
// pointer and managed container embedded in it.
//
// Offsets are written at most once per type, when the record is created. The
// frozen flag is set when the first construction of the type completes; a
// construction that panics leaves it unset.
type typeRecord struct {
	typ      reflect.Type
	size     uintptr
	finalize func(payload unsafe.Pointer)

	ptrOffsets       []uint32
	containerOffsets []uint32
	offsetsFrozen    bool
}

// recordFor interns the record for T, learning its field offsets on first
// sight. Caller holds c.mu.
func recordFor[T any](c *Collector) *typeRecord {
	t := reflect.TypeFor[T]()
	if rec, ok := c.records[t]; ok {
		return rec
	}
	rec := &typeRecord{typ: t, size: t.Size()}
	var zero *T
	if _, ok := any(zero).(Finalizer); ok {
		rec.finalize = func(payload unsafe.Pointer) {
			any((*T)(payload)).(Finalizer).Finalize()
		}
	}
	rec.learnOffsets(t, 0)
	c.records[t] = rec
	return rec
}

// learnOffsets walks the type's layout and records each managed pointer and
// managed container field, recursing through plain nested structs and
// arrays. Node fields are recognized through their marker interfaces, so no
// field of a user type escapes the scan.
func (r *typeRecord) learnOffsets(t reflect.Type, base uintptr) {
	pt := reflect.PointerTo(t)
	switch {
	case pt.Implements(pointerMarkerType):
		r.ptrOffsets = append(r.ptrOffsets, r.checkedOffset(base))
	case pt.Implements(containerMarkerType):
		r.containerOffsets = append(r.containerOffsets, r.checkedOffset(base))
	default:
		switch t.Kind() {
		case reflect.Struct:
			for i := 0; i < t.NumField(); i++ {
				f := t.Field(i)
				r.learnOffsets(f.Type, base+f.Offset)
			}
		case reflect.Array:
			elem := t.Elem()
			for i := 0; i < t.Len(); i++ {
				r.learnOffsets(elem, base+uintptr(i)*elem.Size())
			}
		}
	}
}

func (r *typeRecord) checkedOffset(off uintptr) uint32 {
	if off > math.MaxUint32 {
		critical(ErrOffsetOverflow, "field offset %d in type %s", off, r.typ)
	}
	return uint32(off)
}

// containsAddress reports whether addr lies inside the payload range of the
// given allocation of this type.
func (r *typeRecord) containsAddress(addr unsafe.Pointer, a *allocation) bool {
	start := uintptr(a.payload)
	p := uintptr(addr)
	return p >= start && p < start+r.size
}
