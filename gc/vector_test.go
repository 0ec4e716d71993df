package gc

import "testing"

type vecElem struct {
	id int
}

type vecOwner struct {
	V Vector[vecOwner]
}

// TestVectorFieldSelfInsert inserts the owner into its own vector field and
// verifies the vector is traced as a child, not a root, and the cycle is
// collected.
func TestVectorFieldSelfInsert(t *testing.T) {
	baseAlive, basePtr, baseCt := settle()

	f := MakeGc[vecOwner](nil)
	f.Get().V.PushBack(f.Get())

	p, ct := RootNodes()
	if p-basePtr != 1 || ct-baseCt != 0 {
		t.Fatalf("root deltas = (%d, %d), want (1, 0)", p-basePtr, ct-baseCt)
	}
	if got := AliveAllocationCount() - baseAlive; got != 1 {
		t.Fatalf("alive delta = %d, want 1", got)
	}

	f.Drop()
	if freed := CollectGarbage(); freed != 1 {
		t.Fatalf("CollectGarbage() = %d, want 1", freed)
	}
}

// TestRootVectorKeepsElementsAlive verifies objects referenced only by a
// free-standing vector survive collection.
func TestRootVectorKeepsElementsAlive(t *testing.T) {
	baseAlive, _, baseCt := settle()

	v := NewVector[vecElem]()
	if _, ct := RootNodes(); ct-baseCt != 1 {
		t.Fatalf("container root delta = %d, want 1", ct-baseCt)
	}
	for i := 0; i < 3; i++ {
		v.EmplaceBack(func(e *vecElem) { e.id = i })
	}
	if got := v.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	if freed := CollectGarbage(); freed != 0 {
		t.Fatalf("CollectGarbage() = %d, want 0", freed)
	}
	for i := 0; i < 3; i++ {
		if got := v.At(i).Get().id; got != i {
			t.Errorf("At(%d).id = %d, want %d", i, got, i)
		}
	}

	v.Drop()
	if freed := CollectGarbage(); freed != 3 {
		t.Fatalf("CollectGarbage() after drop = %d, want 3", freed)
	}
	if got := AliveAllocationCount() - baseAlive; got != 0 {
		t.Errorf("alive delta = %d, want 0", got)
	}
}

// TestVectorInsertEraseOrdering checks element ordering across insert and
// erase operations.
func TestVectorInsertEraseOrdering(t *testing.T) {
	settle()

	v := NewVector[vecElem]()
	defer func() {
		v.Drop()
		CollectGarbage()
	}()

	for i := 0; i < 4; i++ {
		v.EmplaceBack(func(e *vecElem) { e.id = i })
	}
	extra := MakeGc[vecElem](func(e *vecElem) { e.id = 99 })
	v.Insert(2, extra.Get())
	extra.Drop()

	wantIDs := []int{0, 1, 99, 2, 3}
	for i, want := range wantIDs {
		if got := v.At(i).Get().id; got != want {
			t.Errorf("after insert: At(%d).id = %d, want %d", i, got, want)
		}
	}

	v.Erase(2)
	v.EraseRange(0, 2)
	wantIDs = []int{2, 3}
	if got := v.Len(); got != len(wantIDs) {
		t.Fatalf("Len() = %d, want %d", got, len(wantIDs))
	}
	for i, want := range wantIDs {
		if got := v.At(i).Get().id; got != want {
			t.Errorf("after erase: At(%d).id = %d, want %d", i, got, want)
		}
	}
}

// TestVectorResizeReleasesTruncated verifies shrinking releases bindings and
// growing appends null pointers.
func TestVectorResizeReleasesTruncated(t *testing.T) {
	settle()

	v := NewVector[vecElem]()
	defer func() {
		v.Drop()
		CollectGarbage()
	}()
	for i := 0; i < 3; i++ {
		v.EmplaceBack(func(e *vecElem) { e.id = i })
	}

	v.Resize(1)
	if freed := CollectGarbage(); freed != 2 {
		t.Fatalf("CollectGarbage() after shrink = %d, want 2", freed)
	}
	if got := v.At(0).Get().id; got != 0 {
		t.Errorf("surviving element id = %d, want 0", got)
	}

	v.Resize(3)
	if got := v.Len(); got != 3 {
		t.Fatalf("Len() after grow = %d, want 3", got)
	}
	for i := 1; i < 3; i++ {
		if got := v.At(i).Get(); got != nil {
			t.Errorf("grown element %d = %p, want nil", i, got)
		}
	}
}

// TestVectorClearReleasesAll verifies Clear drops every binding while
// keeping capacity.
func TestVectorClearReleasesAll(t *testing.T) {
	settle()

	v := NewVector[vecElem]()
	defer func() {
		v.Drop()
		CollectGarbage()
	}()
	for i := 0; i < 4; i++ {
		v.EmplaceBack(nil)
	}
	capBefore := v.Cap()

	v.Clear()
	if got := v.Len(); got != 0 {
		t.Fatalf("Len() after clear = %d, want 0", got)
	}
	if got := v.Cap(); got != capBefore {
		t.Errorf("Cap() after clear = %d, want %d", got, capBefore)
	}
	if freed := CollectGarbage(); freed != 4 {
		t.Fatalf("CollectGarbage() after clear = %d, want 4", freed)
	}
}

// TestVectorMoveLeavesSourceEmpty verifies move semantics on vectors keep
// the elements alive through the destination.
func TestVectorMoveLeavesSourceEmpty(t *testing.T) {
	settle()

	src := NewVector[vecElem]()
	dst := NewVector[vecElem]()
	defer func() {
		src.Drop()
		dst.Drop()
		CollectGarbage()
	}()
	for i := 0; i < 2; i++ {
		src.EmplaceBack(func(e *vecElem) { e.id = i })
	}

	dst.MoveFrom(src)
	if got := src.Len(); got != 0 {
		t.Fatalf("moved-from Len() = %d, want 0", got)
	}
	src.Range(func(int, *Ptr[vecElem]) bool {
		t.Error("moved-from vector yielded an element")
		return false
	})
	if freed := CollectGarbage(); freed != 0 {
		t.Fatalf("CollectGarbage() after move = %d, want 0", freed)
	}
	if got := dst.Len(); got != 2 {
		t.Fatalf("moved-to Len() = %d, want 2", got)
	}
	for i := 0; i < 2; i++ {
		if got := dst.At(i).Get().id; got != i {
			t.Errorf("At(%d).id = %d, want %d", i, got, i)
		}
	}
}

// TestVectorAssignCopiesBindings verifies assignment copies bindings so both
// vectors keep the elements alive independently.
func TestVectorAssignCopiesBindings(t *testing.T) {
	settle()

	src := NewVector[vecElem]()
	dst := NewVector[vecElem]()
	src.EmplaceBack(func(e *vecElem) { e.id = 5 })
	dst.Assign(src)

	src.Drop()
	if freed := CollectGarbage(); freed != 0 {
		t.Fatalf("CollectGarbage() = %d, want 0 (copy keeps element alive)", freed)
	}
	if got := dst.At(0).Get().id; got != 5 {
		t.Errorf("At(0).id = %d, want 5", got)
	}

	dst.Drop()
	if freed := CollectGarbage(); freed != 1 {
		t.Fatalf("CollectGarbage() = %d, want 1", freed)
	}
}

// TestVectorCloneIsRoot verifies Clone produces an independent root vector.
func TestVectorCloneIsRoot(t *testing.T) {
	_, _, baseCt := settle()

	v := NewVector[vecElem]()
	v.EmplaceBack(func(e *vecElem) { e.id = 3 })
	cl := v.Clone()
	if _, ct := RootNodes(); ct-baseCt != 2 {
		t.Fatalf("container root delta = %d, want 2", ct-baseCt)
	}
	if got := cl.At(0).Get().id; got != 3 {
		t.Errorf("cloned element id = %d, want 3", got)
	}

	v.Drop()
	cl.Drop()
	if freed := CollectGarbage(); freed != 1 {
		t.Fatalf("CollectGarbage() = %d, want 1", freed)
	}
}

// TestVectorReserveAndShrink checks capacity management.
func TestVectorReserveAndShrink(t *testing.T) {
	settle()

	v := NewVector[vecElem]()
	defer func() {
		v.Drop()
		CollectGarbage()
	}()

	v.Reserve(16)
	if got := v.Cap(); got < 16 {
		t.Fatalf("Cap() after Reserve(16) = %d, want >= 16", got)
	}
	v.PushBack(nil)
	v.PushBack(nil)
	v.ShrinkToFit()
	if got := v.Cap(); got != 2 {
		t.Errorf("Cap() after ShrinkToFit = %d, want 2", got)
	}
	if got := v.Len(); got != 2 {
		t.Errorf("Len() after ShrinkToFit = %d, want 2", got)
	}
}

// TestVectorPopBack verifies PopBack releases the last binding.
func TestVectorPopBack(t *testing.T) {
	settle()

	v := NewVector[vecElem]()
	defer func() {
		v.Drop()
		CollectGarbage()
	}()
	v.EmplaceBack(func(e *vecElem) { e.id = 1 })
	v.EmplaceBack(func(e *vecElem) { e.id = 2 })

	if got := v.Back().Get().id; got != 2 {
		t.Fatalf("Back().id = %d, want 2", got)
	}
	v.PopBack()
	if got := v.Len(); got != 1 {
		t.Fatalf("Len() after PopBack = %d, want 1", got)
	}
	if freed := CollectGarbage(); freed != 1 {
		t.Fatalf("CollectGarbage() after PopBack = %d, want 1", freed)
	}
}
