package gc

import "errors"

var (
	// ErrNotManagedPointer reports an attempt to bind a managed pointer to a
	// raw pointer that was not produced by MakeGc.
	ErrNotManagedPointer = errors.New("raw pointer was not produced by MakeGc")

	// ErrOffsetOverflow reports a node field whose byte offset does not fit
	// in the 32-bit offset table.
	ErrOffsetOverflow = errors.New("node field offset exceeds 32-bit limit")

	// ErrConstructingStack reports a construction guard that could not find
	// its allocation on the constructing stack.
	ErrConstructingStack = errors.New("allocation missing from constructing stack")

	// ErrOffsetsNotFrozen reports that marking reached an allocation whose
	// type never completed a construction.
	ErrOffsetsNotFrozen = errors.New("marking reached a type with unfrozen field offsets")
)
