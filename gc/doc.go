// Package gc is a small, embeddable tracing garbage collector for heap
// objects that are otherwise managed by hand.
//
// Objects enter the managed heap through MakeGc, which returns a managed
// pointer (Ptr). Managed pointers embedded inside managed objects form a
// directed graph; CollectGarbage reclaims every object that is not reachable
// from the root set. Roots are the free-standing nodes the program creates
// directly (MakeGc, NewPtr, NewVector, Clone); node fields inside managed
// objects are discovered per type on first construction and traced through
// their learned offsets, so they are never misclassified as roots.
//
// The collector does not count references. A cycle of managed pointers is
// reclaimed as soon as no root can reach it.
//
// All collector state is guarded by a single process-wide mutex. Mutating
// operations (construction, rebinding, container mutation, collection) take
// it; plain reads of a pointer you own do not.
package gc
