// Package diagnostics is an optional companion layer for callers of
// buddy.Suballocator and ring.Suballocator. It never participates in
// either allocator's own state discovery (which is always derived purely
// from the allocator's own slot contents, never from an external map);
// it only lets a caller attach opaque data to an allocation key it already
// holds and later inspect or summarize what is outstanding.
package diagnostics

import (
	"github.com/dolthub/swiss"
)

// Key identifies a single outstanding allocation for tagging purposes.
// Callers typically use a buddy block's start offset, or a ring
// allocation's returned location, as all or part of this key.
type Key struct {
	Start uint64
	Order uint8
}

// Tracker is a registry mapping outstanding allocations to caller-supplied
// tags (arbitrary userData), mirroring the handle registry a consumer of
// this module's allocators would otherwise have to build itself.
type Tracker struct {
	tags *swiss.Map[Key, any]
}

// NewTracker returns an empty Tracker with room for sizeHint entries
// before it needs to grow.
func NewTracker(sizeHint uint32) *Tracker {
	return &Tracker{
		tags: swiss.NewMap[Key, any](sizeHint),
	}
}

// Tag associates userData with key, overwriting any previous tag.
func (t *Tracker) Tag(key Key, userData any) {
	t.tags.Put(key, userData)
}

// Untag removes any tag associated with key. Callers should do this when
// freeing the corresponding allocation.
func (t *Tracker) Untag(key Key) {
	t.tags.Delete(key)
}

// Lookup returns the tag associated with key, if any.
func (t *Tracker) Lookup(key Key) (any, bool) {
	return t.tags.Get(key)
}

// Count returns the number of currently tagged allocations.
func (t *Tracker) Count() int {
	return int(t.tags.Count())
}

// Each calls visit once per tagged allocation, stopping early if visit
// returns false. Iteration order is unspecified.
func (t *Tracker) Each(visit func(key Key, userData any) bool) {
	t.tags.Iter(func(key Key, userData any) bool {
		return !visit(key, userData)
	})
}
