// Package ring implements a FIFO logical-range allocator: a window over
// [0, capacity) that hands out contiguous runs and wraps around once it
// reaches the end. It owns no backing storage and performs no
// identity-checking on Free; callers must free in the same order they
// allocated.
package ring

import (
	"golang.org/x/exp/slog"

	"github.com/pkg/errors"

	"github.com/vkngwrapper/suballoc"
	"github.com/vkngwrapper/suballoc/indexlist"
)

// Suballocator is a FIFO window allocator over [0, capacity).
type Suballocator[T indexlist.Unsigned] struct {
	start    T
	end      T
	capacity uint64
	free     uint64
}

// New constructs a Suballocator managing the range [0, capacity).
func New[T indexlist.Unsigned](capacity uint64) (*Suballocator[T], error) {
	term := uint64(indexlist.Term[T]())
	if capacity > term {
		return nil, errors.Errorf("capacity %d does not fit in the given index type", capacity)
	}

	return &Suballocator[T]{
		capacity: capacity,
		free:     capacity,
	}, nil
}

// Capacity returns the total size of the managed range.
func (s *Suballocator[T]) Capacity() uint64 {
	return s.capacity
}

// FreeSize returns the number of elements currently available to allocate.
func (s *Suballocator[T]) FreeSize() uint64 {
	return s.free
}

// AllocatedSize returns the number of elements currently outstanding.
func (s *Suballocator[T]) AllocatedSize() uint64 {
	return s.capacity - s.free
}

// Allocate returns the start of a size-element run, advancing the ring's
// end pointer and wrapping modulo capacity. It fails with
// suballoc.ErrUnavailable if size exceeds FreeSize. Allocate makes no
// guarantee that the returned run does not wrap past capacity; callers
// that need a linear region must size requests accordingly.
func (s *Suballocator[T]) Allocate(size uint64) (T, error) {
	if size > s.free {
		return 0, errors.Wrapf(suballoc.ErrUnavailable, "requested %d exceeds %d free", size, s.free)
	}

	loc := s.end
	s.free -= size
	s.end = T((uint64(s.end) + size) % s.capacity)

	return loc, nil
}

// Free releases size elements from the front of the outstanding range,
// advancing the start pointer. size is clamped to AllocatedSize. Frees
// must be made in the same order the corresponding allocations were made;
// the ring keeps no record of individual allocations to verify this.
func (s *Suballocator[T]) Free(size uint64) {
	if size > s.AllocatedSize() {
		size = s.AllocatedSize()
	}

	s.free += size
	s.start = T((uint64(s.start) + size) % s.capacity)
}

// Reset reinitializes the allocator to manage a (possibly different)
// range of the given capacity, discarding all outstanding allocations.
func (s *Suballocator[T]) Reset(capacity uint64) {
	s.capacity = capacity
	s.free = capacity
	s.start = 0
	s.end = 0
}

// AddStatistics folds this allocator's current state into stats.
func (s *Suballocator[T]) AddStatistics(stats *suballoc.Statistics) {
	stats.BlockCount++
	if s.AllocatedSize() > 0 {
		stats.AllocationCount++
	}
	stats.BlockBytes += s.capacity
	stats.AllocationBytes += s.AllocatedSize()
}

// DebugLogState writes a single structured log line describing the
// allocator's current start/end/free state.
func (s *Suballocator[T]) DebugLogState(logger *slog.Logger) {
	logger.Debug("ring suballocator state",
		slog.Uint64("start", uint64(s.start)),
		slog.Uint64("end", uint64(s.end)),
		slog.Uint64("capacity", s.capacity),
		slog.Uint64("free", s.free),
	)
}
