// Package buddy implements a power-of-two logical-range allocator. It owns
// no backing storage: it hands out (start, order) pairs identifying
// sub-ranges of [0, capacity) and tracks, purely through an index table and
// a split-state bitmap, which ranges are free, split, or allocated.
//
// Free blocks of a given order are intrusively linked through
// indexlist.List instances threaded over a single shared index table, so
// the memory cost of tracking free lists at every order is bounded by
// capacity x 2 x sizeof(T) regardless of how many orders exist.
package buddy

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"

	"github.com/vkngwrapper/suballoc"
	"github.com/vkngwrapper/suballoc/bitops"
	"github.com/vkngwrapper/suballoc/bitset"
	"github.com/vkngwrapper/suballoc/indexlist"
)

// Suballocator manages allocation of logical ranges of [0, capacity) using
// the buddy memory allocation algorithm. It owns no physical resource;
// callers are responsible for mapping returned blocks onto whatever they
// actually represent.
type Suballocator[T indexlist.Unsigned] struct {
	table      []indexlist.Node[T]
	freeLists  []*indexlist.List[T]
	splitState *bitset.Array
	maxOrder   uint8
	capacity   uint64
	allocCount int
}

// New constructs a Suballocator managing the range [0, capacity). capacity
// must be a power of two and must be representable by T (with room left
// over for the reserved sentinel index).
func New[T indexlist.Unsigned](capacity uint64) (*Suballocator[T], error) {
	if err := suballoc.CheckPow2(capacity, "capacity"); err != nil {
		return nil, err
	}

	term := uint64(indexlist.Term[T]())
	if capacity > term {
		return nil, cerrors.Newf("capacity %d does not fit in the given index type (max addressable is %d)", capacity, term)
	}

	maxOrder := uint8(bitops.Log2Ceil64(capacity))

	// Split bits are kept for blocks of order 1 and above, whose state
	// indices run from 0 to capacity-2.
	numSplitBits := capacity - 1
	if numSplitBits == 0 {
		numSplitBits = 1
	}

	s := &Suballocator[T]{
		table:      make([]indexlist.Node[T], capacity),
		freeLists:  make([]*indexlist.List[T], int(maxOrder)+1),
		splitState: bitset.New(int(numSplitBits)),
		maxOrder:   maxOrder,
		capacity:   capacity,
	}

	for i := range s.freeLists {
		s.freeLists[i] = indexlist.New[T]()
	}

	s.freeLists[maxOrder].PushFront(0, s.table)

	return s, nil
}

// Capacity returns the total addressable range size.
func (s *Suballocator[T]) Capacity() uint64 {
	return s.capacity
}

// MaxOrder returns the order of the single largest possible allocation.
func (s *Suballocator[T]) MaxOrder() uint8 {
	return s.maxOrder
}

// AllocationCount returns the number of currently outstanding allocations.
func (s *Suballocator[T]) AllocationCount() int {
	return s.allocCount
}

func (s *Suballocator[T]) buddyOf(block Block[T]) Block[T] {
	return Block[T]{start: block.start ^ T(block.Size()), order: block.order}
}

func (s *Suballocator[T]) parentOf(block Block[T]) Block[T] {
	parentOrder := block.order + 1
	if parentOrder > s.maxOrder {
		return Block[T]{order: NoOrder}
	}
	parentSize := T(1) << parentOrder
	parentStart := block.start &^ (parentSize - 1)
	return Block[T]{start: parentStart, order: parentOrder}
}

func (s *Suballocator[T]) stateIndex(block Block[T]) int {
	level := uint64(s.maxOrder) - uint64(block.order)
	indexInLevel := uint64(block.start) >> block.order
	return int((uint64(1) << level) + indexInLevel - 1)
}

func (s *Suballocator[T]) isSplit(block Block[T]) bool {
	return s.splitState.Get(s.stateIndex(block))
}

func (s *Suballocator[T]) setSplit(block Block[T], value bool) {
	s.splitState.Set(s.stateIndex(block), value)
}

// isAllocated reports whether block.start's slot currently carries the
// allocation stamp for exactly block's order.
func (s *Suballocator[T]) isAllocated(block Block[T]) bool {
	node := s.table[block.start]
	if node.Next == 0 || node.Next == indexlist.Term[T]() || node.Next != node.Prev {
		return false
	}
	return node.Prev == T(block.order)+1
}

func (s *Suballocator[T]) stamp(block Block[T]) {
	value := T(block.order) + 1
	s.table[block.start] = indexlist.Node[T]{Next: value, Prev: value}
}

// Allocate returns a Block covering at least size elements. If size is 0,
// a minimum (order 0) block is returned. Allocate fails with
// suballoc.ErrUnavailable if no free chain of splits can satisfy size.
func (s *Suballocator[T]) Allocate(size uint64) (Block[T], error) {
	suballoc.DebugValidate(s)

	if size == 0 {
		size = 1
	}

	order := uint8(bitops.Log2Ceil64(size))
	if order > s.maxOrder {
		return Block[T]{order: NoOrder}, errors.Wrapf(suballoc.ErrUnavailable, "requested size %d exceeds capacity %d", size, s.capacity)
	}

	block, err := s.allocateOrder(order)
	if err != nil {
		return Block[T]{order: NoOrder}, err
	}

	s.allocCount++
	return block, nil
}

func (s *Suballocator[T]) allocateOrder(order uint8) (Block[T], error) {
	if order > s.maxOrder {
		return Block[T]{order: NoOrder}, errors.Wrap(suballoc.ErrUnavailable, "order exceeds the allocator's max order")
	}

	if s.freeLists[order].Size() > 0 {
		it := s.freeLists[order].Begin()
		start := it.Index()
		block := Block[T]{start: start, order: order}
		s.freeLists[order].PopFront(s.table)

		if order < s.maxOrder {
			s.setSplit(s.parentOf(block), false)
		}

		s.stamp(block)
		return block, nil
	}

	parent, err := s.allocateOrder(order + 1)
	if err != nil {
		return Block[T]{order: NoOrder}, err
	}

	// parent is stamped allocated at order+1; mark it split instead, then
	// restamp the same slot at the requested (lower) order. Only one of
	// the two children of parent occupies this slot, so the restamp
	// simply supersedes the higher-order stamp with a narrower one.
	s.setSplit(parent, true)

	blockSize := T(1) << order
	block := Block[T]{start: parent.start, order: order}
	s.freeLists[order].PushFront(parent.start+blockSize, s.table)
	s.stamp(block)

	return block, nil
}

// Free releases block back to the allocator, coalescing with its buddy
// where possible. It fails with suballoc.ErrNotAllocated if block's start
// slot is not currently stamped with block's order.
func (s *Suballocator[T]) Free(block Block[T]) error {
	suballoc.DebugValidate(s)

	if !s.isAllocated(block) {
		return errors.Wrapf(suballoc.ErrNotAllocated, "block (start=%v, order=%d) is not a live allocation", block.start, block.order)
	}

	s.table[block.start] = indexlist.Node[T]{}
	s.freeOrder(block)
	s.allocCount--

	return nil
}

func (s *Suballocator[T]) freeOrder(block Block[T]) {
	if block.order == s.maxOrder {
		s.freeLists[block.order].PushFront(block.start, s.table)
		return
	}

	parent := s.parentOf(block)
	buddy := s.buddyOf(block)
	buddyNode := s.table[buddy.start]
	buddyIsFree := !buddyNode.IsDegenerate() &&
		!(buddyNode.Next == buddyNode.Prev && buddyNode.Next == T(block.order)+1)

	if s.isSplit(parent) && buddyIsFree {
		s.setSplit(parent, false)
		s.freeLists[block.order].Remove(buddy.start, s.table)
		s.freeOrder(parent)
		return
	}

	s.freeLists[block.order].PushFront(block.start, s.table)
	s.setSplit(parent, true)
}

// TotalFree returns the total number of free elements, summed across every
// order's free list.
func (s *Suballocator[T]) TotalFree() uint64 {
	var total uint64
	for order := 0; order <= int(s.maxOrder); order++ {
		size := uint64(1) << order
		total += uint64(s.freeLists[order].Size()) * size
	}
	return total
}

// MaxAllocationSize returns the size of the largest block that could
// currently be satisfied by a single Allocate call, or 0 if the allocator
// is full.
func (s *Suballocator[T]) MaxAllocationSize() uint64 {
	for order := int(s.maxOrder); order >= 0; order-- {
		if s.freeLists[order].Size() > 0 {
			return uint64(1) << order
		}
	}
	return 0
}

// VisitAllocations calls visit for every currently outstanding allocation.
// It is a full O(capacity) scan of the index table and is intended for
// diagnostics, not hot paths.
func (s *Suballocator[T]) VisitAllocations(visit func(start uint64, order uint8, size uint64)) {
	for i, node := range s.table {
		if node.Next == 0 || node.Next == indexlist.Term[T]() || node.Next != node.Prev {
			continue
		}
		order := uint8(node.Next) - 1
		visit(uint64(i), order, uint64(1)<<order)
	}
}

// AddStatistics folds this allocator's current state into stats.
func (s *Suballocator[T]) AddStatistics(stats *suballoc.Statistics) {
	stats.BlockCount++
	stats.AllocationCount += s.allocCount
	stats.BlockBytes += s.capacity
	stats.AllocationBytes += s.capacity - s.TotalFree()
}

// AddDetailedStatistics folds this allocator's current state into stats,
// including per-free-range and per-allocation size distributions.
func (s *Suballocator[T]) AddDetailedStatistics(stats *suballoc.DetailedStatistics) {
	stats.BlockCount++
	stats.BlockBytes += s.capacity

	for order := 0; order <= int(s.maxOrder); order++ {
		size := uint64(1) << order
		count := s.freeLists[order].Size()
		for i := 0; i < count; i++ {
			stats.AddUnusedRange(size)
		}
	}

	s.VisitAllocations(func(_ uint64, _ uint8, size uint64) {
		stats.AddAllocation(size)
	})
}

// DebugLogAllocations writes one structured log line per outstanding
// allocation using logger.
func (s *Suballocator[T]) DebugLogAllocations(logger *slog.Logger) {
	s.VisitAllocations(func(start uint64, order uint8, size uint64) {
		logger.Debug("outstanding allocation", slog.Uint64("start", start), slog.Int("order", int(order)), slog.Uint64("size", size))
	})
}

// Validate walks the allocator's internal state and returns an error
// describing the first invariant violation it finds. It is intended for
// use from DebugValidate, not for hot paths.
func (s *Suballocator[T]) Validate() error {
	if len(s.freeLists) != int(s.maxOrder)+1 {
		return cerrors.Newf("expected %d free lists, found %d", s.maxOrder+1, len(s.freeLists))
	}

	seen := make(map[T]bool, s.capacity)

	for order := 0; order <= int(s.maxOrder); order++ {
		size := T(1) << order
		for it := s.freeLists[order].Begin(); !it.Equal(s.freeLists[order].End()); it.MoveNext(s.table) {
			start := it.Index()
			if uint64(start)%uint64(size) != 0 {
				return cerrors.Newf("free block %d at order %d is not aligned to its size", start, order)
			}
			if seen[start] {
				return cerrors.Newf("index %d appears in more than one free list", start)
			}
			seen[start] = true
		}
	}

	var allocated uint64
	var conflict error
	s.VisitAllocations(func(start uint64, order uint8, size uint64) {
		allocated += size
		if seen[T(start)] && conflict == nil {
			conflict = cerrors.Newf("index %d is both free and allocated", start)
		}
	})
	if conflict != nil {
		return conflict
	}

	if allocated+s.TotalFree() != s.capacity {
		return cerrors.Newf("conservation violated: allocated(%d) + free(%d) != capacity(%d)", allocated, s.TotalFree(), s.capacity)
	}

	return nil
}
