// Package indexlist implements a collection of indices linked
// bi-directionally without using pointers. List nodes live in a table
// supplied by the caller at every mutating call rather than being owned by
// the list itself, so several lists can share one table as long as no
// index is ever a member of more than one list at a time.
//
// All unused slots in a table must be zero-valued ([Node]{0, 0}); this is
// the degenerate state PushFront expects a slot to be in and Remove
// restores a slot to once it leaves a list. The maximum representable value of T is reserved as the
// list-terminal sentinel, so a table's addressable range is
// [0, max(T)-1].
package indexlist

// Unsigned is the set of integer types usable as list/table indices.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// Term returns the reserved terminal sentinel value for T: its maximum
// representable value.
func Term[T Unsigned]() T {
	return ^T(0)
}

// Node is one slot of an index table. A zero-valued Node is "degenerate"
// (unused by any list). A Node with Next == Prev and neither value equal
// to Term is considered "stamped" by callers layering their own tagged
// state on top of list membership (the buddy suballocator uses this to
// mark allocated slots).
type Node[T Unsigned] struct {
	Next T
	Prev T
}

// IsDegenerate reports whether the node is unused by any list.
func (n Node[T]) IsDegenerate() bool {
	return n.Next == 0 && n.Prev == 0
}

// List is a doubly-linked list of unique index values, threaded through a
// caller-owned table of [Node] values. A List stores no reference to its
// table; every mutating method takes the table as an explicit parameter.
type List[T Unsigned] struct {
	size  int
	first T
	last  T
}

// New returns an empty list.
func New[T Unsigned]() *List[T] {
	return &List[T]{first: Term[T](), last: Term[T]()}
}

// Size returns the number of indices currently in the list.
func (l *List[T]) Size() int {
	return l.size
}

// PushFront inserts index at the head of the list and returns an iterator
// referencing it. index must not already be a member of this or any other
// list sharing table.
func (l *List[T]) PushFront(index T, table []Node[T]) Iterator[T] {
	if l.size == 0 {
		table[index] = Node[T]{Next: Term[T](), Prev: Term[T]()}
		l.last = index
	} else {
		next := l.first
		table[index] = Node[T]{Next: next, Prev: Term[T]()}
		table[next].Prev = index
	}
	l.first = index
	l.size++

	return Iterator[T]{list: l, index: index}
}

// PopFront removes the head of the list, if any.
func (l *List[T]) PopFront(table []Node[T]) {
	if l.size > 0 {
		l.Remove(l.first, table)
	}
}

// Begin returns an iterator referencing the head of the list, or End if
// the list is empty.
func (l *List[T]) Begin() Iterator[T] {
	return Iterator[T]{list: l, index: l.first}
}

// End returns the terminal iterator. It never references a live index.
func (l *List[T]) End() Iterator[T] {
	return Iterator[T]{list: l, index: Term[T]()}
}

// Remove removes index from the list and resets its table slot to
// degenerate ([Node]{0, 0}). It returns an iterator to the element that
// followed index, or End if index was the tail or the list is now empty.
func (l *List[T]) Remove(index T, table []Node[T]) Iterator[T] {
	it := l.End()

	l.size--
	if l.size == 0 {
		l.first = Term[T]()
		l.last = Term[T]()
	} else {
		prev := table[index].Prev
		next := table[index].Next

		if prev == Term[T]() {
			l.first = next
		} else {
			table[prev].Next = next
		}

		if next == Term[T]() {
			l.last = prev
		} else {
			table[next].Prev = prev
		}

		it = Iterator[T]{list: l, index: next}
	}

	table[index] = Node[T]{}

	return it
}

// Iterator references a position within a List. Its methods require the
// same table the owning List's mutating methods were called with.
type Iterator[T Unsigned] struct {
	list  *List[T]
	index T
}

// Index returns the index this iterator currently references. It is only
// meaningful when the iterator is not equal to its list's End.
func (it Iterator[T]) Index() T {
	return it.index
}

// Equal reports whether it and o reference the same list and position.
func (it Iterator[T]) Equal(o Iterator[T]) bool {
	return it.list == o.list && it.index == o.index
}

// MoveNext advances the iterator to the next element in the list.
// Advancing past the tail yields End.
func (it *Iterator[T]) MoveNext(table []Node[T]) {
	it.index = table[it.index].Next
}

// MovePrev moves the iterator to the previous element in the list.
// Moving before the head yields End, per the list's terminated-sentinel
// contract.
func (it *Iterator[T]) MovePrev(table []Node[T]) {
	it.index = table[it.index].Prev
}
