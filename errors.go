package suballoc

import "github.com/pkg/errors"

// ErrUnavailable is returned when a requested allocation size cannot be
// satisfied by any free block currently tracked by a suballocator.
var ErrUnavailable error = errors.New("no free block large enough to satisfy the allocation")

// ErrNotAllocated is returned when Free is called with a block that the
// suballocator does not consider live.
var ErrNotAllocated error = errors.New("block is not a live allocation")

// ErrPowerOfTwo is returned from CheckPow2 when the tested value is not a
// power of two.
var ErrPowerOfTwo error = errors.New("value must be a power of two")
