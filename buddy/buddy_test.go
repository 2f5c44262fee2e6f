package buddy_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/suballoc"
	"github.com/vkngwrapper/suballoc/buddy"
)

func TestScenarioA(t *testing.T) {
	s, err := buddy.New[uint8](32)
	require.NoError(t, err)

	a, err := s.Allocate(6)
	require.NoError(t, err)
	require.Equal(t, uint8(0), a.Start())
	require.Equal(t, uint64(8), a.Size())
	require.Equal(t, uint64(16), s.MaxAllocationSize())
	require.Equal(t, uint64(24), s.TotalFree())

	b, err := s.Allocate(16)
	require.NoError(t, err)
	require.Equal(t, uint8(16), b.Start())
	require.Equal(t, uint64(16), b.Size())
	require.Equal(t, uint64(8), s.MaxAllocationSize())
	require.Equal(t, uint64(8), s.TotalFree())

	c, err := s.Allocate(8)
	require.NoError(t, err)
	require.Equal(t, uint8(8), c.Start())
	require.Equal(t, uint64(8), c.Size())

	_, err = s.Allocate(1)
	require.ErrorIs(t, err, suballoc.ErrUnavailable)

	require.NoError(t, s.Free(a))
	require.NoError(t, s.Free(c))
	require.Equal(t, uint64(16), s.MaxAllocationSize())
	require.Equal(t, uint64(16), s.TotalFree())

	d, err := s.Allocate(16)
	require.NoError(t, err)
	require.Equal(t, uint8(0), d.Start())
	require.Equal(t, uint64(16), d.Size())
}

func TestScenarioB(t *testing.T) {
	s, err := buddy.New[uint8](4)
	require.NoError(t, err)

	blocks := make([]buddy.Block[uint8], 4)
	for i := 0; i < 4; i++ {
		b, err := s.Allocate(1)
		require.NoError(t, err)
		blocks[i] = b
	}

	starts := make(map[uint8]bool)
	for _, b := range blocks {
		starts[b.Start()] = true
	}
	require.Len(t, starts, 4)

	_, err = s.Allocate(1)
	require.ErrorIs(t, err, suballoc.ErrUnavailable)

	var blockAt0, blockAt2 buddy.Block[uint8]
	for _, b := range blocks {
		switch b.Start() {
		case 0:
			blockAt0 = b
		case 2:
			blockAt2 = b
		}
	}

	require.NoError(t, s.Free(blockAt0))
	require.NoError(t, s.Free(blockAt2))

	_, err = s.Allocate(2)
	require.ErrorIs(t, err, suballoc.ErrUnavailable)

	e, err := s.Allocate(1)
	require.NoError(t, err)
	f, err := s.Allocate(1)
	require.NoError(t, err)

	require.ElementsMatch(t, []uint8{0, 2}, []uint8{e.Start(), f.Start()})
}

func TestScenarioC(t *testing.T) {
	s, err := buddy.New[uint8](64)
	require.NoError(t, err)

	sizes := []uint64{32, 16, 8, 4, 2, 1}
	expectedStarts := []uint8{0, 32, 48, 56, 60, 62}

	var last buddy.Block[uint8]
	for i, size := range sizes {
		b, err := s.Allocate(size)
		require.NoError(t, err)
		require.Equal(t, expectedStarts[i], b.Start())
		last = b
	}
	require.Equal(t, uint64(1), s.TotalFree())

	b, err := s.Allocate(1)
	require.NoError(t, err)
	require.Equal(t, uint8(63), b.Start())
	require.Equal(t, uint64(0), s.TotalFree())

	_, err = s.Allocate(1)
	require.ErrorIs(t, err, suballoc.ErrUnavailable)

	require.NoError(t, s.Free(b))
	require.Equal(t, uint64(1), s.TotalFree())

	_ = last
}

func TestScenarioE(t *testing.T) {
	s, err := buddy.New[uint8](32)
	require.NoError(t, err)

	b, err := s.Allocate(8)
	require.NoError(t, err)

	wrongOrder := buddy.NewBlock[uint8](b.Start(), b.Order()-1)
	err = s.Free(wrongOrder)
	require.ErrorIs(t, err, suballoc.ErrNotAllocated)

	neverAllocated := buddy.NewBlock[uint8](31, 0)
	err = s.Free(neverAllocated)
	require.ErrorIs(t, err, suballoc.ErrNotAllocated)

	require.NoError(t, s.Free(b))
}

func TestFullCoalesceRoundTrip(t *testing.T) {
	s, err := buddy.New[uint8](32)
	require.NoError(t, err)

	var live []buddy.Block[uint8]
	for {
		b, err := s.Allocate(1)
		if err != nil {
			break
		}
		live = append(live, b)
	}
	require.Len(t, live, 32)

	for _, b := range live {
		require.NoError(t, s.Free(b))
	}

	require.Equal(t, uint64(32), s.TotalFree())
	require.Equal(t, uint64(32), s.MaxAllocationSize())

	full, err := s.Allocate(32)
	require.NoError(t, err)
	require.Equal(t, uint8(0), full.Start())
	require.Equal(t, 1, s.AllocationCount())
}

func TestBasicSuballocator(t *testing.T) {
	s, err := buddy.New[uint8](32)
	require.NoError(t, err)

	block1, err := s.Allocate(6)
	require.NoError(t, err)
	require.Equal(t, uint8(0), block1.Start())
	require.Equal(t, uint64(8), block1.Size())

	block2, err := s.Allocate(16)
	require.NoError(t, err)
	require.Equal(t, uint8(16), block2.Start())
	require.Equal(t, uint64(16), block2.Size())

	block3, err := s.Allocate(8)
	require.NoError(t, err)
	require.Equal(t, uint8(8), block3.Start())
	require.Equal(t, uint64(8), block3.Size())

	_, err = s.Allocate(1)
	require.Error(t, err)

	require.NoError(t, s.Free(block1))
	require.NoError(t, s.Free(block3))

	block4, err := s.Allocate(16)
	require.NoError(t, err)
	require.Equal(t, uint8(0), block4.Start())
	require.Equal(t, uint64(16), block4.Size())
}
