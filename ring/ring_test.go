package ring_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/suballoc"
	"github.com/vkngwrapper/suballoc/ring"
)

func TestScenarioD(t *testing.T) {
	s, err := ring.New[uint16](256)
	require.NoError(t, err)

	loc, err := s.Allocate(256)
	require.NoError(t, err)
	require.Equal(t, uint16(0), loc)

	s.Free(100)
	require.Equal(t, uint64(156), s.AllocatedSize())
	require.Equal(t, uint64(100), s.FreeSize())

	loc, err = s.Allocate(99)
	require.NoError(t, err)
	require.Equal(t, uint16(0), loc)
	require.Equal(t, uint64(1), s.FreeSize())

	s.Free(155)
	require.Equal(t, uint64(156), s.FreeSize())

	loc, err = s.Allocate(100)
	require.NoError(t, err)
	require.Equal(t, uint16(99), loc)

	loc, err = s.Allocate(50)
	require.NoError(t, err)
	require.Equal(t, uint16(199), loc)

	_, err = s.Allocate(7)
	require.ErrorIs(t, err, suballoc.ErrUnavailable)
}

func TestReset(t *testing.T) {
	s, err := ring.New[uint16](64)
	require.NoError(t, err)

	_, err = s.Allocate(64)
	require.NoError(t, err)
	require.Equal(t, uint64(0), s.FreeSize())

	s.Reset(128)
	require.Equal(t, uint64(128), s.FreeSize())
	require.Equal(t, uint64(128), s.Capacity())

	loc, err := s.Allocate(10)
	require.NoError(t, err)
	require.Equal(t, uint16(0), loc)
}

func TestFreeClampedToAllocated(t *testing.T) {
	s, err := ring.New[uint16](16)
	require.NoError(t, err)

	_, err = s.Allocate(4)
	require.NoError(t, err)

	s.Free(100)
	require.Equal(t, uint64(16), s.FreeSize())
	require.Equal(t, uint64(0), s.AllocatedSize())
}
