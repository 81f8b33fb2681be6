package bitfield

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetOnlyTouchesTheNamedBit(t *testing.T) {
	var v uint32
	Set(&v, 3)
	require.Equal(t, uint32(1<<3), v)

	Set(&v, 0)
	require.Equal(t, uint32(1<<3|1), v)
}

func TestSetNPacksAndGetExtractsTheSameField(t *testing.T) {
	var v uint32
	SetN(&v, 2, 0b11, 0b11)
	require.Equal(t, uint32(0b11), Get(v, 2, 0b11))
	require.Equal(t, uint32(0), Get(v, 0, 0b11), "adjacent field must stay untouched")
}

func TestSetNMasksOutOfRangeValues(t *testing.T) {
	var v uint32
	SetN(&v, 0, 0b11, 0xFF)
	require.Equal(t, uint32(0b11), v)
}

func TestSplitU16RoundTrips(t *testing.T) {
	hi, lo := SplitU16(0xABCD)
	require.Equal(t, uint8(0xAB), hi)
	require.Equal(t, uint8(0xCD), lo)
}
