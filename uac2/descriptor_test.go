package uac2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildConfigurationDescriptorFitsBudget(t *testing.T) {
	out, err := BuildConfigurationDescriptor(DefaultConfig())
	require.NoError(t, err)
	require.LessOrEqual(t, len(out), MaxConfigurationDescriptorSize)
	require.Greater(t, len(out), 0)
}

// TestConfigurationDescriptorTotalLength checks the Standard Configuration
// Descriptor's wTotalLength (bytes 2-3, little-endian) equals the actual
// serialized size, per spec.md §8.2.
func TestConfigurationDescriptorTotalLength(t *testing.T) {
	out, err := BuildConfigurationDescriptor(DefaultConfig())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(out), 4)

	totalLength := uint16(out[2]) | uint16(out[3])<<8
	require.Equal(t, uint16(len(out)), totalLength)
}

// TestEveryRecordLengthIsExact walks the whole configuration descriptor and
// verifies each record's first byte (bLength) equals its actual extent, the
// sweep invariant from spec.md §8.2.
func TestEveryRecordLengthIsExact(t *testing.T) {
	out, err := BuildConfigurationDescriptor(DefaultConfig())
	require.NoError(t, err)

	pos := 0
	for pos < len(out) {
		bLength := int(out[pos])
		require.Greater(t, bLength, 0, "zero-length record at offset %d", pos)
		require.LessOrEqual(t, pos+bLength, len(out), "record at offset %d overruns buffer", pos)
		pos += bLength
	}
	require.Equal(t, len(out), pos)
}

func TestACHeaderTotalLengthCoversBody(t *testing.T) {
	header, body := ACTopology()

	bodyLen := 0
	for _, d := range body {
		bodyLen += len(d.Bytes())
	}

	require.Equal(t, uint16(9+bodyLen), header.TotalLength)
	require.Len(t, header.Bytes(), 9)
}

func TestACHeaderBcdADCLittleEndian(t *testing.T) {
	header, _ := ACTopology()
	b := header.Bytes()
	// bLength, bDescriptorType, bDescriptorSubtype, bcdADC(lo,hi), ...
	require.Equal(t, uint8(0x00), b[3])
	require.Equal(t, uint8(0x02), b[4])
}

func TestAlternateLockDelayAsymmetryPreserved(t *testing.T) {
	ep16 := asEndpoint16()
	ep24 := asEndpoint24()
	require.NotEqual(t, ep16, ep24)
	require.Equal(t, uint8(1), ep16.LockDelayUnits)
	require.Equal(t, uint8(0), ep24.LockDelayUnits)
}
