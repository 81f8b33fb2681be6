package uac2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEntityIDsAreUnique checks the uniqueness invariant spec.md §8.7
// requires of the fixed six-entity topology.
func TestEntityIDsAreUnique(t *testing.T) {
	ids := EntityIDs()
	seen := make(map[uint8]bool, len(ids))
	for _, id := range ids {
		require.False(t, seen[id], "duplicate entity ID %#x", id)
		require.NotZero(t, id, "entity ID must be non-zero")
		seen[id] = true
	}
}

func TestClockSourceDescriptorLength(t *testing.T) {
	d := ClockSourceDescriptor{ClockID: EntityClock, Attributes: 0b011, Controls: 0b0111}
	require.Len(t, d.Bytes(), 8)
	require.Equal(t, uint8(8), d.Bytes()[0])
}

func TestFeatureUnitDescriptorLengthForStereo(t *testing.T) {
	d := NewSpkFeatureUnitDescriptor()
	// bLength, bDescriptorSubtype header (4) + 3 * 4-byte controls + string index = 4+12+1+1 = 18
	require.Len(t, d.Bytes(), 18)
}

func TestFeatureUnitControlsGrantMuteAndVolumeReadWrite(t *testing.T) {
	for _, controls := range NewSpkFeatureUnitDescriptor().Controls {
		require.True(t, fuControlsGrant(controls, fuOffsetMute))
		require.True(t, fuControlsGrant(controls, fuOffsetVolume))
	}
}

func TestOutputTerminalDescriptorLength(t *testing.T) {
	d := OutputTerminalDescriptor{
		TerminalID:    EntitySpkOutputTerminal,
		TerminalType:  TerminalOutputSpeaker,
		SourceID:      EntitySpkFeatureUnit,
		ClockSourceID: EntityClock,
	}
	require.Len(t, d.Bytes(), 12)
}

func TestInputTerminalDescriptorLength(t *testing.T) {
	d := InputTerminalDescriptor{
		TerminalID:    EntitySpkInputTerminal,
		TerminalType:  TerminalUSBStreaming,
		ClockSourceID: EntityClock,
		NrChannels:    2,
	}
	require.Len(t, d.Bytes(), 17)
}
