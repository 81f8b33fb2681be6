package uac2

import (
	"bytes"
	"encoding/binary"

	"github.com/M3gaFr3ak/rp-usb-uac2/internal/bitfield"
)

// Descriptor is anything that serializes to its own exact wire bytes,
// including its own bLength as the first byte. Every implementation below
// computes bLength from the buffer it actually produced rather than a
// hand-counted constant, preserving the invariant in spec.md §8.2 ("every
// record's bLength equals its actual byte count").
type Descriptor interface {
	Bytes() []byte
}

func encode(fields ...interface{}) []byte {
	buf := new(bytes.Buffer)
	for _, f := range fields {
		// binary.Write never fails for the fixed-size numeric types
		// and byte slices used throughout this package.
		_ = binary.Write(buf, binary.LittleEndian, f)
	}
	return buf.Bytes()
}

// ClockSourceDescriptor is the UAC2 Clock Source descriptor (UAC2 §4.7.2.1).
type ClockSourceDescriptor struct {
	ClockID      uint8
	Attributes   uint8 // bmAttributes: 0b011 = internal programmable clock
	Controls     uint8 // bmControls: freq RW, validity RO
	AssocTerminal uint8
	StringIndex  uint8
}

func (d ClockSourceDescriptor) Bytes() []byte {
	body := encode(
		uint8(CSInterface),
		uint8(ACClockSource),
		d.ClockID,
		d.Attributes,
		d.Controls,
		d.AssocTerminal,
		d.StringIndex,
	)
	return prependLength(body)
}

// InputTerminalDescriptor is the UAC2 Input Terminal descriptor
// (UAC2 §4.7.2.4).
type InputTerminalDescriptor struct {
	TerminalID       uint8
	TerminalType     uint16
	AssocTerminal    uint8
	ClockSourceID    uint8
	NrChannels       uint8
	ChannelConfig    uint32
	ChannelNames     uint8
	Controls         uint16
	StringIndex      uint8
}

func (d InputTerminalDescriptor) Bytes() []byte {
	body := encode(
		uint8(CSInterface),
		uint8(ACInputTerminal),
		d.TerminalID,
		d.TerminalType,
		d.AssocTerminal,
		d.ClockSourceID,
		d.NrChannels,
		d.ChannelConfig,
		d.ChannelNames,
		d.Controls,
		d.StringIndex,
	)
	return prependLength(body)
}

// OutputTerminalDescriptor is the UAC2 Output Terminal descriptor
// (UAC2 §4.7.2.5).
type OutputTerminalDescriptor struct {
	TerminalID    uint8
	TerminalType  uint16
	AssocTerminal uint8
	SourceID      uint8
	ClockSourceID uint8
	Controls      uint16
	StringIndex   uint8
}

func (d OutputTerminalDescriptor) Bytes() []byte {
	body := encode(
		uint8(CSInterface),
		uint8(ACOutputTerminal),
		d.TerminalID,
		d.TerminalType,
		d.AssocTerminal,
		d.SourceID,
		d.ClockSourceID,
		d.Controls,
		d.StringIndex,
	)
	return prependLength(body)
}

// fuControlRW is one control's 2-bit field in bmaControls: bit0 = Read
// support, bit1 = Write support (UAC2 Table A-13).
const fuControlRW uint32 = 0b11

// Bit offsets of Mute and Volume within one bmaControls entry (UAC2
// Table A-13).
const (
	fuOffsetMute   = 0
	fuOffsetVolume = 2
)

// buildFeatureUnitControls packs one bmaControls entry granting RW on both
// Mute and Volume, using bitfield.SetN per 2-bit field instead of a
// hand-computed mask constant.
func buildFeatureUnitControls() uint32 {
	var v uint32
	bitfield.SetN(&v, fuOffsetMute, fuControlRW, fuControlRW)
	bitfield.SetN(&v, fuOffsetVolume, fuControlRW, fuControlRW)
	return v
}

// fuControlsGrant reports whether the control at offset n of a bmaControls
// entry grants full read/write, per the fuControlRW mask above.
func fuControlsGrant(controls uint32, n uint) bool {
	return bitfield.Get(controls, n, fuControlRW) == fuControlRW
}

// FeatureUnitDescriptor is the UAC2 Feature Unit descriptor
// (UAC2 §4.7.2.8). Controls holds one bmaControls entry for the master
// channel (index 0) followed by one per logical channel.
type FeatureUnitDescriptor struct {
	UnitID      uint8
	SourceID    uint8
	Controls    []uint32 // len = nrChannels + 1
	StringIndex uint8
}

func (d FeatureUnitDescriptor) Bytes() []byte {
	fields := []interface{}{
		uint8(CSInterface),
		uint8(ACFeatureUnit),
		d.UnitID,
		d.SourceID,
	}
	for _, c := range d.Controls {
		fields = append(fields, c)
	}
	fields = append(fields, d.StringIndex)
	return prependLength(encode(fields...))
}

// NewSpkFeatureUnitDescriptor builds the speaker's Feature Unit descriptor
// with mute+volume RW on master and both channels (spec.md §4.1).
func NewSpkFeatureUnitDescriptor() FeatureUnitDescriptor {
	controls := buildFeatureUnitControls()
	return FeatureUnitDescriptor{
		UnitID:   EntitySpkFeatureUnit,
		SourceID: EntitySpkInputTerminal,
		Controls: []uint32{controls, controls, controls},
	}
}

// ACHeaderDescriptor is the Class-Specific AC Interface Header Descriptor
// (UAC2 §4.7.2). TotalLength is 9 (this header) plus the sum of every
// subsequent CS-AC body record's length (spec.md §8.2).
type ACHeaderDescriptor struct {
	TotalLength uint16
	Category    uint8
}

func (d ACHeaderDescriptor) Bytes() []byte {
	// bcdADC little-endian 0x0200 — open question (a) in spec.md §9:
	// emit the spec-correct byte order, not the source's swapped one.
	body := encode(
		uint8(CSInterface),
		uint8(ACHeader),
		uint16(0x0200),
		d.Category,
		d.TotalLength,
		uint8(0), // bmControls
	)
	return prependLength(body)
}

// ACTopology assembles the fixed six-entity graph from spec.md §3 into its
// body records (everything after the AC header) plus the header itself with
// wTotalLength already computed.
func ACTopology() (header ACHeaderDescriptor, body []Descriptor) {
	body = []Descriptor{
		ClockSourceDescriptor{
			ClockID:    EntityClock,
			Attributes: 0b011,
			Controls:   0b0111,
		},
		InputTerminalDescriptor{
			TerminalID:    EntitySpkInputTerminal,
			TerminalType:  TerminalUSBStreaming,
			ClockSourceID: EntityClock,
			NrChannels:    2,
		},
		NewSpkFeatureUnitDescriptor(),
		OutputTerminalDescriptor{
			TerminalID:    EntitySpkOutputTerminal,
			TerminalType:  TerminalOutputSpeaker,
			SourceID:      EntitySpkFeatureUnit,
			ClockSourceID: EntityClock,
		},
		InputTerminalDescriptor{
			TerminalID:    EntityMicInputTerminal,
			TerminalType:  TerminalInputMicrophone,
			ClockSourceID: EntityClock,
			NrChannels:    1,
		},
		OutputTerminalDescriptor{
			TerminalID:    EntityMicOutputTerminal,
			TerminalType:  TerminalUSBStreaming,
			SourceID:      EntityMicInputTerminal,
			ClockSourceID: EntityClock,
		},
	}

	bodyLen := 0
	for _, d := range body {
		bodyLen += len(d.Bytes())
	}

	header = ACHeaderDescriptor{
		TotalLength: uint16(9 + bodyLen),
		Category:    0x0A, // PRO-AUDIO
	}
	return
}

// EntityIDs returns every entity ID present in the AC topology, for the
// uniqueness check in spec.md §8.7.
func EntityIDs() []uint8 {
	return []uint8{
		EntityClock,
		EntitySpkInputTerminal,
		EntitySpkFeatureUnit,
		EntitySpkOutputTerminal,
		EntityMicInputTerminal,
		EntityMicOutputTerminal,
	}
}

func prependLength(body []byte) []byte {
	return append([]byte{uint8(len(body) + 1)}, body...)
}
