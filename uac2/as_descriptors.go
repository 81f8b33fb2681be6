package uac2

import "github.com/M3gaFr3ak/rp-usb-uac2/internal/bitfield"

// ASGeneralDescriptor is the Class-Specific AS Interface Descriptor
// (UAC2 §4.9.2), emitted once per non-idle AS alternate setting.
type ASGeneralDescriptor struct {
	TerminalLink  uint8
	Controls      uint8
	FormatType    uint8
	Formats       uint32 // bmFormats, built by pcmFormats
	NrChannels    uint8
	ChannelConfig uint32
	ChannelNames  uint8
}

func (d ASGeneralDescriptor) Bytes() []byte {
	body := encode(
		uint8(CSInterface),
		uint8(ASGeneral),
		d.TerminalLink,
		d.Controls,
		d.FormatType,
		d.Formats,
		d.NrChannels,
		d.ChannelConfig,
		d.ChannelNames,
	)
	return prependLength(body)
}

// FormatTypeIDescriptor is the Type I Format Type descriptor
// (UAC2 §2.3.1.6, Appendix A.2).
type FormatTypeIDescriptor struct {
	SubslotSize    uint8
	BitResolution  uint8
}

func (d FormatTypeIDescriptor) Bytes() []byte {
	body := encode(
		uint8(CSInterface),
		uint8(ASFormatType),
		uint8(FormatTypeI),
		d.SubslotSize,
		d.BitResolution,
	)
	return prependLength(body)
}

// ASEndpointDescriptor is the Class-Specific AS Isochronous Data Endpoint
// Descriptor (UAC2 §4.10.1.2).
type ASEndpointDescriptor struct {
	Attributes     uint8
	Controls       uint8
	LockDelayUnits uint8
	LockDelay      uint16
}

func (d ASEndpointDescriptor) Bytes() []byte {
	body := encode(
		uint8(CSEndpoint),
		uint8(EPGeneral),
		d.Attributes,
		d.Controls,
		d.LockDelayUnits,
		d.LockDelay,
	)
	return prependLength(body)
}

// asGeneralFor builds the AS General descriptor shared by both the 16-bit
// and 24-bit alternates of one direction (spec.md §4.1: identical across
// alt 1 and alt 2 for a given stream).
func asGeneralFor(terminalLink uint8, nrChannels uint8) ASGeneralDescriptor {
	return ASGeneralDescriptor{
		TerminalLink: terminalLink,
		FormatType:   FormatTypeI,
		Formats:      pcmFormats(),
		NrChannels:   nrChannels,
	}
}

// pcmFormats builds bmFormats with only the PCM bit set, via bitfield.Set
// against the named bit offset instead of a bare mask constant.
func pcmFormats() uint32 {
	var v uint32
	bitfield.Set(&v, bmFormatPCMBit)
	return v
}

// formatType16 / formatType24 are the two Type-I format variants this
// device advertises (spec.md §4.1).
func formatType16() FormatTypeIDescriptor { return FormatTypeIDescriptor{SubslotSize: 2, BitResolution: 16} }
func formatType24() FormatTypeIDescriptor { return FormatTypeIDescriptor{SubslotSize: 4, BitResolution: 24} }

// asEndpoint16 carries a 1 ms lock delay; asEndpoint24 zeroes it — both are
// valid per UAC2 and spec.md §9(c) requires they stay unequal.
func asEndpoint16() ASEndpointDescriptor {
	return ASEndpointDescriptor{LockDelayUnits: 1, LockDelay: 1}
}

func asEndpoint24() ASEndpointDescriptor {
	return ASEndpointDescriptor{LockDelayUnits: 0, LockDelay: 0}
}
