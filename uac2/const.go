// Package uac2 implements the core of a USB Audio Class 2.0 composite
// device: descriptor assembly, the class-specific control dispatcher, and
// the isochronous streaming loop for a two-channel 16/24-bit speaker and a
// one-channel 16/24-bit microphone.
//
// The underlying USB device controller, the goroutine scheduler, the
// allocator, logging and panic handling, and the peripheral HAL are all
// external collaborators consumed through the interfaces in driver.go; this
// package never talks to hardware directly.
package uac2

// Function/interface class, subclass and protocol codes (USB Audio Class
// 2.0, Release 2.0).
const (
	AUDIO         = 0x01
	AUDIOCONTROL  = 0x01
	AUDIOSTREAMING = 0x02

	IPVersion0200 = 0x20 // bInterfaceProtocol / bFunctionProtocol for UAC2
)

// Standard descriptor types (USB 2.0 Table 9-5) plus the engineering-change
// additions used by composite devices.
const (
	DescDevice                  = 1
	DescConfiguration           = 2
	DescString                  = 3
	DescInterface               = 4
	DescEndpoint                = 5
	DescDeviceQualifier         = 6
	DescOtherSpeedConfiguration = 7
	DescInterfacePower          = 8
	DescOTG                     = 9
	DescDebug                   = 10
	DescInterfaceAssociation    = 11
)

// Class-specific descriptor types (UAC2 §4.1, Table 4-1).
const (
	CSUndefined = 0x20
	CSDevice    = 0x21
	CSConfig    = 0x22
	CSString    = 0x23
	CSInterface = 0x24
	CSEndpoint  = 0x25
)

// Audio Class-Specific AC Interface Descriptor Subtypes (UAC2 §4.7.2).
const (
	ACHeader        = 0x01
	ACInputTerminal = 0x02
	ACOutputTerminal = 0x03
	ACMixerUnit     = 0x04
	ACSelectorUnit  = 0x05
	ACFeatureUnit   = 0x06
	ACEffectUnit    = 0x07
	ACProcessingUnit = 0x08
	ACExtensionUnit = 0x09
	ACClockSource   = 0x0A
	ACClockSelector = 0x0B
	ACClockMultiplier = 0x0C
	ACSampleRateConverter = 0x0D
)

// Audio Class-Specific AS Interface Descriptor Subtypes (UAC2 §4.9.2).
const (
	ASGeneral  = 0x01
	ASFormatType = 0x02
	ASEncoder  = 0x03
)

// Audio Class-Specific AS Isochronous Endpoint Descriptor Subtype (UAC2 §4.10.1.2).
const (
	EPGeneral = 0x01
)

// Format type codes (UAC2 Format Type Codes, Appendix A.2).
const (
	FormatTypeI = 0x01
)

// bmFormatPCMBit is the PCM bit's offset within bmFormats, Type I
// (UAC2 Appendix A.2.1).
const bmFormatPCMBit = 0

// Terminal types (UAC2 Terminal Types, Appendix B).
const (
	TerminalUSBStreaming     = 0x0101
	TerminalInputMicrophone  = 0x0201
	TerminalOutputSpeaker    = 0x0301
)

// Standard USB request codes (USB 2.0 Table 9-4).
const (
	ReqGetStatus        = 0
	ReqClearFeature     = 1
	ReqSetFeature       = 3
	ReqSetAddress       = 5
	ReqGetDescriptor    = 6
	ReqSetDescriptor    = 7
	ReqGetConfiguration = 8
	ReqSetConfiguration = 9
	ReqGetInterface     = 10
	ReqSetInterface     = 11
	ReqSynchFrame       = 12
)

// UAC2 class-specific control request codes (UAC2 Table A-9).
const (
	ReqCur   = 0x01
	ReqRange = 0x02
	ReqMem   = 0x03
)

// Feature Unit control selectors (UAC2 Table A-13).
const (
	FUMuteControl   = 0x01
	FUVolumeControl = 0x02
)

// Clock Source control selectors (UAC2 Table A-17).
const (
	CSSamFreqControl   = 0x01
	CSClockValidControl = 0x02
)

// bmRequestType fields (USB 2.0 Table 9-2).
type RequestType uint8

const (
	RequestTypeStandard RequestType = 0
	RequestTypeClass    RequestType = 1
	RequestTypeVendor   RequestType = 2
)

type Recipient uint8

const (
	RecipientDevice    Recipient = 0
	RecipientInterface Recipient = 1
	RecipientEndpoint  Recipient = 2
	RecipientOther     Recipient = 3
)

type Direction uint8

const (
	DirOut Direction = 0
	DirIn  Direction = 1
)

// Entity IDs (arbitrary, non-zero, unique — spec.md §3).
const (
	EntityClock           = 0x04
	EntitySpkInputTerminal = 0x01
	EntitySpkFeatureUnit  = 0x02
	EntitySpkOutputTerminal = 0x03
	EntityMicInputTerminal = 0x11
	EntityMicOutputTerminal = 0x13
)

// Interface alternate settings.
const (
	AltIdle = 0 // zero endpoints, zero bandwidth
	Alt16   = 1 // 16-bit PCM
	Alt24   = 2 // 24-bit PCM (subslot size 4)
)

// Endpoint max-packet sizes at 48 kHz / 1 ms service interval
// (spec.md §3: channels * subslot_size * samples_per_interval, rounded up).
const (
	MaxPacketSpk16 = 196
	MaxPacketSpk24 = 392
	MaxPacketMic16 = 98
	MaxPacketMic24 = 196
)

// SampleRate is the fixed operating rate; RangeLow/RangeHigh bound the
// advertised RANGE response for the clock source.
const (
	SampleRate = 48000
	RangeLow   = 44100
	RangeHigh  = 48000
)
