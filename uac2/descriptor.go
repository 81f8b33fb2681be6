package uac2

import "fmt"

// MaxConfigurationDescriptorSize is the enumeration-time descriptor buffer
// budget (spec.md §6: "Budget 1024 bytes").
const MaxConfigurationDescriptorSize = 1024

// Endpoint addresses (arbitrary but fixed, so the serialized descriptor is
// deterministic and can be checked against a golden fixture).
const (
	epStatusIn = 0x01 | endpointDirIn // AC interrupt status IN
	epSpkOut   = 0x02                 // speaker isochronous OUT
	epMicIn    = 0x03 | endpointDirIn // microphone isochronous IN
)

// Interface numbers.
const (
	ifaceAC     = 0
	ifaceSpkAS  = 1
	ifaceMicAS  = 2
	numInterfaces = 3
)

// Config holds the device-identity fields an integrator may override
// (spec.md §6: VID/PID are placeholders, strings are free-form).
type Config struct {
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
	SerialNumber string
}

// DefaultConfig returns the placeholder identity from spec.md §6.
func DefaultConfig() Config {
	return Config{
		VendorID:     0xC0DE,
		ProductID:    0xCAFE,
		Manufacturer: "Embassy",
		Product:      "UAC2.0 Example",
		SerialNumber: "12345678",
	}
}

// BuildConfigurationDescriptor assembles the exact byte sequence handed to
// the host on GET_DESCRIPTOR(CONFIGURATION): the standard Configuration
// header, the IAD, the AC interface (header + six-entity body + interrupt
// endpoint) and the two AS interfaces, each with its idle/16-bit/24-bit
// alternates (spec.md §4.1, emission order 1-4).
//
// It is pure and independent of any FunctionAllocator, so descriptor
// byte-exactness (spec.md §8.1-8.2) can be checked without a driver.
func BuildConfigurationDescriptor(cfg Config) ([]byte, error) {
	var tree []byte

	tree = append(tree, InterfaceAssociationDescriptor{
		FirstInterface:   ifaceAC,
		InterfaceCount:   numInterfaces,
		FunctionClass:    AUDIO,
		FunctionSubClass: 0x00,
		FunctionProtocol: IPVersion0200,
	}.Bytes()...)

	tree = append(tree, acInterfaceBytes()...)
	tree = append(tree, asInterfaceBytes(ifaceSpkAS, EntitySpkInputTerminal, 2, epSpkOut, false)...)
	tree = append(tree, asInterfaceBytes(ifaceMicAS, EntityMicOutputTerminal, 1, epMicIn, true)...)

	cd := ConfigurationDescriptor{
		NumInterfaces:      numInterfaces,
		ConfigurationValue: 1,
		Attributes:         0x80, // bus powered, no remote wakeup
		MaxPower:           50,   // 100mA = 50 * 2mA
	}
	total := len(cd.Bytes()) + len(tree)
	cd.TotalLength = uint16(total)

	out := append(cd.Bytes(), tree...)
	if len(out) > MaxConfigurationDescriptorSize {
		return nil, fmt.Errorf("uac2: configuration descriptor overflow: %d > %d bytes", len(out), MaxConfigurationDescriptorSize)
	}
	return out, nil
}

// acInterfaceBytes emits the single-alternate AC interface: standard
// Interface descriptor, CS AC header + six-entity body, and the interrupt
// status endpoint (spec.md §4.1 step 2).
func acInterfaceBytes() []byte {
	header, body := ACTopology()

	var out []byte
	out = append(out, InterfaceDescriptor{
		InterfaceNumber:   ifaceAC,
		NumEndpoints:      1,
		InterfaceClass:    AUDIO,
		InterfaceSubClass: AUDIOCONTROL,
		InterfaceProtocol: IPVersion0200,
	}.Bytes()...)
	out = append(out, header.Bytes()...)
	for _, d := range body {
		out = append(out, d.Bytes()...)
	}
	out = append(out, EndpointDescriptor{
		EndpointAddress: epStatusIn,
		Attributes:      0x03, // interrupt
		MaxPacketSize:   6,
		Interval:        1,
	}.Bytes()...)
	return out
}

// asInterfaceBytes emits one AS interface's three alternates (idle, 16-bit,
// 24-bit) per spec.md §4.1 steps 3-4. in selects an isochronous IN endpoint
// (microphone) vs OUT (speaker).
func asInterfaceBytes(ifnum uint8, terminalLink uint8, nrChannels uint8, epAddr uint8, in bool) []byte {
	var out []byte

	out = append(out, InterfaceDescriptor{
		InterfaceNumber:  ifnum,
		AlternateSetting: AltIdle,
		InterfaceClass:   AUDIO,
		InterfaceSubClass: AUDIOSTREAMING,
		InterfaceProtocol: IPVersion0200,
	}.Bytes()...)

	out = append(out, asAltBytes(ifnum, Alt16, terminalLink, nrChannels, epAddr, in, formatType16(), asEndpoint16(), maxPacket16(in))...)
	out = append(out, asAltBytes(ifnum, Alt24, terminalLink, nrChannels, epAddr, in, formatType24(), asEndpoint24(), maxPacket24(in))...)

	return out
}

func maxPacket16(in bool) uint16 {
	if in {
		return MaxPacketMic16
	}
	return MaxPacketSpk16
}

func maxPacket24(in bool) uint16 {
	if in {
		return MaxPacketMic24
	}
	return MaxPacketSpk24
}

func asAltBytes(ifnum, alt uint8, terminalLink uint8, nrChannels uint8, epAddr uint8, in bool, format FormatTypeIDescriptor, epDesc ASEndpointDescriptor, maxPacket uint16) []byte {
	var out []byte

	out = append(out, InterfaceDescriptor{
		InterfaceNumber:  ifnum,
		AlternateSetting: alt,
		NumEndpoints:     1,
		InterfaceClass:   AUDIO,
		InterfaceSubClass: AUDIOSTREAMING,
		InterfaceProtocol: IPVersion0200,
	}.Bytes()...)

	out = append(out, asGeneralFor(terminalLink, nrChannels).Bytes()...)
	out = append(out, format.Bytes()...)

	sync := SyncAdaptive
	if in {
		sync = SyncAsynchronous
	}
	out = append(out, EndpointDescriptor{
		EndpointAddress: epAddr,
		Attributes:      isoAttributes(sync, UsageData),
		MaxPacketSize:   maxPacket,
		Interval:        1,
	}.Bytes()...)

	out = append(out, epDesc.Bytes()...)

	return out
}
