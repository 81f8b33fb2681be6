package uac2

// Standard (non-class-specific) descriptors, shaped after
// usbarmory-tamago/imx6/usb_device.go's DeviceDescriptor/
// ConfigurationDescriptor/InterfaceDescriptor/EndpointDescriptor, extended
// with an Interface Association Descriptor for the composite function.

// DeviceDescriptor is the Standard Device Descriptor (USB 2.0 Table 9-8).
type DeviceDescriptor struct {
	BcdUSB             uint16
	DeviceClass        uint8
	DeviceSubClass     uint8
	DeviceProtocol     uint8
	MaxPacketSize0     uint8
	IDVendor           uint16
	IDProduct          uint16
	BcdDevice          uint16
	Manufacturer       uint8
	Product            uint8
	SerialNumber       uint8
	NumConfigurations  uint8
}

func (d DeviceDescriptor) Bytes() []byte {
	body := encode(
		d.BcdUSB,
		d.DeviceClass,
		d.DeviceSubClass,
		d.DeviceProtocol,
		d.MaxPacketSize0,
		d.IDVendor,
		d.IDProduct,
		d.BcdDevice,
		d.Manufacturer,
		d.Product,
		d.SerialNumber,
		d.NumConfigurations,
	)
	return append([]byte{uint8(len(body) + 2), DescDevice}, body...)
}

// NewDeviceDescriptor builds the UAC2 composite device descriptor from
// spec.md §6: class=0xEF/0x02/0x01 (Interface Association), 64-byte EP0,
// VID=0xC0DE/PID=0xCAFE placeholders.
func NewDeviceDescriptor(vid, pid uint16) DeviceDescriptor {
	return DeviceDescriptor{
		BcdUSB:            0x0200,
		DeviceClass:       0xEF,
		DeviceSubClass:    0x02,
		DeviceProtocol:    0x01,
		MaxPacketSize0:    64,
		IDVendor:          vid,
		IDProduct:         pid,
		NumConfigurations: 1,
	}
}

// ConfigurationDescriptor is the Standard Configuration Descriptor
// (USB 2.0 Table 9-10). TotalLength covers this header plus every
// subsequent descriptor in the configuration tree.
type ConfigurationDescriptor struct {
	TotalLength        uint16
	NumInterfaces      uint8
	ConfigurationValue uint8
	Configuration      uint8
	Attributes         uint8
	MaxPower           uint8
}

func (d ConfigurationDescriptor) Bytes() []byte {
	body := encode(
		d.TotalLength,
		d.NumInterfaces,
		d.ConfigurationValue,
		d.Configuration,
		d.Attributes,
		d.MaxPower,
	)
	return append([]byte{uint8(len(body) + 2), DescConfiguration}, body...)
}

// InterfaceAssociationDescriptor groups the AC+AS interfaces of the audio
// function for hosts (notably Windows) that require IAD-aware composite
// device enumeration (spec.md §4.1 step 1).
type InterfaceAssociationDescriptor struct {
	FirstInterface  uint8
	InterfaceCount  uint8
	FunctionClass   uint8
	FunctionSubClass uint8
	FunctionProtocol uint8
	Function        uint8
}

func (d InterfaceAssociationDescriptor) Bytes() []byte {
	body := encode(
		d.FirstInterface,
		d.InterfaceCount,
		d.FunctionClass,
		d.FunctionSubClass,
		d.FunctionProtocol,
		d.Function,
	)
	return append([]byte{uint8(len(body) + 2), DescInterfaceAssociation}, body...)
}

// InterfaceDescriptor is the Standard Interface Descriptor
// (USB 2.0 Table 9-12).
type InterfaceDescriptor struct {
	InterfaceNumber   uint8
	AlternateSetting  uint8
	NumEndpoints      uint8
	InterfaceClass    uint8
	InterfaceSubClass uint8
	InterfaceProtocol uint8
	Interface         uint8
}

func (d InterfaceDescriptor) Bytes() []byte {
	body := encode(
		d.InterfaceNumber,
		d.AlternateSetting,
		d.NumEndpoints,
		d.InterfaceClass,
		d.InterfaceSubClass,
		d.InterfaceProtocol,
		d.Interface,
	)
	return append([]byte{uint8(len(body) + 2), DescInterface}, body...)
}

// Endpoint address/direction bit (USB 2.0 Table 9-13).
const endpointDirIn = 0x80

// EndpointDescriptor is the Standard Endpoint Descriptor
// (USB 2.0 Table 9-13). At full speed and a 1 ms service interval,
// Interval is the raw frame count (no microframe encoding).
type EndpointDescriptor struct {
	EndpointAddress uint8
	Attributes      uint8
	MaxPacketSize   uint16
	Interval        uint8
}

func (d EndpointDescriptor) Bytes() []byte {
	body := encode(
		d.EndpointAddress,
		d.Attributes,
		d.MaxPacketSize,
		d.Interval,
	)
	return append([]byte{uint8(len(body) + 2), DescEndpoint}, body...)
}

// isoAttributes packs the standard endpoint bmAttributes for an isochronous
// endpoint: transfer type (bits 0-1, always 01b), synchronization type
// (bits 2-3) and usage type (bits 4-5) (USB 2.0 Table 9-13).
func isoAttributes(sync SynchronizationType, usage UsageType) uint8 {
	const transferTypeIsochronous = 0b01
	return transferTypeIsochronous | uint8(sync)<<2 | uint8(usage)<<4
}
