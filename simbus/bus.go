package simbus

import (
	"fmt"
	"log"

	"github.com/M3gaFr3ak/rp-usb-uac2/uac2"
)

// Bus is the simulated host-to-device control pipe: it dispatches SETUP
// packets against a Device the way teacher's hw.handleSetup dispatches
// against the real EP0, but over plain function calls instead of dQH/dTD
// registers.
type Bus struct {
	dev              *Device
	deviceDescriptor []byte
	configDescriptor []byte
}

// NewBus wires a Bus to dev, serving deviceDescriptor on
// GET_DESCRIPTOR(DEVICE) and configDescriptor on
// GET_DESCRIPTOR(CONFIGURATION).
func NewBus(dev *Device, deviceDescriptor, configDescriptor []byte) *Bus {
	return &Bus{dev: dev, deviceDescriptor: deviceDescriptor, configDescriptor: configDescriptor}
}

// Dispatch handles one SETUP packet and returns the IN data stage (if
// any). It mirrors the branch structure of teacher's handleSetup: class
// requests (bmRequestType bit 5 set) go to the registered Handler,
// everything else is handled as a standard request.
func (b *Bus) Dispatch(s uac2.SetupData, out []byte) (in []byte, err error) {
	req := uac2.DecodeRequest(s)

	if req.Type == uac2.RequestTypeClass {
		return b.dispatchClass(req, out)
	}

	return b.dispatchStandard(s, req)
}

func (b *Bus) dispatchClass(req uac2.Request, out []byte) ([]byte, error) {
	if b.dev.handler == nil {
		return nil, fmt.Errorf("simbus: no handler registered")
	}

	if req.Direction == uac2.DirIn {
		buf := make([]byte, req.Length)
		resp := b.dev.handler.ControlIn(req, buf)
		if !resp.Accept {
			return nil, fmt.Errorf("simbus: class IN request rejected: entity %#x cs %#x req %#x", req.EntityID, req.ControlSelector, req.Request)
		}
		return buf[:resp.Len], nil
	}

	resp := b.dev.handler.ControlOut(req, out)
	if !resp.Accept {
		return nil, fmt.Errorf("simbus: class OUT request rejected: entity %#x cs %#x req %#x", req.EntityID, req.ControlSelector, req.Request)
	}
	return nil, nil
}

func (b *Bus) dispatchStandard(s uac2.SetupData, req uac2.Request) ([]byte, error) {
	switch s.Request {
	case uac2.ReqGetDescriptor:
		descType := s.Value >> 8
		switch descType {
		case uac2.DescDevice:
			return trim(b.deviceDescriptor, s.Length), nil
		case uac2.DescConfiguration:
			return trim(b.configDescriptor, s.Length), nil
		default:
			return nil, fmt.Errorf("simbus: unsupported descriptor type %#x", descType)
		}

	case uac2.ReqGetConfiguration:
		return []byte{b.dev.configurationValue}, nil

	case uac2.ReqSetConfiguration:
		value := uint8(s.Value)
		b.dev.SetConfigured(value != 0, value)
		log.Printf("simbus: configured (value=%d)", value)
		return nil, nil

	case uac2.ReqGetInterface:
		return []byte{b.dev.currentAlt(req.InterfaceNumber)}, nil

	case uac2.ReqSetInterface:
		ifnum := uint8(s.Index)
		alt := uint8(s.Value)
		b.dev.SetInterface(ifnum, alt)
		log.Printf("simbus: interface %d -> alt %d", ifnum, alt)
		return nil, nil

	default:
		return nil, fmt.Errorf("simbus: unsupported standard request %#x", s.Request)
	}
}

func trim(buf []byte, wLength uint16) []byte {
	if int(wLength) < len(buf) {
		return buf[:wLength]
	}
	return buf
}
