package simbus

import (
	"fmt"

	"github.com/M3gaFr3ak/rp-usb-uac2/uac2"
)

// Allocator implements uac2.FunctionAllocator against a Device, the way
// teacher's device.go/setup.go implicitly allocate endpoints and track
// interface state as a real controller enumerates. It is single-function
// (one BeginFunction call) since this repository only ever builds one
// composite audio function.
type Allocator struct {
	dev *Device

	nextInterface uint8
	nextAlt       map[uint8]uint8 // ifnum -> next alt to allocate

	started bool
}

// NewAllocator returns an Allocator that will register everything it
// builds against dev.
func NewAllocator(dev *Device) *Allocator {
	return &Allocator{dev: dev, nextAlt: make(map[uint8]uint8)}
}

func (a *Allocator) BeginFunction(class, subclass, protocol uint8) error {
	if a.started {
		return fmt.Errorf("simbus: BeginFunction called twice")
	}
	a.started = true
	return nil
}

func (a *Allocator) AddInterface() (uint8, error) {
	ifnum := a.nextInterface
	a.nextInterface++
	a.dev.altSettings[ifnum] = 0
	return ifnum, nil
}

// AddAltSetting allocates the next unused alternate number on ifnum. The
// descriptor bytes themselves are not stored here: BuildConfigurationDescriptor
// in the uac2 package is the single source of truth for what the host sees
// on GET_DESCRIPTOR, so the Allocator only needs to track which
// (interface, alt) pairs exist to drive endpoint enablement.
func (a *Allocator) AddAltSetting(ifnum uint8, class, subclass, protocol uint8, descriptors ...[]byte) (uint8, error) {
	alt := a.nextAlt[ifnum]
	a.nextAlt[ifnum] = alt + 1
	return alt, nil
}

func (a *Allocator) AddEndpointInterruptIn(ifnum uint8, maxPacketSize uint16, interval uint8) (uac2.EndpointIn, error) {
	ep := newEndpoint(a.dev, ifnum, 0)
	a.dev.endpoints[ifnum] = append(a.dev.endpoints[ifnum], ep)
	return ep, nil
}

func (a *Allocator) AddEndpointIsoOut(ifnum uint8, alt uint8, maxPacketSize uint16, interval uint8, sync uac2.SynchronizationType) (uac2.EndpointOut, error) {
	ep := newEndpoint(a.dev, ifnum, alt)
	a.dev.endpoints[ifnum] = append(a.dev.endpoints[ifnum], ep)
	return ep, nil
}

func (a *Allocator) AddEndpointIsoIn(ifnum uint8, alt uint8, maxPacketSize uint16, interval uint8, sync uac2.SynchronizationType) (uac2.EndpointIn, error) {
	ep := newEndpoint(a.dev, ifnum, alt)
	a.dev.endpoints[ifnum] = append(a.dev.endpoints[ifnum], ep)
	return ep, nil
}

func (a *Allocator) SetHandler(h uac2.Handler) {
	a.dev.handler = h
}
