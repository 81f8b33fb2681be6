// Package simbus is an in-process stand-in for a real USB device
// controller: it implements uac2.FunctionAllocator and the
// uac2.EndpointIn/EndpointOut contracts over plain Go channels, so the
// uac2 package and anything built on it (cmd/uac2demo, tests) can run
// without real hardware.
//
// It plays the role teacher's soc/nxp/usb package plays for a real NXP
// controller: SETUP dispatch, endpoint enable tracking, descriptor
// hand-back on GET_DESCRIPTOR. Where that package drives dQH/dTD DMA
// rings, this one drives buffered channels, since there is no physical
// memory to describe.
package simbus

import (
	"context"
)

// endpointQueueDepth bounds how many frames can be in flight before a
// producer blocks; it has no relation to a real controller's transfer
// ring depth.
const endpointQueueDepth = 4

// Endpoint is a channel-backed stand-in for one direction of one USB
// endpoint. It satisfies both uac2.EndpointIn and uac2.EndpointOut; which
// interface it is handed out as depends on which Allocator method created
// it.
type Endpoint struct {
	dev   *Device
	ifnum uint8
	alt   uint8
	ch    chan []byte
}

func newEndpoint(dev *Device, ifnum, alt uint8) *Endpoint {
	return &Endpoint{dev: dev, ifnum: ifnum, alt: alt, ch: make(chan []byte, endpointQueueDepth)}
}

// WaitEnabled blocks until the device's current alternate setting for
// ifnum is alt, i.e. until the simulated host has SET_INTERFACE'd this
// endpoint's owning alternate.
func (e *Endpoint) WaitEnabled(ctx context.Context) error {
	for {
		changed := e.dev.changed()
		if e.dev.currentAlt(e.ifnum) == e.alt {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Read implements uac2.EndpointOut: it pulls the next frame a test
// harness (or cmd/uac2demo's simulated host) injected with Inject.
func (e *Endpoint) Read(ctx context.Context, buf []byte) (int, error) {
	select {
	case data := <-e.ch:
		return copy(buf, data), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Write implements uac2.EndpointIn: it hands a frame off to whatever is
// Capturing on the other end (a test harness or cmd/uac2demo's simulated
// host sink).
func (e *Endpoint) Write(ctx context.Context, buf []byte) error {
	cp := make([]byte, len(buf))
	copy(cp, buf)
	select {
	case e.ch <- cp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inject simulates the host delivering one OUT transfer to this endpoint.
// Only meaningful on endpoints allocated as EndpointOut.
func (e *Endpoint) Inject(ctx context.Context, data []byte) error {
	return e.Write(ctx, data)
}

// Capture simulates the host pulling one IN transfer from this endpoint.
// Only meaningful on endpoints allocated as EndpointIn.
func (e *Endpoint) Capture(ctx context.Context) ([]byte, error) {
	buf := make([]byte, endpointScratchSize)
	n, err := e.Read(ctx, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// endpointScratchSize is generously larger than any max-packet-size this
// function ever uses (spec.md §3: the largest is 392 bytes).
const endpointScratchSize = 512
