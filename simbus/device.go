package simbus

import (
	"sync"

	"github.com/M3gaFr3ak/rp-usb-uac2/uac2"
)

// Device holds the enumerated state a real controller's Device struct
// holds in teacher's soc/nxp/usb/device.go: the active configuration, the
// per-interface alternate setting, and the registered class-specific
// Handler. altSettings/endpoints are filled in by an Allocator as the
// uac2 package builds its descriptor tree.
type Device struct {
	mu sync.Mutex

	configurationValue uint8
	altSettings        map[uint8]uint8 // ifnum -> current alt
	endpoints          map[uint8][]*Endpoint
	handler            uac2.Handler

	waiters chan struct{} // closed and replaced on every state change
}

// NewDevice returns an empty, unconfigured device ready to be wired
// through an Allocator.
func NewDevice() *Device {
	return &Device{
		altSettings: make(map[uint8]uint8),
		endpoints:   make(map[uint8][]*Endpoint),
		waiters:     make(chan struct{}),
	}
}

// Endpoint returns the endpoint registered for (ifnum, alt), or nil if
// none was. It lets a simulated host (cmd/uac2demo) or a test harness
// inject/capture transfers on a specific alternate's endpoint without
// going through the uac2 package's own split ownership.
func (d *Device) Endpoint(ifnum, alt uint8) *Endpoint {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ep := range d.endpoints[ifnum] {
		if ep.alt == alt {
			return ep
		}
	}
	return nil
}

func (d *Device) currentAlt(ifnum uint8) uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.altSettings[ifnum]
}

// changed returns a channel closed the next time any interface's
// alternate setting, or the configuration, changes.
func (d *Device) changed() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waiters
}

func (d *Device) notifyLocked() {
	close(d.waiters)
	d.waiters = make(chan struct{})
}

// SetInterface is the SET_INTERFACE entry point: a test harness or a
// simulated host in cmd/uac2demo calls it to select an alternate setting,
// the same transition handleStandardSetup's SET_INTERFACE case drives in
// teacher's setup.go.
func (d *Device) SetInterface(ifnum, alt uint8) {
	d.mu.Lock()
	d.altSettings[ifnum] = alt
	d.notifyLocked()
	d.mu.Unlock()

	if d.handler != nil {
		d.handler.SetAlternateSetting(ifnum, alt)
	}
}

// SetConfigured marks the device configured or not, mirroring
// SET_CONFIGURATION / the unconfigured state after a bus reset.
func (d *Device) SetConfigured(configured bool, value uint8) {
	d.mu.Lock()
	d.configurationValue = value
	d.notifyLocked()
	d.mu.Unlock()

	if d.handler != nil {
		d.handler.Configured(configured)
	}
}

// Reset drops every interface back to its idle alternate and notifies the
// Handler, mirroring teacher device.go's Start loop clearing
// dev.ConfigurationValue on USBSTS_URI.
func (d *Device) Reset() {
	d.mu.Lock()
	for ifnum := range d.altSettings {
		d.altSettings[ifnum] = 0
	}
	d.configurationValue = 0
	d.notifyLocked()
	d.mu.Unlock()

	if d.handler != nil {
		d.handler.Reset()
	}
}
