package uac2

import (
	"encoding/binary"

	"github.com/bamiaux/iobit"

	"github.com/M3gaFr3ak/rp-usb-uac2/internal/bitfield"
)

// SetupData is the raw 8-byte SETUP packet (USB 2.0 Table 9-2), named and
// shaped after teacher's soc/nxp/usb/setup.go SetupData.
type SetupData struct {
	RequestType uint8 // bmRequestType
	Request     uint8 // bRequest
	Value       uint16
	Index       uint16
	Length      uint16
}

// Request is a SetupData decoded into its class-specific-request fields:
// bmRequestType split into Direction/Type/Recipient, and wValue/wIndex split
// into Control Selector/Channel Number and Entity/Interface (spec.md §4.2
// steps 1-3).
type Request struct {
	Direction Direction
	Type      RequestType
	Recipient Recipient
	Request   uint8
	Length    uint16

	ControlSelector uint8
	ChannelNumber   uint8
	EntityID        uint8
	InterfaceNumber uint8
}

// DecodeRequest splits a SetupData's bmRequestType, wValue and wIndex into
// the fields the control dispatcher switches on. bmRequestType's bit layout
// (D7 Direction, D6..5 Type, D4..0 Recipient) is read MSB-first with an
// iobit.Reader, the same bit-precise-field idiom
// other_examples/untangledco-streaming uses for its own descriptor parsing.
func DecodeRequest(s SetupData) Request {
	r := iobit.NewReader([]byte{s.RequestType})
	dir := r.Uint32(1)
	typ := r.Uint32(2)
	recip := r.Uint32(5)

	cs, cn := bitfield.SplitU16(s.Value)
	entity, iface := bitfield.SplitU16(s.Index)

	return Request{
		Direction:       Direction(dir),
		Type:            RequestType(typ),
		Recipient:       Recipient(recip),
		Request:         s.Request,
		Length:          s.Length,
		ControlSelector: cs,
		ChannelNumber:   cn,
		EntityID:        entity,
		InterfaceNumber: iface,
	}
}

// Response describes the outcome of a class-specific control callback.
// Accept=false means Reject: the driver must STALL the pipe (spec.md §4.2,
// §7).
type Response struct {
	Accept bool
	// Len is the number of valid bytes written into the caller-provided
	// IN buffer. Unused for OUT (Set) requests.
	Len int
}

func accepted(n int) Response { return Response{Accept: true, Len: n} }

var rejected = Response{Accept: false}

// Controller implements Handler with the fixed entity/control-selector
// dispatch table from spec.md §4.2, grounded directly on
// original_source/src/uac2.rs's Control::control_in/control_out.
//
// It never blocks and never panics: every unrecognized tuple falls through
// to Reject (spec.md §4.2, §7).
type Controller struct {
	shared *controlShared

	// Mute/volume are cosmetic per spec.md Non-goals ("volume control is
	// reported but cosmetic"); they are still genuinely stored so a CUR
	// Set is reflected back by a subsequent CUR Get.
	mute   bool
	volume int16
}

// NewController creates a Controller wired to the given control-shared
// waker (see signal.go).
func NewController(shared *controlShared) *Controller {
	return &Controller{shared: shared, volume: 32767}
}

func (c *Controller) Enabled(enabled bool)                     { c.shared.notify() }
func (c *Controller) Reset()                                   { c.shared.notify() }
func (c *Controller) Addressed(addr uint8)                     {}
func (c *Controller) Configured(configured bool)                { c.shared.notify() }
func (c *Controller) Suspended(suspended bool)                  {}
func (c *Controller) SetAlternateSetting(ifnum uint8, alt uint8) { c.shared.notify() }

// ControlOut handles class-specific Set requests. Every recognized entity
// accepts silently (spec.md §4.2 table, "Accept"); everything else is
// rejected.
func (c *Controller) ControlOut(req Request, buf []byte) Response {
	if req.Type != RequestTypeClass || req.Recipient != RecipientInterface {
		return rejected
	}

	switch req.EntityID {
	case EntityClock:
		return accepted(0)
	case EntitySpkFeatureUnit:
		switch req.ControlSelector {
		case FUMuteControl:
			if len(buf) >= 1 {
				c.mute = buf[0] != 0
			}
			return accepted(0)
		case FUVolumeControl:
			if len(buf) >= 2 {
				c.volume = int16(binary.LittleEndian.Uint16(buf))
			}
			return accepted(0)
		}
	}

	return rejected
}

// ControlIn handles class-specific Get requests, implementing the lookup
// table in spec.md §4.2 and the testable scenarios in spec.md §8.5.
func (c *Controller) ControlIn(req Request, buf []byte) Response {
	if req.Type != RequestTypeClass {
		return rejected
	}
	if req.Recipient != RecipientInterface {
		return rejected
	}

	switch req.EntityID {
	case EntityClock:
		switch req.Request {
		case ReqCur:
			return writeCurrentSampleRate(buf)
		case ReqRange:
			return writeSampleRateRange(buf)
		}
	case EntitySpkFeatureUnit:
		switch req.ControlSelector {
		case FUMuteControl:
			if req.Request == ReqCur {
				return writeMute(buf, c.mute)
			}
		case FUVolumeControl:
			switch req.Request {
			case ReqCur:
				return writeVolumeCur(buf, c.volume)
			case ReqRange:
				return writeVolumeRange(buf)
			}
		}
	}

	return rejected
}

func writeCurrentSampleRate(buf []byte) Response {
	if len(buf) < 4 {
		return rejected
	}
	binary.LittleEndian.PutUint32(buf, SampleRate)
	return accepted(4)
}

// writeSampleRateRange encodes the Layout-3 range with two subranges, each
// fixed (min=max, res=0), per spec.md §4.2/§8.5.
func writeSampleRateRange(buf []byte) Response {
	out := EncodeLayout3RangeFixed(RangeLow, RangeHigh)
	if len(buf) < len(out) {
		return rejected
	}
	copy(buf, out)
	return accepted(len(out))
}

func writeMute(buf []byte, mute bool) Response {
	if len(buf) < 1 {
		return rejected
	}
	if mute {
		buf[0] = 1
	} else {
		buf[0] = 0
	}
	return accepted(1)
}

func writeVolumeCur(buf []byte, volume int16) Response {
	if len(buf) < 2 {
		return rejected
	}
	binary.LittleEndian.PutUint16(buf, uint16(volume))
	return accepted(2)
}

// writeVolumeRange encodes the Layout-2 range (min=-32768, max=32767, res=1)
// from spec.md §4.2 table.
func writeVolumeRange(buf []byte) Response {
	const layout2Len = 2 + 3*2 // numSubRanges(2) + 1 subrange * (min,max,res)(2 each)
	if len(buf) < layout2Len {
		return rejected
	}
	binary.LittleEndian.PutUint16(buf[0:2], 1)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(int16(-32768)))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(int16(32767)))
	binary.LittleEndian.PutUint16(buf[6:8], 1)
	return accepted(layout2Len)
}

// EncodeLayout3RangeFixed encodes a UAC2 Layout-3 range descriptor with two
// fixed subranges (min=max, res=0): two little-endian bytes of subrange
// count, followed by count*3*4 bytes of (min,max,res) signed 32-bit
// little-endian values (spec.md §4.2 "Layout-3 range encoding").
func EncodeLayout3RangeFixed(v1, v2 int32) []byte {
	out := make([]byte, 2+2*3*4)
	binary.LittleEndian.PutUint16(out[0:2], 2)
	binary.LittleEndian.PutUint32(out[2:6], uint32(v1))
	binary.LittleEndian.PutUint32(out[6:10], uint32(v1))
	binary.LittleEndian.PutUint32(out[10:14], 0)
	binary.LittleEndian.PutUint32(out[14:18], uint32(v2))
	binary.LittleEndian.PutUint32(out[18:22], uint32(v2))
	binary.LittleEndian.PutUint32(out[22:26], 0)
	return out
}
