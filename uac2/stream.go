package uac2

import (
	"context"
	"encoding/binary"
	"log"
	"math/rand"
	"time"
)

// sendDeadline is the race window between the periodic heartbeat and a
// fresh signal from the receive side (spec.md §4.4 "send (microphone)").
const sendDeadline = 900 * time.Microsecond

// maxOutTransfer16 is the largest single OUT transfer the 16-bit receive
// loop reads at once (spec.md §4.4: "up to 400 bytes per transfer").
const maxOutTransfer16 = 400

// maxOutTransfer24 is maxOutTransfer16's 24-bit counterpart, scaled by the
// same headroom-over-max-packet-size ratio applied to spk24's larger
// max-packet-size (spec.md §4.1 "spk-24 = 392").
const maxOutTransfer24 = 800

// MixDown halves and sums one interleaved stereo 16-bit LE chunk into mono:
// for each 4-byte (L, R) pair it computes sign-extended L arithmetically
// shifted right by 1, plus sign-extended R arithmetically shifted right by
// 1, truncated back to int16 and emitted little-endian (spec.md §4.4
// "Mix-down contract", §8.3-8.4). Trailing bytes that don't form a complete
// 4-byte chunk are ignored.
func MixDown(in []byte) []byte {
	n := len(in) / 4
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		chunk := in[i*4 : i*4+4]
		l := int16(binary.LittleEndian.Uint16(chunk[0:2]))
		r := int16(binary.LittleEndian.Uint16(chunk[2:4]))
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(mixSample(l, r)))
	}
	return out
}

// mixSample computes (L>>1)+(R>>1) with arithmetic shift; the result always
// fits in int16 since |L>>1|,|R>>1| <= 16384 (spec.md §8.3).
func mixSample(l, r int16) int16 {
	return (l >> 1) + (r >> 1)
}

// MixDown24 is MixDown's Enabled-24 counterpart: each channel occupies a
// 4-byte subslot (spec.md §4.1 "subslot size 4"), the 24-bit sample held
// sign-extended in the low 3 bytes, little-endian, top byte zero. Applies
// the same mix-down law as MixDown -- sign-extend, arithmetic-shift right
// by 1, add, truncate back to the sample width -- over 8-byte (L, R)
// frames, emitting one 4-byte mono subslot per frame. Trailing bytes that
// don't form a complete 8-byte frame are ignored.
func MixDown24(in []byte) []byte {
	n := len(in) / 8
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		frame := in[i*8 : i*8+8]
		l := decode24(frame[0:4])
		r := decode24(frame[4:8])
		encode24(out[i*4:i*4+4], mixSample24(l, r))
	}
	return out
}

// decode24 sign-extends a 24-bit little-endian sample held in a 4-byte
// subslot's low 3 bytes (spec.md §4.1 "subslot size 4").
func decode24(subslot []byte) int32 {
	v := int32(subslot[0]) | int32(subslot[1])<<8 | int32(subslot[2])<<16
	if v&0x800000 != 0 {
		v |= ^0xFFFFFF
	}
	return v
}

// encode24 writes a 24-bit sample back into a 4-byte subslot, low 3 bytes
// little-endian, top byte zeroed.
func encode24(subslot []byte, v int32) {
	subslot[0] = byte(v)
	subslot[1] = byte(v >> 8)
	subslot[2] = byte(v >> 16)
	subslot[3] = 0
}

// mixSample24 is mixSample's 24-bit counterpart; the result always fits in
// 24 bits since |L>>1|,|R>>1| <= 2^22 (spec.md §8.3, generalized).
func mixSample24(l, r int32) int32 {
	return (l >> 1) + (r >> 1)
}

// AudioReader owns both speaker OUT endpoints (16-bit and 24-bit), split
// out of an AudioReaderWriter (spec.md §4.3).
type AudioReader struct {
	spk16  EndpointOut
	spk24  EndpointOut
	mic16  *micBuffer
	mic24  *mic24Buffer
}

// Receive drives the 16-bit speaker stream: wait for the host to select
// alt 1, read frames, mix them down, and publish them for the send side.
// On any read error it treats the stream as disabled and re-waits
// (spec.md §4.4 "receive (speaker)", §7).
func (r *AudioReader) Receive(ctx context.Context) error {
	buf := make([]byte, maxOutTransfer16)
	for {
		if err := r.spk16.WaitEnabled(ctx); err != nil {
			return err
		}
		log.Println("uac2: speaker connected (16-bit)")

		for {
			n, err := r.spk16.Read(ctx, buf)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("uac2: speaker read error: %v", err)
				break
			}
			mono := MixDown(buf[:n])
			_ = n / 2 // data_len is computed but unused, spec.md §9(b)
			r.mic16.publish(mono)
		}
		log.Println("uac2: speaker disconnected")
	}
}

// Receive24 is Receive's Enabled-24 counterpart: same wait/read/mix-down/
// publish loop, driving the 24-bit speaker alternate and the 24-bit mic
// buffer instead (spec.md §4.4 "State machine per stream", Enabled-24).
func (r *AudioReader) Receive24(ctx context.Context) error {
	buf := make([]byte, maxOutTransfer24)
	for {
		if err := r.spk24.WaitEnabled(ctx); err != nil {
			return err
		}
		log.Println("uac2: speaker connected (24-bit)")

		for {
			n, err := r.spk24.Read(ctx, buf)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("uac2: speaker read error: %v", err)
				break
			}
			mono := MixDown24(buf[:n])
			r.mic24.publish(mono)
		}
		log.Println("uac2: speaker disconnected")
	}
}

// AudioWriter owns the interrupt status endpoint and both microphone IN
// endpoints (16-bit and 24-bit), split out of an AudioReaderWriter
// (spec.md §4.3).
type AudioWriter struct {
	statusIn EndpointIn
	mic16    EndpointIn
	mic24    EndpointIn
	micBuf16 *micBuffer
	micBuf24 *mic24Buffer

	heartbeat   [MaxPacketMic16]byte
	heartbeat24 [MaxPacketMic24]byte
}

// newHeartbeat precomputes the pseudo-random fallback pattern
// (spec.md §4.4: "a precomputed pseudo-random 98-byte pattern used as a
// heartbeat"), seeded deterministically as original_source's
// SmallRng::seed_from_u64 does.
func newHeartbeat() [MaxPacketMic16]byte {
	var buf [MaxPacketMic16]byte
	rand.New(rand.NewSource(0x3675978356739456)).Read(buf[:])
	return buf
}

// newHeartbeat24 is newHeartbeat's Enabled-24 counterpart, sized for the
// larger 24-bit mic packet and seeded from a distinct constant so the two
// patterns don't collide on read.
func newHeartbeat24() [MaxPacketMic24]byte {
	var buf [MaxPacketMic24]byte
	rand.New(rand.NewSource(0x3675978356739457)).Read(buf[:])
	return buf
}

// Send drives the 16-bit microphone stream: on each service interval it
// races a 900us timer against the shared mic-buffer signal, sending
// whichever fires first (spec.md §4.4 "send (microphone)").
func (w *AudioWriter) Send(ctx context.Context) error {
	for {
		if err := w.mic16.WaitEnabled(ctx); err != nil {
			return err
		}
		log.Println("uac2: microphone connected (16-bit)")

		for {
			payload := w.nextPayload(ctx)
			if payload == nil {
				return ctx.Err()
			}
			if err := w.mic16.Write(ctx, payload); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("uac2: microphone write error: %v", err)
				break
			}
		}
		log.Println("uac2: microphone disconnected")
	}
}

// Send24 is Send's Enabled-24 counterpart: same timer/signal race, driving
// the 24-bit microphone endpoint and its own buffer and heartbeat instead
// (spec.md §4.4 "State machine per stream", Enabled-24).
func (w *AudioWriter) Send24(ctx context.Context) error {
	for {
		if err := w.mic24.WaitEnabled(ctx); err != nil {
			return err
		}
		log.Println("uac2: microphone connected (24-bit)")

		for {
			payload := w.nextPayload24(ctx)
			if payload == nil {
				return ctx.Err()
			}
			if err := w.mic24.Write(ctx, payload); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("uac2: microphone write error: %v", err)
				break
			}
		}
		log.Println("uac2: microphone disconnected")
	}
}

// nextPayload implements the timer/signal race: whichever of the 900us
// deadline or a fresh mic-buffer publish fires first selects the frame to
// send. It returns nil only when ctx is done.
func (w *AudioWriter) nextPayload(ctx context.Context) []byte {
	timer := time.NewTimer(sendDeadline)
	defer timer.Stop()

	select {
	case <-w.micBuf16.wake:
		if frame, ok := w.micBuf16.take(); ok {
			buf := make([]byte, MaxPacketMic16)
			copy(buf, frame[:])
			return buf
		}
		return w.heartbeat[:]
	case <-timer.C:
		if frame, ok := w.micBuf16.take(); ok {
			buf := make([]byte, MaxPacketMic16)
			copy(buf, frame[:])
			return buf
		}
		return w.heartbeat[:]
	case <-ctx.Done():
		return nil
	}
}

// nextPayload24 is nextPayload's Enabled-24 counterpart.
func (w *AudioWriter) nextPayload24(ctx context.Context) []byte {
	timer := time.NewTimer(sendDeadline)
	defer timer.Stop()

	select {
	case <-w.micBuf24.wake:
		if frame, ok := w.micBuf24.take(); ok {
			buf := make([]byte, MaxPacketMic24)
			copy(buf, frame[:])
			return buf
		}
		return w.heartbeat24[:]
	case <-timer.C:
		if frame, ok := w.micBuf24.take(); ok {
			buf := make([]byte, MaxPacketMic24)
			copy(buf, frame[:])
			return buf
		}
		return w.heartbeat24[:]
	case <-ctx.Done():
		return nil
	}
}
