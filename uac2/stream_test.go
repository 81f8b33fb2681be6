package uac2

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeOut is a minimal EndpointOut: always enabled, and fed from a
// channel the test writes to.
type fakeOut struct {
	enabled int32
	frames  chan []byte
}

func newFakeOut() *fakeOut {
	f := &fakeOut{frames: make(chan []byte, 4)}
	atomic.StoreInt32(&f.enabled, 1)
	return f
}

func (f *fakeOut) WaitEnabled(ctx context.Context) error {
	for atomic.LoadInt32(&f.enabled) == 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
	return nil
}

func (f *fakeOut) Read(ctx context.Context, buf []byte) (int, error) {
	select {
	case data := <-f.frames:
		return copy(buf, data), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// fakeIn is a minimal EndpointIn: always enabled, capturing every write.
type fakeIn struct {
	writes chan []byte
}

func newFakeIn() *fakeIn {
	return &fakeIn{writes: make(chan []byte, 256)}
}

func (f *fakeIn) WaitEnabled(ctx context.Context) error { return nil }

func (f *fakeIn) Write(ctx context.Context, buf []byte) error {
	cp := make([]byte, len(buf))
	copy(cp, buf)
	select {
	case f.writes <- cp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestAudioReaderPublishesMixedDownFrames(t *testing.T) {
	spk := newFakeOut()
	mic := newMicBuffer()
	reader := &AudioReader{spk16: spk, mic16: mic}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go reader.Receive(ctx)

	frame := make([]byte, 4)
	frame[0], frame[1] = 0x00, 0x10 // L = 4096
	frame[2], frame[3] = 0x00, 0x10 // R = 4096
	spk.frames <- frame

	// (4096>>1) + (4096>>1) = 4096, little-endian 0x00, 0x10.
	require.Eventually(t, func() bool {
		data, fresh := mic.take()
		if fresh {
			return data[0] == 0x00 && data[1] == 0x10
		}
		return false
	}, time.Second, time.Millisecond)
}

func TestAudioWriterSendsAtLeast95FramesInAHundredMillis(t *testing.T) {
	mic16 := newFakeIn()
	mic := newMicBuffer()
	writer := &AudioWriter{mic16: mic16, micBuf16: mic, heartbeat: newHeartbeat()}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	go writer.Send(ctx)

	deadline := time.After(120 * time.Millisecond)
	count := 0
loop:
	for {
		select {
		case <-mic16.writes:
			count++
		case <-deadline:
			break loop
		}
	}

	require.GreaterOrEqual(t, count, 95)
}

func TestAudioWriterFallsBackToHeartbeatWhenSilent(t *testing.T) {
	mic16 := newFakeIn()
	mic := newMicBuffer()
	writer := &AudioWriter{mic16: mic16, micBuf16: mic, heartbeat: newHeartbeat()}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	go writer.Send(ctx)

	select {
	case payload := <-mic16.writes:
		require.Equal(t, writer.heartbeat[:], payload)
	case <-time.After(time.Second):
		t.Fatal("no payload sent")
	}
}

func TestAudioReader24PublishesMixedDownFrames(t *testing.T) {
	spk := newFakeOut()
	mic := newMic24Buffer()
	reader := &AudioReader{spk24: spk, mic24: mic}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go reader.Receive24(ctx)

	frame := make([]byte, 8)
	encode24(frame[0:4], 100000)
	encode24(frame[4:8], 100000)
	spk.frames <- frame

	// (100000>>1) + (100000>>1) = 100000.
	require.Eventually(t, func() bool {
		data, fresh := mic.take()
		return fresh && decode24(data[0:4]) == 100000
	}, time.Second, time.Millisecond)
}

func TestAudioWriter24SendsAtLeast95FramesInAHundredMillis(t *testing.T) {
	mic24 := newFakeIn()
	mic := newMic24Buffer()
	writer := &AudioWriter{mic24: mic24, micBuf24: mic, heartbeat24: newHeartbeat24()}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	go writer.Send24(ctx)

	deadline := time.After(120 * time.Millisecond)
	count := 0
loop:
	for {
		select {
		case <-mic24.writes:
			count++
		case <-deadline:
			break loop
		}
	}

	require.GreaterOrEqual(t, count, 95)
}

func TestAudioWriter24FallsBackToHeartbeatWhenSilent(t *testing.T) {
	mic24 := newFakeIn()
	mic := newMic24Buffer()
	writer := &AudioWriter{mic24: mic24, micBuf24: mic, heartbeat24: newHeartbeat24()}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	go writer.Send24(ctx)

	select {
	case payload := <-mic24.writes:
		require.Equal(t, writer.heartbeat24[:], payload)
	case <-time.After(time.Second):
		t.Fatal("no payload sent")
	}
}
