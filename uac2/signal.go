package uac2

import "sync/atomic"

// controlShared is the single-writer/single-reader signal between the
// control callback (Controller, running on whatever goroutine the driver
// delivers SETUP packets on) and an application-level observer
// (ControlChanged), per spec.md §3 "Control-shared state" and §4.3.
//
// It realizes the design note in spec.md §9: "(atomic-flag,
// registered-waker) where the callback sets the flag and wakes, and the
// async observer clears the flag before returning ready" — the Go
// equivalent of a registered waker is a capacity-1 channel that a
// non-blocking send never stalls the writer on.
type controlShared struct {
	changed atomic.Bool
	wake    chan struct{}
}

func newControlShared() *controlShared {
	return &controlShared{wake: make(chan struct{}, 1)}
}

// notify marks state as changed and wakes at most one waiter. Safe to call
// from any goroutine; never blocks.
func (c *controlShared) notify() {
	c.changed.Store(true)
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// wait blocks until notify has been called since the last successful wait,
// or ctx is done.
func (c *controlShared) wait(ctx doneCtx) error {
	for {
		if c.changed.CompareAndSwap(true, false) {
			return nil
		}
		select {
		case <-c.wake:
			continue
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// doneCtx is the subset of context.Context used here, so this file doesn't
// need to import context just for the interface.
type doneCtx interface {
	Done() <-chan struct{}
	Err() error
}

// ControlChanged observes controlShared from application code (the
// counterpart to original_source's ControlChanged, spec.md §4.3).
type ControlChanged struct {
	shared *controlShared
}

// Wait blocks until the control state has changed (enable, reset,
// configuration, alternate-setting change) or ctx is done.
func (c *ControlChanged) Wait(ctx doneCtx) error {
	return c.shared.wait(ctx)
}

// micBuffer is the single-producer/single-consumer, last-value-wins
// hand-off of <=98 bytes between the speaker-receive task and the
// microphone-send task (spec.md §3 "Streaming buffer", §9 design note).
type micBuffer struct {
	data  [MaxPacketMic16]byte
	fresh atomic.Bool
	wake  chan struct{}
}

func newMicBuffer() *micBuffer {
	return &micBuffer{wake: make(chan struct{}, 1)}
}

// publish stores a new frame and signals the send side. Only the receive
// task calls this.
func (b *micBuffer) publish(frame []byte) {
	copy(b.data[:], frame)
	b.fresh.Store(true)
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// take returns the most recently published frame if one is pending, and
// whether one was pending. Only the send task calls this.
func (b *micBuffer) take() ([MaxPacketMic16]byte, bool) {
	if b.fresh.CompareAndSwap(true, false) {
		return b.data, true
	}
	return b.data, false
}

// mic24Buffer is micBuffer's counterpart for the 24-bit alternate: same
// single-producer/single-consumer, last-value-wins hand-off, sized for
// the wider subslot (spec.md §4.4 "State machine per stream", Enabled-24).
type mic24Buffer struct {
	data  [MaxPacketMic24]byte
	fresh atomic.Bool
	wake  chan struct{}
}

func newMic24Buffer() *mic24Buffer {
	return &mic24Buffer{wake: make(chan struct{}, 1)}
}

// publish stores a new frame and signals the send side. Only the receive
// task calls this.
func (b *mic24Buffer) publish(frame []byte) {
	copy(b.data[:], frame)
	b.fresh.Store(true)
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// take returns the most recently published frame if one is pending, and
// whether one was pending. Only the send task calls this.
func (b *mic24Buffer) take() ([MaxPacketMic24]byte, bool) {
	if b.fresh.CompareAndSwap(true, false) {
		return b.data, true
	}
	return b.data, false
}
