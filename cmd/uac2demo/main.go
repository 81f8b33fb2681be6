// Command uac2demo assembles the uac2 composite function on top of
// simbus's in-process simulated controller and runs the receive/send/
// control-observer loops, standing in for original_source's
// embassy_executor::main spawning usb_task/receive_task/send_task.
//
// There is no real hardware here: a goroutine plays the simulated host,
// enumerating the device and periodically feeding speaker audio in so the
// microphone side has something other than the heartbeat pattern to send.
package main

import (
	"context"
	"encoding/binary"
	"log"
	"math"
	"time"

	"github.com/M3gaFr3ak/rp-usb-uac2/simbus"
	"github.com/M3gaFr3ak/rp-usb-uac2/uac2"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev := simbus.NewDevice()
	alloc := simbus.NewAllocator(dev)

	cfg := uac2.DefaultConfig()
	function, err := uac2.New(alloc, cfg)
	if err != nil {
		log.Fatalf("uac2demo: build function: %v", err)
	}

	configDescriptor, err := uac2.BuildConfigurationDescriptor(cfg)
	if err != nil {
		log.Fatalf("uac2demo: build descriptor: %v", err)
	}
	deviceDescriptor := function.DeviceDescriptor().Bytes()
	bus := simbus.NewBus(dev, deviceDescriptor, configDescriptor)

	control, readerWriter := function.Split()
	reader, writer := readerWriter.Split()

	go simulatedHost(ctx, dev, bus)
	go watchControl(ctx, control)

	done := make(chan struct{}, 4)
	go func() {
		if err := reader.Receive(ctx); err != nil {
			log.Printf("uac2demo: receive loop stopped: %v", err)
		}
		done <- struct{}{}
	}()
	go func() {
		if err := reader.Receive24(ctx); err != nil {
			log.Printf("uac2demo: 24-bit receive loop stopped: %v", err)
		}
		done <- struct{}{}
	}()
	go func() {
		if err := writer.Send(ctx); err != nil {
			log.Printf("uac2demo: send loop stopped: %v", err)
		}
		done <- struct{}{}
	}()
	go func() {
		if err := writer.Send24(ctx); err != nil {
			log.Printf("uac2demo: 24-bit send loop stopped: %v", err)
		}
		done <- struct{}{}
	}()

	<-done
	<-done
	<-done
	<-done
}

// watchControl logs every control-plane change, the demo's analogue of
// original_source's commented-out "uac2_class.stuff()" observer future.
func watchControl(ctx context.Context, control *uac2.ControlChanged) {
	for {
		if err := control.Wait(ctx); err != nil {
			return
		}
		log.Println("uac2demo: control state changed")
	}
}

// simulatedHost enumerates the device (SET_CONFIGURATION, then
// SET_INTERFACE to the 16-bit alternate on both streaming interfaces),
// fetches the configuration descriptor the way a real host's
// enumeration would, and then feeds a synthetic stereo tone into the
// speaker OUT endpoint every millisecond while draining whatever the
// microphone IN endpoint produces.
func simulatedHost(ctx context.Context, dev *simbus.Device, bus *simbus.Bus) {
	const ifaceSpkAS = 1
	const ifaceMicAS = 2
	const alt16 = 1

	if _, err := bus.Dispatch(uac2.SetupData{Request: uac2.ReqGetDescriptor, Value: uint16(uac2.DescConfiguration) << 8, Length: uac2.MaxConfigurationDescriptorSize}, nil); err != nil {
		log.Printf("uac2demo: simulated GET_DESCRIPTOR failed: %v", err)
	}

	dev.SetConfigured(true, 1)
	dev.SetInterface(ifaceSpkAS, alt16)
	dev.SetInterface(ifaceMicAS, alt16)
	log.Println("uac2demo: simulated host enumerated device (alt 16-bit)")

	spkOut := dev.Endpoint(ifaceSpkAS, alt16)
	micIn := dev.Endpoint(ifaceMicAS, alt16)

	go drainMic(ctx, micIn)

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	var sample int
	for {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}

		frame := make([]byte, uac2.MaxPacketSpk16)
		for i := 0; i+4 <= len(frame); i += 4 {
			v := int16(8192 * math.Sin(2*math.Pi*440*float64(sample)/48000))
			binary.LittleEndian.PutUint16(frame[i:i+2], uint16(v))
			binary.LittleEndian.PutUint16(frame[i+2:i+4], uint16(v))
			sample++
		}
		if err := spkOut.Inject(ctx, frame); err != nil {
			return
		}
	}
}

// drainMic simulates the host's isochronous IN polling, discarding
// whatever the device sends (heartbeat or mixed-down speaker audio).
func drainMic(ctx context.Context, micIn *simbus.Endpoint) {
	var n int
	for {
		if _, err := micIn.Capture(ctx); err != nil {
			return
		}
		n++
		if n%1000 == 0 {
			log.Printf("uac2demo: captured %d microphone frames", n)
		}
	}
}
