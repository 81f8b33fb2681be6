package simbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/M3gaFr3ak/rp-usb-uac2/simbus"
	"github.com/M3gaFr3ak/rp-usb-uac2/uac2"
)

func buildFunction(t *testing.T) (*simbus.Device, *simbus.Bus, *uac2.UAC2) {
	t.Helper()

	dev := simbus.NewDevice()
	alloc := simbus.NewAllocator(dev)

	cfg := uac2.DefaultConfig()
	fn, err := uac2.New(alloc, cfg)
	require.NoError(t, err)

	configDescriptor, err := uac2.BuildConfigurationDescriptor(cfg)
	require.NoError(t, err)

	bus := simbus.NewBus(dev, fn.DeviceDescriptor().Bytes(), configDescriptor)
	return dev, bus, fn
}

func TestGetConfigurationDescriptorMatchesBuiltOne(t *testing.T) {
	_, bus, _ := buildFunction(t)

	in, err := bus.Dispatch(uac2.SetupData{
		Request: uac2.ReqGetDescriptor,
		Value:   uint16(uac2.DescConfiguration) << 8,
		Length:  uac2.MaxConfigurationDescriptorSize,
	}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, in)
	require.Equal(t, uint8(uac2.DescConfiguration), in[1])

	want, err := uac2.BuildConfigurationDescriptor(uac2.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, want, in)
}

func TestSetInterfaceEnablesMatchingEndpoint(t *testing.T) {
	dev, bus, _ := buildFunction(t)

	const ifaceSpkAS = 1
	const alt16 = 1

	_, err := bus.Dispatch(uac2.SetupData{Request: uac2.ReqSetConfiguration, Value: 1}, nil)
	require.NoError(t, err)
	_, err = bus.Dispatch(uac2.SetupData{Request: uac2.ReqSetInterface, Value: uint16(alt16), Index: uint16(ifaceSpkAS)}, nil)
	require.NoError(t, err)

	ep := dev.Endpoint(ifaceSpkAS, alt16)
	require.NotNil(t, ep)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, ep.WaitEnabled(ctx))
}

func TestClockCurSampleRateThroughBus(t *testing.T) {
	_, bus, _ := buildFunction(t)

	in, err := bus.Dispatch(uac2.SetupData{
		RequestType: 0b10100001, // IN, Class, Interface
		Request:     uac2.ReqCur,
		Index:       uint16(uac2.EntityClock) << 8,
		Length:      4,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x80, 0xBB, 0x00, 0x00}, in)
}
