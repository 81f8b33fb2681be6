package uac2

// AudioReaderWriter bundles every streaming endpoint handed back by New,
// before it is split into independently-movable AudioReader/AudioWriter
// halves (spec.md §4.3).
type AudioReaderWriter struct {
	statusIn EndpointIn
	spk16    EndpointOut
	spk24    EndpointOut
	mic16    EndpointIn
	mic24    EndpointIn
	micBuf16 *micBuffer
	micBuf24 *mic24Buffer
}

// Split is one-shot and consuming: after calling Split, the
// AudioReaderWriter it was called on must not be used again (spec.md §4.3).
// Go has no move semantics to enforce this at compile time, so it is
// enforced by convention, the same relaxation the underlying driver
// contract already makes for its own endpoint handles.
func (rw *AudioReaderWriter) Split() (*AudioReader, *AudioWriter) {
	reader := &AudioReader{
		spk16: rw.spk16,
		spk24: rw.spk24,
		mic16: rw.micBuf16,
		mic24: rw.micBuf24,
	}
	writer := &AudioWriter{
		statusIn:    rw.statusIn,
		mic16:       rw.mic16,
		mic24:       rw.mic24,
		micBuf16:    rw.micBuf16,
		micBuf24:    rw.micBuf24,
		heartbeat:   newHeartbeat(),
		heartbeat24: newHeartbeat24(),
	}
	return reader, writer
}

// UAC2 is the enumerated-but-not-yet-split composite function (spec.md
// §4.3). New wires its descriptors and endpoints through a
// FunctionAllocator; Split then consumes it into a ControlChanged observer
// and an AudioReaderWriter.
type UAC2 struct {
	cfg    Config
	shared *controlShared
	rw     *AudioReaderWriter
}

// DeviceDescriptor returns the Standard Device Descriptor for the
// identity New was built with, for use alongside
// BuildConfigurationDescriptor on GET_DESCRIPTOR(DEVICE).
func (u *UAC2) DeviceDescriptor() DeviceDescriptor {
	return NewDeviceDescriptor(u.cfg.VendorID, u.cfg.ProductID)
}

// New builds the descriptor tree, allocates every interface/alternate/
// endpoint through alloc, and registers the class-specific Controller as
// the driver's Handler (spec.md §4.1, "Responsibility").
func New(alloc FunctionAllocator, cfg Config) (*UAC2, error) {
	if err := alloc.BeginFunction(AUDIO, 0x00, IPVersion0200); err != nil {
		return nil, err
	}

	acNum, err := alloc.AddInterface()
	if err != nil {
		return nil, err
	}
	header, body := ACTopology()
	var acDescriptors [][]byte
	acDescriptors = append(acDescriptors, header.Bytes())
	for _, d := range body {
		acDescriptors = append(acDescriptors, d.Bytes())
	}
	if _, err := alloc.AddAltSetting(acNum, AUDIO, AUDIOCONTROL, IPVersion0200, acDescriptors...); err != nil {
		return nil, err
	}
	statusIn, err := alloc.AddEndpointInterruptIn(acNum, 6, 1)
	if err != nil {
		return nil, err
	}

	spkNum, err := alloc.AddInterface()
	if err != nil {
		return nil, err
	}
	if _, err := alloc.AddAltSetting(spkNum, AUDIO, AUDIOSTREAMING, IPVersion0200); err != nil {
		return nil, err
	}
	spk16, spk24, err := addOutStreamAlts(alloc, spkNum, EntitySpkInputTerminal, 2)
	if err != nil {
		return nil, err
	}

	micNum, err := alloc.AddInterface()
	if err != nil {
		return nil, err
	}
	if _, err := alloc.AddAltSetting(micNum, AUDIO, AUDIOSTREAMING, IPVersion0200); err != nil {
		return nil, err
	}
	mic16, mic24, err := addInStreamAlts(alloc, micNum, EntityMicOutputTerminal, 1)
	if err != nil {
		return nil, err
	}

	shared := newControlShared()
	alloc.SetHandler(NewController(shared))

	return &UAC2{
		cfg:    cfg,
		shared: shared,
		rw: &AudioReaderWriter{
			statusIn: statusIn,
			spk16:    spk16,
			spk24:    spk24,
			mic16:    mic16,
			mic24:    mic24,
			micBuf16: newMicBuffer(),
			micBuf24: newMic24Buffer(),
		},
	}, nil
}

// addOutStreamAlts allocates the speaker AS interface's 16-bit and 24-bit
// alternates (alt 0, the idle alternate, was already added by the caller)
// and their isochronous OUT endpoints.
func addOutStreamAlts(alloc FunctionAllocator, ifnum uint8, terminalLink uint8, nrChannels uint8) (ep16, ep24 EndpointOut, err error) {
	general := asGeneralFor(terminalLink, nrChannels)

	alt16, err := alloc.AddAltSetting(ifnum, AUDIO, AUDIOSTREAMING, IPVersion0200, general.Bytes(), formatType16().Bytes())
	if err != nil {
		return nil, nil, err
	}
	alt24, err := alloc.AddAltSetting(ifnum, AUDIO, AUDIOSTREAMING, IPVersion0200, general.Bytes(), formatType24().Bytes())
	if err != nil {
		return nil, nil, err
	}

	e16, err := alloc.AddEndpointIsoOut(ifnum, alt16, maxPacket16(false), 1, SyncAdaptive)
	if err != nil {
		return nil, nil, err
	}
	e24, err := alloc.AddEndpointIsoOut(ifnum, alt24, maxPacket24(false), 1, SyncAdaptive)
	if err != nil {
		return nil, nil, err
	}
	return e16, e24, nil
}

// addInStreamAlts allocates the microphone AS interface's 16-bit and 24-bit
// alternates and their isochronous IN endpoints.
func addInStreamAlts(alloc FunctionAllocator, ifnum uint8, terminalLink uint8, nrChannels uint8) (ep16, ep24 EndpointIn, err error) {
	general := asGeneralFor(terminalLink, nrChannels)

	alt16, err := alloc.AddAltSetting(ifnum, AUDIO, AUDIOSTREAMING, IPVersion0200, general.Bytes(), formatType16().Bytes())
	if err != nil {
		return nil, nil, err
	}
	alt24, err := alloc.AddAltSetting(ifnum, AUDIO, AUDIOSTREAMING, IPVersion0200, general.Bytes(), formatType24().Bytes())
	if err != nil {
		return nil, nil, err
	}

	e16, err := alloc.AddEndpointIsoIn(ifnum, alt16, maxPacket16(true), 1, SyncAsynchronous)
	if err != nil {
		return nil, nil, err
	}
	e24, err := alloc.AddEndpointIsoIn(ifnum, alt24, maxPacket24(true), 1, SyncAsynchronous)
	if err != nil {
		return nil, nil, err
	}
	return e16, e24, nil
}

// Split consumes the UAC2 object into a control observer and the bundled
// audio endpoints, which the caller should further Split into an
// AudioReader and AudioWriter (spec.md §4.3).
func (u *UAC2) Split() (*ControlChanged, *AudioReaderWriter) {
	return &ControlChanged{shared: u.shared}, u.rw
}
