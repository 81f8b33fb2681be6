package uac2

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMixSampleLawOverRange(t *testing.T) {
	for l := -32768; l <= 32767; l += 997 {
		for r := -32768; r <= 32767; r += 1009 {
			got := mixSample(int16(l), int16(r))
			want := int16(int16(l)>>1) + int16(int16(r)>>1)
			require.Equal(t, want, got)
		}
	}
}

func TestMixDownRoundTripLength(t *testing.T) {
	in := make([]byte, maxOutTransfer16) // 400 bytes -> 100 stereo frames
	for i := range in {
		in[i] = byte(i)
	}
	out := MixDown(in)
	require.Len(t, out, len(in)/2) // 400 -> 200
}

func TestMixDownIgnoresTrailingPartialChunk(t *testing.T) {
	in := make([]byte, 6) // one full 4-byte frame + 2 trailing bytes
	out := MixDown(in)
	require.Len(t, out, 2)
}

func TestMixDownKnownValues(t *testing.T) {
	in := make([]byte, 4)
	binary.LittleEndian.PutUint16(in[0:2], uint16(int16(20000)))
	binary.LittleEndian.PutUint16(in[2:4], uint16(int16(-20000)))

	out := MixDown(in)
	require.Len(t, out, 2)

	got := int16(binary.LittleEndian.Uint16(out))
	want := int16(20000>>1) + int16(int16(-20000)>>1)
	require.Equal(t, want, got)
}

func TestMixSample24LawOverRange(t *testing.T) {
	for l := -(1 << 23); l < 1<<23; l += 104729 {
		for r := -(1 << 23); r < 1<<23; r += 131101 {
			got := mixSample24(int32(l), int32(r))
			want := int32(l>>1) + int32(r>>1)
			require.Equal(t, want, got)
		}
	}
}

func TestMixDown24RoundTripLength(t *testing.T) {
	in := make([]byte, maxOutTransfer24) // 800 bytes -> 100 stereo frames of 8 bytes
	out := MixDown24(in)
	require.Len(t, out, len(in)/2) // 800 -> 400
}

func TestMixDown24IgnoresTrailingPartialFrame(t *testing.T) {
	in := make([]byte, 10) // one full 8-byte frame + 2 trailing bytes
	out := MixDown24(in)
	require.Len(t, out, 4)
}

func TestMixDown24KnownValues(t *testing.T) {
	in := make([]byte, 8)
	encode24(in[0:4], 5_000_000)
	encode24(in[4:8], -5_000_000)

	out := MixDown24(in)
	require.Len(t, out, 4)

	got := decode24(out)
	want := int32(5_000_000>>1) + int32(int32(-5_000_000)>>1)
	require.Equal(t, want, got)
}

func TestDecode24SignExtendsNegativeValues(t *testing.T) {
	buf := make([]byte, 4)
	encode24(buf, -1)
	require.Equal(t, int32(-1), decode24(buf))
	require.Equal(t, byte(0), buf[3], "top byte must stay zeroed")
}
