// Copyright 2020 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bitstream_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netsec-ethz/scion-host/go/lib/scion/bitstream"
)

func TestSerializeBitsRoundTrip(t *testing.T) {
	cases := []struct {
		n int
		v uint64
	}{
		{1, 1},
		{1, 0},
		{3, 0x5},
		{7, 0x7f},
		{13, 0x1aaa},
		{32, 0xdeadbeef},
		{57, 0x1ffffffffffffff},
	}
	for _, c := range cases {
		buf := make([]byte, 16)
		w := bitstream.NewWriteStream(buf)
		require.True(t, w.Seek(1, 3, bitstream.NullError))
		require.True(t, w.SerializeBits(&c.v, c.n, bitstream.NullError))

		r := bitstream.NewReadStream(buf)
		require.True(t, r.Seek(1, 3, bitstream.NullError))
		var got uint64
		require.True(t, r.SerializeBits(&got, c.n, bitstream.NullError))
		require.Equal(t, c.v, got)
	}
}

func TestSerializeByteUint16Uint32Uint64Aligned(t *testing.T) {
	buf := make([]byte, 32)
	w := bitstream.NewWriteStream(buf)

	b := uint8(0x42)
	u16 := uint16(0xcafe)
	u32 := uint32(0x11223344)
	u64 := uint64(0x0102030405060708)

	require.True(t, w.SerializeByte(&b, bitstream.NullError))
	require.True(t, w.SerializeUint16(&u16, bitstream.NullError))
	require.True(t, w.SerializeUint32(&u32, bitstream.NullError))
	require.True(t, w.SerializeUint64(&u64, bitstream.NullError))

	r := bitstream.NewReadStream(buf)
	var gotB uint8
	var gotU16 uint16
	var gotU32 uint32
	var gotU64 uint64
	require.True(t, r.SerializeByte(&gotB, bitstream.NullError))
	require.True(t, r.SerializeUint16(&gotU16, bitstream.NullError))
	require.True(t, r.SerializeUint32(&gotU32, bitstream.NullError))
	require.True(t, r.SerializeUint64(&gotU64, bitstream.NullError))

	require.Equal(t, b, gotB)
	require.Equal(t, u16, gotU16)
	require.Equal(t, u32, gotU32)
	require.Equal(t, u64, gotU64)
}

// TestSerializeUint64Unaligned exercises the two-call 32+32 split path,
// which the reference C++ implementation leaves unimplemented.
func TestSerializeUint64Unaligned(t *testing.T) {
	buf := make([]byte, 32)
	want := uint64(0xaabbccddeeff0011)

	w := bitstream.NewWriteStream(buf)
	require.True(t, w.Seek(0, 3, bitstream.NullError))
	require.True(t, w.SerializeUint64(&want, bitstream.NullError))

	r := bitstream.NewReadStream(buf)
	require.True(t, r.Seek(0, 3, bitstream.NullError))
	var got uint64
	require.True(t, r.SerializeUint64(&got, bitstream.NullError))
	require.Equal(t, want, got)
}

func TestSerializeBytesRequiresAlignment(t *testing.T) {
	buf := make([]byte, 4)
	w := bitstream.NewWriteStream(buf)
	require.True(t, w.Seek(0, 3, bitstream.NullError))
	require.False(t, w.SerializeBytes([]byte{1, 2}, bitstream.NullError))
}

func TestSerializeBytesRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	buf := make([]byte, 16)
	w := bitstream.NewWriteStream(buf)
	require.True(t, w.Seek(2, 0, bitstream.NullError))
	require.True(t, w.SerializeBytes(payload, bitstream.NullError))

	r := bitstream.NewReadStream(buf)
	require.True(t, r.Seek(2, 0, bitstream.NullError))
	got := make([]byte, len(payload))
	require.True(t, r.SerializeBytes(got, bitstream.NullError))
	require.Equal(t, payload, got)
}

func TestSeekNPOS(t *testing.T) {
	buf := make([]byte, 8)
	w := bitstream.NewWriteStream(buf)
	require.True(t, w.Seek(bitstream.NPOS, 0, bitstream.NullError))
	byteOff, bitOff := w.Pos()
	require.Equal(t, len(buf), byteOff)
	require.Equal(t, uint8(0), bitOff)
}

func TestSeekRejectsOutOfRange(t *testing.T) {
	buf := make([]byte, 4)
	w := bitstream.NewWriteStream(buf)
	require.False(t, w.Seek(5, 0, bitstream.NullError))
	require.False(t, w.Seek(0, 8, bitstream.NullError))
}

func TestAdvanceBitsZerosOnWrite(t *testing.T) {
	buf := []byte{0xff, 0xff}
	w := bitstream.NewWriteStream(buf)
	require.True(t, w.AdvanceBits(4, bitstream.NullError))
	require.Equal(t, byte(0x0f), buf[0])
}

func TestLookaheadLookback(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6}
	r := bitstream.NewReadStream(buf)
	require.True(t, r.Seek(2, 0, bitstream.NullError))
	got, ok := r.Lookahead(3, bitstream.NullError)
	require.True(t, ok)
	require.Equal(t, []byte{3, 4, 5}, got)

	w := bitstream.NewWriteStream(buf)
	require.True(t, w.Seek(4, 0, bitstream.NullError))
	back, ok := w.Lookback(2, bitstream.NullError)
	require.True(t, ok)
	require.Equal(t, []byte{3, 4}, back)
}

func TestUpdateChecksum(t *testing.T) {
	buf := make([]byte, 8)
	w := bitstream.NewWriteStream(buf)
	require.True(t, w.Seek(6, 0, bitstream.NullError))
	require.True(t, w.UpdateChecksum(0xbeef, 4, bitstream.NullError))
	require.Equal(t, byte(0xbe), buf[0])
	require.Equal(t, byte(0xef), buf[1])
}

func TestTraceErrorCollectsFrames(t *testing.T) {
	ec := bitstream.NewTraceError()
	buf := make([]byte, 1)
	w := bitstream.NewWriteStream(buf)
	var v uint64 = 0xff
	require.False(t, w.SerializeBits(&v, 60, ec))
	require.Error(t, ec.Err())
}

func TestBufferTooSmall(t *testing.T) {
	buf := make([]byte, 1)
	r := bitstream.NewReadStream(buf)
	require.True(t, r.AdvanceBits(8, bitstream.NullError))
	var b uint8
	require.False(t, r.SerializeByte(&b, bitstream.NullError))
}
