package regs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterDataScalars(t *testing.T) {
	var d RegisterData

	d.SetByte(0x7f)
	require.Equal(t, byte(0x7f), d.Byte())
	require.Equal(t, 1, d.Size())
	require.Equal(t, []byte{0x7f}, d.WireBytes(OpRead8))

	d.SetWord(0x1234)
	require.Equal(t, uint16(0x1234), d.Word())
	require.Equal(t, []byte{0x34, 0x12}, d.WireBytes(OpRead16))

	d.SetDWord(12345)
	require.Equal(t, uint32(12345), d.DWord())
	require.Equal(t, []byte{0x39, 0x30, 0x00, 0x00}, d.WireBytes(OpRead32))
}

func TestRegisterDataMultibyte(t *testing.T) {
	var d RegisterData

	require.NoError(t, d.SetBytes(nil))
	require.Equal(t, 0, d.Size())
	require.Equal(t, []byte{0}, d.WireBytes(OpReadMB))

	p := []byte{1, 2, 3}
	require.NoError(t, d.SetBytes(p))
	require.Equal(t, p, d.Bytes())
	require.Equal(t, []byte{3, 1, 2, 3}, d.WireBytes(OpReadMB))

	full := bytes.Repeat([]byte{0xab}, MaxMultibyteSize)
	require.NoError(t, d.SetBytes(full))
	require.Equal(t, MaxMultibyteSize, d.Size())

	require.Equal(t, ErrDataTooLong, d.SetBytes(append(full, 0)))
	// a failed set leaves the previous payload intact
	require.Equal(t, full, d.Bytes())
}

func TestRegisterDataWire(t *testing.T) {
	var d RegisterData

	require.NoError(t, d.SetWireBytes(OpWrite16, []byte{0x34, 0x12}))
	require.Equal(t, uint16(0x1234), d.Word())

	require.Equal(t, ErrDataTooLong, d.SetWireBytes(OpWrite8, []byte{1, 2}))

	require.NoError(t, d.SetWireBytes(OpWriteMB, []byte{9, 8, 7}))
	require.Equal(t, []byte{9, 8, 7}, d.Bytes())

	d.Reset()
	require.Equal(t, 0, d.Size())
	require.Equal(t, byte(0), d.Byte())
}
