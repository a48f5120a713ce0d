package frame

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"
	"time"

	i2cpair "github.com/ZaparooProject/go-i2cpair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// idleReader behaves like a serial port whose read timeout expires with no data.
type idleReader struct{}

func (idleReader) Read([]byte) (int, error) {
	time.Sleep(time.Millisecond)
	return 0, nil
}

func TestReaderFragmentedInput(t *testing.T) {
	t.Parallel()
	second, err := Encode(Frame{TFI: FromPeripheral, Cmd: CmdWriteStatus, Addr: 0x01, Payload: []byte{0}})
	require.NoError(t, err)

	stream := append([]byte{0xDE, 0xAD}, helloFrame...)
	stream = append(stream, 0x00, 0x00)
	stream = append(stream, second...)

	fr := NewReader(iotest.OneByteReader(bytes.NewReader(stream)), time.Second)

	f, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, byte(CmdWrite), f.Cmd)
	assert.Equal(t, []byte("hi"), f.Payload)

	f, err = fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, byte(CmdWriteStatus), f.Cmd)
	assert.Equal(t, []byte{0}, f.Payload)

	_, err = fr.ReadFrame()
	require.ErrorIs(t, err, io.EOF)
}

func TestReaderTimeout(t *testing.T) {
	t.Parallel()
	fr := NewReader(idleReader{}, 20*time.Millisecond)

	start := time.Now()
	_, err := fr.ReadFrame()
	require.ErrorIs(t, err, i2cpair.ErrBusTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestReaderReportsCorruptFrameThenRecovers(t *testing.T) {
	t.Parallel()
	bad := append([]byte(nil), helloFrame...)
	bad[11] ^= 0xFF
	stream := append(bad, helloFrame...)

	fr := NewReader(bytes.NewReader(stream), time.Second)

	_, err := fr.ReadFrame()
	require.ErrorIs(t, err, i2cpair.ErrChecksumMismatch)

	f, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), f.Payload)
}

func TestReaderReset(t *testing.T) {
	t.Parallel()
	r := bytes.NewReader(helloFrame[:6])
	fr := NewReader(r, 0)

	_, err := fr.ReadFrame()
	require.ErrorIs(t, err, io.EOF)

	fr.Reset()
	r.Reset(helloFrame)
	f, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), f.Addr)
}
