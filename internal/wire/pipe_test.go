package wire

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipe(t *testing.T) {
	t.Parallel()

	t.Run("both directions", func(t *testing.T) {
		t.Parallel()
		a, b := Pipe(time.Second)
		_, err := a.Write([]byte("ping"))
		require.NoError(t, err)
		_, err = b.Write([]byte("pong"))
		require.NoError(t, err)

		buf := make([]byte, 8)
		n, err := b.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, "ping", string(buf[:n]))

		n, err = a.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, "pong", string(buf[:n]))
	})

	t.Run("partial reads keep the rest", func(t *testing.T) {
		t.Parallel()
		a, b := Pipe(time.Second)
		_, _ = a.Write([]byte("abcdef"))

		buf := make([]byte, 4)
		n, err := b.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, "abcd", string(buf[:n]))
		n, err = b.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, "ef", string(buf[:n]))
	})

	t.Run("read timeout returns no data", func(t *testing.T) {
		t.Parallel()
		_, b := Pipe(10 * time.Millisecond)
		n, err := b.Read(make([]byte, 4))
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("close", func(t *testing.T) {
		t.Parallel()
		a, b := Pipe(time.Second)
		_, _ = a.Write([]byte{1})
		require.NoError(t, a.Close())

		buf := make([]byte, 4)
		n, err := b.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		_, err = b.Read(buf)
		require.ErrorIs(t, err, io.EOF)
		_, err = b.Write([]byte{1})
		require.ErrorIs(t, err, io.ErrClosedPipe)
	})

	t.Run("blocked reader wakes on write", func(t *testing.T) {
		t.Parallel()
		a, b := Pipe(time.Second)
		go func() {
			time.Sleep(5 * time.Millisecond)
			_, _ = a.Write([]byte{0x42})
		}()
		buf := make([]byte, 1)
		n, err := b.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestJitteryConnDeliversEverything(t *testing.T) {
	t.Parallel()
	a, b := Pipe(50 * time.Millisecond)
	j := NewJitteryConn(b, JitterConfig{MaxLatencyMs: 1, FragmentReads: true, Seed: 42})

	want := bytes.Repeat([]byte("0123456789"), 20)
	_, err := a.Write(want)
	require.NoError(t, err)

	got := make([]byte, 0, len(want))
	buf := make([]byte, 64)
	reads := 0
	for len(got) < len(want) {
		n, err := j.Read(buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
		reads++
	}
	assert.Equal(t, want, got)
	assert.Greater(t, reads, len(want)/64)

	_, err = j.Write([]byte("back"))
	require.NoError(t, err)
	n, err := a.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "back", string(buf[:n]))
}
