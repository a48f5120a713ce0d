package wire

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	i2cpair "github.com/ZaparooProject/go-i2cpair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetBegin(t *testing.T) {
	t.Parallel()

	t.Run("invalid address", func(t *testing.T) {
		t.Parallel()
		target := NewTarget(nil)
		defer func() { _ = target.Close() }()
		require.ErrorIs(t, target.Begin(0), i2cpair.ErrInvalidAddress)
		require.ErrorIs(t, target.Begin(0x80), i2cpair.ErrInvalidAddress)
	})

	t.Run("address already taken", func(t *testing.T) {
		t.Parallel()
		bus := NewBus("sim")
		first, second := NewTarget(bus), NewTarget(bus)
		defer func() { _ = first.Close(); _ = second.Close() }()

		require.NoError(t, first.Begin(testAddr))
		require.Error(t, second.Begin(testAddr))
		require.NoError(t, second.Begin(0x02))
	})

	t.Run("close detaches", func(t *testing.T) {
		t.Parallel()
		bus := NewBus("sim")
		target := NewTarget(bus)
		require.NoError(t, target.Begin(testAddr))
		require.NoError(t, target.Close())
		require.NoError(t, target.Close())

		err := bus.Tx(uint16(testAddr), []byte{1}, nil)
		assert.Equal(t, i2cpair.StatusAddressNACK, i2cpair.StatusOf(err))
	})
}

func TestTargetDeliverBeforeBegin(t *testing.T) {
	t.Parallel()
	target := NewTarget(nil)
	defer func() { _ = target.Close() }()

	assert.Equal(t, i2cpair.StatusAddressNACK, target.Deliver([]byte{1}))
	_, err := target.Request(4)
	assert.Equal(t, i2cpair.StatusAddressNACK, i2cpair.StatusOf(err))
}

func TestTargetDeliverBackedUp(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	target := NewTarget(nil)
	defer func() { _ = target.Close() }()
	target.OnReceive(func(int) { <-release })
	require.NoError(t, target.Begin(testAddr))

	statuses := make([]i2cpair.Status, 0, eventQueueDepth+2)
	for range eventQueueDepth + 2 {
		statuses = append(statuses, target.Deliver([]byte{1}))
	}
	close(release)

	assert.Equal(t, i2cpair.StatusSuccess, statuses[0])
	assert.Equal(t, i2cpair.StatusDataNACK, statuses[len(statuses)-1])
}

func TestTargetWriteCapped(t *testing.T) {
	t.Parallel()
	target := NewTarget(nil)
	defer func() { _ = target.Close() }()
	target.OnRequest(func() {
		target.Write(make([]byte, i2cpair.BufferLength-2))
		assert.Equal(t, 2, target.Write([]byte{1, 2, 3, 4}))
		assert.Zero(t, target.Write([]byte{5}))
	})
	require.NoError(t, target.Begin(testAddr))

	data, err := target.Request(64)
	require.NoError(t, err)
	assert.Len(t, data, i2cpair.BufferLength)
}

func TestTargetHandlersNeverOverlap(t *testing.T) {
	t.Parallel()
	var active, overlaps, calls atomic.Int32
	enter := func() {
		if active.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(time.Millisecond)
		active.Add(-1)
		calls.Add(1)
	}

	target := NewTarget(nil)
	defer func() { _ = target.Close() }()
	target.OnReceive(func(int) { enter() })
	target.OnRequest(enter)
	require.NoError(t, target.Begin(testAddr))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for target.Deliver([]byte{1}) != i2cpair.StatusSuccess {
				time.Sleep(time.Millisecond)
			}
		}()
		go func() {
			defer wg.Done()
			_, err := target.Request(1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return calls.Load() == 16 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, overlaps.Load())
}

func TestTargetReceiveReplacesPreviousData(t *testing.T) {
	t.Parallel()
	counts := make(chan int, 2)
	target := NewTarget(nil)
	defer func() { _ = target.Close() }()
	target.OnReceive(func(n int) { counts <- n })
	require.NoError(t, target.Begin(testAddr))

	require.Equal(t, i2cpair.StatusSuccess, target.Deliver([]byte("abc")))
	assert.Equal(t, 3, <-counts)
	require.Equal(t, i2cpair.StatusSuccess, target.Deliver([]byte("de")))
	assert.Equal(t, 2, <-counts)

	assert.Equal(t, 2, target.Available())
	b, err := target.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('d'), b)
}

func TestTargetClosedRequest(t *testing.T) {
	t.Parallel()
	target := NewTarget(nil)
	require.NoError(t, target.Begin(testAddr))
	require.NoError(t, target.Close())

	_, err := target.Request(1)
	require.Error(t, err)
	assert.Equal(t, i2cpair.StatusAddressNACK, target.Deliver([]byte{1}))
}
