package uart

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortReadTimeout(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		assert.Equal(t, 100*time.Millisecond, portReadTimeout())
	} else {
		assert.Equal(t, 50*time.Millisecond, portReadTimeout())
	}
	assert.Less(t, portReadTimeout(), DefaultTxTimeout)
}

func TestOpenMissingPort(t *testing.T) {
	t.Parallel()
	_, err := Open("/dev/does-not-exist-i2cpair")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open UART port")
}

func TestBusString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "uart:/dev/ttyUSB0", NewBus("/dev/ttyUSB0", nil, time.Second).String())
}
