package i2cpair

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTestName(t *testing.T) {
	t.Parallel()
	names := []string{TestSendReceive, TestRequestReply, "spi_loopback"}
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "exact", input: TestSendReceive, want: TestSendReceive, wantOK: true},
		{name: "spaces", input: "controller can send and peripheral can receive data", want: TestSendReceive, wantOK: true},
		{name: "punctuation", input: "spi-loopback", want: "spi_loopback", wantOK: true},
		{name: "repeated separators", input: "  spi -- loopback ", want: "spi_loopback", wantOK: true},
		{name: "case", input: "Peripheral Can Send And Controller Can Receive Data", want: TestRequestReply, wantOK: true},
		{name: "unknown", input: "uart_echo", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := FindTestName(names, tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuite_StandardSuitesShareNames(t *testing.T) {
	t.Parallel()
	ctrl := ControllerSuite(NewControllerNode(NewMockController(), nil))
	periph := PeripheralSuite(NewPeripheralNode(NewMockPeripheral(), nil))

	assert.Equal(t, RoleController, ctrl.Role())
	assert.Equal(t, RolePeripheral, periph.Role())
	assert.Equal(t, []string{TestSendReceive, TestRequestReply}, ctrl.Names())
	assert.Equal(t, ctrl.Names(), periph.Names())
}

func TestSuite_Select(t *testing.T) {
	t.Parallel()
	s := NewSuite(RoleController)
	s.Add("alpha_send", nil)
	s.Add("alpha_receive", nil)
	s.Add("beta_send", nil)

	all, err := s.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sends, err := s.Select([]string{"*_send"})
	require.NoError(t, err)
	require.Len(t, sends, 2)
	assert.Equal(t, "alpha_send", sends[0].Name)
	assert.Equal(t, "beta_send", sends[1].Name)

	multi, err := s.Select([]string{"beta_*", "alpha_receive"})
	require.NoError(t, err)
	assert.Len(t, multi, 2)

	_, err = s.Select([]string{"[unterminated"})
	require.Error(t, err)
}

func TestSuite_RunContinuesAfterFailure(t *testing.T) {
	t.Parallel()
	var ran atomic.Int32
	s := NewSuite(RolePeripheral)
	s.Add("first", func(context.Context) error {
		ran.Add(1)
		return &ScenarioError{Scenario: "first", Err: ErrTimeout}
	})
	s.Add("second", func(context.Context) error {
		ran.Add(1)
		return errors.New("broken")
	})
	s.Add("third", func(context.Context) error {
		ran.Add(1)
		return nil
	})

	results, err := s.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int32(3), ran.Load())

	assert.Equal(t, StateTimedOut, results[0].State)
	assert.False(t, results[0].Passed())
	assert.Equal(t, StateFailed, results[1].State)
	assert.Equal(t, StateCompleted, results[2].State)
	assert.True(t, results[2].Passed())
	for _, r := range results {
		assert.Equal(t, RolePeripheral, r.Role)
	}
}

func TestSuite_Lookup(t *testing.T) {
	t.Parallel()
	s := PeripheralSuite(NewPeripheralNode(NewMockPeripheral(), nil))

	test, ok := s.Lookup("Controller can send and peripheral can receive data")
	require.True(t, ok)
	assert.Equal(t, TestSendReceive, test.Name)

	_, ok = s.Lookup("nothing")
	assert.False(t, ok)
}
