package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	i2cpair "github.com/ZaparooProject/go-i2cpair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config {
	return &config{
		role:    roleLoopback,
		address: uint(i2cpair.DefaultAddress),
		timeout: 500 * time.Millisecond,
		poll:    5 * time.Millisecond,
		format:  string(i2cpair.FormatText),
	}
}

func TestParsePatterns(t *testing.T) {
	t.Parallel()
	assert.Nil(t, parsePatterns(""))
	assert.Nil(t, parsePatterns(" , ,"))
	assert.Equal(t, []string{"controller_*", "*receive*"}, parsePatterns("controller_*, *receive*"))
}

func TestNodeConfig(t *testing.T) {
	t.Parallel()

	nc, err := nodeConfig(testConfig())
	require.NoError(t, err)
	assert.Equal(t, i2cpair.DefaultAddress, nc.Address)
	assert.Equal(t, 5*time.Millisecond, nc.Wait.PollInterval)

	tests := []struct {
		mutate  func(*config)
		wantErr error
		name    string
	}{
		{name: "address too large", mutate: func(c *config) { c.address = 0x101 }, wantErr: i2cpair.ErrInvalidAddress},
		{name: "address above 7 bits", mutate: func(c *config) { c.address = 0x80 }, wantErr: i2cpair.ErrInvalidAddress},
		{name: "zero address", mutate: func(c *config) { c.address = 0 }, wantErr: i2cpair.ErrInvalidAddress},
		{name: "poll longer than timeout", mutate: func(c *config) { c.poll = time.Second }, wantErr: i2cpair.ErrInvalidConfig},
		{name: "zero timeout", mutate: func(c *config) { c.timeout = 0 }, wantErr: i2cpair.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			tt.mutate(cfg)
			_, err := nodeConfig(cfg)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRunLoopback(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer

	results, err := run(context.Background(), testConfig(), &out)
	require.NoError(t, err)
	assert.Equal(t, i2cpair.Summary{Passed: 4}, i2cpair.Summarize(results))
	assert.Contains(t, out.String(), "PASS controller/"+i2cpair.TestSendReceive)
	assert.Contains(t, out.String(), "PASS peripheral/"+i2cpair.TestRequestReply)
	assert.True(t, strings.HasSuffix(out.String(), "4 passed, 0 failed\n"))
}

func TestRunLoopbackFiltered(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.run = "controller_can_send*"
	cfg.format = "JSON"
	var out bytes.Buffer

	results, err := run(context.Background(), cfg, &out)
	require.NoError(t, err)
	require.Len(t, results, 2)

	var doc struct {
		Tests []struct {
			Name   string `json:"name"`
			Passed bool   `json:"passed"`
		} `json:"tests"`
		Summary i2cpair.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, i2cpair.Summary{Passed: 2}, doc.Summary)
	for _, tt := range doc.Tests {
		assert.Equal(t, i2cpair.TestSendReceive, tt.Name)
		assert.True(t, tt.Passed)
	}
}

func TestRunList(t *testing.T) {
	t.Parallel()
	for _, role := range []string{roleLoopback, "controller", "peripheral"} {
		cfg := testConfig()
		cfg.role = role
		cfg.list = true
		var out bytes.Buffer

		results, err := run(context.Background(), cfg, &out)
		require.NoError(t, err, role)
		assert.Empty(t, results)
		assert.Equal(t, i2cpair.TestSendReceive+"\n"+i2cpair.TestRequestReply+"\n", out.String(), role)
	}
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	t.Run("unknown role", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.role = "observer"
		_, err := run(context.Background(), cfg, &bytes.Buffer{})
		require.ErrorIs(t, err, i2cpair.ErrInvalidConfig)
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.format = "xml"
		_, err := run(context.Background(), cfg, &bytes.Buffer{})
		require.ErrorIs(t, err, i2cpair.ErrInvalidConfig)
	})

	t.Run("bad pattern", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.run = "["
		_, err := run(context.Background(), cfg, &bytes.Buffer{})
		require.Error(t, err)
	})

	t.Run("peripheral without serial", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.role = "peripheral"
		_, err := run(context.Background(), cfg, &bytes.Buffer{})
		require.ErrorIs(t, err, errNoPeripheralBus)
	})

	t.Run("controller on missing serial port", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.role = "controller"
		cfg.serialPort = "/dev/does-not-exist-i2cpair"
		_, err := run(context.Background(), cfg, &bytes.Buffer{})
		require.Error(t, err)
	})
}
