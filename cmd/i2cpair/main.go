// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command i2cpair runs the paired bus tests as controller, peripheral, or
// both at once over a simulated bus.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	i2cpair "github.com/ZaparooProject/go-i2cpair"
	"github.com/ZaparooProject/go-i2cpair/internal/wire"
	"github.com/ZaparooProject/go-i2cpair/transport/i2c"
	"github.com/ZaparooProject/go-i2cpair/transport/uart"
)

const roleLoopback = "loopback"

var errNoPeripheralBus = errors.New("peripheral role needs -serial: Linux I2C adapters cannot act as a peripheral")

type config struct {
	role       string
	busName    string
	serialPort string
	run        string
	format     string
	logDir     string
	timeout    time.Duration
	poll       time.Duration
	address    uint
	list       bool
	listPorts  bool
	debug      bool
}

// Package-level flag variables
var (
	flagRole       string
	flagBusName    string
	flagSerialPort string
	flagRun        string
	flagFormat     string
	flagLogDir     string
	flagTimeout    time.Duration
	flagPoll       time.Duration
	flagAddress    uint
	flagList       bool
	flagListPorts  bool
	flagDebug      bool
)

func init() {
	flag.StringVar(&flagRole, "role", roleLoopback, "Role to run: controller, peripheral or loopback")
	flag.StringVar(&flagBusName, "bus", "", "I2C bus for the controller, e.g. /dev/i2c-1 (first bus if empty)")
	flag.StringVar(&flagSerialPort, "serial", "", "Serial port bridging the two roles instead of an I2C bus")
	flag.UintVar(&flagAddress, "address", uint(i2cpair.DefaultAddress), "Peripheral address")
	flag.DurationVar(&flagTimeout, "timeout", i2cpair.DefaultWaitTimeout, "How long the peripheral waits for each handler")
	flag.DurationVar(&flagPoll, "poll", i2cpair.DefaultPollInterval, "How often the peripheral checks for completion")
	flag.StringVar(&flagRun, "run", "", "Comma-separated glob patterns selecting tests")
	flag.BoolVar(&flagList, "list", false, "List test names and exit")
	flag.BoolVar(&flagListPorts, "list-ports", false, "List I2C buses and serial ports and exit")
	flag.StringVar(&flagFormat, "format", string(i2cpair.FormatText), "Report format: text or json")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug output")
	flag.StringVar(&flagLogDir, "log", "", "Write a session log into this directory")
}

func parseConfig() *config {
	cfg := &config{
		role:       flagRole,
		busName:    flagBusName,
		serialPort: flagSerialPort,
		address:    flagAddress,
		timeout:    flagTimeout,
		poll:       flagPoll,
		run:        flagRun,
		list:       flagList,
		listPorts:  flagListPorts,
		format:     flagFormat,
		debug:      flagDebug,
		logDir:     flagLogDir,
	}

	// Enable debug output if --debug flag is set
	if cfg.debug {
		i2cpair.SetDebugEnabled(true)
	}

	return cfg
}

// nodeConfig turns flags into a validated node configuration.
func nodeConfig(cfg *config) (*i2cpair.Config, error) {
	if cfg.address > uint(i2cpair.MaxAddress) {
		return nil, fmt.Errorf("%w: 0x%X", i2cpair.ErrInvalidAddress, cfg.address)
	}
	nc := i2cpair.DefaultConfig()
	nc.Address = i2cpair.Address(cfg.address)
	nc.Wait = i2cpair.WaitConfig{Timeout: cfg.timeout, PollInterval: cfg.poll}
	if err := nc.Validate(); err != nil {
		return nil, err
	}
	return nc, nil
}

// parsePatterns splits a -run value into glob patterns.
func parsePatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func listPorts(out io.Writer) error {
	buses, err := i2c.ListBuses()
	if err != nil {
		_, _ = fmt.Fprintf(out, "I2C buses: %v\n", err)
	} else {
		_, _ = fmt.Fprintln(out, "I2C buses:")
		for _, b := range buses {
			_, _ = fmt.Fprintf(out, "  %s\n", b)
		}
	}

	ports, err := uart.ListPorts()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "Serial ports:")
	for _, p := range ports {
		_, _ = fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}

func listTests(out io.Writer, cfg *config, nc *i2cpair.Config) error {
	var suite *i2cpair.Suite
	switch cfg.role {
	case string(i2cpair.RoleController), roleLoopback:
		suite = i2cpair.ControllerSuite(i2cpair.NewControllerNode(nil, nc))
	case string(i2cpair.RolePeripheral):
		suite = i2cpair.PeripheralSuite(i2cpair.NewPeripheralNode(nil, nc))
	default:
		return fmt.Errorf("%w: unknown role %q", i2cpair.ErrInvalidConfig, cfg.role)
	}
	for _, name := range suite.Names() {
		_, _ = fmt.Fprintln(out, name)
	}
	return nil
}

// openController opens the controller's bus: the serial bridge when -serial
// is set, otherwise a periph.io I2C bus.
func openController(cfg *config) (*i2c.Controller, io.Closer, error) {
	if cfg.serialPort != "" {
		bus, err := uart.Open(cfg.serialPort)
		if err != nil {
			return nil, nil, err
		}
		return i2c.NewWithBus(bus), bus, nil
	}
	c, err := i2c.New(cfg.busName)
	if err != nil {
		return nil, nil, err
	}
	return c, c, nil
}

func runController(ctx context.Context, cfg *config, nc *i2cpair.Config, patterns []string) ([]i2cpair.Result, error) {
	c, closer, err := openController(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to close bus: %v\n", err)
		}
	}()

	node := i2cpair.NewControllerNode(c, nc)
	if err := node.Start(); err != nil {
		return nil, err
	}
	return i2cpair.ControllerSuite(node).Run(ctx, patterns)
}

func runPeripheral(ctx context.Context, cfg *config, nc *i2cpair.Config, patterns []string) ([]i2cpair.Result, error) {
	if cfg.serialPort == "" {
		return nil, errNoPeripheralBus
	}

	target := wire.NewTarget(nil)
	defer func() { _ = target.Close() }()

	node := i2cpair.NewPeripheralNode(target, nc)
	if err := node.Start(); err != nil {
		return nil, err
	}

	responder, err := uart.Listen(cfg.serialPort, target)
	if err != nil {
		return nil, err
	}
	defer func() { _ = responder.Close() }()

	serveCtx, stop := context.WithCancel(ctx)
	served := make(chan error, 1)
	go func() { served <- responder.Serve(serveCtx) }()

	results, err := i2cpair.PeripheralSuite(node).Run(ctx, patterns)
	stop()
	if serr := <-served; serr != nil && !errors.Is(serr, context.Canceled) {
		i2cpair.Debugf("bridge responder stopped: %v", serr)
	}
	return results, err
}

// runLoopback runs both roles in this process over a simulated bus.
func runLoopback(ctx context.Context, nc *i2cpair.Config, patterns []string) ([]i2cpair.Result, error) {
	bus := wire.NewBus("loopback")
	defer func() { _ = bus.Close() }()

	target := wire.NewTarget(bus)
	defer func() { _ = target.Close() }()

	periph := i2cpair.NewPeripheralNode(target, nc)
	if err := periph.Start(); err != nil {
		return nil, err
	}

	c := i2c.NewWithBus(bus)
	ctrl := i2cpair.NewControllerNode(c, nc)
	if err := ctrl.Start(); err != nil {
		return nil, err
	}

	return i2cpair.RunPaired(ctx, i2cpair.ControllerSuite(ctrl), i2cpair.PeripheralSuite(periph), patterns)
}

// run executes the configured mode and writes the report to out. It returns
// the test results so the caller can pick an exit status.
func run(ctx context.Context, cfg *config, out io.Writer) ([]i2cpair.Result, error) {
	if cfg.listPorts {
		return nil, listPorts(out)
	}

	nc, err := nodeConfig(cfg)
	if err != nil {
		return nil, err
	}
	format, err := i2cpair.ParseOutputFormat(cfg.format)
	if err != nil {
		return nil, err
	}
	if cfg.list {
		return nil, listTests(out, cfg, nc)
	}

	if cfg.logDir != "" {
		path, err := i2cpair.InitSessionLog(cfg.logDir, i2cpair.Role(cfg.role))
		if err != nil {
			return nil, err
		}
		defer func() { _ = i2cpair.CloseSessionLog() }()
		_, _ = fmt.Fprintf(os.Stderr, "Session log: %s\n", path)
	}

	patterns := parsePatterns(cfg.run)
	var results []i2cpair.Result
	switch cfg.role {
	case string(i2cpair.RoleController):
		results, err = runController(ctx, cfg, nc, patterns)
	case string(i2cpair.RolePeripheral):
		results, err = runPeripheral(ctx, cfg, nc, patterns)
	case roleLoopback:
		results, err = runLoopback(ctx, nc, patterns)
	default:
		err = fmt.Errorf("%w: unknown role %q", i2cpair.ErrInvalidConfig, cfg.role)
	}
	if err != nil {
		return results, err
	}

	if err := i2cpair.WriteReport(out, results, format); err != nil {
		return results, err
	}
	return results, nil
}

func main() {
	flag.Parse()
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	// Parse command-line flags
	cfg := parseConfig()

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		_, _ = fmt.Print("\nShutting down gracefully...\n")
		cancel()
	}()

	results, err := run(ctx, cfg, os.Stdout)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// User requested shutdown, exit cleanly
			return 0
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if i2cpair.Summarize(results).Failed > 0 {
		return 1
	}
	return 0
}
