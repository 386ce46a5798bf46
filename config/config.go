// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the description of a simulated bus session from YAML.
//
// Example:
//
//  system_clock_hz: 1000000
//  bus_hz: 100000
//  queue_depth: 1
//  targets:
//    - addr: 0x3d
//  script:
//    - addr: 0x3d
//      data: [0x00, 0x00]
//    - addr: 0x3d
//      read: true
//      count: 2
package config // import "periph.io/x/i2cengine/config"

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"periph.io/x/i2cengine/bus"
	"periph.io/x/i2cengine/master"
	"periph.io/x/i2cengine/target"
	"periph.io/x/periph/conn/physic"
)

// Config is a bus session.
type Config struct {
	SystemClockHz int64 `yaml:"system_clock_hz"`
	BusHz         int64 `yaml:"bus_hz"`
	// QueueDepth is the engine queue depth; 0 means 1.
	QueueDepth int           `yaml:"queue_depth,omitempty"`
	Targets    []Target      `yaml:"targets,omitempty"`
	Script     []Transaction `yaml:"script,omitempty"`
}

// Target is a simulated device on the bus.
type Target struct {
	Addr uint16 `yaml:"addr"`
	// Kind is the payload parser: "recorder" (default) or "registers".
	Kind string `yaml:"kind,omitempty"`
	// NACK lists the indexes of the bytes the device refuses within a
	// transaction; 0 is the address byte.
	NACK []int `yaml:"nack,omitempty"`
}

// Transaction is one START, its address and payload.
type Transaction struct {
	Addr uint16 `yaml:"addr"`
	Read bool   `yaml:"read,omitempty"`
	// Data is the payload of a write.
	Data []int `yaml:"data,omitempty"`
	// Count is the number of bytes of a read.
	Count int `yaml:"count,omitempty"`
	// Restart chains this transaction to the previous one with a repeated
	// START instead of letting the bus go idle in between.
	Restart bool `yaml:"restart,omitempty"`
}

// Items returns the transfer items of the transaction.
func (t *Transaction) Items() []bus.Transfer {
	if t.Read {
		out := make([]bus.Transfer, 0, t.Count+1)
		out = append(out, bus.Start(t.Addr, bus.Read))
		for i := 0; i < t.Count; i++ {
			// The value is ignored; each item reads one byte.
			out = append(out, bus.Data(0))
		}
		return out
	}
	out := make([]bus.Transfer, 0, len(t.Data)+1)
	out = append(out, bus.Start(t.Addr, bus.Write))
	for _, b := range t.Data {
		out = append(out, bus.Data(byte(b)))
	}
	return out
}

// Default returns a session writing 0x00, 0x00 to a device at 0x3D on a
// 100kHz bus clocked 10 times faster.
func Default() *Config {
	return &Config{
		SystemClockHz: 1000000,
		BusHz:         100000,
		QueueDepth:    1,
		Targets:       []Target{{Addr: 0x3D}},
		Script:        []Transaction{{Addr: 0x3D, Data: []int{0x00, 0x00}}},
	}
}

// Load reads and validates a YAML file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates YAML.
//
// Unknown fields are rejected. Missing clock frequencies are taken from
// Default().
func Parse(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c Config
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: %w", err)
	}
	applyDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Marshal encodes the configuration back to YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return buf.Bytes(), nil
}

// Engine returns the timing engine configuration.
func (c *Config) Engine() master.Config {
	return master.Config{
		SystemClock: physic.Frequency(c.SystemClockHz) * physic.Hertz,
		Speed:       physic.Frequency(c.BusHz) * physic.Hertz,
		QueueDepth:  c.QueueDepth,
	}
}

// Validate returns an error if the session cannot run.
func (c *Config) Validate() error {
	cfg := c.Engine()
	if _, err := cfg.CyclesPerTick(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	seen := map[uint16]bool{}
	for i, t := range c.Targets {
		if t.Addr > 0x7F {
			return fmt.Errorf("config: target #%d: invalid address %#x", i, t.Addr)
		}
		if seen[t.Addr] {
			return fmt.Errorf("config: target #%d: duplicate address %#02x", i, t.Addr)
		}
		seen[t.Addr] = true
		switch t.Kind {
		case "", "recorder", "registers":
		default:
			return fmt.Errorf("config: target #%d: unknown kind %q", i, t.Kind)
		}
		for _, n := range t.NACK {
			if n < 0 {
				return fmt.Errorf("config: target #%d: invalid nack index %d", i, n)
			}
		}
	}
	if len(c.Script) != 0 && c.Script[0].Restart {
		return errors.New("config: the first transaction cannot be a repeated start")
	}
	for i, t := range c.Script {
		if t.Addr > 0x7F {
			return fmt.Errorf("config: transaction #%d: invalid address %#x", i, t.Addr)
		}
		if t.Read && len(t.Data) != 0 {
			return fmt.Errorf("config: transaction #%d: a read takes a count, not data", i)
		}
		if t.Count < 0 || (t.Count != 0 && !t.Read) {
			return fmt.Errorf("config: transaction #%d: invalid count %d", i, t.Count)
		}
		for j, b := range t.Data {
			if b < 0 || b > 0xFF {
				return fmt.Errorf("config: transaction #%d: byte #%d: %d does not fit in a byte", i, j, b)
			}
		}
	}
	return nil
}

// NewTargets creates the simulated devices.
func (c *Config) NewTargets() []*target.Target {
	out := make([]*target.Target, 0, len(c.Targets))
	for _, t := range c.Targets {
		var p target.Parser
		if t.Kind == "registers" {
			p = &target.Registers{}
		} else {
			p = &target.Recorder{}
		}
		d := target.New(t.Addr, p)
		if len(t.NACK) != 0 {
			refuse := map[int]bool{}
			for _, n := range t.NACK {
				refuse[n] = true
			}
			d.Ack = func(i int, b byte) bool { return !refuse[i] }
		}
		out = append(out, d)
	}
	return out
}

//

func applyDefaults(c *Config) {
	d := Default()
	if c.SystemClockHz == 0 {
		c.SystemClockHz = d.SystemClockHz
	}
	if c.BusHz == 0 {
		c.BusHz = d.BusHz
	}
}
