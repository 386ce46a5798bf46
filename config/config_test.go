// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"periph.io/x/i2cengine/bus"
	"periph.io/x/i2cengine/master"
	"periph.io/x/i2cengine/target"
	"periph.io/x/periph/conn/physic"
)

const session = `
system_clock_hz: 2000000
bus_hz: 100000
queue_depth: 2
targets:
  - addr: 0x3c
  - addr: 0x50
    kind: registers
    nack: [3]
script:
  - addr: 0x3c
    data: [0x00, 0xaf]
  - addr: 0x50
    data: [0x10, 1, 2, 3]
    restart: true
  - addr: 0x51
    read: true
    count: 2
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(session))
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		SystemClockHz: 2000000,
		BusHz:         100000,
		QueueDepth:    2,
		Targets:       []Target{{Addr: 0x3C}, {Addr: 0x50, Kind: "registers", NACK: []int{3}}},
		Script: []Transaction{
			{Addr: 0x3C, Data: []int{0x00, 0xAF}},
			{Addr: 0x50, Data: []int{0x10, 1, 2, 3}, Restart: true},
			{Addr: 0x51, Read: true, Count: 2},
		},
	}
	if !reflect.DeepEqual(c, want) {
		t.Fatalf("got %+v\nwant %+v", c, want)
	}
	e := c.Engine()
	if e.SystemClock != 2*physic.MegaHertz || e.Speed != master.StandardMode || e.QueueDepth != 2 {
		t.Fatalf("Engine() = %+v", e)
	}
	if n, err := e.CyclesPerTick(); n != 2 || err != nil {
		t.Fatalf("CyclesPerTick() = %d, %v", n, err)
	}
	items := c.Script[2].Items()
	if len(items) != 3 || items[0] != bus.Start(0x51, bus.Read) || items[2] != bus.Data(0) {
		t.Fatalf("Items() = %v", items)
	}
}

func TestParse_Defaults(t *testing.T) {
	c, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if c.SystemClockHz != 1000000 || c.BusHz != 100000 || len(c.Script) != 0 {
		t.Fatalf("got %+v", c)
	}
}

func TestParse_Errors(t *testing.T) {
	data := []struct {
		name string
		in   string
		msg  string
	}{
		{"unknown field", "bus_speed: 100", "field bus_speed not found"},
		{"syntax", "targets: [", "config: "},
		{"too fast", "system_clock_hz: 100000\nbus_hz: 100000", "too high"},
		{"target address", "targets: [{addr: 0x80}]", "invalid address"},
		{"duplicate", "targets: [{addr: 1}, {addr: 1}]", "duplicate address"},
		{"kind", "targets: [{addr: 1, kind: eeprom}]", "unknown kind"},
		{"nack", "targets: [{addr: 1, nack: [-1]}]", "invalid nack index"},
		{"restart", "script: [{addr: 1, restart: true}]", "repeated start"},
		{"script address", "script: [{addr: 200}]", "invalid address"},
		{"byte", "script: [{addr: 1, data: [256]}]", "does not fit in a byte"},
		{"read data", "script: [{addr: 1, read: true, data: [1]}]", "not data"},
		{"write count", "script: [{addr: 1, count: 2}]", "invalid count"},
		{"negative count", "script: [{addr: 1, read: true, count: -1}]", "invalid count"},
	}
	for _, line := range data {
		_, err := Parse(strings.NewReader(line.in))
		if err == nil {
			t.Errorf("%s: expected error", line.name)
			continue
		}
		if !strings.HasPrefix(err.Error(), "config: ") || !strings.Contains(err.Error(), line.msg) {
			t.Errorf("%s: unexpected error %q", line.name, err)
		}
	}
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(p, []byte(session), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Script) != 3 {
		t.Fatalf("got %+v", c)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	want := []bus.Transfer{bus.Start(0x3D, bus.Write), bus.Data(0), bus.Data(0)}
	if got := c.Script[0].Items(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Items() = %v", got)
	}
	// Round trip through YAML.
	b, err := c.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	c2, err := Parse(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("%v\n%s", err, b)
	}
	if !reflect.DeepEqual(c, c2) {
		t.Fatalf("got %+v, want %+v", c2, c)
	}
}

func TestNewTargets(t *testing.T) {
	c, err := Parse(strings.NewReader(session))
	if err != nil {
		t.Fatal(err)
	}
	targets := c.NewTargets()
	if len(targets) != 2 {
		t.Fatalf("got %v", targets)
	}
	if _, ok := targets[0].Parser.(*target.Recorder); !ok || targets[0].Ack != nil {
		t.Fatalf("got %T", targets[0].Parser)
	}
	if _, ok := targets[1].Parser.(*target.Registers); !ok || targets[1].Addr != 0x50 {
		t.Fatalf("got %T", targets[1].Parser)
	}
	if !targets[1].Ack(2, 0) || targets[1].Ack(3, 0) {
		t.Fatal("unexpected ACK policy")
	}
}
