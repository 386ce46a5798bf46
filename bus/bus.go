// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bus defines the values exchanged between the I²C timing engine, its
// producers and the passive observers of the two bus lines.
//
// A producer describes a transaction as a sequence of Transfer items: one
// Start followed by zero or more Data. The engine turns them into levels on
// SCL and SDA, published once per system clock as a Sample.
package bus // import "periph.io/x/i2cengine/bus"

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
)

// Dir is the direction bit sent along the 7 bits address.
type Dir uint8

const (
	Write Dir = 0
	Read  Dir = 1
)

func (d Dir) String() string {
	if d == Read {
		return "R"
	}
	return "W"
}

// Kind is the type of a Transfer item.
type Kind uint8

const (
	// KindData is a payload byte within an open transaction.
	KindData Kind = iota
	// KindStart requests a START, or a repeated START when a transaction is
	// already open, followed by the address byte.
	KindStart
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "Data"
	case KindStart:
		return "Start"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Transfer is one item queued to the timing engine.
//
// Use Start() or Data() to create one.
type Transfer struct {
	Kind Kind
	// Addr and Dir are only meaningful for KindStart.
	Addr uint16
	Dir  Dir
	// Data is only meaningful for KindData.
	Data byte
}

// Start returns a Start item for the 7 bits address addr.
//
// Bits above the 7th are ignored; 10 bits addressing is not supported.
func Start(addr uint16, d Dir) Transfer {
	return Transfer{Kind: KindStart, Addr: addr & 0x7F, Dir: d & 1}
}

// Data returns a Data item.
func Data(b byte) Transfer {
	return Transfer{Kind: KindData, Data: b}
}

// Byte returns the 8 bits shifted out on the bus for this item.
func (t Transfer) Byte() byte {
	switch t.Kind {
	case KindStart:
		return byte(t.Addr<<1) | byte(t.Dir)
	case KindData:
		return t.Data
	default:
		panic(fmt.Sprintf("bus: unknown transfer kind %d", t.Kind))
	}
}

func (t Transfer) String() string {
	switch t.Kind {
	case KindStart:
		return fmt.Sprintf("Start(%#02x, %s)", t.Addr, t.Dir)
	case KindData:
		return fmt.Sprintf("Data(%#02x)", t.Data)
	default:
		return t.Kind.String()
	}
}

// Sample is the state of the local drivers of both lines for one system
// clock.
//
// SCL and SDA are the driven values; they only affect the line when the
// matching Enabled field is true.
type Sample struct {
	SCL        gpio.Level
	SCLEnabled bool
	SDA        gpio.Level
	SDAEnabled bool
}

// Idle is the state of the master drivers when the bus is free.
var Idle = Sample{SCL: gpio.High, SCLEnabled: true, SDA: gpio.High, SDAEnabled: true}

// PullsSDA returns true if the driver holds SDA low.
func (s Sample) PullsSDA() bool {
	return s.SDAEnabled && s.SDA == gpio.Low
}

// PullsSCL returns true if the driver holds SCL low.
func (s Sample) PullsSCL() bool {
	return s.SCLEnabled && s.SCL == gpio.Low
}

func (s Sample) String() string {
	return fmt.Sprintf("SCL=%s/%s SDA=%s/%s", s.SCL, enabled(s.SCLEnabled), s.SDA, enabled(s.SDAEnabled))
}

// IsStop returns true if the master raised SDA while SCL stayed high between
// prev and s.
func IsStop(prev, s Sample) bool {
	return prev.SCL == gpio.High && s.SCL == gpio.High &&
		prev.SDAEnabled && s.SDAEnabled &&
		prev.SDA == gpio.Low && s.SDA == gpio.High
}

// Resolve returns the level of an open drain line given whether each party
// pulls it low.
//
// The line reads High unless at least one party pulls it Low.
func Resolve(pulls ...bool) gpio.Level {
	for _, p := range pulls {
		if p {
			return gpio.Low
		}
	}
	return gpio.High
}

func enabled(b bool) string {
	if b {
		return "Out"
	}
	return "Z"
}
