// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package decoder reconstructs I²C protocol events by watching the drivers of
// SCL and SDA, without access to the master's internal state.
//
// The Decoder is fed, once per system clock, how each of the four driver
// signals (SCL value and enable, SDA value and enable) changed since the
// previous clock. It reports when a byte was received and the ACK bit is
// due, when SDA must be released, and when the transaction ended.
package decoder // import "periph.io/x/i2cengine/decoder"

import (
	"fmt"

	"periph.io/x/i2cengine/bus"
)

// State is the state of the Decoder.
type State uint8

const (
	Idle State = iota
	StartSDALow
	WaitBitRise
	WaitBitFall
	WaitAckRise
	WaitAckFall
)

var stateNames = [...]string{"Idle", "StartSDALow", "WaitBitRise", "WaitBitFall", "WaitAckRise", "WaitAckFall"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Result is what the caller must act upon after a call to Process.
type Result uint8

const (
	// Pass means nothing happened.
	Pass Result = iota
	// AckNack means 8 bits were received; Byte() returns them. A slave
	// pulls SDA low now to ACK, or leaves it released to NACK.
	AckNack
	// ReleaseSDA means a START was seen or an ACK bit completed; a slave
	// must release SDA.
	ReleaseSDA
	// Fish means SDA rose while SCL was high right after a single 0 bit,
	// e.g. a STOP where a byte was expected. The transaction ended.
	Fish
	// Error means the lines did something that is not valid I²C. The
	// decoder is back to Idle.
	Error
	// RepeatedStart means SDA fell while SCL was high right after a single
	// 1 bit. A new address byte follows; a slave must release SDA.
	RepeatedStart
)

var resultNames = [...]string{"Pass", "AckNack", "ReleaseSDA", "Fish", "Error", "RepeatedStart"}

func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return fmt.Sprintf("Result(%d)", uint8(r))
}

// Decoder is a passive I²C line decoder.
//
// The zero value is ready to use and Idle.
type Decoder struct {
	state State
	n     int  // number of bits received
	b     byte // bits received, MSB first
}

// State returns the current state.
func (d *Decoder) State() State {
	return d.state
}

// Byte returns the bits accumulated since the last START or ACK.
func (d *Decoder) Byte() byte {
	return d.b
}

// Bits returns the number of bits accumulated since the last START or ACK.
func (d *Decoder) Bits() int {
	return d.n
}

// Reset returns the decoder to Idle.
func (d *Decoder) Reset() {
	d.state = Idle
	d.clear()
}

// ProcessSignals is a shorthand for Process.
func (d *Decoder) ProcessSignals(s *bus.Signals) Result {
	return d.Process(s.SCL, s.SCLEnabled, s.SDA, s.SDAEnabled)
}

// Process advances the decoder by one clock.
func (d *Decoder) Process(scl, sclEn, sda, sdaEn bus.Signal) Result {
	stable := scl.Stable && sclEn.Stable && sda.Stable && sdaEn.Stable
	driven := sclEn.StableHigh() && sdaEn.StableHigh()
	switch d.state {
	case Idle:
		if driven && scl.StableHigh() && sda.Falling() {
			d.state = StartSDALow
			d.clear()
			return ReleaseSDA
		}

	case StartSDALow:
		if driven && scl.Falling() && sda.StableLow() {
			d.state = WaitBitRise
		} else if !stable {
			d.state = Idle
		}

	case WaitBitRise:
		if driven && scl.Rising() && sda.Stable {
			d.b <<= 1
			if sda.StableHigh() {
				d.b |= 1
			}
			d.n++
			d.state = WaitBitFall
		} else if !driven {
			d.state = Idle
			return Error
		}

	case WaitBitFall:
		switch {
		case driven && scl.Falling() && sda.Stable:
			if d.n == 8 {
				d.state = WaitAckRise
				return AckNack
			}
			d.state = WaitBitRise
		case driven && scl.StableHigh() && sda.Rising():
			d.state = Idle
			if d.n == 1 && d.b == 0 {
				return Fish
			}
			return Error
		case driven && scl.StableHigh() && sda.Falling() && d.n == 1 && d.b == 1:
			d.state = StartSDALow
			d.clear()
			return RepeatedStart
		case !stable:
			d.state = Idle
			return Error
		}

	case WaitAckRise:
		switch {
		case sdaEn.Falling():
			// The master releasing SDA for the ACK bit.
		case sclEn.StableHigh() && scl.Rising() && sdaEn.StableLow():
			d.state = WaitAckFall
		case !stable:
			d.state = Idle
			return Error
		}

	case WaitAckFall:
		if sclEn.StableHigh() && scl.Falling() {
			d.state = WaitBitRise
			d.clear()
			return ReleaseSDA
		} else if !scl.Stable || !sclEn.Stable {
			d.state = Idle
			return Error
		}

	default:
		panic(fmt.Sprintf("decoder: unknown state %d", d.state))
	}
	return Pass
}

func (d *Decoder) clear() {
	d.n = 0
	d.b = 0
}

// Monitor is a Decoder fed directly with samples.
//
// The zero value assumes the bus was idle before the first sample.
type Monitor struct {
	Decoder
	t bus.Tracker
}

// Sample advances the decoder with the drivers state of one clock.
func (m *Monitor) Sample(s bus.Sample) Result {
	sig := m.t.Update(s)
	return m.ProcessSignals(&sig)
}

// Reset returns the decoder to Idle and assumes an idle bus.
func (m *Monitor) Reset() {
	m.Decoder.Reset()
	m.t.Reset()
}
