// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bus

import "periph.io/x/periph/conn/gpio"

// Signal is the qualitative change of one signal between two consecutive
// samples.
type Signal struct {
	Level  gpio.Level
	Stable bool
}

// StableHigh is true when the signal stayed High.
func (s Signal) StableHigh() bool {
	return s.Stable && s.Level == gpio.High
}

// StableLow is true when the signal stayed Low.
func (s Signal) StableLow() bool {
	return s.Stable && s.Level == gpio.Low
}

// Rising is true when the signal changed and is now High.
func (s Signal) Rising() bool {
	return !s.Stable && s.Level == gpio.High
}

// Falling is true when the signal changed and is now Low.
func (s Signal) Falling() bool {
	return !s.Stable && s.Level == gpio.Low
}

func (s Signal) String() string {
	switch {
	case s.StableHigh():
		return "‾"
	case s.StableLow():
		return "_"
	case s.Rising():
		return "/"
	default:
		return "\\"
	}
}

// Signals is the qualitative change of the four driver signals.
type Signals struct {
	SCL        Signal
	SCLEnabled Signal
	SDA        Signal
	SDAEnabled Signal
}

// Stable returns true if none of the four signals changed.
func (s *Signals) Stable() bool {
	return s.SCL.Stable && s.SCLEnabled.Stable && s.SDA.Stable && s.SDAEnabled.Stable
}

// Tracker derives Signals from consecutive samples.
//
// The zero value assumes the previous sample was Idle.
type Tracker struct {
	last Sample
	seen bool
}

// Update records s and returns how each signal changed since the previous
// call.
func (t *Tracker) Update(s Sample) Signals {
	if !t.seen {
		t.last = Idle
		t.seen = true
	}
	out := Signals{
		SCL:        Signal{Level: s.SCL, Stable: s.SCL == t.last.SCL},
		SCLEnabled: Signal{Level: gpio.Level(s.SCLEnabled), Stable: s.SCLEnabled == t.last.SCLEnabled},
		SDA:        Signal{Level: s.SDA, Stable: s.SDA == t.last.SDA},
		SDAEnabled: Signal{Level: gpio.Level(s.SDAEnabled), Stable: s.SDAEnabled == t.last.SDAEnabled},
	}
	t.last = s
	return out
}

// Reset forgets the previous sample.
func (t *Tracker) Reset() {
	t.seen = false
}
