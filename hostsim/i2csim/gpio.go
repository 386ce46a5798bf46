// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Expose the bus lines as read only GPIOs.

package i2csim

import (
	"errors"
	"time"

	"periph.io/x/i2cengine/bus"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
)

// linePin represents SCL or SDA of a simulated bus.
//
// The line is owned by the timing engine; it can only be read.
type linePin struct {
	n   string
	num int
	f   string
	b   *Bus
}

// String implements conn.Resource.
func (l *linePin) String() string {
	return l.n
}

// Halt implements conn.Resource.
func (l *linePin) Halt() error {
	return nil
}

// Name implements pin.Pin.
func (l *linePin) Name() string {
	return l.n
}

// Number implements pin.Pin.
func (l *linePin) Number() int {
	return l.num
}

// Function implements pin.Pin.
func (l *linePin) Function() string {
	return l.f
}

// In implements gpio.PinIn.
func (l *linePin) In(pull gpio.Pull, e gpio.Edge) error {
	if e != gpio.NoEdge {
		return errors.New("i2csim: edge triggering is not supported")
	}
	if pull != gpio.PullUp && pull != gpio.PullNoChange {
		return errors.New("i2csim: the bus lines are pulled up")
	}
	return nil
}

// Read implements gpio.PinIn.
//
// It returns the level resolved on the last simulated clock.
func (l *linePin) Read() gpio.Level {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	if l.num == 0 {
		return bus.Resolve(l.b.h.Engine().Sample().PullsSCL())
	}
	return l.b.h.SDA()
}

// WaitForEdge implements gpio.PinIn.
func (l *linePin) WaitForEdge(t time.Duration) bool {
	return false
}

// DefaultPull implements gpio.PinIn.
func (l *linePin) DefaultPull() gpio.Pull {
	return gpio.PullUp
}

// Pull implements gpio.PinIn.
func (l *linePin) Pull() gpio.Pull {
	return gpio.PullUp
}

// Out implements gpio.PinOut.
func (l *linePin) Out(v gpio.Level) error {
	return errors.New("i2csim: the line is driven by the bus engine")
}

// PWM implements gpio.PinOut.
func (l *linePin) PWM(d gpio.Duty, f physic.Frequency) error {
	return errors.New("i2csim: not implemented")
}

var _ gpio.PinIO = &linePin{}
