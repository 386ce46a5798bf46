// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2csim

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/i2cengine/bus"
	"periph.io/x/i2cengine/master"
	"periph.io/x/i2cengine/sim"
	"periph.io/x/i2cengine/target"
	"periph.io/x/periph/conn"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/physic"
)

var (
	// ErrNoSuchDevice is returned when no device acknowledged the address.
	ErrNoSuchDevice = errors.New("i2csim: no such device")
	// ErrNACK is returned when the device refused a payload byte.
	ErrNACK = errors.New("i2csim: byte not acknowledged")
)

// Bus is a simulated I²C bus.
//
// Each Tx runs the timing engine clock by clock until the transaction
// completed on the simulated lines.
type Bus struct {
	name string
	cpt  int // clocks per tick
	scl  linePin
	sda  linePin

	mu     sync.Mutex
	h      *sim.Harness
	closed bool
}

// New returns a simulated bus with the targets attached.
func New(name string, cfg master.Config, targets ...*target.Target) (*Bus, error) {
	cpt, err := cfg.CyclesPerTick()
	if err != nil {
		return nil, err
	}
	e, err := master.New(cfg)
	if err != nil {
		return nil, err
	}
	b := &Bus{name: name, cpt: cpt, h: sim.New(e, targets...)}
	b.scl = linePin{n: name + ".SCL", num: 0, f: "I2C_SCL", b: b}
	b.sda = linePin{n: name + ".SDA", num: 1, f: "I2C_SDA", b: b}
	return b, nil
}

// String implements conn.Resource.
func (b *Bus) String() string {
	return b.name
}

// Close implements i2c.BusCloser.
//
// It is fine to call it multiple times.
func (b *Bus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

// Duplex implements conn.Conn.
func (b *Bus) Duplex() conn.Duplex {
	return conn.Half
}

// SetSpeed implements i2c.Bus.
//
// The speed is fixed at construction; only that value is accepted.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	if s := b.h.Engine().Config().Speed; f != s {
		return fmt.Errorf("i2csim: invalid speed %s; bus speed is fixed at %s", f, s)
	}
	return nil
}

// Tx implements i2c.Bus.
//
// When both w and r are set, the read follows the write after a repeated
// START.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return fmt.Errorf("i2csim: invalid address %#x; 10 bits addressing is not supported", addr)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.New("i2csim: bus is closed")
	}
	b.h.Flush()
	if len(w) != 0 || len(r) == 0 {
		b.h.Queue(bus.Start(addr, bus.Write))
		for _, c := range w {
			b.h.Queue(bus.Data(c))
		}
	}
	if len(r) != 0 {
		b.h.Queue(bus.Start(addr, bus.Read))
		for range r {
			b.h.Queue(bus.Data(0))
		}
	}
	// STARTs, 9 bits per byte and STOP, with ample margin.
	limit := (len(w) + len(r) + 5) * 9 * master.TicksPerBit * b.cpt * 2
	if _, err := b.h.Run(limit); err != nil {
		return fmt.Errorf("i2csim: %#02x: %w", addr, err)
	}
	if err := check(addr, b.h.Observations()); err != nil {
		return err
	}
	if got := b.h.Received(); len(got) != len(r) {
		return fmt.Errorf("i2csim: %#02x: read %d bytes out of %d", addr, len(got), len(r))
	}
	copy(r, b.h.Received())
	return nil
}

// SCL implements i2c.Pins.
func (b *Bus) SCL() gpio.PinIO {
	return &b.scl
}

// SDA implements i2c.Pins.
func (b *Bus) SDA() gpio.PinIO {
	return &b.sda
}

// Record enables or disables the capture of line traces by Tx.
func (b *Bus) Record(on bool) {
	b.mu.Lock()
	b.h.Record = on
	b.mu.Unlock()
}

// Trace returns the lines captured during the last Tx, if Record is enabled.
func (b *Bus) Trace() []sim.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]sim.Frame, len(b.h.Trace()))
	copy(out, b.h.Trace())
	return out
}

// CyclesPerTick returns the number of system clocks per tick.
func (b *Bus) CyclesPerTick() int {
	return b.cpt
}

// Status returns the engine status.
func (b *Bus) Status() master.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.h.Engine().Status()
}

//

// check converts the monitor view of one transaction into an error.
//
// The master NACKs the last byte it reads, so the ACK bit of read bytes is
// ignored.
func check(addr uint16, obs []sim.Observation) error {
	seen := false
	n := 0 // bytes since the last START
	for _, o := range obs {
		switch o.Op {
		case sim.OpStart, sim.OpRestart:
			n = 0
		case sim.OpByte:
			switch {
			case o.Read:
			case !o.Ack && n == 0:
				return fmt.Errorf("%w at %#02x", ErrNoSuchDevice, addr)
			case !o.Ack:
				return fmt.Errorf("%w: %#02x: byte %d", ErrNACK, addr, n-1)
			}
			if n == 0 {
				seen = true
			}
			n++
		case sim.OpError:
			return fmt.Errorf("i2csim: %#02x: bus error at clock %d", addr, o.Clock)
		}
	}
	if !seen {
		return fmt.Errorf("i2csim: %#02x: address byte not seen on the bus", addr)
	}
	return nil
}

var _ i2c.BusCloser = &Bus{}
var _ i2c.Pins = &Bus{}
