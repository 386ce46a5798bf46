// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sim drives an I²C timing engine one system clock at a time against
// simulated targets.
//
// Each clock, in order:
//
//   - the producer script offers its next item if the engine queue has room;
//   - the engine advances, given the SDA level resolved on the previous clock;
//   - a passive monitor and every target observe the master drivers;
//   - SDA is resolved as an open drain line: low if anyone pulls it low;
//   - the monitor latches ACK bits and read data from the resolved SDA.
//
// The monitor reconstructs the transactions from the master drivers and the
// resolved SDA line, so what it reports is what any device on the bus would
// see. Bytes read by the engine are drained from its output queue every
// clock and returned by Received.
package sim // import "periph.io/x/i2cengine/sim"

import (
	"fmt"

	"periph.io/x/i2cengine/bus"
	"periph.io/x/i2cengine/decoder"
	"periph.io/x/i2cengine/master"
	"periph.io/x/i2cengine/target"
	"periph.io/x/periph/conn/gpio"
)

// Op is a protocol event reconstructed by the monitor.
type Op uint8

const (
	// OpStart is a START condition.
	OpStart Op = iota
	// OpByte is a byte followed by its ACK bit.
	OpByte
	// OpRestart is a repeated START condition.
	OpRestart
	// OpStop is a STOP condition.
	OpStop
	// OpError is invalid signaling.
	OpError
)

var opNames = [...]string{"Start", "Byte", "Restart", "Stop", "Error"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Observation is one event seen by the monitor.
type Observation struct {
	// Clock is the system clock at which the event was decoded.
	Clock int
	Op    Op
	// Byte and Ack are only meaningful for OpByte.
	Byte byte
	Ack  bool
	// Read is true for a byte driven by a target, in which case Ack was sent
	// by the master.
	Read bool
}

func (o Observation) String() string {
	if o.Op == OpByte {
		a := "NACK"
		if o.Ack {
			a = "ACK"
		}
		if o.Read {
			return fmt.Sprintf("%d: %#02x %s (read)", o.Clock, o.Byte, a)
		}
		return fmt.Sprintf("%d: %#02x %s", o.Clock, o.Byte, a)
	}
	return fmt.Sprintf("%d: %s", o.Clock, o.Op)
}

// Frame is the state of the bus for one system clock.
type Frame struct {
	// Master is the state of the master drivers.
	Master bus.Sample
	// SCL and SDA are the resolved line levels.
	SCL gpio.Level
	SDA gpio.Level
	// Busy is the engine status for this clock.
	Busy bool
}

// Harness runs an Engine with its producer, monitor and targets.
//
// It is not safe for concurrent use.
type Harness struct {
	// Record enables the capture of every clock, returned by Trace.
	Record bool

	e       *master.Engine
	targets []*target.Target
	mon     decoder.Monitor
	script  []bus.Transfer
	sda     gpio.Level
	clock   int
	ackAt   int // index in obs of the byte waiting for its ACK bit, or -1
	obs     []Observation
	events  []TargetEvent
	trace   []Frame
	rx      []byte

	// Monitor state.
	prev     bus.Sample
	addrNext bool // the next byte is an address byte
	addr     bool // the byte at ackAt is an address byte
	reading  bool // a target drives the data bytes
	rdone    bool // the master NACKed or never released SDA
	rb       byte
	rn       int
}

// TargetEvent is a target.Event with the clock it happened at.
type TargetEvent struct {
	Clock int
	target.Event
}

// New returns a Harness around e with the targets attached to the bus.
func New(e *master.Engine, targets ...*target.Target) *Harness {
	return &Harness{e: e, targets: targets, sda: gpio.High, ackAt: -1, prev: bus.Idle}
}

func (h *Harness) String() string {
	return fmt.Sprintf("sim(%s, %d targets)", h.e, len(h.targets))
}

// Engine returns the engine being driven.
func (h *Harness) Engine() *master.Engine {
	return h.e
}

// Targets returns the attached targets.
func (h *Harness) Targets() []*target.Target {
	return h.targets
}

// Attach adds a target to the bus.
func (h *Harness) Attach(t *target.Target) {
	h.targets = append(h.targets, t)
}

// Queue appends items to the producer script.
//
// The producer offers one item per clock, when the engine reports
// QueueReady.
func (h *Harness) Queue(items ...bus.Transfer) {
	h.script = append(h.script, items...)
}

// Pending returns the number of items not yet accepted by the engine.
func (h *Harness) Pending() int {
	return len(h.script)
}

// Clock returns the number of clocks run so far.
func (h *Harness) Clock() int {
	return h.clock
}

// SDA returns the SDA level resolved on the last clock.
func (h *Harness) SDA() gpio.Level {
	return h.sda
}

// Done returns true when the script is exhausted and the engine is idle.
func (h *Harness) Done() bool {
	return len(h.script) == 0 && h.e.Idle()
}

// Tick runs one system clock.
func (h *Harness) Tick() {
	if len(h.script) != 0 && h.e.Status().QueueReady {
		if h.e.Enqueue(h.script[0]) {
			h.script = h.script[1:]
		}
	}
	h.e.Tick(h.sda)
	for {
		b, ok := h.e.Read()
		if !ok {
			break
		}
		h.rx = append(h.rx, b)
	}
	s := h.e.Sample()

	st := h.mon.State()
	r := h.mon.Sample(s)
	pull := s.PullsSDA()
	for _, t := range h.targets {
		if ev := t.Sample(s); ev.Kind != target.None {
			h.events = append(h.events, TargetEvent{Clock: h.clock, Event: ev})
		}
		pull = pull || t.PullsSDA()
	}
	h.sda = bus.Resolve(pull)
	if h.reading {
		h.observeRead(s, r)
	} else {
		h.observe(st, s, r)
	}
	h.prev = s

	if h.Record {
		h.trace = append(h.trace, Frame{
			Master: s,
			SCL:    bus.Resolve(s.PullsSCL()),
			SDA:    h.sda,
			Busy:   h.e.Status().Busy,
		})
	}
	h.clock++
}

// Run ticks until Done, for at most limit clocks. It returns the number of
// clocks run.
func (h *Harness) Run(limit int) (int, error) {
	n := 0
	for !h.Done() {
		if n == limit {
			return n, fmt.Errorf("sim: bus still busy after %d clocks; %d items pending", n, len(h.script))
		}
		h.Tick()
		n++
	}
	return n, nil
}

// Observations returns the events decoded by the monitor so far.
func (h *Harness) Observations() []Observation {
	return h.obs
}

// Bytes returns the bytes decoded by the monitor so far, address bytes
// included.
func (h *Harness) Bytes() []byte {
	var out []byte
	for _, o := range h.obs {
		if o.Op == OpByte {
			out = append(out, o.Byte)
		}
	}
	return out
}

// Received returns the bytes read by the engine so far.
func (h *Harness) Received() []byte {
	return h.rx
}

// Events returns the events reported by the targets so far.
func (h *Harness) Events() []TargetEvent {
	return h.events
}

// Trace returns the frames captured while Record was set.
func (h *Harness) Trace() []Frame {
	return h.trace
}

// Flush forgets the observations, events, received bytes and trace captured
// so far.
//
// Slices previously returned by Observations, Events, Received and Trace
// must not be used afterward.
func (h *Harness) Flush() {
	h.obs = h.obs[:0]
	h.events = h.events[:0]
	h.trace = h.trace[:0]
	h.rx = h.rx[:0]
	h.ackAt = -1
}

//

// observe updates the observations while the master drives the data. st is
// the monitor state before this clock.
func (h *Harness) observe(st decoder.State, s bus.Sample, r decoder.Result) {
	if h.ackAt >= 0 && st == decoder.WaitAckRise && h.mon.State() == decoder.WaitAckFall {
		// SCL rose on the ACK bit.
		h.obs[h.ackAt].Ack = h.sda == gpio.Low
	}
	switch r {
	case decoder.Pass:
	case decoder.AckNack:
		h.ackAt = len(h.obs)
		h.addr = h.addrNext
		h.addrNext = false
		h.obs = append(h.obs, Observation{Clock: h.clock, Op: OpByte, Byte: h.mon.Byte()})
	case decoder.ReleaseSDA:
		if h.ackAt >= 0 {
			o := h.obs[h.ackAt]
			h.ackAt = -1
			if h.addr && o.Ack && bus.Dir(o.Byte&1) == bus.Read {
				h.reading = true
				h.rdone = s.SDAEnabled
				h.rb, h.rn = 0, 0
			}
		} else if h.mon.State() == decoder.StartSDALow {
			h.addrNext = true
			h.obs = append(h.obs, Observation{Clock: h.clock, Op: OpStart})
		}
	case decoder.RepeatedStart:
		h.addrNext = true
		h.obs = append(h.obs, Observation{Clock: h.clock, Op: OpRestart})
	case decoder.Fish:
		h.addrNext = false
		h.obs = append(h.obs, Observation{Clock: h.clock, Op: OpStop})
	case decoder.Error:
		h.ackAt = -1
		h.addrNext = false
		h.obs = append(h.obs, Observation{Clock: h.clock, Op: OpError})
	default:
		panic(fmt.Sprintf("sim: unknown decoder result %s", r))
	}
}

// observeRead updates the observations while a target drives the data. The
// monitor is held in Idle where it only matches a repeated START.
func (h *Harness) observeRead(s bus.Sample, r decoder.Result) {
	if r == decoder.ReleaseSDA && h.mon.State() == decoder.StartSDALow {
		h.reading = false
		h.addrNext = true
		h.obs = append(h.obs, Observation{Clock: h.clock, Op: OpRestart})
		return
	}
	h.mon.Decoder.Reset()
	if bus.IsStop(h.prev, s) {
		h.reading = false
		h.obs = append(h.obs, Observation{Clock: h.clock, Op: OpStop})
		return
	}
	if h.rdone || h.prev.SCL != gpio.Low || s.SCL != gpio.High {
		return
	}
	if h.rn < 8 {
		h.rb <<= 1
		if h.sda == gpio.High {
			h.rb |= 1
		}
		h.rn++
		return
	}
	ack := h.sda == gpio.Low
	h.obs = append(h.obs, Observation{Clock: h.clock, Op: OpByte, Byte: h.rb, Ack: ack, Read: true})
	h.rb, h.rn = 0, 0
	h.rdone = !ack
}
