// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package master implements the timing engine of an I²C bus master.
//
// The engine is a synchronous state machine advanced by one system clock per
// call to Tick. It drains a queue of bus.Transfer and drives SCL and SDA with
// the following phase timing, expressed in ticks where one bit lasts 10 ticks:
//
//   - START: SDA falls while SCL is high, SCL falls 5 ticks later.
//   - Bit: SCL is low for 5 ticks, SDA is set 2 ticks in; SCL is then high
//     for 5 ticks while SDA holds.
//   - ACK: SDA is released 2 ticks into the SCL low phase, sampled and taken
//     back (high) 2 ticks into the SCL high phase.
//   - Repeated START: SDA goes high while SCL is low, then falls while SCL is
//     high.
//   - STOP: SDA goes low while SCL is low, then rises while SCL is high.
//
// A Start with bus.Read makes every following Data item read one byte: SDA
// is released as SCL falls and sampled 2 ticks into each SCL high phase. The
// master then drives the ACK bit itself, low when another Data item is
// queued and high otherwise. Received bytes are returned by Read.
//
// A transaction ends with a STOP when the slave NACKs or when no item is
// queued by the end of the ACK phase. Neither is retried.
package master // import "periph.io/x/i2cengine/master"

import (
	"fmt"

	"periph.io/x/i2cengine/bus"
	"periph.io/x/i2cengine/fifo"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
)

const (
	// TicksPerBit is the number of ticks in one bit period.
	TicksPerBit = 10
	// ticksPerPhase is the length of an SCL low or high phase.
	ticksPerPhase = TicksPerBit / 2
	// setupTicks is the offset within a phase at which SDA changes or is
	// sampled.
	setupTicks = 2
)

// Standard bus speeds.
const (
	StandardMode = 100 * physic.KiloHertz
	FastMode     = 400 * physic.KiloHertz
)

// Config is the immutable configuration of an Engine.
type Config struct {
	// SystemClock is the rate at which Tick is called.
	SystemClock physic.Frequency
	// Speed is the bus bit rate. It must be at most SystemClock/10.
	Speed physic.Frequency
	// QueueDepth is the number of items that can be pending. 0 means 1.
	QueueDepth int
}

// CyclesPerTick returns the number of system clocks in one tick.
func (c *Config) CyclesPerTick() (int, error) {
	if c.SystemClock <= 0 {
		return 0, fmt.Errorf("master: invalid system clock %s", c.SystemClock)
	}
	if c.Speed <= 0 {
		return 0, fmt.Errorf("master: invalid speed %s", c.Speed)
	}
	if c.QueueDepth < 0 {
		return 0, fmt.Errorf("master: invalid queue depth %d", c.QueueDepth)
	}
	n := c.SystemClock / TicksPerBit / c.Speed
	if n < 1 {
		return 0, fmt.Errorf("master: speed %s is too high for system clock %s; need at least %d clocks per bit", c.Speed, c.SystemClock, TicksPerBit)
	}
	return int(n), nil
}

// Status is the state published to the producer.
type Status struct {
	// Busy is true while a transaction is open, from START until the STOP
	// edge.
	Busy bool
	// Ack is the most recent ACK sampled from a slave. It is reset to true
	// at each START. The ACK bits the master sends while reading do not
	// affect it.
	Ack bool
	// QueueReady is true when Enqueue would accept an item.
	QueueReady bool
	// Dropped counts the items that were discarded because no transaction
	// could hold them: a Data item reaching an idle engine, usually the rest
	// of a NACKed transaction.
	Dropped int
	// ReadReady is true when Read would return a byte.
	ReadReady bool
	// Overrun counts the bytes read from the bus that were lost because
	// Read was not called in time.
	Overrun int
}

func (s Status) String() string {
	return fmt.Sprintf("busy=%t ack=%t ready=%t dropped=%d read=%t overrun=%d", s.Busy, s.Ack, s.QueueReady, s.Dropped, s.ReadReady, s.Overrun)
}

// Engine is an I²C master timing engine.
//
// It is not safe for concurrent use; a single goroutine must call Enqueue
// and Tick.
type Engine struct {
	// Immutable.
	cfg   Config
	phase int // clocks per SCL phase
	setup int // clocks from the phase start to the SDA change or sample
	q     *fifo.Queue
	rq    *fifo.Queue // received bytes, as Data items

	st    state
	clk   int // clock within the current phase
	cur   bus.Transfer
	bit   int
	next  bus.Transfer
	ready bool    // next holds a prefetched item
	rw    bus.Dir // direction of the open transaction
	rx    byte    // byte being read
	mack  bool    // the master ACKs the byte being read

	out     bus.Sample
	busy    bool
	ack     bool
	dropped int
	overrun int
}

// New returns an idle Engine.
func New(cfg Config) (*Engine, error) {
	n, err := cfg.CyclesPerTick()
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:   cfg,
		phase: ticksPerPhase * n,
		setup: setupTicks * n,
		q:     fifo.New(cfg.QueueDepth),
		rq:    fifo.New(cfg.QueueDepth),
		out:   bus.Idle,
		ack:   true,
	}, nil
}

func (e *Engine) String() string {
	return fmt.Sprintf("master(%s)", e.cfg.Speed)
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Enqueue appends t to the queue. It returns false if the queue is full.
func (e *Engine) Enqueue(t bus.Transfer) bool {
	return e.q.Push(t) == nil
}

// Read returns the oldest byte read from the bus, if any.
func (e *Engine) Read() (byte, bool) {
	t, ok := e.rq.Pop()
	return t.Data, ok
}

// Status returns the current status.
func (e *Engine) Status() Status {
	return Status{
		Busy:       e.busy,
		Ack:        e.ack,
		QueueReady: e.q.Ready(),
		Dropped:    e.dropped,
		ReadReady:  e.rq.Len() != 0,
		Overrun:    e.overrun,
	}
}

// Idle returns true when the bus is free and nothing is pending.
func (e *Engine) Idle() bool {
	return e.st == stateIdle && !e.ready && e.q.Len() == 0
}

// Sample returns the drivers state computed by the last Tick.
func (e *Engine) Sample() bus.Sample {
	return e.out
}

// Tick advances the engine by one system clock.
//
// sda is the level of the SDA line as resolved at the end of the previous
// clock.
func (e *Engine) Tick(sda gpio.Level) {
	if e.st == stateIdle {
		e.idle()
		return
	}
	switch e.st {
	case stateBitLow, stateAckLow, stateReadLow, stateMackLow:
		e.prefetch()
	}
	if e.clk == 0 {
		e.enter()
	}
	if e.clk == e.setup {
		e.midway(sda)
	}
	if e.clk == e.phase-1 {
		e.clk = 0
		e.finish()
	} else {
		e.clk++
	}
}

//

type state uint8

const (
	stateIdle state = iota
	stateStart
	stateBitLow
	stateBitHigh
	stateAckLow
	stateAckHigh
	stateRepStartLow
	stateRepStartHigh
	stateStopLow
	stateStopHigh
	stateReadLow
	stateReadHigh
	stateMackLow
	stateMackHigh
)

var stateNames = [...]string{
	"Idle", "Start", "BitLow", "BitHigh", "AckLow", "AckHigh",
	"RepStartLow", "RepStartHigh", "StopLow", "StopHigh",
	"ReadLow", "ReadHigh", "MackLow", "MackHigh",
}

func (s state) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// idle holds both lines high and starts a transaction on the first Start
// item.
func (e *Engine) idle() {
	e.out = bus.Idle
	t, ok := e.take()
	if !ok {
		return
	}
	switch t.Kind {
	case bus.KindStart:
		e.cur = t
		e.rw = t.Dir
		e.bit = 0
		e.busy = true
		e.ack = true
		// SDA falls while SCL is high. This clock is the first of the START
		// phase.
		e.out.SDA = gpio.Low
		e.st = stateStart
		e.clk = 1
	case bus.KindData:
		e.dropped++
	default:
		panic(fmt.Sprintf("master: unknown transfer kind %d", t.Kind))
	}
}

// take returns the prefetched item if any, otherwise the head of the queue.
func (e *Engine) take() (bus.Transfer, bool) {
	if e.ready {
		e.ready = false
		return e.next, true
	}
	return e.q.Pop()
}

// prefetch latches the next item during an SCL low phase.
func (e *Engine) prefetch() {
	if e.ready {
		return
	}
	if t, ok := e.q.Pop(); ok {
		e.next = t
		e.ready = true
	}
}

// enter sets SCL at the first clock of a phase.
func (e *Engine) enter() {
	switch e.st {
	case stateBitLow, stateAckLow, stateRepStartLow, stateStopLow, stateMackLow:
		e.out.SCL = gpio.Low
	case stateReadLow:
		// The slave owns SDA from the falling edge on.
		e.out.SCL = gpio.Low
		e.out.SDAEnabled = false
	case stateBitHigh, stateAckHigh, stateRepStartHigh, stateStopHigh, stateReadHigh, stateMackHigh:
		e.out.SCL = gpio.High
	}
}

// midway runs the SDA action of the phase.
func (e *Engine) midway(sda gpio.Level) {
	switch e.st {
	case stateBitLow:
		// MSB first.
		e.out.SDA = gpio.Level((e.cur.Byte()>>uint(7-e.bit))&1 != 0)
	case stateAckLow:
		e.out.SDAEnabled = false
	case stateAckHigh:
		e.ack = sda == gpio.Low
		if !e.reading() {
			e.out.SDAEnabled = true
			e.out.SDA = gpio.High
		}
	case stateReadHigh:
		e.rx <<= 1
		if sda == gpio.High {
			e.rx |= 1
		}
	case stateMackLow:
		if err := e.rq.Push(bus.Data(e.rx)); err != nil {
			e.overrun++
		}
		e.mack = e.ready && e.next.Kind == bus.KindData
		e.out.SDAEnabled = true
		e.out.SDA = gpio.Level(!e.mack)
	case stateRepStartLow:
		e.out.SDA = gpio.High
	case stateRepStartHigh:
		e.out.SDA = gpio.Low
	case stateStopLow:
		e.out.SDA = gpio.Low
	case stateStopHigh:
		// STOP edge. The rest of the phase is bus free time.
		e.out.SDA = gpio.High
		e.busy = false
	}
}

// finish selects the next phase at the last clock of a phase.
func (e *Engine) finish() {
	switch e.st {
	case stateStart:
		e.st = stateBitLow
	case stateBitLow:
		e.st = stateBitHigh
	case stateBitHigh:
		if e.bit == 7 {
			e.st = stateAckLow
		} else {
			e.bit++
			e.st = stateBitLow
		}
	case stateAckLow:
		e.st = stateAckHigh
	case stateAckHigh:
		e.afterAck()
	case stateRepStartLow:
		e.st = stateRepStartHigh
	case stateRepStartHigh:
		e.st = stateBitLow
	case stateStopLow:
		e.st = stateStopHigh
	case stateStopHigh:
		e.st = stateIdle
	case stateReadLow:
		e.st = stateReadHigh
	case stateReadHigh:
		if e.bit == 7 {
			e.st = stateMackLow
		} else {
			e.bit++
			e.st = stateReadLow
		}
	case stateMackLow:
		e.st = stateMackHigh
	case stateMackHigh:
		e.afterMack()
	default:
		panic(fmt.Sprintf("master: unexpected state %s", e.st))
	}
}

// afterAck continues, restarts or stops the transaction.
func (e *Engine) afterAck() {
	if !e.ack || !e.ready {
		// NACK or underrun. A prefetched item stays latched; if it is Data it
		// will be dropped once idle.
		e.st = stateStopLow
		return
	}
	if e.reading() {
		e.readNext()
		return
	}
	e.cur = e.next
	e.ready = false
	e.bit = 0
	switch e.cur.Kind {
	case bus.KindStart:
		e.rw = e.cur.Dir
		e.st = stateRepStartLow
	case bus.KindData:
		e.st = stateBitLow
	default:
		panic(fmt.Sprintf("master: unknown transfer kind %d", e.cur.Kind))
	}
}

// afterMack reads the next byte, restarts or stops after the ACK bit sent
// by the master.
func (e *Engine) afterMack() {
	switch {
	case e.mack:
		e.readNext()
	case e.ready && e.next.Kind == bus.KindStart:
		e.cur = e.next
		e.ready = false
		e.bit = 0
		e.rw = e.cur.Dir
		e.st = stateRepStartLow
	default:
		// A Data item latched after the ACK bit was decided is dropped once
		// idle.
		e.st = stateStopLow
	}
}

// reading returns true when the slave acknowledged a read address and a Data
// item is latched, so the next byte is read instead of written.
func (e *Engine) reading() bool {
	return e.ack && e.rw == bus.Read && e.ready && e.next.Kind == bus.KindData
}

func (e *Engine) readNext() {
	e.cur = e.next
	e.ready = false
	e.bit = 0
	e.rx = 0
	e.st = stateReadLow
}
