// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package fifo implements the bounded queue between a producer of I²C
// transfers and the timing engine.
//
// It has a single producer and a single consumer and never blocks: a full
// queue rejects the write and the producer is expected to poll Ready() first.
package fifo // import "periph.io/x/i2cengine/fifo"

import (
	"errors"

	"periph.io/x/i2cengine/bus"
)

// ErrFull is returned by Push when no capacity remains.
var ErrFull = errors.New("fifo: queue is full")

// Queue is a ring buffer of transfers.
//
// Items are delivered in the order they were pushed.
type Queue struct {
	items []bus.Transfer
	head  int
	n     int
}

// New returns a Queue holding up to depth items.
//
// A depth below 1 is raised to 1, which is the minimum the engine tolerates.
func New(depth int) *Queue {
	if depth < 1 {
		depth = 1
	}
	return &Queue{items: make([]bus.Transfer, depth)}
}

// Push appends t, or returns ErrFull.
func (q *Queue) Push(t bus.Transfer) error {
	if q.n == len(q.items) {
		return ErrFull
	}
	q.items[(q.head+q.n)%len(q.items)] = t
	q.n++
	return nil
}

// Pop removes and returns the oldest item.
func (q *Queue) Pop() (bus.Transfer, bool) {
	if q.n == 0 {
		return bus.Transfer{}, false
	}
	t := q.items[q.head]
	q.items[q.head] = bus.Transfer{}
	q.head = (q.head + 1) % len(q.items)
	q.n--
	return t, true
}

// Peek returns the oldest item without removing it.
func (q *Queue) Peek() (bus.Transfer, bool) {
	if q.n == 0 {
		return bus.Transfer{}, false
	}
	return q.items[q.head], true
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	return q.n
}

// Cap returns the depth of the queue.
func (q *Queue) Cap() int {
	return len(q.items)
}

// Ready returns true if Push would succeed.
func (q *Queue) Ready() bool {
	return q.n < len(q.items)
}
