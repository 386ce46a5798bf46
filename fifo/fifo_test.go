// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package fifo

import (
	"testing"

	"periph.io/x/i2cengine/bus"
)

func TestQueue_Order(t *testing.T) {
	q := New(3)
	if q.Cap() != 3 || q.Len() != 0 || !q.Ready() {
		t.Fatalf("unexpected new queue: cap=%d len=%d ready=%t", q.Cap(), q.Len(), q.Ready())
	}
	// Go around the ring a few times.
	next := byte(0)
	want := byte(0)
	for round := 0; round < 5; round++ {
		for q.Ready() {
			if err := q.Push(bus.Data(next)); err != nil {
				t.Fatal(err)
			}
			next++
		}
		for i := 0; i < 2; i++ {
			got, ok := q.Pop()
			if !ok {
				t.Fatal("expected an item")
			}
			if got.Data != want {
				t.Fatalf("round %d: Pop() = %#02x, want %#02x", round, got.Data, want)
			}
			want++
		}
	}
	for {
		got, ok := q.Pop()
		if !ok {
			break
		}
		if got.Data != want {
			t.Fatalf("drain: Pop() = %#02x, want %#02x", got.Data, want)
		}
		want++
	}
	if want != next {
		t.Fatalf("lost items: popped %d, pushed %d", want, next)
	}
}

func TestQueue_Full(t *testing.T) {
	q := New(1)
	if err := q.Push(bus.Start(0x3C, bus.Write)); err != nil {
		t.Fatal(err)
	}
	if q.Ready() {
		t.Fatal("queue should be full")
	}
	if err := q.Push(bus.Data(0xAF)); err != ErrFull {
		t.Fatalf("Push() = %v, want ErrFull", err)
	}
	if p, ok := q.Peek(); !ok || p != bus.Start(0x3C, bus.Write) {
		t.Fatalf("Peek() = %v, %t", p, ok)
	}
	got, ok := q.Pop()
	if !ok || got != bus.Start(0x3C, bus.Write) {
		t.Fatalf("rejected push corrupted the queue: %v", got)
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("queue should be empty")
	}
	if _, ok := q.Peek(); ok {
		t.Fatal("queue should be empty")
	}
}

func TestNew_MinDepth(t *testing.T) {
	for _, d := range []int{-1, 0, 1} {
		if q := New(d); q.Cap() != 1 {
			t.Errorf("New(%d).Cap() = %d, want 1", d, q.Cap())
		}
	}
}
