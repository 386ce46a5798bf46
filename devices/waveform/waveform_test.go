// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveform

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"periph.io/x/i2cengine/bus"
	"periph.io/x/i2cengine/master"
	"periph.io/x/i2cengine/sim"
	"periph.io/x/i2cengine/target"
	"periph.io/x/periph/conn/physic"
)

func TestImage(t *testing.T) {
	frames := trace(t, 2)
	img := Image(frames, 2)
	// START, address byte and ACK, STOP.
	if w := img.Bounds().Dx(); w != 5+90+10 {
		t.Fatalf("width = %d", w)
	}
	data := []struct {
		x, y int
		want interface{}
	}{
		{0, 0, High},
		{0, 1, Low},
		{0, 2, Busy},
		{5, 0, Low},
		// The target acknowledges while the master released SDA.
		{90, 0, High},
		{90, 1, Target},
		{104, 1, High},
		{104, 2, Free},
	}
	for _, line := range data {
		if got := img.NRGBAAt(line.x, line.y); got != line.want {
			t.Errorf("(%d, %d) = %v, want %v", line.x, line.y, got, line.want)
		}
	}
}

func TestDev_Render(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf, 64)
	if d.String() != "Waveform" {
		t.Fatal(d.String())
	}
	if b := d.Bounds(); b != image.Rect(0, 0, 64, Rows) {
		t.Fatalf("Bounds() = %v", b)
	}
	if err := d.Render(trace(t, 1), 1); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	// 105 ticks over 64 columns.
	if n := strings.Count(out, "SCL  "); n != 2 {
		t.Fatalf("got %d SCL rows:\n%s", n, out)
	}
	if !strings.Contains(out, "@0\n") || !strings.Contains(out, "@64\n") {
		t.Fatalf("missing offsets:\n%s", out)
	}
	buf.Reset()
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\033[0m\n" {
		t.Fatalf("Halt() wrote %q", buf.String())
	}
}

func TestNew_MinWidth(t *testing.T) {
	if d := New(&bytes.Buffer{}, 0); d.Bounds().Dx() != 1 {
		t.Fatalf("Bounds() = %v", d.Bounds())
	}
}

//

func trace(t *testing.T, cyclesPerTick int) []sim.Frame {
	e, err := master.New(master.Config{
		SystemClock: physic.Frequency(cyclesPerTick) * physic.MegaHertz,
		Speed:       master.StandardMode,
	})
	if err != nil {
		t.Fatal(err)
	}
	h := sim.New(e, target.New(0x3C, nil))
	h.Record = true
	h.Queue(bus.Start(0x3C, bus.Write))
	if _, err := h.Run(10000); err != nil {
		t.Fatal(err)
	}
	return h.Trace()
}
