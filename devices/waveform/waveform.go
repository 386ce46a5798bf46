// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package waveform implements a display.Drawer that plots the I²C lines to a
// terminal using ANSI color codes.
//
// Each column is one tick; the rows are SCL, SDA and the engine busy flag.
// SDA is drawn in a distinct color while a target holds it low, which makes
// the ACK bits stand out.
package waveform // import "periph.io/x/i2cengine/devices/waveform"

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/i2cengine/sim"
	"periph.io/x/periph/conn/display"
	"periph.io/x/periph/conn/gpio"
)

// Colors used by Image.
var (
	High   = color.NRGBA{0, 215, 0, 255}
	Low    = color.NRGBA{0, 75, 0, 255}
	Target = color.NRGBA{215, 175, 0, 255}
	Busy   = color.NRGBA{95, 95, 215, 255}
	Free   = color.NRGBA{0, 0, 0, 255}
)

// Rows is the number of lines plotted.
const Rows = 3

var labels = [Rows]string{"SCL  ", "SDA  ", "BUSY "}

// Image converts a trace into an image, one column per tick.
//
// cyclesPerTick is the number of frames per tick; the first frame of each
// tick is used.
func Image(frames []sim.Frame, cyclesPerTick int) *image.NRGBA {
	if cyclesPerTick < 1 {
		cyclesPerTick = 1
	}
	w := (len(frames) + cyclesPerTick - 1) / cyclesPerTick
	img := image.NewNRGBA(image.Rect(0, 0, w, Rows))
	for x := 0; x < w; x++ {
		f := frames[x*cyclesPerTick]
		img.SetNRGBA(x, 0, level(f.SCL))
		c := level(f.SDA)
		if f.SDA == gpio.Low && !f.Master.PullsSDA() {
			c = Target
		}
		img.SetNRGBA(x, 1, c)
		if f.Busy {
			img.SetNRGBA(x, 2, Busy)
		} else {
			img.SetNRGBA(x, 2, Free)
		}
	}
	return img
}

// Dev is a waveform plotter that outputs to the console.
type Dev struct {
	w   io.Writer
	img *image.NRGBA
	buf bytes.Buffer
}

// New returns a Dev that plots width ticks per line to w.
func New(w io.Writer, width int) *Dev {
	if width < 1 {
		width = 1
	}
	return &Dev{w: w, img: image.NewNRGBA(image.Rect(0, 0, width, Rows))}
}

// NewStdout returns a Dev that plots to the console.
func NewStdout(width int) *Dev {
	return New(colorable.NewColorableStdout(), width)
}

func (d *Dev) String() string {
	return "Waveform"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.img.Bounds()
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	r = r.Intersect(src.Bounds().Sub(sp).Add(r.Min))
	draw.Draw(d.img, d.img.Bounds(), image.NewUniform(Free), image.Point{}, draw.Src)
	draw.Draw(d.img, r, src, sp, draw.Src)
	return d.refresh(r.Max.X)
}

// Render plots a whole trace, wrapping at the width of the Dev.
func (d *Dev) Render(frames []sim.Frame, cyclesPerTick int) error {
	img := Image(frames, cyclesPerTick)
	w := d.img.Bounds().Dx()
	for x := 0; x < img.Bounds().Dx(); x += w {
		if _, err := fmt.Fprintf(d.w, "\033[0m@%d\n", x); err != nil {
			return err
		}
		if err := d.Draw(d.Bounds(), img, image.Point{X: x}); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) refresh(n int) error {
	d.buf.Reset()
	for y := 0; y < Rows; y++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		_, _ = d.buf.WriteString(labels[y])
		for x := 0; x < n; x++ {
			_, _ = io.WriteString(&d.buf, ansi256.Default.Block(d.img.NRGBAAt(x, y)))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

func level(l gpio.Level) color.NRGBA {
	if l == gpio.High {
		return High
	}
	return Low
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
