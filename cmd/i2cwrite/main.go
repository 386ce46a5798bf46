// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// i2cwrite writes bytes to a device on a simulated I²C bus through the
// periph.io/x/periph/conn/i2c interfaces.
//
// The bus is registered like a host bus, so the write goes through
// i2creg.Open() and i2c.Dev exactly like it would on hardware.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strconv"

	"periph.io/x/i2cengine/devices/waveform"
	"periph.io/x/i2cengine/hostsim"
	"periph.io/x/i2cengine/hostsim/i2csim"
	"periph.io/x/i2cengine/master"
	"periph.io/x/i2cengine/target"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
)

func mainImpl() error {
	verbose := flag.Bool("v", false, "verbose mode")
	name := flag.String("b", "SIM", "name of the simulated bus")
	addr := flag.Int("a", 0x3D, "address to write to")
	dev := flag.Int("dev", -1, "address of the simulated device; defaults to -a")
	hz := flag.Int64("hz", 100000, "I²C bus speed in Hz")
	sys := flag.Int64("clk", 0, "system clock driving the engine in Hz; defaults to 10 times -hz")
	trace := flag.Bool("trace", false, "plot the SCL and SDA lines")
	width := flag.Int("width", 100, "ticks per line when plotting")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)

	if *addr < 0 || *addr > 0x7F {
		return fmt.Errorf("invalid address %#x", *addr)
	}
	if *dev == -1 {
		*dev = *addr
	}
	if *dev < 0 || *dev > 0x7F {
		return fmt.Errorf("invalid device address %#x", *dev)
	}
	if flag.NArg() == 0 {
		return errors.New("specify the bytes to write, try -help")
	}
	w := make([]byte, 0, flag.NArg())
	for _, a := range flag.Args() {
		v, err := strconv.ParseUint(a, 0, 8)
		if err != nil {
			return err
		}
		w = append(w, byte(v))
	}
	if *sys == 0 {
		*sys = 10 * *hz
	}

	rec := &target.Recorder{}
	cfg := master.Config{
		SystemClock: physic.Frequency(*sys) * physic.Hertz,
		Speed:       physic.Frequency(*hz) * physic.Hertz,
	}
	if err := i2csim.Declare(*name, cfg, target.New(uint16(*dev), rec)); err != nil {
		return err
	}
	state, err := hostsim.Init()
	if err != nil {
		return err
	}
	for _, f := range state.Failed {
		log.Printf("driver %s: %v", f.D, f.Err)
	}
	b, err := i2creg.Open(*name)
	if err != nil {
		return err
	}
	defer b.Close()
	sb, ok := b.(*i2csim.Bus)
	if !ok {
		return fmt.Errorf("%s is not a simulated bus", b)
	}
	sb.Record(*trace)
	log.Printf("%s: %d clocks per tick", b, sb.CyclesPerTick())

	d := i2c.Dev{Addr: uint16(*addr), Bus: b}
	err = d.Tx(w, nil)
	fmt.Printf("%s: %s\n", sb, sb.Status())
	for _, tx := range rec.Transactions {
		fmt.Printf("%s\n", tx)
	}
	if *trace {
		p := waveform.NewStdout(*width)
		if err2 := p.Render(sb.Trace(), sb.CyclesPerTick()); err2 != nil && err == nil {
			err = err2
		}
		if err2 := p.Halt(); err2 != nil && err == nil {
			err = err2
		}
	}
	return err
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "i2cwrite: %s.\n", err)
		os.Exit(1)
	}
}
