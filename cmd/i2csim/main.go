// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// i2csim runs a scripted I²C session against simulated devices and prints
// what each device received.
//
// Without -config, it writes 0x00, 0x00 to a device at 0x3D on a 100kHz bus.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"periph.io/x/i2cengine/config"
	"periph.io/x/i2cengine/devices/waveform"
	"periph.io/x/i2cengine/master"
	"periph.io/x/i2cengine/sim"
	"periph.io/x/i2cengine/target"
)

func run(c *config.Config, record bool) (*sim.Harness, int, error) {
	cfg := c.Engine()
	cpt, err := cfg.CyclesPerTick()
	if err != nil {
		return nil, 0, err
	}
	e, err := master.New(cfg)
	if err != nil {
		return nil, 0, err
	}
	h := sim.New(e, c.NewTargets()...)
	h.Record = record
	n := 0
	for i := range c.Script {
		t := &c.Script[i]
		if !t.Restart {
			// Let the previous transaction STOP.
			if _, err := h.Run(limit(0, cpt)); err != nil {
				return h, cpt, err
			}
		}
		if t.Read {
			log.Printf("transaction #%d: %#02x read %d bytes", i, t.Addr, t.Count)
		} else {
			log.Printf("transaction #%d: %#02x %d bytes", i, t.Addr, len(t.Data))
		}
		h.Queue(t.Items()...)
		n += len(t.Data) + t.Count + 2
		if i+1 < len(c.Script) && c.Script[i+1].Restart {
			continue
		}
		if _, err := h.Run(limit(n, cpt)); err != nil {
			return h, cpt, err
		}
		n = 0
	}
	return h, cpt, nil
}

// limit is the number of clocks a transaction of n bytes needs, with margin.
func limit(n, cpt int) int {
	return (n + 3) * 9 * master.TicksPerBit * cpt * 2
}

func report(h *sim.Harness) {
	for _, o := range h.Observations() {
		log.Printf("bus %s", o)
	}
	for _, ev := range h.Events() {
		log.Printf("%d: %s", ev.Clock, ev.Event)
	}
	fmt.Printf("%d clocks, %s\n", h.Clock(), h.Engine().Status())
	if rx := h.Received(); len(rx) != 0 {
		fmt.Printf("read: % x\n", rx)
	}
	for _, t := range h.Targets() {
		switch p := t.Parser.(type) {
		case *target.Recorder:
			fmt.Printf("%s: % x\n", t, p.Payload())
			for _, tx := range p.Transactions {
				fmt.Printf("  %s\n", tx)
			}
		case *target.Registers:
			fmt.Printf("%s: registers\n", t)
			for i := 0; i < len(p.Mem); i += 16 {
				row := p.Read(byte(i), 16)
				if !isZero(row) {
					fmt.Printf("  %#02x: % x\n", i, row)
				}
			}
		}
	}
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

func mainImpl() error {
	verbose := flag.Bool("v", false, "verbose mode")
	path := flag.String("config", "", "YAML session file; defaults to a 2 bytes write to 0x3D")
	trace := flag.Bool("trace", false, "plot the SCL and SDA lines")
	width := flag.Int("width", 100, "ticks per line when plotting")
	dump := flag.Bool("dump", false, "print the session as YAML and exit")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	c := config.Default()
	if *path != "" {
		var err error
		if c, err = config.Load(*path); err != nil {
			return err
		}
	}
	if *dump {
		b, err := c.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(b)
		return err
	}

	h, cpt, err := run(c, *trace)
	if h != nil {
		report(h)
		if *trace {
			d := waveform.NewStdout(*width)
			if err2 := d.Render(h.Trace(), cpt); err2 != nil && err == nil {
				err = err2
			}
			if err2 := d.Halt(); err2 != nil && err == nil {
				err = err2
			}
		}
	}
	return err
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "i2csim: %s.\n", err)
		os.Exit(1)
	}
}
