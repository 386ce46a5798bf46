// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2csim

import (
	"errors"
	"sync"

	"periph.io/x/i2cengine/master"
	"periph.io/x/i2cengine/target"
	"periph.io/x/periph"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/pin"
	"periph.io/x/periph/conn/pin/pinreg"
)

// Declare adds a bus to be created and registered when periph.Init() runs.
//
// It must be called before periph.Init().
func Declare(name string, cfg master.Config, targets ...*target.Target) error {
	if name == "" {
		return errors.New("i2csim: bus name is required")
	}
	if _, err := cfg.CyclesPerTick(); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	for _, d := range declared {
		if d.name == name {
			return errors.New("i2csim: bus " + name + " already declared")
		}
	}
	declared = append(declared, decl{name, cfg, targets})
	return nil
}

// All returns the buses registered by the driver.
func All() []*Bus {
	mu.Lock()
	defer mu.Unlock()
	out := make([]*Bus, len(all))
	copy(out, all)
	return out
}

// Register registers the bus and its lines in the relevant registries.
func Register(b *Bus) error {
	if err := pinreg.Register(b.String(), [][]pin.Pin{{&b.scl}, {&b.sda}}); err != nil {
		return err
	}
	return i2creg.Register(b.String(), nil, -1, func() (i2c.BusCloser, error) {
		return b, nil
	})
}

//

type decl struct {
	name    string
	cfg     master.Config
	targets []*target.Target
}

var (
	mu       sync.Mutex
	declared []decl
	all      []*Bus
)

// driver implements periph.Driver.
type driver struct {
}

func (d *driver) String() string {
	return "i2csim"
}

func (d *driver) Prerequisites() []string {
	return nil
}

func (d *driver) After() []string {
	return nil
}

func (d *driver) Init() (bool, error) {
	mu.Lock()
	defer mu.Unlock()
	if len(declared) == 0 {
		return false, errors.New("i2csim: no bus declared")
	}
	for _, c := range declared {
		b, err := New(c.name, c.cfg, c.targets...)
		if err != nil {
			return true, err
		}
		if err := Register(b); err != nil {
			return true, err
		}
		all = append(all, b)
	}
	declared = nil
	return true, nil
}

func init() {
	periph.MustRegister(&drv)
}

var drv driver

var _ periph.Driver = &driver{}
