// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2csim exposes simulated I²C buses through the periph registries.
//
// A bus runs the timing engine of periph.io/x/i2cengine/master against
// simulated targets. Every Tx is played clock by clock on the two simulated
// lines and its outcome is derived from what a passive decoder observed, the
// same way a logic analyzer would see it.
//
// Buses are declared before periph.Init() and then opened by name with
// i2creg.Open, so any periph device driver can use them:
//
//  i2csim.Declare("SIM0", cfg, target.New(0x3C, &target.Recorder{}))
//  if _, err := hostsim.Init(); err != nil {
//    log.Fatal(err)
//  }
//  b, err := i2creg.Open("SIM0")
//
// Reads are answered by targets whose Parser implements target.Source, such
// as target.Registers. Other targets do not acknowledge a read address.
package i2csim
