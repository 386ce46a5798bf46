// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cengine is for documentation only.
//
// It is a clock accurate model of a single master I²C engine, the passive
// decoder used to observe it, and simulated devices to write to and read
// from.
//
// Packages
//
// bus defines the transfer items and the line drivers shared by everything.
//
// fifo is the bounded queue between the producer and the engine, and between
// the engine and the consumer of the bytes it reads.
//
// master is the timing engine. It is advanced one system clock at a time and
// drives SCL and SDA as open drain outputs.
//
// decoder reconstructs START, bytes, ACK and STOP from the lines.
//
// target is a simulated device built on the decoder.
//
// sim wires an engine, a producer script and targets on one simulated bus.
//
// hostsim registers simulated buses with periph so they can be opened with
// i2creg.Open() like any host bus.
//
// Tools
//
// cmd/i2csim runs a YAML scripted session; cmd/i2cwrite writes bytes through
// the periph I²C interfaces.
package i2cengine
