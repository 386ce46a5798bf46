// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hostsim loads the simulated bus drivers alongside the host drivers.
//
// Subpackages contain the drivers that are loaded automatically. Buses must
// be declared before Init is called.
package hostsim
