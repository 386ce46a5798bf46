// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hostsim

import (
	_ "periph.io/x/i2cengine/hostsim/i2csim"
	"periph.io/x/periph"
	"periph.io/x/periph/host"
)

// Init initializes periph with the i2csim driver linked in.
//
// The i2csim driver registers every bus passed to i2csim.Declare() so far in
// i2creg, along with a pinreg header holding its SCL and SDA pins. It is
// skipped when no bus was declared. Buses declared after Init are not
// registered.
//
// The real host drivers load too. A failure of one of them is reported in
// periph.State.Failed and does not prevent using the simulated buses.
func Init() (*periph.State, error) {
	return host.Init()
}
