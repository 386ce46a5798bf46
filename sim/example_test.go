// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sim_test

import (
	"fmt"
	"log"

	"periph.io/x/i2cengine/bus"
	"periph.io/x/i2cengine/master"
	"periph.io/x/i2cengine/sim"
	"periph.io/x/i2cengine/target"
	"periph.io/x/periph/conn/physic"
)

func Example() {
	e, err := master.New(master.Config{SystemClock: physic.MegaHertz, Speed: master.StandardMode})
	if err != nil {
		log.Fatal(err)
	}
	r := &target.Recorder{}
	h := sim.New(e, target.New(0x3D, r))
	h.Queue(bus.Start(0x3D, bus.Write), bus.Data(0x00), bus.Data(0x00))
	if _, err := h.Run(1000); err != nil {
		log.Fatal(err)
	}
	for _, o := range h.Observations() {
		if o.Op == sim.OpByte {
			fmt.Printf("%s 0x%02x ack=%t\n", o.Op, o.Byte, o.Ack)
		} else {
			fmt.Printf("%s\n", o.Op)
		}
	}
	fmt.Printf("received: % x\n", r.Payload())
	// Output:
	// Start
	// Byte 0x7a ack=true
	// Byte 0x00 ack=true
	// Byte 0x00 ack=true
	// Stop
	// received: 00 00
}
