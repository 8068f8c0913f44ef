// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

/*
Package lin implements a LIN 2.2A master-side communication stack: frame
transfer, diagnostic transport layer segmentation and the Node
Configuration service set, over a pluggable byte-stream driver.

Layers, bottom to top:

  - internal/frame: the Break/Sync/Protected-ID/Data/Checksum wire frame
    and the byte-level state machine that reassembles one from a stream.
  - FrameTransfer: one LIN frame per call, with optional loopback
    readback verification.
  - internal/pdu: the 8-byte diagnostic PDU (Single/First/Consecutive
    Frame) carried inside frame data.
  - TransportLayer: segments a payload into PDUs and reassembles a
    response payload from one or more frames.
  - NodeConfig: the request/response Node Configuration services
    (Assign NAD, Read by Identifier, Conditional Change NAD, Save
    Configuration, Assign Frame-ID Range, Wake-up, Go-to-Sleep).

Each layer holds a reference to the one below rather than inheriting
from it. Only the Driver is an interface: NodeConfig holds a concrete
*TransportLayer and TransportLayer a concrete *FrameTransfer, so all
layers are exercised together over a fake Driver
(internal/testing.VirtualSlave) without a real bus.

Basic usage:

	port, err := uart.Open("/dev/ttyUSB0")
	if err != nil {
	    log.Fatal(err)
	}
	defer port.Close()

	ft, err := lin.NewFrameTransfer(port, lin.WithBaud(19200))
	if err != nil {
	    log.Fatal(err)
	}
	tl := lin.NewTransportLayer(ft)
	node := lin.NewNodeConfig(tl)

	nad := byte(0x01)
	if err := node.AssignNAD(&nad, 0x1234, 0x5678, 0x0A); err != nil {
	    log.Fatal(err)
	}
*/
package lin
