// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

// Command lindiag drives a handful of LIN 2.2A Node Configuration
// services against a single slave node, for bring-up and bench testing
// of a master-side serial adapter.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	lin "github.com/mestrode/lin-go"
	"github.com/mestrode/lin-go/detection"
	"github.com/mestrode/lin-go/transport/uart"
)

type config struct {
	device       *string
	nad          *int
	baud         *int
	wake         *bool
	sleep        *bool
	product      *bool
	serial       *bool
	assign       *string // "newNAD,supplierID,functionID"
	condAssign   *string // "id,byteIndex,mask,invert,newNAD"
	save         *bool
	frameIDRange *string // "startIndex,pid0,pid1,pid2,pid3"
	debug        *bool
}

func parseFlags() *config {
	cfg := &config{
		device:       flag.String("device", "", "Serial device path (e.g. /dev/ttyUSB0 or COM3). Empty auto-detects."),
		nad:          flag.Int("nad", 0x7F, "Node address to talk to (default: broadcast/wildcard)"),
		baud:         flag.Int("baud", lin.DefaultBaud, "Bus baud rate"),
		wake:         flag.Bool("wake", false, "Send a wake-up pulse before issuing services"),
		sleep:        flag.Bool("sleep", false, "Send go-to-sleep and exit"),
		product:      flag.Bool("product", false, "Read product identification"),
		serial:       flag.Bool("serial", false, "Read serial number"),
		assign:       flag.String("assign-nad", "", "newNAD,supplierID,functionID (all hex or decimal) to assign"),
		condAssign:   flag.String("cond-change-nad", "", "id,byteIndex,mask,invert,newNAD to conditionally assign"),
		save:         flag.Bool("save", false, "Send save configuration"),
		frameIDRange: flag.String("assign-frame-ids", "", "startIndex,pid0,pid1,pid2,pid3 to assign a frame ID range"),
		debug:        flag.Bool("debug", false, "Enable debug logging"),
	}
	flag.Parse()
	return cfg
}

func openPort(path string) (*uart.Port, error) {
	if path != "" {
		return uart.Open(path)
	}
	devices, err := detection.Detect(detection.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("detect ports: %w", err)
	}
	if len(devices) == 0 {
		return nil, errors.New("no serial ports found; pass -device explicitly")
	}
	fmt.Printf("auto-detected %s\n", devices[0].Path)
	return uart.Open(devices[0].Path)
}

func buildNodeConfig(cfg *config, port *uart.Port) (*lin.NodeConfig, error) {
	opts := []lin.Option{lin.WithBaud(*cfg.baud)}
	if *cfg.debug {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, lin.WithDebugSink(lin.NewSlogDebugSink(logger, 1)))
	}
	ft, err := lin.NewFrameTransfer(port, opts...)
	if err != nil {
		return nil, fmt.Errorf("open frame transfer: %w", err)
	}
	tl := lin.NewTransportLayer(ft)
	return lin.NewNodeConfig(tl), nil
}

func parseAssign(spec string) (newNAD byte, supplierID, functionID uint16, err error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return 0, 0, 0, errors.New("-assign-nad wants newNAD,supplierID,functionID")
	}
	values := make([]uint64, 3)
	for i, p := range parts {
		v, parseErr := strconv.ParseUint(strings.TrimSpace(p), 0, 16)
		if parseErr != nil {
			return 0, 0, 0, fmt.Errorf("parse %q: %w", p, parseErr)
		}
		values[i] = v
	}
	return byte(values[0]), uint16(values[1]), uint16(values[2]), nil
}

func parseBytes(spec string, n int) ([]byte, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated values, got %d", n, len(parts))
	}
	out := make([]byte, n)
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out[i] = byte(v)
	}
	return out, nil
}

func run(cfg *config) error {
	port, err := openPort(*cfg.device)
	if err != nil {
		return err
	}
	defer func() { _ = port.Close() }()

	node, err := buildNodeConfig(cfg, port)
	if err != nil {
		return err
	}

	if *cfg.wake {
		if err := node.Wakeup(); err != nil {
			return fmt.Errorf("wakeup: %w", err)
		}
		fmt.Println("wake-up pulse sent")
	}

	nad := byte(*cfg.nad)

	if *cfg.assign != "" {
		newNAD, supplierID, functionID, err := parseAssign(*cfg.assign)
		if err != nil {
			return err
		}
		if err := node.AssignNAD(&nad, supplierID, functionID, newNAD); err != nil {
			return fmt.Errorf("assign nad: %w", err)
		}
		fmt.Printf("assigned NAD %#02x to node (request NAD %#02x)\n", newNAD, nad)
	}

	if *cfg.condAssign != "" {
		vals, err := parseBytes(*cfg.condAssign, 5)
		if err != nil {
			return fmt.Errorf("cond-change-nad: %w", err)
		}
		if err := node.ConditionalChangeNAD(&nad, vals[0], vals[1], vals[2], vals[3], vals[4]); err != nil {
			return fmt.Errorf("conditional change nad: %w", err)
		}
		fmt.Printf("conditionally assigned NAD %#02x to node (request NAD %#02x)\n", vals[4], nad)
	}

	if *cfg.frameIDRange != "" {
		vals, err := parseBytes(*cfg.frameIDRange, 5)
		if err != nil {
			return fmt.Errorf("assign-frame-ids: %w", err)
		}
		if err := node.AssignFrameIDRange(&nad, vals[0], vals[1], vals[2], vals[3], vals[4]); err != nil {
			return fmt.Errorf("assign frame id range: %w", err)
		}
		fmt.Printf("assigned frame ID range starting at index %d\n", vals[0])
	}

	if *cfg.save {
		if err := node.SaveConfiguration(&nad); err != nil {
			return fmt.Errorf("save configuration: %w", err)
		}
		fmt.Println("save configuration request sent")
	}

	if *cfg.product {
		supplierID, functionID, variant, err := node.ReadProductID(&nad, lin.SupplierIDWildcard, lin.FunctionIDWildcard)
		if err != nil {
			return fmt.Errorf("read product id: %w", err)
		}
		fmt.Printf("product id: supplier=%#04x function=%#04x variant=%d\n", supplierID, functionID, variant)
	}

	if *cfg.serial {
		sn, err := node.ReadSerialNumber(&nad, lin.SupplierIDWildcard, lin.FunctionIDWildcard)
		if err != nil {
			return fmt.Errorf("read serial number: %w", err)
		}
		fmt.Printf("serial number: %#08x\n", sn)
	}

	if *cfg.sleep {
		if err := node.GoToSleep(); err != nil {
			return fmt.Errorf("go to sleep: %w", err)
		}
		fmt.Println("go-to-sleep request sent")
	}

	return nil
}

func main() {
	cfg := parseFlags()
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "lindiag: %v\n", err)
		os.Exit(1)
	}
}
