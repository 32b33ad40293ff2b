//go:build !tinygo

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"sparkcore/app"
	"sparkcore/extfs"
	"sparkcore/hal"
	"sparkcore/kernel"
)

func main() {
	var fsRoot string
	var ticks uint64
	var tickHz int
	flag.StringVar(&fsRoot, "fsroot", "", "Host directory to back the external filesystem (empty = none).")
	flag.Uint64Var(&ticks, "ticks", 0, "Stop after N scheduler ticks (0 = run forever).")
	flag.IntVar(&tickHz, "hz", 100, "Scheduler tick rate in Hz.")
	flag.Parse()

	var medium extfs.Medium
	if fsRoot != "" {
		tree, err := extfs.NewHostTree(fsRoot)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		medium = tree
	}

	deps := kernel.Deps{
		Clock: hal.NewSystemClock(),
		Sink:  hal.NewWriterSink(os.Stdout),
		GPIO:  hal.NewVirtualGPIO(8),
		I2C:   hal.NewVirtualI2C(),
		SPI:   hal.NewVirtualSPI(),
		FS:    medium,
	}

	sys, err := app.New(deps, app.Config{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	period := time.Second / time.Duration(tickHz)
	tkr := time.NewTicker(period)
	defer tkr.Stop()

	var n uint64
	for range tkr.C {
		sys.Kernel.Schedule()
		if sys.Kernel.Panicked() {
			os.Exit(1)
		}
		n++
		if ticks != 0 && n >= ticks {
			return
		}
	}
}
