//go:build tinygo && baremetal

package main

import (
	"machine"

	"sparkcore/app"
	"sparkcore/extfs"
	"sparkcore/hal"
	"sparkcore/kernel"
)

// board wiring: SPI0 with CS/SCK/SDO/SDI on GP18/GP19/GP16/GP17,
// matching the teacher's picocalc SD pinout (sparkos/services/vfs/sd_picocalc.go).
var gpioPins = []machine.Pin{
	machine.GP2, machine.GP3, machine.GP4, machine.GP5,
	machine.GP6, machine.GP7, machine.GP8, machine.GP9,
}

func main() {
	machine.UART0.Configure(machine.UARTConfig{BaudRate: 115200})
	sink := hal.NewUARTSink(machine.UART0)

	var medium extfs.Medium
	if sd, err := extfs.NewSDCard(); err == nil {
		medium = sd
	} else {
		sink.WriteLineString("sparkcore: sd card mount failed, filesystem disabled: " + err.Error())
	}

	deps := kernel.Deps{
		Clock: hal.NewMachineClock(),
		Sink:  sink,
		GPIO:  hal.NewMachineGPIO(gpioPins),
		I2C:   hal.NewMachineI2C(machine.I2C0),
		SPI:   hal.NewMachineSPI(machine.SPI0, machine.GP18),
		FS:    medium,
	}

	sys, err := app.New(deps, app.Config{})
	if err != nil {
		sink.WriteLineString("sparkcore: boot failed: " + err.Error())
		for {
		}
	}

	app.Run(sys)
}
