//go:build tinygo && baremetal

package hal

import (
	"machine"
)

// MachineClock is a Clock backed by the TinyGo runtime's monotonic
// tick source.
type MachineClock struct{ t0 uint32 }

func NewMachineClock() *MachineClock {
	return &MachineClock{t0: uint32(machine.Ticks().Milliseconds())}
}

func (c *MachineClock) Now() uint32 {
	return uint32(machine.Ticks().Milliseconds()) - c.t0
}

// UARTSink is a Sink backed by a configured UART, grounded on the
// teacher's uartLogger.
type UARTSink struct {
	uart *machine.UART
}

func NewUARTSink(uart *machine.UART) *UARTSink {
	return &UARTSink{uart: uart}
}

func (s *UARTSink) WriteLineString(line string) {
	s.uart.Write([]byte(line))
	s.uart.Write([]byte("\r\n"))
}

func (s *UARTSink) WriteLineBytes(b []byte) {
	s.uart.Write(b)
	s.uart.Write([]byte("\r\n"))
}

// MachineGPIO adapts a fixed set of machine.Pin values to the GPIO
// interface.
type MachineGPIO struct {
	pins []machine.Pin
}

func NewMachineGPIO(pins []machine.Pin) *MachineGPIO {
	return &MachineGPIO{pins: pins}
}

func (g *MachineGPIO) PinCount() int { return len(g.pins) }

func (g *MachineGPIO) Pin(id int) GPIOPin {
	if id < 0 || id >= len(g.pins) {
		return nil
	}
	return &machinePin{pin: g.pins[id]}
}

type machinePin struct {
	pin machine.Pin
}

func (p *machinePin) Configure(mode GPIOMode) error {
	switch mode {
	case GPIOModeInput:
		p.pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	case GPIOModeOutput:
		p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	return nil
}

func (p *machinePin) Read() (bool, error) {
	return p.pin.Get(), nil
}

func (p *machinePin) Write(level bool) error {
	p.pin.Set(level)
	return nil
}

// MachineI2C adapts machine.I2C to the I2C interface.
type MachineI2C struct {
	bus *machine.I2C
	rx  []byte
}

func NewMachineI2C(bus *machine.I2C) *MachineI2C {
	return &MachineI2C{bus: bus}
}

func (b *MachineI2C) WireBegin(addr uint16) error {
	return nil
}

func (b *MachineI2C) WireTx(addr uint16, data []byte) int {
	if err := b.bus.Tx(addr, data, nil); err != nil {
		return -1
	}
	return 0
}

func (b *MachineI2C) WireRequest(addr uint16, n int) error {
	b.rx = make([]byte, n)
	return b.bus.Tx(addr, nil, b.rx)
}

func (b *MachineI2C) WireRx() []byte {
	return b.rx
}

// MachineSPI adapts machine.SPI to the SPI interface.
type MachineSPI struct {
	bus *machine.SPI
	cs  machine.Pin
}

func NewMachineSPI(bus *machine.SPI, cs machine.Pin) *MachineSPI {
	return &MachineSPI{bus: bus, cs: cs}
}

func (b *MachineSPI) SPIBegin() error {
	b.cs.Set(false)
	return nil
}

func (b *MachineSPI) SPITransferByte(v byte) (byte, error) {
	return b.bus.Transfer(v)
}

func (b *MachineSPI) SPIEnd() {
	b.cs.Set(true)
}
