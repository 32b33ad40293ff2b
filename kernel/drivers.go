package kernel

import "sparkcore/hal"

// The methods here are the "check permission, forward to hardware"
// gate spec.md §9 calls out as shared shape across GPIO/I2C/SPI.
// Permission itself is checked once by the dispatcher (syscall.go);
// these assume an authorized caller and only validate range and the
// presence of a wired bus.

func (c *TaskContext) gpioConfigure(pin, mode int) ErrKind {
	k := c.k
	if k.gpio == nil {
		return ErrInvalidCall
	}
	if pin < 0 || pin >= k.gpio.PinCount() {
		return ErrInvalidParam
	}
	if err := k.gpio.Pin(pin).Configure(hal.GPIOMode(mode)); err != nil {
		return ErrIOError
	}
	return OK
}

func (c *TaskContext) gpioRead(pin int) (bool, ErrKind) {
	k := c.k
	if k.gpio == nil {
		return false, ErrInvalidCall
	}
	if pin < 0 || pin >= k.gpio.PinCount() {
		return false, ErrInvalidParam
	}
	level, err := k.gpio.Pin(pin).Read()
	if err != nil {
		return false, ErrIOError
	}
	return level, OK
}

func (c *TaskContext) gpioWrite(pin int, level bool) ErrKind {
	k := c.k
	if k.gpio == nil {
		return ErrInvalidCall
	}
	if pin < 0 || pin >= k.gpio.PinCount() {
		return ErrInvalidParam
	}
	if err := k.gpio.Pin(pin).Write(level); err != nil {
		return ErrIOError
	}
	return OK
}

func (c *TaskContext) i2cWireBegin(addr uint16) ErrKind {
	k := c.k
	if k.i2c == nil {
		return ErrInvalidCall
	}
	if err := k.i2c.WireBegin(addr); err != nil {
		return ErrIOError
	}
	return OK
}

func (c *TaskContext) i2cWireTx(addr uint16, data []byte) ErrKind {
	k := c.k
	if k.i2c == nil {
		return ErrInvalidCall
	}
	if k.i2c.WireTx(addr, data) != 0 {
		return ErrIOError
	}
	return OK
}

func (c *TaskContext) i2cWireRequest(addr uint16, n int) ErrKind {
	k := c.k
	if k.i2c == nil {
		return ErrInvalidCall
	}
	if err := k.i2c.WireRequest(addr, n); err != nil {
		return ErrIOError
	}
	return OK
}

func (c *TaskContext) i2cWireRx(buf []byte) int {
	k := c.k
	if k.i2c == nil {
		return 0
	}
	return copy(buf, k.i2c.WireRx())
}

func (c *TaskContext) spiBegin() ErrKind {
	k := c.k
	if k.spi == nil {
		return ErrInvalidCall
	}
	if err := k.spi.SPIBegin(); err != nil {
		return ErrIOError
	}
	return OK
}

func (c *TaskContext) spiTransferByte(b byte) (byte, ErrKind) {
	k := c.k
	if k.spi == nil {
		return 0, ErrInvalidCall
	}
	out, err := k.spi.SPITransferByte(b)
	if err != nil {
		return 0, ErrIOError
	}
	return out, OK
}

func (c *TaskContext) spiEnd() {
	k := c.k
	if k.spi != nil {
		k.spi.SPIEnd()
	}
}
