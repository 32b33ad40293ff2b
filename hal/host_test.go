//go:build !tinygo

package hal

import (
	"testing"
	"time"
)

func TestSystemClockWithFuncAdvances(t *testing.T) {
	var ms int64
	c := NewSystemClockWithFunc(nil) // nil falls back to time.Now
	if c == nil {
		t.Fatal("expected clock")
	}

	base := time.Unix(0, 0)
	c = NewSystemClockWithFunc(func() time.Time {
		return base.Add(time.Duration(ms) * time.Millisecond)
	})
	ms = 250
	if got := c.Now(); got != 250 {
		t.Fatalf("Now() after advancing the source 250ms = %d, want 250", got)
	}
}

func TestFakeClockAutoStep(t *testing.T) {
	c := NewFakeClock(10)
	first := c.Now()
	second := c.Now()
	if second-first != 10 {
		t.Fatalf("Now() step = %d, want 10", second-first)
	}
}

func TestFakeClockAdvance(t *testing.T) {
	c := NewFakeClock(0)
	if got := c.Advance(50); got != 50 {
		t.Fatalf("Advance(50) = %d, want 50", got)
	}
	if got := c.Now(); got != 50 {
		t.Fatalf("Now() = %d, want 50", got)
	}
}

func TestVirtualGPIOWriteRead(t *testing.T) {
	g := NewVirtualGPIO(2)
	pin := g.Pin(0)
	if pin == nil {
		t.Fatal("expected pin 0")
	}
	if err := pin.Configure(GPIOModeOutput); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := pin.Write(true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	level, err := pin.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !level {
		t.Fatal("expected level true after Write(true)")
	}
	if g.Pin(5) != nil {
		t.Fatal("expected nil for out-of-range pin")
	}
}

func TestVirtualI2CTouched(t *testing.T) {
	bus := NewVirtualI2C()
	if bus.Touched() {
		t.Fatal("expected untouched bus before any call")
	}
	bus.WireTx(0x42, []byte{1, 2, 3})
	if !bus.Touched() {
		t.Fatal("expected touched bus after WireTx")
	}
}

func TestVirtualSPITransfer(t *testing.T) {
	bus := NewVirtualSPI()
	if _, err := bus.SPITransferByte(0xAA); err == nil {
		t.Fatal("expected error transferring before SPIBegin")
	}
	if err := bus.SPIBegin(); err != nil {
		t.Fatalf("SPIBegin: %v", err)
	}
	got, err := bus.SPITransferByte(0xAA)
	if err != nil {
		t.Fatalf("SPITransferByte: %v", err)
	}
	if got != 0xAA {
		t.Fatalf("SPITransferByte = %#x, want 0xAA", got)
	}
	bus.SPIEnd()
	if !bus.Touched() {
		t.Fatal("expected touched bus after transfer")
	}
}

func TestRingSinkBounded(t *testing.T) {
	s := NewRingSink(2)
	s.WriteLineString("a")
	s.WriteLineString("b")
	s.WriteLineString("c")
	lines := s.Lines()
	if len(lines) != 2 {
		t.Fatalf("len(Lines()) = %d, want 2", len(lines))
	}
	if lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("Lines() = %v, want [b c]", lines)
	}
}
