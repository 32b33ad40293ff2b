//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// SystemClock is a Clock backed by the host's wall clock, with
// millisecond resolution and an arbitrary epoch fixed at construction.
type SystemClock struct {
	t0  time.Time
	now func() time.Time
}

// NewSystemClock returns a Clock anchored to the moment it is created.
func NewSystemClock() *SystemClock {
	return &SystemClock{t0: time.Now(), now: time.Now}
}

// NewSystemClockWithFunc is NewSystemClock with an injectable time
// source, grounded on the signal-pin clock injection the teacher uses
// for deterministic GPIO tests.
func NewSystemClockWithFunc(now func() time.Time) *SystemClock {
	if now == nil {
		now = time.Now
	}
	return &SystemClock{t0: now(), now: now}
}

func (c *SystemClock) Now() uint32 {
	return uint32(c.now().Sub(c.t0).Milliseconds())
}

// FakeClock is a deterministic, manually (or auto-) advanced Clock for
// tests that must not depend on wall-clock timing.
type FakeClock struct {
	mu   sync.Mutex
	ms   uint32
	step uint32
}

// NewFakeClock returns a FakeClock starting at 0ms. If step is
// nonzero, every call to Now returns the current reading and then
// advances the clock by step milliseconds — useful for driving a busy-wait loop (e.g.
// sem_wait) to a deterministic timeout without a real sleep.
func NewFakeClock(step uint32) *FakeClock {
	return &FakeClock{step: step}
}

func (c *FakeClock) Now() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.ms
	c.ms += c.step
	return v
}

// Advance moves the clock forward by ms milliseconds and returns the
// new reading.
func (c *FakeClock) Advance(ms uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ms += ms
	return c.ms
}

// WriterSink is a Sink that writes newline-terminated lines to an
// io.Writer, grounded on the teacher's uartLogger.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink wraps w as a Sink.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteLineString(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, line)
}

func (s *WriterSink) WriteLineBytes(b []byte) {
	s.WriteLineString(string(b))
}

// RingSink is a bounded-capacity Sink that retains the most recent
// lines in memory, for tests that assert on panic/watchdog output
// without capturing stdout.
type RingSink struct {
	mu    sync.Mutex
	lines []string
	cap   int
}

// NewRingSink returns a RingSink retaining at most capacity lines.
func NewRingSink(capacity int) *RingSink {
	if capacity <= 0 {
		capacity = 64
	}
	return &RingSink{cap: capacity}
}

func (s *RingSink) WriteLineString(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	if len(s.lines) > s.cap {
		s.lines = s.lines[len(s.lines)-s.cap:]
	}
}

func (s *RingSink) WriteLineBytes(b []byte) {
	s.WriteLineString(string(b))
}

// Lines returns a snapshot of the retained lines, oldest first.
func (s *RingSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// virtualPin is an in-memory GPIO pin used by the host build and by
// tests, grounded on the teacher's virtualPin.
type virtualPin struct {
	mu    sync.Mutex
	mode  GPIOMode
	level bool
}

func (p *virtualPin) Configure(mode GPIOMode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
	return nil
}

func (p *virtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

func (p *virtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("hal: pin not configured for output")
	}
	p.level = level
	return nil
}

// VirtualGPIO is an in-memory GPIO bank backing host tests and the
// host build's simulated board.
type VirtualGPIO struct {
	pins []*virtualPin
}

// NewVirtualGPIO returns a GPIO bank with n pins, all initially
// configured as inputs reading low.
func NewVirtualGPIO(n int) *VirtualGPIO {
	g := &VirtualGPIO{pins: make([]*virtualPin, n)}
	for i := range g.pins {
		g.pins[i] = &virtualPin{}
	}
	return g
}

func (g *VirtualGPIO) PinCount() int { return len(g.pins) }

func (g *VirtualGPIO) Pin(id int) GPIOPin {
	if id < 0 || id >= len(g.pins) {
		return nil
	}
	return g.pins[id]
}

// VirtualI2C is an in-memory I2C bus stand-in: it records the last
// transaction and returns a fixed or queued response, enough to prove
// a syscall reached the bus (or, under a permission failure, that it
// did not).
type VirtualI2C struct {
	mu       sync.Mutex
	began    bool
	lastAddr uint16
	lastTx   []byte
	rxQueue  [][]byte
}

func NewVirtualI2C() *VirtualI2C { return &VirtualI2C{} }

func (b *VirtualI2C) WireBegin(addr uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.began = true
	b.lastAddr = addr
	return nil
}

func (b *VirtualI2C) WireTx(addr uint16, data []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastAddr = addr
	b.lastTx = append([]byte(nil), data...)
	return 0
}

func (b *VirtualI2C) WireRequest(addr uint16, n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastAddr = addr
	if len(b.rxQueue) == 0 {
		b.rxQueue = append(b.rxQueue, make([]byte, n))
	}
	return nil
}

func (b *VirtualI2C) WireRx() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.rxQueue) == 0 {
		return nil
	}
	data := b.rxQueue[0]
	b.rxQueue = b.rxQueue[1:]
	return data
}

// Touched reports whether WireBegin, or a WireTx carrying at least
// one byte, ever reached the bus — used by permission-gate tests to
// prove a denied syscall never touched hardware. WireRequest, WireRx,
// and an empty WireTx are not recorded.
func (b *VirtualI2C) Touched() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.began || b.lastTx != nil
}

// VirtualSPI is an in-memory SPI bus stand-in.
type VirtualSPI struct {
	mu     sync.Mutex
	active bool
	sent   []byte
}

func NewVirtualSPI() *VirtualSPI { return &VirtualSPI{} }

func (b *VirtualSPI) SPIBegin() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = true
	return nil
}

func (b *VirtualSPI) SPITransferByte(v byte) (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return 0, fmt.Errorf("hal: spi not begun")
	}
	b.sent = append(b.sent, v)
	return v, nil
}

func (b *VirtualSPI) SPIEnd() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = false
}

func (b *VirtualSPI) Touched() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active || len(b.sent) > 0
}
