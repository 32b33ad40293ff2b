// Package kernel implements the cooperative scheduler, bump-pointer
// arena, bounded IPC rings, counting semaphores, and permission-gated
// resource-handle tables described for Spark's microkernel core. A
// single Kernel value owns every fixed-size table; it is constructed
// once at boot (New) and never torn down. Nothing inside this package
// is safe for concurrent use from more than one goroutine — exactly
// one goroutine is expected to drive Schedule, the way a real
// single-core, non-preemptive target would.
package kernel

import (
	"sync"

	"sparkcore/extfs"
	"sparkcore/hal"
)

// Kernel is the single owned instance of every kernel table. Board
// wiring constructs one with New and keeps driving Schedule from its
// main loop (app.Run, or the host build's ticker loop).
type Kernel struct {
	clock hal.Clock
	sink  hal.Sink
	gpio  hal.GPIO
	i2c   hal.I2C
	spi   hal.SPI
	fs    extfs.Medium

	tasks         [T]Task
	currentTask   TaskID
	lastWatchdog  uint32
	watchdogArmed bool

	heap      [HeapSize]byte
	heapUsed  uint32

	rings [T]ring

	sems [S]Semaphore

	files [F]FileHandle
	dirs  [D]DirHandle

	panicked     bool
	panicMsg     string
	panicOnce    sync.Once
	panicHandler func(PanicInfo)
}

// Deps bundles the external collaborators a board wires in. A nil fs,
// gpio, i2c, or spi is legal: calls that need it then return
// ErrIOError (fs) or ErrInvalidCall (bus), since the gate exists but
// has nothing to forward to.
type Deps struct {
	Clock hal.Clock
	Sink  hal.Sink
	GPIO  hal.GPIO
	I2C   hal.I2C
	SPI   hal.SPI
	FS    extfs.Medium
}

// New constructs a Kernel with task slot 0 reserved for the idle
// task, priority 0, permissions empty, never killable.
func New(d Deps) *Kernel {
	k := &Kernel{
		clock: d.Clock,
		sink:  d.Sink,
		gpio:  d.GPIO,
		i2c:   d.I2C,
		spi:   d.SPI,
		fs:    d.FS,
	}
	k.tasks[idleTaskID] = Task{
		ID:       idleTaskID,
		Name:     "idle",
		State:    Ready,
		Priority: idlePriority,
		Entry:    idleEntry,
	}
	k.tasks[idleTaskID].stack[0] = Frame{Symbol: "idle"}
	k.tasks[idleTaskID].stackLen = 1
	k.currentTask = idleTaskID
	k.lastWatchdog = k.now()
	return k
}

func idleEntry(ctx *TaskContext) {}

// now returns the current millisecond reading from the injected
// clock. All comparisons against a stored timestamp must go through
// elapsed, not a bare subtraction, to stay correct across the
// clock's ~49-day wraparound.
func (k *Kernel) now() uint32 {
	return k.clock.Now()
}

// elapsed returns now-since, correct even if the clock wrapped
// between since and now, by relying on unsigned wraparound: the
// subtraction below produces the same result whether or not now
// rolled over since since was captured, as long as the elapsed
// interval itself is under 2^32 ms (~49 days).
func elapsed(now, since uint32) uint32 {
	return now - since
}

// CurrentTask returns the id of the task currently RUNNING.
func (k *Kernel) CurrentTask() TaskID {
	return k.currentTask
}

// Task returns a copy of the task table row for id, or false if id is
// out of range.
func (k *Kernel) Task(id TaskID) (Task, bool) {
	if int(id) >= T {
		return Task{}, false
	}
	return k.tasks[id], true
}

// TaskContext is the explicit per-call handle a task's EntryPoint
// receives instead of reaching for kernel-global state. It pins the
// kernel and the task id that was RUNNING when the entry point was
// invoked; every method forwards to the matching Kernel operation
// with that task id as the implicit caller.
type TaskContext struct {
	k  *Kernel
	id TaskID
}

// Self returns the task id this context belongs to.
func (c *TaskContext) Self() TaskID { return c.id }

// Kernel exposes the owning kernel for operations TaskContext does
// not wrap directly (diagnostics, syscall dispatch by tag).
func (c *TaskContext) Kernel() *Kernel { return c.k }

func (k *Kernel) newContext(id TaskID) *TaskContext {
	return &TaskContext{k: k, id: id}
}

// ContextFor returns a TaskContext for id without going through the
// scheduler. Production code never needs this — a task's EntryPoint
// is always handed its context by Schedule — but tests exercise
// syscall-shaped operations directly against a chosen task id.
func (k *Kernel) ContextFor(id TaskID) *TaskContext {
	return k.newContext(id)
}

// diagSink returns a non-nil Sink, falling back to a no-op so diagnostic
// calls never crash a board that wired a nil Sink by mistake.
func (k *Kernel) diagSink() hal.Sink {
	if k.sink == nil {
		return nopSink{}
	}
	return k.sink
}
