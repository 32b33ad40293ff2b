package kernel

import (
	"strconv"
)

// PanicInfo is passed to a registered panic handler. Stack is the
// current task's captured frames (spec.md §3's stack_trace), not a
// Go runtime stack — there is no unwinder on bare-metal TinyGo, so
// frames only ever contain what callers pushed themselves.
type PanicInfo struct {
	TaskID  TaskID
	Message string
	Stack   []Frame
}

// SetPanicHandler installs this kernel's panic handler, invoked at
// most once across the kernel's lifetime (the first call to Panic
// wins; installs after a panic has already fired are no-ops because
// Panic itself only ever calls the handler once).
func (k *Kernel) SetPanicHandler(fn func(PanicInfo)) {
	k.panicHandler = fn
}

// Panic is the terminal diagnostic path: it prints the current task,
// its stack trace, the full task listing, and the memory summary to
// the diagnostic sink, invokes any registered panic handler once,
// and marks the kernel halted so Schedule refuses further ticks. The
// only two callers are arena corruption detection (arena.go) and
// explicit invariant failures components choose to treat as fatal.
func (k *Kernel) Panic(ctx *TaskContext, message string) {
	k.panicked = true
	k.panicMsg = message

	sink := k.diagSink()
	sink.WriteLineString("PANIC: " + message)

	var id TaskID
	var stack []Frame
	if ctx != nil {
		id = ctx.id
		t := &k.tasks[id]
		sink.WriteLineString("  at task " + strconv.Itoa(int(id)) + " (" + t.Name + ")")
		stack = append(stack, t.stack[:t.stackLen]...)
		for _, f := range stack {
			sink.WriteLineString("    " + f.Symbol)
		}
	}

	k.dumpTaskListing(sink)
	k.dumpMemorySummary(sink)

	k.panicOnce.Do(func() {
		if k.panicHandler != nil {
			k.panicHandler(PanicInfo{TaskID: id, Message: message, Stack: stack})
		}
	})
}

// Panicked reports whether the kernel has halted on a panic.
func (k *Kernel) Panicked() bool { return k.panicked }

// DumpTaskListing writes one line per non-EMPTY task: id, name,
// state, memory_used, and milliseconds since last_yield. Exact
// formatting is not load-bearing (spec.md §6 only requires these
// fields be present).
func (k *Kernel) DumpTaskListing() {
	k.dumpTaskListing(k.diagSink())
}

func (k *Kernel) dumpTaskListing(sink interface{ WriteLineString(string) }) {
	now := k.now()
	sink.WriteLineString("task listing:")
	for id := 0; id < T; id++ {
		t := &k.tasks[id]
		if t.State == Empty {
			continue
		}
		line := "  [" + strconv.Itoa(id) + "] " + t.Name +
			" state=" + t.State.String() +
			" mem=" + strconv.FormatUint(uint64(t.MemoryUsed), 10) +
			" idle_ms=" + strconv.FormatUint(uint64(elapsed(now, t.LastYield)), 10)
		sink.WriteLineString(line)
	}
}

// DumpMemorySummary writes heap_used, available bytes, and the total
// memory_used across all non-EMPTY tasks.
func (k *Kernel) DumpMemorySummary() {
	k.dumpMemorySummary(k.diagSink())
}

func (k *Kernel) dumpMemorySummary(sink interface{ WriteLineString(string) }) {
	var totalUsed uint64
	for id := 0; id < T; id++ {
		if k.tasks[id].State != Empty {
			totalUsed += uint64(k.tasks[id].MemoryUsed)
		}
	}
	sink.WriteLineString("memory summary: heap_used=" + strconv.FormatUint(uint64(k.heapUsed), 10) +
		" available=" + strconv.FormatUint(uint64(k.Available()), 10) +
		" task_total=" + strconv.FormatUint(totalUsed, 10))
}

// Print writes message to the diagnostic sink tagged with the calling
// task's name, the syscall-facing counterpart of the original
// kernel's print().
func (c *TaskContext) Print(message string) {
	k := c.k
	k.diagSink().WriteLineString("[" + k.tasks[c.id].Name + "] " + message)
}

// DebugPrint writes message to the diagnostic sink tagged [DEBUG],
// with no task name attached, mirroring the original kernel's debug().
func (k *Kernel) DebugPrint(message string) {
	k.diagSink().WriteLineString("[DEBUG] " + message)
}

// PushFrame records a frame on the current task's bounded stack
// trace, for tasks that want nested calls visible in a future panic
// dump. Once the trace is full, further pushes are dropped silently
// rather than overflowing or panicking themselves.
func (c *TaskContext) PushFrame(f Frame) {
	t := &c.k.tasks[c.id]
	if t.stackLen >= len(t.stack) {
		return
	}
	t.stack[t.stackLen] = f
	t.stackLen++
}

// PopFrame removes the most recently pushed frame, if any.
func (c *TaskContext) PopFrame() {
	t := &c.k.tasks[c.id]
	if t.stackLen > 0 {
		t.stackLen--
	}
}
