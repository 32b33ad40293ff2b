package kernel

import (
	"testing"

	"sparkcore/hal"
)

func TestPanicHaltsScheduler(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(0))
	task, _ := k.CreateTask("t", func(*TaskContext) {})
	ctx := k.ContextFor(task)

	var got PanicInfo
	calls := 0
	k.SetPanicHandler(func(info PanicInfo) {
		got = info
		calls++
	})

	k.Panic(ctx, "something went wrong")

	if !k.Panicked() {
		t.Fatal("Panicked() must be true after Panic")
	}
	if calls != 1 {
		t.Fatalf("panic handler invoked %d times, want 1", calls)
	}
	if got.TaskID != task || got.Message != "something went wrong" {
		t.Fatalf("PanicInfo = %+v, unexpected", got)
	}

	before := k.CurrentTask()
	k.Schedule()
	if k.CurrentTask() != before {
		t.Fatal("Schedule must refuse to run further ticks after a panic")
	}
}

func TestPanicHandlerFiresOnce(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(0))
	ctx := k.ContextFor(idleTaskID)

	calls := 0
	k.SetPanicHandler(func(PanicInfo) { calls++ })

	k.Panic(ctx, "first")
	k.Panic(ctx, "second")

	if calls != 1 {
		t.Fatalf("panic handler invoked %d times across two Panic calls, want 1", calls)
	}
}

func TestTwoKernelsHaveIndependentPanicHandlers(t *testing.T) {
	k1 := newTestKernel(hal.NewFakeClock(0))
	k2 := newTestKernel(hal.NewFakeClock(0))

	var k1Calls, k2Calls int
	k1.SetPanicHandler(func(PanicInfo) { k1Calls++ })
	k2.SetPanicHandler(func(PanicInfo) { k2Calls++ })

	k1.Panic(k1.ContextFor(idleTaskID), "boom")

	if k1Calls != 1 {
		t.Fatalf("k1 handler calls = %d, want 1", k1Calls)
	}
	if k2Calls != 0 {
		t.Fatalf("k2 handler calls = %d, want 0 (independent kernels must not share panic state)", k2Calls)
	}
	if k2.Panicked() {
		t.Fatal("k2 must not be panicked by k1's Panic call")
	}
}

func TestCompactionPanicsOnHeapCorruption(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(0))
	ctx := k.ContextFor(idleTaskID)

	k.heapUsed = HeapSize + headerSize
	k.Compact(ctx)

	if !k.Panicked() {
		t.Fatal("Compact must panic when heap bookkeeping runs past HeapSize")
	}
}

func TestPushPopFrameBounded(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(0))
	task, _ := k.CreateTask("t", func(*TaskContext) {})
	ctx := k.ContextFor(task)

	for i := 0; i < maxStackFrames+4; i++ {
		ctx.PushFrame(Frame{Symbol: "f"})
	}
	if k.tasks[task].stackLen != maxStackFrames {
		t.Fatalf("stackLen = %d, want capped at %d", k.tasks[task].stackLen, maxStackFrames)
	}

	for i := 0; i < maxStackFrames+4; i++ {
		ctx.PopFrame()
	}
	if k.tasks[task].stackLen != 0 {
		t.Fatalf("stackLen = %d, want 0 after popping past empty", k.tasks[task].stackLen)
	}
}
