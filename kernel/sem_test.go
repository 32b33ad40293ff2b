package kernel

import (
	"testing"

	"sparkcore/hal"
)

func TestSemCreateValidatesBounds(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(0))
	ctx := k.ContextFor(idleTaskID)

	if _, err := ctx.SemCreate(-1, 1, "bad"); err != ErrInvalidParam {
		t.Fatalf("SemCreate(initial<0) err = %v, want ErrInvalidParam", err)
	}
	if _, err := ctx.SemCreate(2, 1, "bad"); err != ErrInvalidParam {
		t.Fatalf("SemCreate(initial>max) err = %v, want ErrInvalidParam", err)
	}
	if _, err := ctx.SemCreate(0, 0, "bad"); err != ErrInvalidParam {
		t.Fatalf("SemCreate(max<1) err = %v, want ErrInvalidParam", err)
	}
	id, err := ctx.SemCreate(0, 1, "ok")
	if err != OK || id < 0 {
		t.Fatalf("SemCreate(0,1) = (%d,%v), want (>=0, OK)", id, err)
	}
}

func TestSemPostRespectsMaxValue(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(0))
	ctx := k.ContextFor(idleTaskID)

	id, _ := ctx.SemCreate(1, 1, "s")
	if err := ctx.SemPost(id); err != ErrInvalidParam {
		t.Fatalf("SemPost(at max) err = %v, want ErrInvalidParam", err)
	}
	if k.sems[id].Value != 1 {
		t.Fatalf("Value = %d, want unchanged at 1", k.sems[id].Value)
	}
}

func TestSemWaitAcquiresAfterPost(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(1))
	waiter, _ := k.CreateTask("waiter", func(*TaskContext) {})
	waiterCtx := k.ContextFor(waiter)

	id, _ := waiterCtx.SemCreate(0, 1, "s")
	_ = waiterCtx.SemPost(id)

	if err := waiterCtx.SemWait(id, 1000); err != OK {
		t.Fatalf("SemWait err = %v, want OK", err)
	}
	if k.sems[id].Value != 0 {
		t.Fatalf("Value after wait = %d, want 0", k.sems[id].Value)
	}
	if k.CurrentTask() != waiter || k.tasks[waiter].State != Running {
		t.Fatal("waiter must be restored as the sole RUNNING task after SemWait returns")
	}
}

// TestSemWaitTimeout is end-to-end scenario 4: sem_create(0,1) then
// sem_wait(s,50) in a single-task system returns TIMEOUT after at
// least 50ms have elapsed, leaving value at 0.
func TestSemWaitTimeout(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(5))
	waiter, _ := k.CreateTask("waiter", func(*TaskContext) {})
	waiterCtx := k.ContextFor(waiter)

	id, _ := waiterCtx.SemCreate(0, 1, "s")

	start := k.now()
	err := waiterCtx.SemWait(id, 50)
	if err != ErrTimeout {
		t.Fatalf("SemWait err = %v, want ErrTimeout", err)
	}
	if elapsed(k.now(), start) < 50 {
		t.Fatalf("SemWait returned after only %dms, want >= 50ms", elapsed(k.now(), start))
	}
	if k.sems[id].Value != 0 {
		t.Fatalf("Value after timeout = %d, want 0", k.sems[id].Value)
	}
	if k.CurrentTask() != waiter || k.tasks[waiter].State != Running {
		t.Fatal("waiter must be restored as the sole RUNNING task after a timed-out SemWait")
	}
}

func TestSemWaitUnknownID(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(0))
	ctx := k.ContextFor(idleTaskID)
	if err := ctx.SemWait(99, 10); err != ErrNotFound {
		t.Fatalf("SemWait(bad id) err = %v, want ErrNotFound", err)
	}
}

func TestSemDestroyPermission(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(0))
	owner, _ := k.CreateTask("owner", func(*TaskContext) {})
	other, _ := k.CreateTask("other", func(*TaskContext) {})
	ownerCtx := k.ContextFor(owner)
	otherCtx := k.ContextFor(other)

	id, _ := ownerCtx.SemCreate(0, 1, "s")
	if err := otherCtx.SemDestroy(id); err != ErrPermission {
		t.Fatalf("SemDestroy(non-owner) err = %v, want ErrPermission", err)
	}

	idleCtx := k.ContextFor(idleTaskID)
	if err := idleCtx.SemDestroy(id); err != OK {
		t.Fatalf("SemDestroy(idle task) err = %v, want OK", err)
	}
	if k.sems[id].InUse {
		t.Fatal("semaphore slot must be free after SemDestroy")
	}
}

func TestInvariantSemaphoreValueBounds(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(0))
	ctx := k.ContextFor(idleTaskID)

	id, _ := ctx.SemCreate(2, 3, "s")
	_ = ctx.SemPost(id)
	checkInvariant5(t, k)

	_ = ctx.SemPost(id)
	checkInvariant5(t, k)

	if err := ctx.SemPost(id); err != ErrInvalidParam {
		t.Fatalf("SemPost(already at max) err = %v, want ErrInvalidParam", err)
	}
	checkInvariant5(t, k)
}

func checkInvariant5(t *testing.T, k *Kernel) {
	t.Helper()
	for id := 0; id < S; id++ {
		s := k.sems[id]
		if !s.InUse {
			continue
		}
		if s.Value < 0 || s.Value > s.MaxValue {
			t.Fatalf("sem[%d].Value = %d out of [0,%d]", id, s.Value, s.MaxValue)
		}
	}
}
