package kernel

import (
	"testing"

	"sparkcore/hal"
)

func newTestKernel(clock hal.Clock) *Kernel {
	return New(Deps{
		Clock: clock,
		Sink:  hal.NewRingSink(64),
		GPIO:  hal.NewVirtualGPIO(4),
		I2C:   hal.NewVirtualI2C(),
		SPI:   hal.NewVirtualSPI(),
	})
}

func TestCreateTaskDefaults(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(0))
	id, err := k.CreateTask("worker", func(*TaskContext) {})
	if err != OK {
		t.Fatalf("CreateTask err = %v, want OK", err)
	}
	if id == idleTaskID {
		t.Fatal("CreateTask must never reuse slot 0")
	}
	tk, ok := k.Task(id)
	if !ok {
		t.Fatal("Task lookup failed")
	}
	if tk.State != Ready {
		t.Fatalf("State = %v, want READY", tk.State)
	}
	if tk.Priority != defaultPriority {
		t.Fatalf("Priority = %d, want %d", tk.Priority, defaultPriority)
	}
	want := PermSD | PermDisplay | PermGPIO
	if tk.Permissions != want {
		t.Fatalf("Permissions = %v, want %v", tk.Permissions, want)
	}
}

func TestCreateTaskExhaustion(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(0))
	for i := 1; i < T; i++ {
		if _, err := k.CreateTask("t", func(*TaskContext) {}); err != OK {
			t.Fatalf("CreateTask[%d] err = %v, want OK", i, err)
		}
	}
	if _, err := k.CreateTask("overflow", func(*TaskContext) {}); err != ErrNoMemory {
		t.Fatalf("CreateTask err = %v, want ErrNoMemory", err)
	}
}

func TestSchedulerPriority(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(1))
	var ranLow, ranHigh bool

	lowID, _ := k.CreateTask("low", func(*TaskContext) { ranLow = true })
	highID, _ := k.CreateTask("high", func(*TaskContext) { ranHigh = true })
	k.tasks[lowID].Priority = 5
	k.tasks[highID].Priority = 20

	k.Schedule()

	if ranHigh == false || ranLow == true {
		t.Fatalf("expected only the higher-priority task to run, ranLow=%v ranHigh=%v", ranLow, ranHigh)
	}
	if k.CurrentTask() != highID {
		t.Fatalf("CurrentTask = %d, want %d", k.CurrentTask(), highID)
	}
}

func TestSchedulerTieBreakLowestID(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(1))
	a, _ := k.CreateTask("a", func(*TaskContext) {})
	b, _ := k.CreateTask("b", func(*TaskContext) {})
	k.tasks[a].Priority = 10
	k.tasks[b].Priority = 10

	k.Schedule()

	if k.CurrentTask() != a {
		t.Fatalf("CurrentTask = %d, want lowest id %d", k.CurrentTask(), a)
	}
}

// TestSleepPrecedence is end-to-end scenario 1: create task X
// (priority 10) that sleeps 100ms on first run; tick 1 X runs and
// sleeps, tick 2 idle runs, tick 3 (now >= 100ms later) X runs again.
func TestSleepPrecedence(t *testing.T) {
	clock := hal.NewFakeClock(40)
	k := newTestKernel(clock)

	var runs int
	x, _ := k.CreateTask("x", func(ctx *TaskContext) {
		runs++
		if runs == 1 {
			ctx.Sleep(100)
		}
	})

	k.Schedule()
	if k.CurrentTask() != x || runs != 1 {
		t.Fatalf("tick1: current=%d runs=%d, want x running once", k.CurrentTask(), runs)
	}
	tk, _ := k.Task(x)
	if tk.State != Sleeping {
		t.Fatalf("tick1: x.State = %v, want SLEEPING", tk.State)
	}

	k.Schedule()
	if k.CurrentTask() != idleTaskID {
		t.Fatalf("tick2: current=%d, want idle", k.CurrentTask())
	}

	k.Schedule()
	if k.CurrentTask() != x || runs != 2 {
		t.Fatalf("tick3: current=%d runs=%d, want x running again", k.CurrentTask(), runs)
	}
}

// TestWatchdogNonDestructive covers the watchdog law: a forced
// transition leaves the task non-EMPTY and reachable on future ticks.
func TestWatchdogNonDestructive(t *testing.T) {
	clock := hal.NewFakeClock(0)
	k := newTestKernel(clock)

	hung, _ := k.CreateTask("hung", func(*TaskContext) {})
	k.tasks[hung].Priority = 50
	k.Schedule()
	if k.CurrentTask() != hung {
		t.Fatalf("current=%d, want hung task running", k.CurrentTask())
	}

	clock.Advance(WatchdogTimeoutMS + watchdogPeriodMS + 1)
	k.checkWatchdog()

	tk, ok := k.Task(hung)
	if !ok || tk.State == Empty {
		t.Fatal("watchdog must not kill the task")
	}
	if tk.State != Ready {
		t.Fatalf("State after watchdog = %v, want READY", tk.State)
	}
}

// TestNonYieldingTaskAlternatesWithIdle covers the READY-only
// reselection rule: a task that never calls Yield/Sleep does not
// monopolize the CPU. It loses eligibility the instant the next tick
// starts and only runs again once it out-competes idle for the READY
// slot on the tick after that.
func TestNonYieldingTaskAlternatesWithIdle(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(1))
	var runs int
	x, _ := k.CreateTask("x", func(*TaskContext) { runs++ })
	k.tasks[x].Priority = 5

	k.Schedule()
	if k.CurrentTask() != x || runs != 1 {
		t.Fatalf("tick1: current=%d runs=%d, want x running once", k.CurrentTask(), runs)
	}

	k.Schedule()
	if k.CurrentTask() != idleTaskID {
		t.Fatalf("tick2: current=%d, want idle (x must lose eligibility without yielding)", k.CurrentTask())
	}
	tk, _ := k.Task(x)
	if tk.State != Ready {
		t.Fatalf("tick2: x.State = %v, want READY (demoted, not still RUNNING)", tk.State)
	}

	k.Schedule()
	if k.CurrentTask() != x || runs != 2 {
		t.Fatalf("tick3: current=%d runs=%d, want x running again", k.CurrentTask(), runs)
	}
}

// TestWatchdogForcedDemotionIsReselected is the end-to-end complement
// of TestWatchdogNonDestructive: once the watchdog forces a hung task
// back to READY, the very next Schedule() can actually pick it up
// again, since READY-only reselection no longer special-cases the
// incumbent.
func TestWatchdogForcedDemotionIsReselected(t *testing.T) {
	clock := hal.NewFakeClock(0)
	k := newTestKernel(clock)

	hung, _ := k.CreateTask("hung", func(*TaskContext) {})
	k.tasks[hung].Priority = 50
	k.Schedule()
	if k.CurrentTask() != hung {
		t.Fatalf("current=%d, want hung task running", k.CurrentTask())
	}

	clock.Advance(WatchdogTimeoutMS + watchdogPeriodMS + 1)
	k.Schedule()

	tk, _ := k.Task(hung)
	if tk.State != Running || k.CurrentTask() != hung {
		t.Fatalf("after watchdog-forced reschedule: state=%v current=%d, want hung RUNNING again", tk.State, k.CurrentTask())
	}
}

func TestInvariantExactlyOneRunning(t *testing.T) {
	k := newTestKernel(hal.NewFakeClock(1))
	k.CreateTask("a", func(*TaskContext) {})
	k.CreateTask("b", func(*TaskContext) {})

	for i := 0; i < 5; i++ {
		k.Schedule()
		running := 0
		for id := 0; id < T; id++ {
			if k.tasks[id].State == Running {
				running++
				if TaskID(id) != k.CurrentTask() {
					t.Fatalf("running slot %d does not match CurrentTask %d", id, k.CurrentTask())
				}
			}
		}
		if running != 1 {
			t.Fatalf("tick %d: %d tasks RUNNING, want exactly 1", i, running)
		}
	}
}
