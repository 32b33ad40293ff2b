package kernel

// CreateTask allocates the lowest free slot with id >= 1, in state
// READY, priority 10, default permissions {SD, DISPLAY, GPIO}, and a
// single captured stack frame for the entry point, whose symbol is
// the task's name (no address is recorded). Returns
// ErrNoMemory if every slot is occupied.
func (k *Kernel) CreateTask(name string, entry EntryPoint) (TaskID, ErrKind) {
	for id := 1; id < T; id++ {
		if k.tasks[id].State == Empty {
			now := k.now()
			k.tasks[id] = Task{
				ID:          TaskID(id),
				Name:        name,
				State:       Ready,
				Entry:       entry,
				Priority:    defaultPriority,
				Permissions: defaultPermissions,
				LastYield:   now,
				LastRun:     now,
			}
			k.tasks[id].stack[0] = Frame{Symbol: name}
			k.tasks[id].stackLen = 1
			return TaskID(id), OK
		}
	}
	return 0, ErrNoMemory
}

// KillTask is idempotent for an already-EMPTY or out-of-range id, and
// rejected for id 0 (the idle task can never be killed). It closes
// every file and directory handle the task owns, sweeps the task's
// still-in-use heap blocks (see DESIGN.md open question 1), releases
// semaphores it created that have no other possible owner, then
// marks the slot EMPTY.
func (k *Kernel) KillTask(id TaskID) ErrKind {
	if id == idleTaskID {
		return ErrInvalidParam
	}
	if int(id) >= T || k.tasks[id].State == Empty {
		return OK
	}

	for h := 0; h < F; h++ {
		if k.tasks[id].FileHandles[h] {
			k.closeFile(id, h)
		}
	}
	for h := 0; h < D; h++ {
		if k.tasks[id].DirHandles[h] {
			k.closeDir(id, h)
		}
	}

	k.sweepOwnedBy(id)

	for s := 0; s < S; s++ {
		if k.sems[s].InUse && k.sems[s].Owner == id {
			k.sems[s].InUse = false
		}
	}

	if k.currentTask == id {
		k.currentTask = idleTaskID
	}
	k.tasks[id] = Task{State: Empty}
	return OK
}

// Yield moves the current task back to READY and stamps last_yield.
// Control returns to the scheduler on its next tick.
func (c *TaskContext) Yield() {
	k := c.k
	k.tasks[c.id].State = Ready
	k.tasks[c.id].LastYield = k.now()
}

// Sleep moves the current task to SLEEPING until now()+ms.
func (c *TaskContext) Sleep(ms uint32) {
	k := c.k
	now := k.now()
	k.tasks[c.id].State = Sleeping
	k.tasks[c.id].SleepUntil = now + ms
	k.tasks[c.id].LastYield = now
}

// Schedule runs one tick: check the watchdog, promote woken sleepers,
// pick the highest-priority READY task (ties go to the lowest id),
// and invoke its entry point exactly once. A kernel that has already
// panicked refuses further ticks.
func (k *Kernel) Schedule() {
	if k.panicked {
		return
	}

	k.checkWatchdog()
	k.promoteSleepers()
	k.runOneTick()
}

// promoteSleepers moves every SLEEPING task whose deadline has
// passed back to READY. The comparison is wrap-safe: now-sleepUntil
// underflows to a value >= 2^31 when sleepUntil is still in the
// future, which this treats as "not yet due".
func (k *Kernel) promoteSleepers() {
	now := k.now()
	for id := 0; id < T; id++ {
		t := &k.tasks[id]
		if t.State == Sleeping && now-t.SleepUntil < 1<<31 {
			t.State = Ready
		}
	}
}

// runOneTick performs scheduler steps 3-5 of spec.md §4.1 in
// isolation from the watchdog/sleep-wake steps, so SemWait's internal
// recursive stepping (kernel/sem.go) can re-enter scheduling without
// re-running check_watchdog or the sleep sweep on every nested step.
func (k *Kernel) runOneTick() {
	if k.panicked {
		return
	}

	// Only READY tasks are candidates, matching "choose the slot with
	// maximum priority among READY" literally: a task that is still
	// RUNNING because it never called Yield/Sleep is excluded from its
	// own tick's selection, the same way any other non-READY task is.
	// It is demoted to READY below only once something else actually
	// wins the slot, so it competes for the CPU like everyone else
	// starting next tick instead of monopolizing it.
	chosen := idleTaskID
	bestPriority := -1
	for id := 0; id < T; id++ {
		t := &k.tasks[id]
		if t.State != Ready {
			continue
		}
		if t.Priority > bestPriority {
			bestPriority = t.Priority
			chosen = TaskID(id)
		}
	}

	if chosen != k.currentTask {
		if k.tasks[k.currentTask].State == Running {
			k.tasks[k.currentTask].State = Ready
		}
		k.currentTask = chosen
	}
	k.tasks[chosen].State = Running
	k.tasks[chosen].LastRun = k.now()

	entry := k.tasks[chosen].Entry
	if entry != nil {
		entry(k.newContext(chosen))
	}
}

// checkWatchdog fires at most once per >=1000ms of wall time. Any
// non-EMPTY, non-SLEEPING task that has not yielded in
// WatchdogTimeoutMS is forced RUNNING->READY with last_yield reset,
// and a diagnostic line is emitted. The watchdog never kills a task.
func (k *Kernel) checkWatchdog() {
	now := k.now()
	if elapsed(now, k.lastWatchdog) < watchdogPeriodMS {
		return
	}
	k.lastWatchdog = now

	for id := 0; id < T; id++ {
		t := &k.tasks[id]
		if t.State == Empty || t.State == Sleeping {
			continue
		}
		if elapsed(now, t.LastYield) > WatchdogTimeoutMS {
			t.State = Ready
			t.LastYield = now
			k.diagSink().WriteLineString("kernel: watchdog forced task " + t.Name + " back to READY")
		}
	}
}
