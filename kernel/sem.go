package kernel

// SemCreate picks the lowest free semaphore slot, recording the
// calling task as owner. Requires 0 <= initial <= max and max >= 1.
func (c *TaskContext) SemCreate(initial, max int, name string) (int, ErrKind) {
	if initial < 0 || initial > max || max < 1 {
		return -1, ErrInvalidParam
	}
	k := c.k
	for id := 0; id < S; id++ {
		if !k.sems[id].InUse {
			k.sems[id] = Semaphore{
				Value:    initial,
				MaxValue: max,
				InUse:    true,
				Owner:    c.id,
				Name:     name,
			}
			return id, OK
		}
	}
	return -1, ErrNoMemory
}

// SemWait spin-yields while value<=0, re-entering the scheduler so
// other tasks can run and post the semaphore. timeoutMs==0 waits
// indefinitely, matching spec.md's literal text (see DESIGN.md open
// question 2). Each internal step lets exactly one other task (or
// idle) run one tick; once the wait resolves — acquired or timed
// out — this restores the calling task as the sole RUNNING task
// before returning, since invariant 1 only has to hold once this
// syscall returns, not at every nested step in between.
func (c *TaskContext) SemWait(id int, timeoutMs uint32) ErrKind {
	k := c.k
	if id < 0 || id >= S || !k.sems[id].InUse {
		return ErrNotFound
	}

	start := k.now()

	for k.sems[id].Value <= 0 {
		if timeoutMs != 0 && elapsed(k.now(), start) >= timeoutMs {
			k.restoreRunning(c.id)
			return ErrTimeout
		}

		k.tasks[c.id].State = Blocked
		k.promoteSleepers()
		k.runOneTick()
	}

	k.sems[id].Value--
	k.restoreRunning(c.id)
	return OK
}

// restoreRunning makes id the sole RUNNING task again after a spell
// of internal scheduling driven by SemWait, demoting whatever other
// task last won an internal tick back to READY.
func (k *Kernel) restoreRunning(id TaskID) {
	if k.currentTask != id && k.tasks[k.currentTask].State == Running {
		k.tasks[k.currentTask].State = Ready
	}
	k.currentTask = id
	k.tasks[id].State = Running
}

// SemPost increments value unless it is already at max_value.
func (c *TaskContext) SemPost(id int) ErrKind {
	k := c.k
	if id < 0 || id >= S || !k.sems[id].InUse {
		return ErrNotFound
	}
	if k.sems[id].Value == k.sems[id].MaxValue {
		return ErrInvalidParam
	}
	k.sems[id].Value++
	return OK
}

// SemDestroy is permitted only for the semaphore's creator or task 0.
func (c *TaskContext) SemDestroy(id int) ErrKind {
	k := c.k
	if id < 0 || id >= S {
		return ErrInvalidParam
	}
	if !k.sems[id].InUse {
		return ErrNotFound
	}
	if k.sems[id].Owner != c.id && c.id != idleTaskID {
		return ErrPermission
	}
	k.sems[id] = Semaphore{}
	return OK
}
