package kernel

// Compile-time sizing for the task table, handle tables, and IPC rings.
//
// These mirror board constants in a real embedded build: changing them
// changes the kernel's static memory footprint, not its behavior.
const (
	// T is the number of task slots. Slot 0 is always the idle task.
	T = 8
	// F is the number of file handle slots.
	F = 16
	// D is the number of directory handle slots.
	D = 4
	// Q is the number of message slots per task's ring.
	Q = 16
	// P is the maximum payload size, in bytes, of one message.
	P = 64
	// S is the number of semaphore slots.
	S = 8

	// WatchdogTimeoutMS is how long a task may run without yielding
	// before the watchdog forces it back to READY.
	WatchdogTimeoutMS = 5000

	// watchdogPeriodMS is the minimum wall-clock spacing between
	// watchdog sweeps.
	watchdogPeriodMS = 1000

	// idleTaskID is the reserved, unkillable task slot.
	idleTaskID = TaskID(0)

	// idlePriority and defaultPriority match spec.md's stated defaults.
	idlePriority    = 0
	defaultPriority = 10

	// headerSize is the encoded size, in bytes, of one arena block header.
	headerSize = 12
)
