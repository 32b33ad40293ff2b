package kernel

import (
	"sparkcore/extfs"
	"sparkcore/hal"
)

// TaskID identifies a task slot, 0 <= id < T. Slot 0 is always the
// idle task.
type TaskID uint8

// TaskState is a task slot's lifecycle state.
type TaskState uint8

const (
	Empty TaskState = iota
	Ready
	Running
	Sleeping
	Blocked
	Zombie
)

func (s TaskState) String() string {
	switch s {
	case Empty:
		return "EMPTY"
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Sleeping:
		return "SLEEPING"
	case Blocked:
		return "BLOCKED"
	case Zombie:
		return "ZOMBIE"
	default:
		return "UNKNOWN"
	}
}

// Permission is a bitmask of capabilities a task may be granted,
// checked at syscall entry. Grounded on the teacher's Rights bitmask
// (RightSend/RightRecv).
type Permission uint16

const (
	PermSD Permission = 1 << iota
	PermDisplay
	PermCreateTask
	PermGPIO
	PermI2C
	PermSPI
)

// defaultPermissions matches spec.md §4.1's create_task default set.
const defaultPermissions = PermSD | PermDisplay | PermGPIO

// EntryPoint is one task's cooperative step function. The scheduler
// calls it at most once per schedule() tick; a well-behaved entry
// point does a bounded amount of work and returns, relying on ctx or
// its own closure state to resume where it left off next time it is
// invoked. Grounded on the re-architecture guidance in spec.md §9:
// "pass context explicitly instead of relying on implicit
// current-task lookup."
type EntryPoint func(ctx *TaskContext)

// Frame is one bounded stack-trace record, captured only for panic
// dumps (spec.md §3's stack_trace field). There is no real stack
// unwinder on bare-metal TinyGo, so frames are pushed by convention:
// CreateTask records one frame (the entry point, labeled with the
// task's name) when a task is created, and tasks may push additional frames around nested calls
// they want visible in a panic dump.
type Frame struct {
	Addr   uintptr
	Symbol string
}

const maxStackFrames = 8

// Task is one task table row (spec.md §3).
type Task struct {
	ID    TaskID
	Name  string
	State TaskState
	Entry EntryPoint

	Priority int

	SleepUntil uint32
	LastRun    uint32
	LastYield  uint32

	MemoryUsed uint32

	FileHandles [F]bool
	DirHandles  [D]bool

	Permissions Permission

	stack    [maxStackFrames]Frame
	stackLen int
}

// Has reports whether the task holds every bit set in p.
func (t *Task) Has(p Permission) bool {
	return t.Permissions&p == p
}

// Message is one IPC envelope (spec.md §3).
type Message struct {
	From      TaskID
	To        TaskID
	Length    int
	Payload   [P]byte
	Timestamp uint32
	Valid     bool
}

// ring is one task's bounded FIFO of pending messages.
type ring struct {
	slots [Q]Message
	head  int
	tail  int
	count int
}

// Semaphore is one counting semaphore slot (spec.md §3).
type Semaphore struct {
	Value    int
	MaxValue int
	InUse    bool
	Owner    TaskID
	Name     string
}

// FileHandle is one open-file resource row (spec.md §3).
type FileHandle struct {
	Object   extfs.Object
	Owner    TaskID
	InUse    bool
	CanWrite bool
}

// DirHandle is one open-directory resource row.
type DirHandle struct {
	Object extfs.Object
	Owner  TaskID
	InUse  bool
}

// ErrKind is one of spec.md §7's syscall error kinds, always a
// negative int32 at the syscall boundary.
type ErrKind int32

const (
	OK ErrKind = 0

	ErrInvalidCall  ErrKind = -1
	ErrPermission   ErrKind = -2
	ErrNoMemory     ErrKind = -3
	ErrNotFound     ErrKind = -4
	ErrIOError      ErrKind = -5
	ErrInvalidParam ErrKind = -6
	ErrTimeout      ErrKind = -7
	ErrWouldBlock   ErrKind = -8
)

func (e ErrKind) String() string {
	switch e {
	case OK:
		return "ok"
	case ErrInvalidCall:
		return "invalid_call"
	case ErrPermission:
		return "permission"
	case ErrNoMemory:
		return "no_memory"
	case ErrNotFound:
		return "not_found"
	case ErrIOError:
		return "io_error"
	case ErrInvalidParam:
		return "invalid_param"
	case ErrTimeout:
		return "timeout"
	case ErrWouldBlock:
		return "would_block"
	default:
		return "unknown"
	}
}

// Ptr is an arena offset returned by Alloc. The zero value is the
// null pointer: valid payload offsets are always >= headerSize.
type Ptr uint32

// compile-time interface assertions that hal's interfaces are the
// ones kernel depends on, so a broken hal edit fails here first.
var (
	_ hal.Clock = (*nopClock)(nil)
	_ hal.Sink  = (*nopSink)(nil)
)

type nopClock struct{ v uint32 }

func (c *nopClock) Now() uint32 { return c.v }

type nopSink struct{}

func (nopSink) WriteLineString(string) {}
func (nopSink) WriteLineBytes([]byte)  {}
