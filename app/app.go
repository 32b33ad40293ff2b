// Package app wires a kernel.Kernel to a board's concrete hal/extfs
// implementations and drives its scheduler loop, the way the teacher's
// app package wires services and display/input drivers to a kernel.
package app

import (
	"fmt"

	"sparkcore/kernel"
)

// System is the running kernel plus the board wiring it was built
// with. Boot code constructs one and calls Run, which blocks forever
// driving Schedule — the bare-metal equivalent of the teacher's
// select{} after starting its tick-forwarding goroutine.
type System struct {
	Kernel *kernel.Kernel
}

// Config selects optional boot-time behavior. Board files (main_host.go,
// main_tinygo.go) fill in the hal/extfs implementations; Config only
// carries choices that are not implied by the board itself.
type Config struct {
	// BootTasks are created in order immediately after the kernel is
	// constructed, before the scheduler loop starts.
	BootTasks []BootTask
}

// BootTask names one task to create at boot.
type BootTask struct {
	Name  string
	Entry kernel.EntryPoint
}

// New constructs a kernel from deps, installs the default panic
// handler (installPanicHandler), creates every configured boot task,
// and returns the assembled System without starting the scheduler
// loop — callers that want to drive ticks themselves (tests, a host
// simulation harness) can call System.Kernel.Schedule() directly
// instead of System.Run.
func New(deps kernel.Deps, cfg Config) (*System, error) {
	k := kernel.New(deps)
	installPanicHandler(k, deps.Sink)

	for _, bt := range cfg.BootTasks {
		if _, err := k.CreateTask(bt.Name, bt.Entry); err != kernel.OK {
			return nil, fmt.Errorf("create boot task %q: %s", bt.Name, err)
		}
	}

	return &System{Kernel: k}, nil
}

// Run drives the scheduler forever, calling Schedule in a tight loop
// until the kernel panics. On the host build the caller usually wants
// to pace this against a real or fake clock instead (main_host.go
// does); on TinyGo, main_tinygo.go calls Run directly from the reset
// handler with no return path.
func Run(sys *System) {
	for {
		sys.Kernel.Schedule()
		if sys.Kernel.Panicked() {
			select {}
		}
	}
}
