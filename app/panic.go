package app

import (
	"strconv"

	"sparkcore/hal"
	"sparkcore/kernel"
)

// installPanicHandler registers the default panic handler: log the
// task, message, and stack frames to the diagnostic sink, then
// return; Run is what blocks forever once the kernel has panicked. This
// is the teacher's installPanicHandler stripped of everything that
// drew to a framebuffer — this kernel's panic surface is the
// diagnostic sink only, since display rendering is out of scope.
func installPanicHandler(k *kernel.Kernel, sink hal.Sink) {
	k.SetPanicHandler(func(info kernel.PanicInfo) {
		if sink == nil {
			return
		}
		sink.WriteLineString("spark panic: task=" + strconv.Itoa(int(info.TaskID)) + " msg=" + info.Message)
		for _, f := range info.Stack {
			sink.WriteLineString("  at " + f.Symbol)
		}
	})
}
