package kernel

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// PanicInfo describes the fatal condition that stopped the kernel.
type PanicInfo struct {
	// Task is the index of the task that was current, or -1 if unknown.
	Task  int
	Value any
	Stack []byte
}

var (
	panicActive atomic.Bool
	panicOnce   sync.Once

	panicHandler atomic.Value // func(PanicInfo)
)

// InPanicMode reports whether the kernel has hit a fatal condition.
func InPanicMode() bool {
	return panicActive.Load()
}

// SetPanicHandler installs a process-wide panic handler.
//
// The handler is invoked at most once (on the first fatal error). It must not
// panic and may never return.
func SetPanicHandler(fn func(PanicInfo)) {
	panicHandler.Store(fn)
}

// Fatalf stops the kernel. A task switch with corrupt state is never safer
// than halting, so every invariant violation ends here.
func Fatalf(task int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	triggerPanic(PanicInfo{Task: task, Value: msg})
	panic("kernel: " + msg)
}

func triggerPanic(info PanicInfo) {
	panicOnce.Do(func() {
		panicActive.Store(true)
		info.Stack = captureStack()
		if v := panicHandler.Load(); v != nil {
			if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
				fn(info)
			}
		}
	})
}
