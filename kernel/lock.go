package kernel

import "sync/atomic"

// IRQState is the interrupt-enable state returned by IRQ.Disable.
type IRQState uintptr

// IRQ masks and restores interrupts on the local CPU.
type IRQ interface {
	Disable() IRQState
	Restore(state IRQState)
}

// spinLock guards scheduler state against re-entry from interrupt context.
//
// There is one hardware context and every holder runs with interrupts masked,
// so a failed acquire can only mean the holder was re-entered. Waiting would
// deadlock the CPU; the acquire fails the kernel instead.
type spinLock struct {
	_    [0]func() // prevent accidental copying.
	held atomic.Bool
}

func (l *spinLock) lock(task int) {
	if !l.held.CompareAndSwap(false, true) {
		Fatalf(task, "scheduler lock re-entered")
	}
}

func (l *spinLock) unlock(task int) {
	if !l.held.CompareAndSwap(true, false) {
		Fatalf(task, "scheduler lock released while not held")
	}
}

func (l *spinLock) locked() bool {
	return l.held.Load()
}
