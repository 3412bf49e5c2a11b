package sim

import "kestrel/kernel"

// Trampoline plays the interrupt entry and return path: capture the frame,
// hand it to the scheduler, then resume whatever the scheduler returns.
type Trampoline struct {
	sh  *kernel.Shared
	cpu *CPU
}

// NewTrampoline binds the scheduler to the CPU it preempts.
func NewTrampoline(sh *kernel.Shared, cpu *CPU) *Trampoline {
	return &Trampoline{sh: sh, cpu: cpu}
}

// Interrupt is the timer interrupt handler. It must run with interrupts
// masked (see hal.IRQ.Deliver).
//
// On Stalled the CPU parks on the blocked task's frame instead of resuming
// it; the next interrupt that finds a runnable task unparks it.
func (t *Trampoline) Interrupt() kernel.Outcome {
	captured := t.cpu.Frame
	out, outcome := t.sh.Preempt(&captured, t.cpu)

	out.Store(&t.cpu.Frame)
	t.cpu.Frame.CS = kernelCS
	t.cpu.Frame.SS = kernelSS
	t.cpu.halted = outcome == kernel.Stalled
	return outcome
}
