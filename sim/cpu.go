package sim

import "kestrel/kernel"

// Workload is what a task does with one quantum of CPU time.
type Workload func(c *CPU)

// CountingWorkload advances the instruction pointer by one 4-byte
// instruction and counts quanta in RAX.
func CountingWorkload(c *CPU) {
	c.Frame.RIP += 4
	c.Regs.RAX++
}

// CPU is the live state of the single simulated core: the frame the
// trampoline would capture on the next interrupt and the general-purpose
// registers. It is the kernel.RegisterFile handed to Shared.Preempt.
type CPU struct {
	Frame  InterruptFrame
	Regs   kernel.Registers
	halted bool
	quanta uint64
}

var _ kernel.RegisterFile = (*CPU)(nil)

func (c *CPU) SaveTo(r *kernel.Registers)   { *r = c.Regs }
func (c *CPU) LoadFrom(r *kernel.Registers) { c.Regs = *r }

// Halted reports whether the CPU is parked waiting for an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// Quanta returns the number of quanta executed since reset.
func (c *CPU) Quanta() uint64 { return c.quanta }

// Run executes one quantum of the live task. A parked CPU does nothing.
func (c *CPU) Run(w Workload) {
	if c.halted || w == nil {
		return
	}
	w(c)
	c.quanta++
}
