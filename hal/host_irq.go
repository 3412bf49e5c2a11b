//go:build !tinygo

package hal

import "kestrel/kernel"

// FlagIRQ emulates the interrupt-enable flag of a single-core CPU.
//
// Host runners deliver the timer interrupt on the same goroutine that runs
// normal-context code, so the flag only has to track masking. An interrupt
// raised while masked is dropped and counted.
type FlagIRQ struct {
	enabled bool
	missed  uint64
}

// NewFlagIRQ returns a controller with interrupts enabled.
func NewFlagIRQ() *FlagIRQ {
	return &FlagIRQ{enabled: true}
}

func (c *FlagIRQ) Disable() kernel.IRQState {
	prev := c.enabled
	c.enabled = false
	if prev {
		return 1
	}
	return 0
}

func (c *FlagIRQ) Restore(state kernel.IRQState) {
	c.enabled = state != 0
}

// Enabled reports the emulated interrupt-enable flag.
func (c *FlagIRQ) Enabled() bool { return c.enabled }

// Missed returns the number of interrupts dropped while masked.
func (c *FlagIRQ) Missed() uint64 { return c.missed }

// Deliver runs handler as an interrupt if interrupts are enabled. Interrupts
// stay masked for the duration of the handler.
func (c *FlagIRQ) Deliver(handler func()) bool {
	if !c.enabled {
		c.missed++
		return false
	}
	c.enabled = false
	defer func() { c.enabled = true }()
	handler()
	return true
}
