package kernel

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	// ErrAlreadyBooted is returned by a second Shared.Boot.
	ErrAlreadyBooted = errors.New("task-state hardware already loaded")
	// ErrNoTaskState is returned when Boot is given no loader.
	ErrNoTaskState = errors.New("no task-state loader")
)

// Outcome describes what a timer preemption did.
type Outcome uint8

const (
	// Resumed means no other task was runnable; the current task continues.
	Resumed Outcome = iota
	// Switched means a different task is now current.
	Switched
	// Stalled means the current task is blocked and nothing else is
	// runnable. The interrupt subsystem must park the CPU instead of
	// resuming the returned frame.
	Stalled
)

func (o Outcome) String() string {
	switch o {
	case Resumed:
		return "resumed"
	case Switched:
		return "switched"
	case Stalled:
		return "stalled"
	default:
		return "unknown"
	}
}

// RegisterFile is the trampoline's view of the live general-purpose
// registers. SaveTo copies the CPU registers into r; LoadFrom copies r into
// the CPU registers. Both move the whole block.
type RegisterFile interface {
	SaveTo(r *Registers)
	LoadFrom(r *Registers)
}

// Stats counts preemptions since boot.
type Stats struct {
	Ticks    uint64
	Switches uint64
	Stalls   uint64
}

// Shared is the kernel-lifetime handle to the scheduler used by both
// normal-context code and the interrupt handler.
type Shared struct {
	irq    IRQ
	lock   spinLock
	s      *Scheduler
	booted atomic.Bool
	stats  Stats
}

// NewShared wraps s for use from both contexts. irq masks interrupts for
// normal-context critical sections.
func NewShared(s *Scheduler, irq IRQ) *Shared {
	if s == nil {
		Fatalf(-1, "shared scheduler: nil scheduler")
	}
	if irq == nil {
		Fatalf(-1, "shared scheduler: nil irq controller")
	}
	return &Shared{irq: irq, s: s}
}

// Boot runs the platform's task-state bring-up. It must succeed once before
// the first Preempt.
func (sh *Shared) Boot(l TaskStateLoader) error {
	if l == nil {
		return ErrNoTaskState
	}
	if sh.booted.Load() {
		return ErrAlreadyBooted
	}
	if err := l.LoadTaskState(); err != nil {
		return fmt.Errorf("load task state: %w", err)
	}
	sh.booted.Store(true)
	return nil
}

// Booted reports whether Boot has succeeded.
func (sh *Shared) Booted() bool {
	return sh.booted.Load()
}

// Do runs fn as a normal-context critical section: interrupts are masked and
// the scheduler lock is held for the duration. fn must not call Do or
// Preempt; re-entry is fatal.
func (sh *Shared) Do(fn func(s *Scheduler)) {
	state := sh.irq.Disable()
	defer sh.irq.Restore(state)

	sh.lock.lock(sh.s.current)
	defer sh.lock.unlock(sh.s.current)

	fn(sh.s)
}

// Stats returns a copy of the preemption counters.
func (sh *Shared) Stats() Stats {
	var st Stats
	sh.Do(func(*Scheduler) { st = sh.stats })
	return st
}

// Preempt is the timer interrupt's entry into the scheduler. It must be
// called from interrupt context, with interrupts already masked.
//
// in is the frame captured from the preempted task. rf, if non-nil, gives
// access to the live registers: they are saved into the outgoing task before
// the switch and loaded from the incoming task after it. A stack pointer
// outside the outgoing task's prepared stack is fatal. The returned frame is
// the one the interrupt return path must restore, unless the outcome is
// Stalled.
func (sh *Shared) Preempt(in Frame, rf RegisterFile) (*SavedFrame, Outcome) {
	s := sh.s
	if !sh.booted.Load() {
		Fatalf(s.current, "preempt before task-state bring-up")
	}

	sh.lock.lock(s.current)
	defer sh.lock.unlock(s.current)

	sh.stats.Ticks++
	cur := s.Current()
	if sp := in.StackPointer(); cur.Stack.Initialized() && !cur.Stack.Contains(sp) {
		Fatalf(s.current, "task %q stack pointer 0x%x outside stack %v", cur.Name, sp, cur.Stack)
	}
	if rf != nil {
		rf.SaveTo(&cur.Registers)
	}

	switched := s.ScheduleNext()
	out := s.CommitSwitch(in)

	if rf != nil {
		rf.LoadFrom(&s.Current().Registers)
	}

	switch {
	case switched:
		sh.stats.Switches++
		return out, Switched
	case s.Stalled():
		sh.stats.Stalls++
		return out, Stalled
	default:
		return out, Resumed
	}
}
