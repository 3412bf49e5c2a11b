package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"kestrel/kernel"

	"github.com/golang-collections/collections/queue"
	"github.com/google/uuid"
)

// IRQ is the interrupt controller the machine delivers the timer through.
// hal.IRQ satisfies it.
type IRQ interface {
	kernel.IRQ
	Deliver(handler func()) bool
}

// Trace records one tick.
type Trace struct {
	Run       uuid.UUID
	Tick      uint64
	From      int
	To        int
	Delivered bool
	Outcome   kernel.Outcome
	Resumed   kernel.SavedFrame
	Halted    bool
}

func (tr Trace) String() string {
	if !tr.Delivered {
		return fmt.Sprintf("tick %d: interrupt masked, task %d keeps the cpu", tr.Tick, tr.From)
	}
	s := fmt.Sprintf("tick %d: %d -> %d %s %v", tr.Tick, tr.From, tr.To, tr.Outcome, tr.Resumed)
	if tr.Halted {
		s += " (cpu parked)"
	}
	return s
}

// Machine is a single-core system running the scheduler: a CPU, the
// interrupt trampoline, the shared scheduler and the scenario's pending
// normal-context events.
type Machine struct {
	ID uuid.UUID

	sh    *kernel.Shared
	irq   IRQ
	cpu   *CPU
	tramp *Trampoline
	work  [kernel.NumTasks]Workload

	pending *queue.Queue
	tick    uint64
	stalled bool
	log     *slog.Logger
}

// NewMachine builds the task table from sc and loads task 0 into the CPU.
// The machine must be booted before it is stepped.
func NewMachine(sc *Scenario, irq IRQ, log *slog.Logger) (*Machine, error) {
	if irq == nil {
		return nil, fmt.Errorf("new machine: nil irq controller")
	}
	tt, err := sc.Table()
	if err != nil {
		return nil, fmt.Errorf("new machine: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	cpu := &CPU{Regs: tt[0].Registers}
	tt[0].Frame.Store(&cpu.Frame)
	cpu.Frame.CS = kernelCS
	cpu.Frame.SS = kernelSS

	sh := kernel.NewShared(kernel.New(tt), irq)
	m := &Machine{
		ID:      uuid.New(),
		sh:      sh,
		irq:     irq,
		cpu:     cpu,
		tramp:   NewTrampoline(sh, cpu),
		pending: queue.New(),
	}
	m.log = log.With("run", m.ID.String()[:8], "scenario", sc.Name)
	for i := range m.work {
		m.work[i] = CountingWorkload
	}

	events := append([]Event(nil), sc.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Tick < events[j].Tick })
	for _, ev := range events {
		m.pending.Enqueue(ev)
	}
	return m, nil
}

// Boot performs the task-state bring-up through l.
func (m *Machine) Boot(l kernel.TaskStateLoader) error {
	if err := m.sh.Boot(l); err != nil {
		return fmt.Errorf("boot machine: %w", err)
	}
	m.log.Info("booted", "tasks", kernel.NumTasks)
	return nil
}

// SetWorkload replaces what task i does with its quanta.
func (m *Machine) SetWorkload(i int, w Workload) error {
	if i < 0 || i >= len(m.work) {
		return fmt.Errorf("set workload: task %d out of range", i)
	}
	m.work[i] = w
	return nil
}

// CPU returns the simulated core.
func (m *Machine) CPU() *CPU { return m.cpu }

// Tick returns the number of ticks stepped so far.
func (m *Machine) Tick() uint64 { return m.tick }

// Stats returns the scheduler's preemption counters.
func (m *Machine) Stats() kernel.Stats { return m.sh.Stats() }

// View runs fn in a normal-context critical section. fn must not keep
// pointers into the scheduler after it returns.
func (m *Machine) View(fn func(s *kernel.Scheduler)) {
	m.sh.Do(fn)
}

// Toggle flips the blocked flag of task i and returns the new value.
func (m *Machine) Toggle(i int) (bool, error) {
	if i < 0 || i >= kernel.NumTasks {
		return false, fmt.Errorf("toggle: task %d out of range", i)
	}
	var blocked bool
	m.sh.Do(func(s *kernel.Scheduler) {
		t := s.Task(i)
		t.Blocked = !t.Blocked
		blocked = t.Blocked
	})
	m.log.Info("toggled", "task", i, "blocked", blocked)
	return blocked, nil
}

// Step advances the machine by one tick: due events are applied in normal
// context, the live task runs one quantum, then the timer interrupt fires.
func (m *Machine) Step() Trace {
	m.tick++
	m.applyEvents()

	from := m.current()
	m.cpu.Run(m.work[from])

	tr := Trace{Run: m.ID, Tick: m.tick, From: from}
	tr.Delivered = m.irq.Deliver(func() {
		tr.Outcome = m.tramp.Interrupt()
	})
	tr.To = m.current()
	tr.Resumed = kernel.SavedFrame{
		RIP:    uintptr(m.cpu.Frame.RIP),
		RSP:    uintptr(m.cpu.Frame.RSP),
		RFlags: m.cpu.Frame.RFlags,
	}
	tr.Halted = m.cpu.Halted()

	m.logTrace(tr)
	return tr
}

// Run steps n ticks, stopping early if ctx is cancelled.
func (m *Machine) Run(ctx context.Context, n uint64) ([]Trace, error) {
	out := make([]Trace, 0, n)
	for i := uint64(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, m.Step())
	}
	return out, nil
}

func (m *Machine) current() int {
	var cur int
	m.sh.Do(func(s *kernel.Scheduler) { cur = s.CurrentIndex() })
	return cur
}

func (m *Machine) applyEvents() {
	for m.pending.Len() > 0 {
		ev := m.pending.Peek().(Event)
		if ev.Tick > m.tick {
			return
		}
		m.pending.Dequeue()
		m.sh.Do(func(s *kernel.Scheduler) {
			s.Task(ev.Task).Blocked = ev.Action == ActionBlock
		})
		m.log.Debug("event", "tick", m.tick, "task", ev.Task, "action", string(ev.Action))
	}
}

func (m *Machine) logTrace(tr Trace) {
	switch {
	case !tr.Delivered:
		m.log.Debug("interrupt masked", "tick", tr.Tick)
	case tr.Outcome == kernel.Switched:
		m.log.Info("switch", "tick", tr.Tick, "from", tr.From, "to", tr.To, "rip", fmt.Sprintf("0x%x", tr.Resumed.RIP))
	case tr.Outcome == kernel.Stalled:
		if !m.stalled {
			m.log.Warn("all tasks blocked, cpu parked", "tick", tr.Tick, "task", tr.To)
		}
	default:
		m.log.Debug("resume", "tick", tr.Tick, "task", tr.To)
	}
	if tr.Delivered {
		m.stalled = tr.Outcome == kernel.Stalled
	}
}
