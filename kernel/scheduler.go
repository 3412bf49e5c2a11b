package kernel

// Scheduler owns the task table and decides which task runs next.
//
// current is the task whose state is loaded in the CPU. next is a hand-off
// value written by ScheduleNext (or SetNext) and consumed by CommitSwitch; a
// second selection before a commit simply overwrites it.
//
// A Scheduler is shared between normal and interrupt context. Wrap it in a
// Shared and only touch it through Shared.Do and Shared.Preempt.
type Scheduler struct {
	tasks   TaskTable
	current int
	next    int
}

// New creates a scheduler over a fully initialized task table. Task 0 is the
// task that is live when the scheduler is created.
func New(tasks TaskTable) *Scheduler {
	return &Scheduler{tasks: tasks}
}

// Len returns the number of task slots.
func (s *Scheduler) Len() int { return len(s.tasks) }

// CurrentIndex returns the index of the task loaded in the CPU.
func (s *Scheduler) CurrentIndex() int { return s.current }

// NextIndex returns the last selected index.
func (s *Scheduler) NextIndex() int { return s.next }

// Current returns the task loaded in the CPU.
func (s *Scheduler) Current() *Task {
	s.checkIndex("current", s.current)
	return &s.tasks[s.current]
}

// Task returns the i-th task record.
func (s *Scheduler) Task(i int) *Task {
	s.checkIndex("task", i)
	return &s.tasks[i]
}

// SetNext selects task i explicitly, bypassing the round-robin policy.
func (s *Scheduler) SetNext(i int) {
	s.checkIndex("next", i)
	s.next = i
}

// ScheduleNext picks the next task and reports whether a switch is needed.
//
// The scan starts right after the current task and walks forward cyclically,
// skipping blocked tasks, until it finds a runnable one or comes back to the
// current task. When every other task is blocked it returns false, even if
// the current task is blocked too; see Stalled.
//
// Only next is written.
func (s *Scheduler) ScheduleNext() bool {
	n := len(s.tasks)
	s.next = s.current
	for {
		s.next = (s.next + 1) % n
		if s.next == s.current || !s.tasks[s.next].Blocked {
			break
		}
	}
	return s.next != s.current
}

// Stalled reports whether the current task is blocked and no other task is
// runnable, i.e. there is nothing that may legitimately use the CPU.
func (s *Scheduler) Stalled() bool {
	if !s.tasks[s.current].Blocked {
		return false
	}
	for i := range s.tasks {
		if !s.tasks[i].Blocked {
			return false
		}
	}
	return true
}

// CommitSwitch hands the CPU from the current task to the selected one.
//
// in is the frame captured when the current task was preempted. Its
// instruction pointer, stack pointer and flags are saved into the current
// task; then the selected task becomes current and a pointer to its saved
// frame is returned for the interrupt return path to resume from.
//
// CommitSwitch does not select and does not touch general-purpose registers:
// the caller must save the outgoing task's registers into its Task.Registers
// before the call and load the incoming task's Task.Registers after it (see
// Shared.Preempt and RegisterFile).
func (s *Scheduler) CommitSwitch(in Frame) *SavedFrame {
	s.checkIndex("current", s.current)
	s.checkIndex("next", s.next)

	s.tasks[s.current].Frame.Load(in)
	next := &s.tasks[s.next].Frame
	s.current = s.next
	return next
}

func (s *Scheduler) checkIndex(what string, i int) {
	if i < 0 || i >= len(s.tasks) {
		cur := s.current
		if cur < 0 || cur >= len(s.tasks) {
			cur = -1
		}
		Fatalf(cur, "%s task index %d out of range [0,%d)", what, i, len(s.tasks))
	}
}
