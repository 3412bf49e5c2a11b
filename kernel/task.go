package kernel

// NumTasks is the fixed size of the task table.
const NumTasks = 3

// Task is the complete schedulable state of one task.
//
// Fields are independent: the switch path writes Frame only. Registers are
// written by the trampoline through a RegisterFile, Blocked by normal-context
// code such as synchronization primitives.
type Task struct {
	Name      string
	Frame     SavedFrame
	Stack     Stack
	Registers Registers
	Blocked   bool
}

// Runnable reports whether the task may be selected.
func (t *Task) Runnable() bool { return !t.Blocked }

// TaskTable is the fixed set of tasks known to the scheduler.
type TaskTable [NumTasks]Task
