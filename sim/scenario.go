package sim

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"kestrel/kernel"

	"gopkg.in/yaml.v3"
)

// Action changes a task's eligibility from normal context.
type Action string

const (
	ActionBlock   Action = "block"
	ActionUnblock Action = "unblock"
)

// Event is a scheduled normal-context change applied before a tick runs.
type Event struct {
	Tick   uint64 `yaml:"tick"`
	Task   int    `yaml:"task"`
	Action Action `yaml:"action"`
}

// StackSpec is a task stack in a scenario file.
type StackSpec struct {
	Bottom uint64 `yaml:"bottom"`
	Top    uint64 `yaml:"top"`
}

// TaskSpec describes one task-table slot.
type TaskSpec struct {
	Name    string    `yaml:"name"`
	Entry   uint64    `yaml:"entry"`
	Stack   StackSpec `yaml:"stack"`
	Blocked bool      `yaml:"blocked"`
}

// Scenario is a replayable task table plus the blocking events applied to it.
// It plays the task-table initialization collaborator: it decides names,
// stacks, first frames and initial eligibility before the scheduler runs.
type Scenario struct {
	Name   string     `yaml:"name"`
	Ticks  uint64     `yaml:"ticks"`
	Tasks  []TaskSpec `yaml:"tasks"`
	Events []Event    `yaml:"events"`
}

var (
	ErrTaskCount   = errors.New("wrong number of tasks")
	ErrTaskName    = errors.New("task has no name")
	ErrEntry       = errors.New("entry point outside address space")
	ErrEventTask   = errors.New("event names unknown task")
	ErrEventAction = errors.New("unknown event action")
)

// DefaultScenario is three runnable tasks with a block/unblock cycle on
// task 1 and a stretch where every task is blocked.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name:  "default",
		Ticks: 24,
		Tasks: []TaskSpec{
			{Name: "init", Entry: 0x100000, Stack: StackSpec{Bottom: 0x200000, Top: 0x203fff}},
			{Name: "shell", Entry: 0x110000, Stack: StackSpec{Bottom: 0x204000, Top: 0x207fff}},
			{Name: "net", Entry: 0x120000, Stack: StackSpec{Bottom: 0x208000, Top: 0x20bfff}},
		},
		Events: []Event{
			{Tick: 4, Task: 1, Action: ActionBlock},
			{Tick: 9, Task: 1, Action: ActionUnblock},
			{Tick: 12, Task: 0, Action: ActionBlock},
			{Tick: 12, Task: 1, Action: ActionBlock},
			{Tick: 12, Task: 2, Action: ActionBlock},
			{Tick: 16, Task: 2, Action: ActionUnblock},
			{Tick: 18, Task: 0, Action: ActionUnblock},
			{Tick: 18, Task: 1, Action: ActionUnblock},
		},
	}
}

// LoadScenario decodes and validates a YAML scenario.
func LoadScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadScenarioFile reads a scenario from path.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario %q: %w", path, err)
	}
	defer f.Close()

	sc, err := LoadScenario(f)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", path, err)
	}
	return sc, nil
}

// Validate checks that the scenario describes a usable task table.
func (sc *Scenario) Validate() error {
	if len(sc.Tasks) != kernel.NumTasks {
		return fmt.Errorf("%w: got %d, want %d", ErrTaskCount, len(sc.Tasks), kernel.NumTasks)
	}
	for i, ts := range sc.Tasks {
		if strings.TrimSpace(ts.Name) == "" {
			return fmt.Errorf("task %d: %w", i, ErrTaskName)
		}
		if uint64(uintptr(ts.Entry)) != ts.Entry {
			return fmt.Errorf("task %d (%s): %w: 0x%x", i, ts.Name, ErrEntry, ts.Entry)
		}
		if _, err := ts.stack(); err != nil {
			return fmt.Errorf("task %d (%s): %w", i, ts.Name, err)
		}
	}
	for i, ev := range sc.Events {
		if ev.Task < 0 || ev.Task >= kernel.NumTasks {
			return fmt.Errorf("event %d: %w: %d", i, ErrEventTask, ev.Task)
		}
		switch ev.Action {
		case ActionBlock, ActionUnblock:
		default:
			return fmt.Errorf("event %d: %w: %q", i, ErrEventAction, ev.Action)
		}
	}
	return nil
}

func (ts TaskSpec) stack() (kernel.Stack, error) {
	bottom, top := uintptr(ts.Stack.Bottom), uintptr(ts.Stack.Top)
	if uint64(bottom) != ts.Stack.Bottom || uint64(top) != ts.Stack.Top {
		return kernel.Stack{}, fmt.Errorf("stack 0x%x..0x%x outside address space", ts.Stack.Bottom, ts.Stack.Top)
	}
	return kernel.NewStack(bottom, top)
}

// Table builds the initial task table. Every task starts at its entry point
// with the stack pointer at the 16-byte aligned top of its stack, interrupts
// enabled and zeroed registers.
func (sc *Scenario) Table() (kernel.TaskTable, error) {
	var tt kernel.TaskTable
	if err := sc.Validate(); err != nil {
		return tt, err
	}
	for i, ts := range sc.Tasks {
		st, err := ts.stack()
		if err != nil {
			return tt, err
		}
		tt[i] = kernel.Task{
			Name: ts.Name,
			Frame: kernel.SavedFrame{
				RIP:    uintptr(ts.Entry),
				RSP:    initialStackPointer(st),
				RFlags: InitialRFlags,
			},
			Stack:     st,
			Registers: kernel.EmptyRegisters(),
			Blocked:   ts.Blocked,
		}
	}
	return tt, nil
}

func initialStackPointer(st kernel.Stack) uintptr {
	sp := st.Top &^ 0xf
	if sp < st.Bottom {
		return st.Top
	}
	return sp
}
