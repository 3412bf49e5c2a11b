package kernel

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

// testFrame mimics an interrupt-subsystem frame with fields the scheduler
// must not see.
type testFrame struct {
	ip    uintptr
	cs    uint64
	flags uint64
	sp    uintptr
	ss    uint64
}

func (f *testFrame) InstructionPointer() uintptr      { return f.ip }
func (f *testFrame) SetInstructionPointer(ip uintptr) { f.ip = ip }
func (f *testFrame) StackPointer() uintptr            { return f.sp }
func (f *testFrame) SetStackPointer(sp uintptr)       { f.sp = sp }
func (f *testFrame) Flags() uint64                    { return f.flags }
func (f *testFrame) SetFlags(flags uint64)            { f.flags = flags }

type testIRQ struct {
	enabled  bool
	disables int
	restores int
}

func newTestIRQ() *testIRQ { return &testIRQ{enabled: true} }

func (c *testIRQ) Disable() IRQState {
	c.disables++
	prev := c.enabled
	c.enabled = false
	if prev {
		return 1
	}
	return 0
}

func (c *testIRQ) Restore(state IRQState) {
	c.restores++
	c.enabled = state != 0
}

type testLoader struct {
	calls int
	err   error
}

func (l *testLoader) LoadTaskState() error {
	l.calls++
	return l.err
}

// testCPU is a RegisterFile backed by a plain snapshot.
type testCPU struct {
	regs Registers
}

func (c *testCPU) SaveTo(r *Registers)   { *r = c.regs }
func (c *testCPU) LoadFrom(r *Registers) { c.regs = *r }

func newTable(blocked ...bool) TaskTable {
	var tt TaskTable
	names := []string{"idle", "shell", "net"}
	for i := range tt {
		base := uintptr(0x10000 * (i + 1))
		tt[i] = Task{
			Name:  names[i],
			Frame: SavedFrame{RIP: base + 0x100, RSP: base + 0xff0, RFlags: 0x202},
			Stack: Stack{Bottom: base, Top: base + 0xfff},
		}
		if i < len(blocked) {
			tt[i].Blocked = blocked[i]
		}
	}
	return tt
}

// looseTable is newTable without stack bounds, so any frame passes the
// stack check.
func looseTable(blocked ...bool) TaskTable {
	tt := newTable(blocked...)
	for i := range tt {
		tt[i].Stack = Stack{}
	}
	return tt
}

func resetPanicMode() {
	panicActive.Store(false)
	panicOnce = sync.Once{}
	SetPanicHandler(func(PanicInfo) {})
}

func expectFatal(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		resetPanicMode()
		if r == nil {
			t.Fatalf("expected kernel fatal containing %q, got none", want)
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, want) {
			t.Fatalf("fatal = %q, want it to contain %q", msg, want)
		}
	}()
	fn()
}
