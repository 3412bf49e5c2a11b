package kernel

import "fmt"

// Frame is the CPU state captured by the interrupt entry trampoline at the
// instant of preemption.
//
// The interrupt subsystem owns the concrete layout; the scheduler only reads
// and writes these three values.
type Frame interface {
	InstructionPointer() uintptr
	SetInstructionPointer(ip uintptr)
	StackPointer() uintptr
	SetStackPointer(sp uintptr)
	Flags() uint64
	SetFlags(flags uint64)
}

// SavedFrame is a task's resumption point: the frame values it had when it
// was last switched out, or the values the table initializer gave it.
type SavedFrame struct {
	RIP    uintptr
	RSP    uintptr
	RFlags uint64
}

var _ Frame = (*SavedFrame)(nil)

func (f *SavedFrame) InstructionPointer() uintptr      { return f.RIP }
func (f *SavedFrame) SetInstructionPointer(ip uintptr) { f.RIP = ip }
func (f *SavedFrame) StackPointer() uintptr            { return f.RSP }
func (f *SavedFrame) SetStackPointer(sp uintptr)       { f.RSP = sp }
func (f *SavedFrame) Flags() uint64                    { return f.RFlags }
func (f *SavedFrame) SetFlags(flags uint64)            { f.RFlags = flags }

// Load copies instruction pointer, stack pointer and flags from src.
func (f *SavedFrame) Load(src Frame) {
	f.RIP = src.InstructionPointer()
	f.RSP = src.StackPointer()
	f.RFlags = src.Flags()
}

// Store writes instruction pointer, stack pointer and flags into dst.
func (f *SavedFrame) Store(dst Frame) {
	dst.SetInstructionPointer(f.RIP)
	dst.SetStackPointer(f.RSP)
	dst.SetFlags(f.RFlags)
}

func (f SavedFrame) String() string {
	return fmt.Sprintf("rip=0x%x rsp=0x%x rflags=0x%x", f.RIP, f.RSP, f.RFlags)
}
