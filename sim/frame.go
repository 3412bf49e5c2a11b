package sim

import "fmt"

// InterruptFrame is the x86-64 interrupt stack frame in hardware push order.
// The scheduler sees it only through kernel.Frame.
type InterruptFrame struct {
	RIP    uint64
	CS     uint64
	RFlags uint64
	RSP    uint64
	SS     uint64
}

const (
	kernelCS = 0x08
	kernelSS = 0x10

	// rflagsIF is the interrupt-enable flag; rflagsReserved is bit 1,
	// which always reads as one.
	rflagsIF       = 1 << 9
	rflagsReserved = 1 << 1

	// InitialRFlags is the flags word a fresh task starts with.
	InitialRFlags = rflagsIF | rflagsReserved
)

func (f *InterruptFrame) InstructionPointer() uintptr      { return uintptr(f.RIP) }
func (f *InterruptFrame) SetInstructionPointer(ip uintptr) { f.RIP = uint64(ip) }
func (f *InterruptFrame) StackPointer() uintptr            { return uintptr(f.RSP) }
func (f *InterruptFrame) SetStackPointer(sp uintptr)       { f.RSP = uint64(sp) }
func (f *InterruptFrame) Flags() uint64                    { return f.RFlags }
func (f *InterruptFrame) SetFlags(flags uint64)            { f.RFlags = flags }

func (f InterruptFrame) String() string {
	return fmt.Sprintf("rip=0x%x cs=0x%x rflags=0x%x rsp=0x%x ss=0x%x", f.RIP, f.CS, f.RFlags, f.RSP, f.SS)
}
