package kernel

import (
	"fmt"
	"io"
	"strings"
	"unsafe"
)

// NumRegisters is the number of general-purpose registers in a snapshot.
const NumRegisters = 15

// RegistersSize is the size in bytes of a Registers block.
const RegistersSize = NumRegisters * 8

// Registers is the general-purpose register snapshot of one task.
//
// The layout is an ABI shared with the interrupt trampoline, which saves and
// restores the block with raw offsets (see RegisterOffset). Field order, width
// and the absence of padding are fixed; do not reorder or add fields without
// changing the trampoline in the same commit.
//
// RIP, RSP and RFLAGS are not here: they belong to the captured frame.
type Registers struct {
	RAX uint64
	RBX uint64
	RCX uint64
	RDX uint64
	RSI uint64
	RDI uint64
	R8  uint64
	R9  uint64
	R10 uint64
	R11 uint64
	R12 uint64
	R13 uint64
	R14 uint64
	R15 uint64
	RBP uint64
}

// Compile-time layout check: both lines fail to build unless the size is exact.
var _ [RegistersSize - unsafe.Sizeof(Registers{})]byte
var _ [unsafe.Sizeof(Registers{}) - RegistersSize]byte

// RegisterOffset holds the byte offset of each register in ABI order.
var RegisterOffset = [NumRegisters]uintptr{
	unsafe.Offsetof(Registers{}.RAX),
	unsafe.Offsetof(Registers{}.RBX),
	unsafe.Offsetof(Registers{}.RCX),
	unsafe.Offsetof(Registers{}.RDX),
	unsafe.Offsetof(Registers{}.RSI),
	unsafe.Offsetof(Registers{}.RDI),
	unsafe.Offsetof(Registers{}.R8),
	unsafe.Offsetof(Registers{}.R9),
	unsafe.Offsetof(Registers{}.R10),
	unsafe.Offsetof(Registers{}.R11),
	unsafe.Offsetof(Registers{}.R12),
	unsafe.Offsetof(Registers{}.R13),
	unsafe.Offsetof(Registers{}.R14),
	unsafe.Offsetof(Registers{}.R15),
	unsafe.Offsetof(Registers{}.RBP),
}

var registerNames = [NumRegisters]string{
	"rax", "rbx", "rcx", "rdx", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
	"rbp",
}

// RegisterName returns the lower-case name of the i-th register in ABI order.
func RegisterName(i int) string {
	if i < 0 || i >= NumRegisters {
		return ""
	}
	return registerNames[i]
}

// EmptyRegisters returns the all-zero snapshot used before a task first runs.
func EmptyRegisters() Registers {
	return Registers{}
}

// Words returns the snapshot as a word array in ABI order.
func (r *Registers) Words() [NumRegisters]uint64 {
	return [NumRegisters]uint64{
		r.RAX, r.RBX, r.RCX, r.RDX, r.RSI, r.RDI,
		r.R8, r.R9, r.R10, r.R11, r.R12, r.R13, r.R14, r.R15,
		r.RBP,
	}
}

// SetWords overwrites the whole snapshot from a word array in ABI order.
func (r *Registers) SetWords(w [NumRegisters]uint64) {
	*r = Registers{
		RAX: w[0], RBX: w[1], RCX: w[2], RDX: w[3], RSI: w[4], RDI: w[5],
		R8: w[6], R9: w[7], R10: w[8], R11: w[9], R12: w[10], R13: w[11], R14: w[12], R15: w[13],
		RBP: w[14],
	}
}

func (r Registers) String() string {
	return r.render(false)
}

// Format implements fmt.Formatter: %x renders hex fields, every other verb
// renders decimal fields.
func (r Registers) Format(f fmt.State, verb rune) {
	_, _ = io.WriteString(f, r.render(verb == 'x' || verb == 'X'))
}

func (r Registers) render(hex bool) string {
	var sb strings.Builder
	for i, v := range r.Words() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		label := registerNames[i] + ":"
		sb.WriteString(label)
		// Two-character names get an extra space so columns line up.
		for n := len(label); n < 5; n++ {
			sb.WriteByte(' ')
		}
		if hex {
			fmt.Fprintf(&sb, "0x%x", v)
		} else {
			fmt.Fprintf(&sb, "%d", v)
		}
	}
	return sb.String()
}
