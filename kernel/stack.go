package kernel

import (
	"errors"
	"fmt"
)

// ErrStackInverted is returned when a stack's bottom lies above its top.
var ErrStackInverted = errors.New("stack bottom above top")

// Stack describes the address range of a task stack.
//
// Both bounds are inclusive: Top is the top-of-stack sentinel address and is
// part of the region. The zero Stack means "not prepared".
type Stack struct {
	Bottom uintptr
	Top    uintptr
}

// NewStack returns the region [bottom, top].
func NewStack(bottom, top uintptr) (Stack, error) {
	if bottom > top {
		return Stack{}, fmt.Errorf("new stack 0x%x..0x%x: %w", bottom, top, ErrStackInverted)
	}
	return Stack{Bottom: bottom, Top: top}, nil
}

// Contains reports whether addr lies within the region, bounds included.
func (s Stack) Contains(addr uintptr) bool {
	return s.Bottom <= addr && addr <= s.Top
}

// Size returns Top - Bottom.
func (s Stack) Size() uintptr {
	if s.Top < s.Bottom {
		return 0
	}
	return s.Top - s.Bottom
}

// Initialized reports whether the stack has real bounds.
//
// Memory behind a non-zero stack is prepared by whoever fills the task table
// before the stack is installed, so non-sentinel bounds are the whole test.
func (s Stack) Initialized() bool {
	return s.Bottom != 0 && s.Top != 0 && s.Bottom < s.Top
}

func (s Stack) String() string {
	return fmt.Sprintf("0x%x..0x%x", s.Bottom, s.Top)
}
