package kernel

import (
	"errors"
	"testing"
)

func TestStackContainsInclusive(t *testing.T) {
	s, err := NewStack(0x1000, 0x1fff)
	if err != nil {
		t.Fatalf("NewStack() err = %v", err)
	}

	cases := []struct {
		addr uintptr
		want bool
	}{
		{0x0fff, false},
		{0x1000, true},
		{0x1800, true},
		{0x1fff, true},
		{0x2000, false},
	}
	for _, tc := range cases {
		if got := s.Contains(tc.addr); got != tc.want {
			t.Fatalf("Contains(0x%x) = %v, want %v", tc.addr, got, tc.want)
		}
	}
}

func TestStackContainsAtAddressSpaceEdges(t *testing.T) {
	s := Stack{Bottom: 0, Top: ^uintptr(0)}
	if !s.Contains(0) || !s.Contains(^uintptr(0)) {
		t.Fatal("full address space stack must contain both ends")
	}
}

func TestNewStackInverted(t *testing.T) {
	_, err := NewStack(0x2000, 0x1000)
	if !errors.Is(err, ErrStackInverted) {
		t.Fatalf("NewStack() err = %v, want ErrStackInverted", err)
	}
}

func TestStackInitialized(t *testing.T) {
	if (Stack{}).Initialized() {
		t.Fatal("zero stack reported initialized")
	}
	if (Stack{Bottom: 0x1000, Top: 0x1000}).Initialized() {
		t.Fatal("empty stack reported initialized")
	}
	if !(Stack{Bottom: 0x1000, Top: 0x1fff}).Initialized() {
		t.Fatal("prepared stack reported uninitialized")
	}
}

func TestStackString(t *testing.T) {
	s := Stack{Bottom: 0x10000, Top: 0x10fff}
	if got, want := s.String(), "0x10000..0x10fff"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if got := s.Size(); got != 0xfff {
		t.Fatalf("Size() = 0x%x, want 0xfff", got)
	}
}
