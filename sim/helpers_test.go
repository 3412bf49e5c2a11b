package sim

import (
	"io"
	"log/slog"
	"testing"

	"kestrel/kernel"
)

// fakeIRQ is a single-core interrupt flag. Interrupts that arrive while
// masked are dropped.
type fakeIRQ struct {
	enabled bool
	missed  int
}

func newFakeIRQ() *fakeIRQ { return &fakeIRQ{enabled: true} }

func (f *fakeIRQ) Disable() kernel.IRQState {
	prev := f.enabled
	f.enabled = false
	if prev {
		return 1
	}
	return 0
}

func (f *fakeIRQ) Restore(s kernel.IRQState) { f.enabled = s != 0 }

func (f *fakeIRQ) Deliver(handler func()) bool {
	if !f.enabled {
		f.missed++
		return false
	}
	f.enabled = false
	defer func() { f.enabled = true }()
	handler()
	return true
}

type fakeLoader struct{ calls int }

func (l *fakeLoader) LoadTaskState() error {
	l.calls++
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bootedMachine(t *testing.T, sc *Scenario) (*Machine, *fakeIRQ) {
	t.Helper()
	irq := newFakeIRQ()
	m, err := NewMachine(sc, irq, quietLogger())
	if err != nil {
		t.Fatalf("NewMachine() err = %v", err)
	}
	if err := m.Boot(&fakeLoader{}); err != nil {
		t.Fatalf("Boot() err = %v", err)
	}
	return m, irq
}
