//go:build !tinygo

package hal

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestHostTaskStateLoadsOnce(t *testing.T) {
	var buf bytes.Buffer
	h := newHost(&buf)

	if err := h.TaskState().LoadTaskState(); err != nil {
		t.Fatalf("LoadTaskState() err = %v", err)
	}
	if !strings.Contains(buf.String(), "task state ready") {
		t.Fatalf("log = %q", buf.String())
	}
	if err := h.TaskState().LoadTaskState(); err == nil {
		t.Fatal("second LoadTaskState() succeeded")
	}
}

func TestRunHeadlessEmitsOneTickPerStep(t *testing.T) {
	var got []uint64
	var steps int
	newApp := func(h HAL) (func() error, error) {
		ticks := h.Time().Ticks()
		return func() error {
			steps++
			for {
				select {
				case seq := <-ticks:
					got = append(got, seq)
				default:
					return nil
				}
			}
		}, nil
	}

	cfg := HeadlessConfig{Enabled: true, Hz: 1000, Ticks: 3, Quantum: time.Millisecond}
	if err := RunHeadless(context.Background(), newApp, cfg); err != nil {
		t.Fatalf("RunHeadless() err = %v", err)
	}
	if steps != 3 {
		t.Fatalf("steps = %d, want 3", steps)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("ticks = %v, want [1 2 3]", got)
	}
}

func TestRunHeadlessCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunHeadless(ctx, func(HAL) (func() error, error) { return nil, nil }, HeadlessConfig{Hz: 10})
	if err != context.Canceled {
		t.Fatalf("RunHeadless() err = %v, want Canceled", err)
	}
}

func TestHostTimeDropsWhenFull(t *testing.T) {
	ht := newHostTime()
	ht.stepN(100)
	if got := len(ht.Ticks()); got != cap(ht.ch) {
		t.Fatalf("queued ticks = %d, want %d", got, cap(ht.ch))
	}
	if ht.seq != 100 {
		t.Fatalf("seq = %d, want 100", ht.seq)
	}
}
