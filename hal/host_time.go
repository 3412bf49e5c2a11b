//go:build !tinygo

package hal

import "time"

// DefaultQuantum is the host timer-interrupt period.
const DefaultQuantum = 10 * time.Millisecond

// hostTime turns wall-clock progress into timer ticks. Ticks that cannot be
// queued are dropped, like a timer interrupt that fires while one is pending.
type hostTime struct {
	ch      chan uint64
	seq     uint64
	quantum time.Duration

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 64), quantum: DefaultQuantum}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

func (t *hostTime) setQuantum(d time.Duration) {
	if d > 0 {
		t.quantum = d
	}
}

// step advances the clock to now. The first call emits exactly n ticks.
func (t *hostTime) step(n uint64) {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.stepN(n)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	ticks := uint64(t.acc / t.quantum)
	if ticks == 0 {
		return
	}
	t.acc = t.acc % t.quantum
	t.stepN(ticks)
}

func (t *hostTime) stepN(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
