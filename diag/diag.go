// Package diag renders scheduler state for people: text lines for logs and
// terminals, and a framebuffer panel for the host window and device screen.
package diag

import (
	"fmt"

	"kestrel/kernel"

	"github.com/dustin/go-humanize"
)

// TaskLine describes task i in one line. The current task is marked with '*'.
func TaskLine(s *kernel.Scheduler, i int) string {
	t := s.Task(i)
	mark := ' '
	if i == s.CurrentIndex() {
		mark = '*'
	}
	state := "runnable"
	if t.Blocked {
		state = "blocked"
	}
	return fmt.Sprintf("%c %d %-8s %-8s stack %v (%s) rip=0x%x rsp=0x%x",
		mark, i, t.Name, state, t.Stack, humanize.IBytes(uint64(t.Stack.Size())), t.Frame.RIP, t.Frame.RSP)
}

// TaskLines describes every task slot. Call it from inside a critical
// section (kernel.Shared.Do).
func TaskLines(s *kernel.Scheduler) []string {
	out := make([]string, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		out = append(out, TaskLine(s, i))
	}
	return out
}

// RegisterLines splits a register snapshot into rows of three, in hex.
func RegisterLines(r kernel.Registers) []string {
	w := r.Words()
	out := make([]string, 0, (len(w)+2)/3)
	for i := 0; i < len(w); i += 3 {
		line := ""
		for j := i; j < i+3 && j < len(w); j++ {
			if j > i {
				line += "  "
			}
			line += fmt.Sprintf("%-3s=%016x", kernel.RegisterName(j), w[j])
		}
		out = append(out, line)
	}
	return out
}

// StatsLine summarizes preemption counters.
func StatsLine(st kernel.Stats) string {
	return fmt.Sprintf("ticks %s  switches %s  stalls %s",
		humanize.Comma(int64(st.Ticks)), humanize.Comma(int64(st.Switches)), humanize.Comma(int64(st.Stalls)))
}
