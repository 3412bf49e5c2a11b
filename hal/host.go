//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"kestrel/kernel"
)

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
	irq    *FlagIRQ
	tss    *hostTaskState
}

// New returns a host HAL implementation logging to stdout.
func New() HAL {
	return newHost(os.Stdout)
}

func newHost(w io.Writer) *hostHAL {
	logger := &hostLogger{w: w}
	return &hostHAL{
		logger: logger,
		fb:     newHostFramebuffer(320, 240),
		kbd:    newHostKeyboard(),
		t:      newHostTime(),
		irq:    NewFlagIRQ(),
		tss:    &hostTaskState{logger: logger},
	}
}

func (h *hostHAL) Logger() Logger                    { return h.logger }
func (h *hostHAL) Display() Display                  { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input                      { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time                        { return h.t }
func (h *hostHAL) IRQ() IRQ                          { return h.irq }
func (h *hostHAL) TaskState() kernel.TaskStateLoader { return h.tss }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// hostTaskState stands in for the TSS bring-up: the host machine model
// switches tasks purely through saved frames, so there is no descriptor to
// build. Loading twice is a bug in the caller.
type hostTaskState struct {
	logger *hostLogger
	loaded bool
}

func (t *hostTaskState) LoadTaskState() error {
	if t.loaded {
		return fmt.Errorf("host task state: already loaded")
	}
	t.loaded = true
	t.logger.WriteLineString("hal: task state ready (host, no descriptor)")
	return nil
}
