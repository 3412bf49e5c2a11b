package hal

import (
	"bytes"
	"errors"

	"kestrel/kernel"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyEnter
	KeyEscape
	KeySpace
	KeyF1
	KeyF2
	KeyF3
)

// KeyEvent is a keyboard event.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
}

// Time provides the timer interrupt source as a tick stream.
//
// The tick duration is platform-defined.
type Time interface {
	Ticks() <-chan uint64
}

// IRQ is the local interrupt controller.
//
// Deliver runs handler in interrupt context (interrupts masked) and reports
// whether it ran; an interrupt raised while masked is not delivered.
type IRQ interface {
	kernel.IRQ
	Deliver(handler func()) bool
}

// HAL provides the only contact point between the kernel and the machine.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
	Time() Time
	IRQ() IRQ
	// TaskState performs the task-switch hardware bring-up.
	TaskState() kernel.TaskStateLoader
}

// LineWriter adapts a Logger to io.Writer, emitting one line per '\n'.
// A trailing partial line is held until the next newline.
type LineWriter struct {
	L   Logger
	buf []byte
}

func (w *LineWriter) Write(p []byte) (int, error) {
	if w.L == nil {
		return len(p), nil
	}
	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			w.buf = append(w.buf, p...)
			break
		}
		if len(w.buf) > 0 {
			w.buf = append(w.buf, p[:i]...)
			w.L.WriteLineBytes(w.buf)
			w.buf = w.buf[:0]
		} else {
			w.L.WriteLineBytes(p[:i])
		}
		p = p[i+1:]
	}
	return n, nil
}
