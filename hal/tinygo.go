//go:build tinygo && baremetal

package hal

import (
	"machine"
	"runtime/interrupt"

	"kestrel/kernel"
)

type tinyGoHAL struct {
	logger *uartLogger
	fb     Framebuffer
	kbd    Keyboard
	t      *tinyGoTime
	irq    *tinyGoIRQ
	tss    cortexTaskState
}

// New returns a bare-metal HAL for TinyGo targets.
//
// UART: the board's default UART at 115200 8N1.
func New() HAL {
	uart := machine.DefaultUART
	uart.Configure(machine.UARTConfig{BaudRate: 115200})

	return &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		fb:     &stubFramebuffer{w: 320, h: 240, format: PixelFormatRGB565},
		kbd:    &stubKeyboard{},
		t:      newTinyGoTime(),
		irq:    &tinyGoIRQ{},
	}
}

func (h *tinyGoHAL) Logger() Logger                    { return h.logger }
func (h *tinyGoHAL) Display() Display                  { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Input() Input                      { return tinyGoInput{kbd: h.kbd} }
func (h *tinyGoHAL) Time() Time                        { return h.t }
func (h *tinyGoHAL) IRQ() IRQ                          { return h.irq }
func (h *tinyGoHAL) TaskState() kernel.TaskStateLoader { return h.tss }

// tinyGoIRQ masks interrupts through the TinyGo runtime.
type tinyGoIRQ struct{}

func (tinyGoIRQ) Disable() kernel.IRQState {
	return kernel.IRQState(interrupt.Disable())
}

func (tinyGoIRQ) Restore(state kernel.IRQState) {
	interrupt.Restore(interrupt.State(state))
}

func (c tinyGoIRQ) Deliver(handler func()) bool {
	state := c.Disable()
	defer c.Restore(state)
	handler()
	return true
}

// cortexTaskState is the bring-up step for Cortex-M: the core has no
// task-state segment, the exception frame is all the hardware keeps.
type cortexTaskState struct{}

func (cortexTaskState) LoadTaskState() error { return nil }
