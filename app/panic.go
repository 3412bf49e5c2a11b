package app

import (
	"fmt"
	"strings"

	"kestrel/diag"
	"kestrel/hal"
	"kestrel/kernel"
)

func installPanicHandler(h hal.HAL) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		panicScreen(h, info)
		halt()
	})
}

func panicScreen(h hal.HAL, info kernel.PanicInfo) {
	lines := []string{
		"Kestrel panic:",
		fmt.Sprintf("task: %d", info.Task),
		fmt.Sprintf("panic: %v", info.Value),
	}
	if len(info.Stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(info.Stack), "\n") {
			if line == "" {
				continue
			}
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}

	if l := h.Logger(); l != nil {
		for _, line := range lines {
			l.WriteLineString(line)
		}
	}

	disp := h.Display()
	if disp == nil {
		return
	}
	_, _ = diag.NewPanel(disp.Framebuffer()).Draw(diag.Alert, lines)
}
