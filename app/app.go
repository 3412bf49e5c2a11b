// Package app wires the scheduler machine to a HAL: timer ticks drive
// preemption, keys block and unblock tasks, and the screen shows the table.
package app

import (
	"fmt"
	"log/slog"

	"kestrel/diag"
	"kestrel/hal"
	"kestrel/internal/buildinfo"
	"kestrel/internal/logging"
	"kestrel/kernel"
	"kestrel/sim"
)

// Config selects the scenario and log output.
type Config struct {
	// ScenarioPath is a YAML scenario file; empty runs the built-in one.
	ScenarioPath string
	LogLevel     string
	LogFormat    string
}

type system struct {
	h     hal.HAL
	m     *sim.Machine
	sc    *sim.Scenario
	panel *diag.Panel
	log   *slog.Logger

	ticks <-chan uint64
	keys  <-chan hal.KeyEvent

	last     sim.Trace
	paused   bool
	showRegs bool
}

// New boots the scheduler on h and returns the step function the host
// runners call once per frame.
func New(h hal.HAL, cfg Config) (func() error, error) {
	sys, err := newSystem(h, cfg)
	if err != nil {
		return nil, err
	}
	return sys.step, nil
}

// Run boots the scheduler and serves timer ticks forever (TinyGo/native
// entrypoint).
func Run(h hal.HAL) {
	sys, err := newSystem(h, Config{})
	if err != nil {
		h.Logger().WriteLineString("kestrel: " + err.Error())
		halt()
		return
	}
	for {
		select {
		case _, ok := <-sys.ticks:
			if !ok {
				halt()
				return
			}
			sys.onTick()
		case ev := <-sys.keys:
			sys.onKey(ev)
		}
		sys.draw()
	}
}

func newSystem(h hal.HAL, cfg Config) (*system, error) {
	log := logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, &hal.LineWriter{L: h.Logger()})
	installPanicHandler(h)

	sc := sim.DefaultScenario()
	if cfg.ScenarioPath != "" {
		var err error
		if sc, err = sim.LoadScenarioFile(cfg.ScenarioPath); err != nil {
			return nil, err
		}
	}

	sys := &system{h: h, sc: sc, log: log}
	if d := h.Display(); d != nil {
		sys.panel = diag.NewPanel(d.Framebuffer())
	}
	sys.bootScreen("building task table")

	m, err := sim.NewMachine(sc, h.IRQ(), log)
	if err != nil {
		return nil, err
	}
	sys.bootScreen("loading task state")
	if err := m.Boot(h.TaskState()); err != nil {
		return nil, err
	}
	sys.m = m

	if t := h.Time(); t != nil {
		sys.ticks = t.Ticks()
	}
	if in := h.Input(); in != nil {
		if kbd := in.Keyboard(); kbd != nil {
			sys.keys = kbd.Events()
		}
	}

	log.Info("kestrel up", "version", buildinfo.Short(), "scenario", sc.Name)
	sys.draw()
	return sys, nil
}

// step drains pending ticks and key events without blocking.
func (s *system) step() error {
	changed := false
	for {
		select {
		case _, ok := <-s.ticks:
			if !ok {
				s.ticks = nil
				continue
			}
			s.onTick()
			changed = true
			continue
		case ev := <-s.keys:
			s.onKey(ev)
			changed = true
			continue
		default:
		}
		break
	}
	if changed {
		s.draw()
	}
	return nil
}

func (s *system) onTick() {
	if s.paused {
		return
	}
	s.last = s.m.Step()
}

func (s *system) onKey(ev hal.KeyEvent) {
	if !ev.Press {
		return
	}
	task := -1
	switch {
	case ev.Rune >= '1' && ev.Rune < '1'+kernel.NumTasks:
		task = int(ev.Rune - '1')
	case ev.Code >= hal.KeyF1 && ev.Code <= hal.KeyF3:
		task = int(ev.Code - hal.KeyF1)
	case ev.Code == hal.KeySpace:
		s.paused = !s.paused
		s.log.Info("pause", "paused", s.paused)
	case ev.Code == hal.KeyEnter:
		s.showRegs = !s.showRegs
	}
	if task >= 0 {
		if _, err := s.m.Toggle(task); err != nil {
			s.log.Warn("toggle failed", "task", task, "err", err)
		}
	}
}

func (s *system) lines() []string {
	out := []string{
		"Kestrel scheduler " + buildinfo.Short(),
		fmt.Sprintf("scenario %s  tick %d", s.sc.Name, s.m.Tick()),
		diag.StatsLine(s.m.Stats()),
		"",
	}
	s.m.View(func(sch *kernel.Scheduler) {
		out = append(out, diag.TaskLines(sch)...)
	})
	out = append(out, "")
	if s.last.Tick > 0 {
		out = append(out, s.last.String())
	}
	if s.paused {
		out = append(out, "paused")
	}
	if s.showRegs {
		out = append(out, "live registers:")
		out = append(out, diag.RegisterLines(s.m.CPU().Regs)...)
	}
	out = append(out, "1-3 block/unblock  space pause  enter regs")
	return out
}

func (s *system) draw() {
	if s.panel == nil {
		return
	}
	if _, err := s.panel.Draw(diag.Normal, s.lines()); err != nil {
		s.log.Warn("draw failed", "err", err)
	}
}

func (s *system) bootScreen(msg string) {
	s.log.Debug("boot", "step", msg)
	if s.panel == nil {
		return
	}
	_, _ = s.panel.Draw(diag.Normal, []string{"Kestrel boot", msg})
}
