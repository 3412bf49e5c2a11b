package cli

import (
	"fmt"
	"log/slog"

	"kestrel/hal"
	"kestrel/sim"
)

// bootLoader is the task-state bring-up for simulated machines: there is no
// descriptor to load, only the fact to record.
type bootLoader struct {
	log *slog.Logger
}

func (l bootLoader) LoadTaskState() error {
	l.log.Debug("task state ready", "platform", "sim")
	return nil
}

func loadScenario(path string) (*sim.Scenario, error) {
	if path == "" {
		return sim.DefaultScenario(), nil
	}
	return sim.LoadScenarioFile(path)
}

func bootMachine(sc *sim.Scenario) (*sim.Machine, error) {
	m, err := sim.NewMachine(sc, hal.NewFlagIRQ(), logger)
	if err != nil {
		return nil, err
	}
	if err := m.Boot(bootLoader{log: logger}); err != nil {
		return nil, fmt.Errorf("boot: %w", err)
	}
	return m, nil
}
