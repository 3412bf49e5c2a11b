package sim

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kestrel/kernel"
)

const threeTasks = `
name: three
ticks: 6
tasks:
  - name: init
    entry: 0x1000
    stack: {bottom: 0x10000, top: 0x10fff}
  - name: shell
    entry: 0x2000
    stack: {bottom: 0x20000, top: 0x20fff}
    blocked: true
  - name: net
    entry: 0x3000
    stack: {bottom: 0x30000, top: 0x30fff}
events:
  - {tick: 3, task: 1, action: unblock}
  - {tick: 2, task: 2, action: block}
`

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(strings.NewReader(threeTasks))
	if err != nil {
		t.Fatalf("LoadScenario() err = %v", err)
	}
	if sc.Name != "three" || sc.Ticks != 6 || len(sc.Tasks) != 3 || len(sc.Events) != 2 {
		t.Fatalf("LoadScenario() = %+v", sc)
	}
	if !sc.Tasks[1].Blocked || sc.Tasks[2].Stack.Top != 0x30fff {
		t.Fatalf("task specs decoded wrong: %+v", sc.Tasks)
	}
}

func TestScenarioTable(t *testing.T) {
	sc, err := LoadScenario(strings.NewReader(threeTasks))
	if err != nil {
		t.Fatalf("LoadScenario() err = %v", err)
	}
	tt, err := sc.Table()
	if err != nil {
		t.Fatalf("Table() err = %v", err)
	}

	want := kernel.SavedFrame{RIP: 0x1000, RSP: 0x10ff0, RFlags: 0x202}
	if tt[0].Frame != want {
		t.Fatalf("tasks[0].Frame = %v, want %v", tt[0].Frame, want)
	}
	if !tt[0].Stack.Contains(tt[0].Frame.RSP) {
		t.Fatalf("initial RSP 0x%x outside %v", tt[0].Frame.RSP, tt[0].Stack)
	}
	if !tt[1].Blocked || tt[1].Name != "shell" {
		t.Fatalf("tasks[1] = %+v", tt[1])
	}
	if tt[2].Registers != kernel.EmptyRegisters() {
		t.Fatalf("tasks[2].Registers = %v, want empty", tt[2].Registers)
	}
}

func TestScenarioValidate(t *testing.T) {
	cases := []struct {
		name string
		edit func(sc *Scenario)
		want error
	}{
		{"too few tasks", func(sc *Scenario) { sc.Tasks = sc.Tasks[:2] }, ErrTaskCount},
		{"blank name", func(sc *Scenario) { sc.Tasks[1].Name = "  " }, ErrTaskName},
		{"inverted stack", func(sc *Scenario) { sc.Tasks[0].Stack = StackSpec{Bottom: 0x2000, Top: 0x1000} }, kernel.ErrStackInverted},
		{"event task", func(sc *Scenario) { sc.Events = []Event{{Tick: 1, Task: 3, Action: ActionBlock}} }, ErrEventTask},
		{"event action", func(sc *Scenario) { sc.Events = []Event{{Tick: 1, Task: 0, Action: "kill"}} }, ErrEventAction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sc := DefaultScenario()
			tc.edit(sc)
			if err := sc.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("Validate() err = %v, want %v", err, tc.want)
			}
			if _, err := sc.Table(); !errors.Is(err, tc.want) {
				t.Fatalf("Table() err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	src := strings.Replace(threeTasks, "ticks: 6", "ticks: 6\npriority: high", 1)
	if _, err := LoadScenario(strings.NewReader(src)); err == nil {
		t.Fatal("LoadScenario() accepted an unknown field")
	}
}

func TestLoadScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "three.yaml")
	if err := os.WriteFile(path, []byte(threeTasks), 0o644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenarioFile(path)
	if err != nil {
		t.Fatalf("LoadScenarioFile() err = %v", err)
	}
	if sc.Name != "three" {
		t.Fatalf("Name = %q, want three", sc.Name)
	}

	if _, err := LoadScenarioFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("LoadScenarioFile(missing) err = %v, want ErrNotExist", err)
	}
}

func TestDefaultScenarioIsValid(t *testing.T) {
	if err := DefaultScenario().Validate(); err != nil {
		t.Fatalf("DefaultScenario().Validate() = %v", err)
	}
}
