package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kestrel/internal/logging"
	"kestrel/sim"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const rotateScenario = `
name: rotate
ticks: 4
tasks:
  - {name: a, entry: 0x1000, stack: {bottom: 0x10000, top: 0x10fff}}
  - {name: b, entry: 0x2000, stack: {bottom: 0x20000, top: 0x20fff}}
  - {name: c, entry: 0x3000, stack: {bottom: 0x30000, top: 0x30fff}}
`

func TestRunPrintsTraceAndSummary(t *testing.T) {
	out, err := execute(t, "run", "--scenario", writeScenario(t, rotateScenario))
	if err != nil {
		t.Fatalf("run err = %v", err)
	}
	for _, want := range []string{
		"tick 1: 0 -> 1 switched",
		"tick 2: 1 -> 2 switched",
		"tick 3: 2 -> 0 switched",
		"tick 4: 0 -> 1 switched",
		"ticks 4  switches 4  stalls 0",
		"* 1 b",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("run output missing %q:\n%s", want, out)
		}
	}
}

func TestRunQuietWithRegisters(t *testing.T) {
	out, err := execute(t, "run", "-q", "--ticks", "3", "--regs")
	if err != nil {
		t.Fatalf("run err = %v", err)
	}
	if strings.Contains(out, "tick 1:") {
		t.Fatalf("quiet run printed traces:\n%s", out)
	}
	if got := strings.Count(out, "rax="); got != 3 {
		t.Fatalf("register blocks = %d, want 3:\n%s", got, out)
	}
	// Each task ran one quantum.
	if got := strings.Count(out, "rax=0000000000000001"); got != 3 {
		t.Fatalf("tasks with rax=1 = %d, want 3:\n%s", got, out)
	}
}

func TestRunMissingScenario(t *testing.T) {
	if _, err := execute(t, "run", "--scenario", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("run with a missing scenario succeeded")
	}
}

func TestValidate(t *testing.T) {
	good := writeScenario(t, rotateScenario)
	bad := writeScenario(t, "name: bad\ntasks: []\n")

	out, err := execute(t, "validate", good)
	if err != nil {
		t.Fatalf("validate err = %v", err)
	}
	if !strings.Contains(out, "ok   "+good+" (rotate, 3 tasks, 0 events)") {
		t.Fatalf("validate output = %q", out)
	}

	out, err = execute(t, "validate", good, bad)
	if err == nil {
		t.Fatal("validate accepted a bad scenario")
	}
	if !strings.Contains(out, "FAIL "+bad) || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("validate = %q, %v", out, err)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version err = %v", err)
	}
	if !strings.HasPrefix(out, "schedsim dev") {
		t.Fatalf("version = %q", out)
	}
}

type runes struct{ rs []rune }

func (r *runes) ReadRune() (rune, error) {
	if len(r.rs) == 0 {
		return 0, io.EOF
	}
	c := r.rs[0]
	r.rs = r.rs[1:]
	return c, nil
}

func TestStepLoop(t *testing.T) {
	logger = logging.Discard()
	m, err := bootMachine(sim.DefaultScenario())
	if err != nil {
		t.Fatalf("bootMachine() err = %v", err)
	}

	var out bytes.Buffer
	if err := stepLoop(m, &runes{rs: []rune("2 nxrq ")}, &out); err != nil {
		t.Fatalf("stepLoop() err = %v", err)
	}
	if m.Tick() != 2 {
		t.Fatalf("Tick() = %d, want 2 (q stops the loop)", m.Tick())
	}
	text := out.String()
	for _, want := range []string{"task 1 blocked=true", "tick 1: 0 -> 2 switched", "tick 2: 2 -> 0 switched", "rbp="} {
		if !strings.Contains(text, want) {
			t.Fatalf("stepLoop output missing %q:\n%s", want, text)
		}
	}
}

func TestCRLF(t *testing.T) {
	var buf bytes.Buffer
	if _, err := (crlf{&buf}).Write([]byte("a\nb\n")); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "a\r\nb\r\n" {
		t.Fatalf("crlf = %q", got)
	}
}
