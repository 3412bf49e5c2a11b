package cli

import (
	"errors"
	"fmt"
	"io"

	"kestrel/kernel"
	"kestrel/sim"

	"github.com/mattn/go-tty"
	"github.com/spf13/cobra"
)

type runeReader interface {
	ReadRune() (rune, error)
}

func newStepCmd() *cobra.Command {
	var scenario string

	cmd := &cobra.Command{
		Use:   "step",
		Short: "Single-step a machine from the terminal",
		Long: `step boots a machine and waits for keys:

  space, n   deliver one timer tick
  1-3        block or unblock a task
  r          show the live registers
  q          quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadScenario(scenario)
			if err != nil {
				return err
			}
			m, err := bootMachine(sc)
			if err != nil {
				return err
			}

			t, err := tty.Open()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			defer t.Close()
			restore := t.MustRaw()
			defer restore()

			return stepLoop(m, t, crlf{cmd.OutOrStdout()})
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "", "YAML scenario file (default: built-in)")
	return cmd
}

func stepLoop(m *sim.Machine, in runeReader, out io.Writer) error {
	printSummary(out, m, false)
	for {
		r, err := in.ReadRune()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch {
		case r == 'q' || r == 3: // ctrl-c in raw mode
			return nil
		case r == ' ' || r == 'n':
			fmt.Fprintln(out, m.Step())
		case r >= '1' && r < '1'+kernel.NumTasks:
			i := int(r - '1')
			blocked, err := m.Toggle(i)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "task %d blocked=%v\n", i, blocked)
		case r == 'r':
			printSummary(out, m, true)
		}
	}
}

// crlf turns "\n" into "\r\n" for a terminal in raw mode.
type crlf struct{ w io.Writer }

func (c crlf) Write(p []byte) (int, error) {
	start := 0
	for i, b := range p {
		if b != '\n' {
			continue
		}
		if _, err := c.w.Write(p[start:i]); err != nil {
			return start, err
		}
		if _, err := c.w.Write([]byte("\r\n")); err != nil {
			return i, err
		}
		start = i + 1
	}
	if _, err := c.w.Write(p[start:]); err != nil {
		return start, err
	}
	return len(p), nil
}
