package cli

import (
	"fmt"
	"io"

	"kestrel/diag"
	"kestrel/kernel"
	"kestrel/sim"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		scenario string
		ticks    uint64
		regs     bool
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario and print every tick",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadScenario(scenario)
			if err != nil {
				return err
			}
			if ticks == 0 {
				ticks = sc.Ticks
			}
			m, err := bootMachine(sc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			traces, err := m.Run(cmd.Context(), ticks)
			if !quiet {
				for _, tr := range traces {
					fmt.Fprintln(out, tr)
				}
			}
			if err != nil {
				return err
			}
			printSummary(out, m, regs)
			return nil
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "", "YAML scenario file (default: built-in)")
	cmd.Flags().Uint64Var(&ticks, "ticks", 0, "Ticks to run (0 = the scenario's own count)")
	cmd.Flags().BoolVar(&regs, "regs", false, "Print saved registers of every task")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the summary")

	return cmd
}

func printSummary(w io.Writer, m *sim.Machine, regs bool) {
	fmt.Fprintln(w, diag.StatsLine(m.Stats()))
	m.View(func(s *kernel.Scheduler) {
		for i := 0; i < s.Len(); i++ {
			fmt.Fprintln(w, diag.TaskLine(s, i))
			if !regs {
				continue
			}
			r := s.Task(i).Registers
			if i == s.CurrentIndex() {
				r = m.CPU().Regs
			}
			for _, line := range diag.RegisterLines(r) {
				fmt.Fprintln(w, "    "+line)
			}
		}
	})
}
