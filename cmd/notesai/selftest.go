package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/comigor/notesai/internal/selftest"
)

func newSelftestCmd(a *app) *cobra.Command {
	var pause time.Duration
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Check the status, the model connection and every analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := selftest.New(a.client, selftest.WithPause(pause)).Run(cmd.Context())

			out := cmd.OutOrStdout()
			for _, r := range results {
				mark, detail := "PASS", r.Detail
				if !r.OK() {
					mark, detail = "FAIL", r.Err.Error()
				}
				fmt.Fprintf(out, "%s  %-20s %8s  %s\n", mark, r.Name, r.Duration.Round(time.Millisecond), detail)
			}
			return selftest.Check(results)
		},
	}
	cmd.Flags().DurationVar(&pause, "pause", selftest.DefaultPause, "delay between steps")
	return cmd
}
