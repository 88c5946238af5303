package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comigor/notesai/internal/stream"
)

func newStreamCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stream <questionId>",
		Short: "Print a generated answer as it streams in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid question id %q", args[0])
			}

			out := cmd.OutOrStdout()
			var (
				printed string
				failure error
			)
			a.client.FetchAnswerStream(cmd.Context(), id, stream.Handlers{
				OnChunk: func(text string) {
					// Snapshots are cumulative; print only what is new.
					if strings.HasPrefix(text, printed) {
						fmt.Fprint(out, text[len(printed):])
					} else {
						fmt.Fprint(out, "\n"+text)
					}
					printed = text
				},
				OnComplete: func() {
					fmt.Fprintln(out)
				},
				OnError: func(err error) {
					if printed != "" {
						fmt.Fprintln(out)
					}
					failure = err
				},
			})
			return failure
		},
	}
}
