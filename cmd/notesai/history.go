package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/comigor/notesai/internal/history"
	"github.com/comigor/notesai/internal/logger"
)

var errNoHistoryDB = errors.New("no history database configured (set history_db or NOTESAI_HISTORY_DB)")

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <sessionId>",
		Short: "Print the journaled transcript of a chat session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.HistoryDB == "" {
				return errNoHistoryDB
			}
			j := history.Open(a.cfg.HistoryDB)
			defer j.Close()

			entries, err := j.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if j.Fallback() {
				logger.L.Warn("history database unavailable", "path", a.cfg.HistoryDB)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "no messages for session %s\n", args[0])
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "[%s] %s: %s\n", e.CreatedAt.Local().Format(time.DateTime), e.Role, e.Content)
			}
			return nil
		},
	}
}
