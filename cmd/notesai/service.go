package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comigor/notesai/internal/render"
)

func newStatusCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the AI service status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.client.Status(cmd.Context())
			if err != nil {
				return err
			}
			text, err := render.New("", raw).Status(st)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print plain Markdown")
	return cmd
}

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test the connection to the AI model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.TestConnection(cmd.Context())
			if err != nil {
				return err
			}
			if err := res.Err(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ok: %s\n", strings.TrimSpace(res.Content))
			if res.Model != "" {
				fmt.Fprintf(out, "model: %s\n", res.Model)
			}
			return nil
		},
	}
}

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage chat sessions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear <sessionId>",
		Short: "Drop a chat session on the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.ClearSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s cleared\n", args[0])
			return nil
		},
	})
	return cmd
}
