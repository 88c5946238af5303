package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comigor/notesai/internal/aiclient"
	"github.com/comigor/notesai/internal/conversation"
	"github.com/comigor/notesai/internal/history"
	"github.com/comigor/notesai/internal/render"
)

const chatHelp = `Commands:
  /clear              end the conversation and start a new one
  /history            show the conversation so far
  /<action>           run an action on the --note file (summarize, optimize,
                      explain-code, suggest-tags, suggest-categories, generate-outline)
  /quit               exit`

func newChatCmd(a *app) *cobra.Command {
	var (
		notePath string
		raw      bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the AI assistant",
		Long:  "Interactive chat. Each line is sent as a message; lines starting with / are commands.\n\n" + chatHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []conversation.Option
			if a.cfg.HistoryDB != "" {
				j := history.Open(a.cfg.HistoryDB)
				defer j.Close()
				opts = append(opts, conversation.WithJournal(j))
			}
			r := &repl{
				cmd:      cmd,
				conv:     conversation.New(a.client, opts...),
				renderer: render.New("", raw),
				notePath: notePath,
				out:      cmd.OutOrStdout(),
			}
			return r.run(cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVar(&notePath, "note", "", "note file used by quick actions")
	cmd.Flags().BoolVar(&raw, "raw", false, "print replies as plain Markdown")
	return cmd
}

type repl struct {
	cmd      *cobra.Command
	conv     *conversation.Conversation
	renderer *render.Renderer
	notePath string
	out      io.Writer
}

func (r *repl) run(in io.Reader) error {
	ctx := r.cmd.Context()
	fmt.Fprintln(r.out, "Type a message, /help for commands.")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			reply, err := r.conv.Send(ctx, line)
			r.show(reply, err)
			continue
		}

		switch name := strings.TrimPrefix(line, "/"); name {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(r.out, chatHelp)
		case "clear":
			r.conv.Clear(ctx)
			fmt.Fprintln(r.out, "Conversation cleared.")
		case "history":
			for _, m := range r.conv.Messages() {
				fmt.Fprintf(r.out, "[%s] %s: %s\n", m.Timestamp.Format("15:04:05"), m.Role, m.Content)
			}
		default:
			action := aiclient.Action(name)
			if !action.Valid() {
				fmt.Fprintf(r.out, "Unknown command %q. Type /help for commands.\n", line)
				continue
			}
			if r.notePath == "" {
				r.show(nil, conversation.ErrNoNoteContent)
				continue
			}
			note, err := readInput(r.cmd, r.notePath)
			if err != nil {
				r.show(nil, err)
				continue
			}
			reply, err := r.conv.QuickAction(ctx, action, note)
			r.show(reply, err)
		}
	}
}

func (r *repl) show(reply *conversation.Message, err error) {
	if err != nil {
		fmt.Fprintf(r.out, "Error: %s\n", err)
		return
	}
	text, rerr := r.renderer.Markdown(reply.Content)
	if rerr != nil {
		text = reply.Content
	}
	fmt.Fprintln(r.out, strings.TrimRight(text, "\n"))
}
