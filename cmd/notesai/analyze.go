package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comigor/notesai/internal/aiclient"
	"github.com/comigor/notesai/internal/editor"
	"github.com/comigor/notesai/internal/render"
)

func actionNames() []string {
	names := make([]string, len(aiclient.Actions))
	for i, a := range aiclient.Actions {
		names[i] = string(a)
	}
	return names
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		raw       bool
		selection string
		tags      []string
		apply     bool
	)
	cmd := &cobra.Command{
		Use:       "analyze <action> [file|-]",
		Short:     "Run an AI analysis on a note",
		Long:      "Runs one analysis on a note read from a file or stdin.\nActions: " + strings.Join(actionNames(), ", "),
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: actionNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := aiclient.Action(args[0])
			if !action.Valid() {
				return fmt.Errorf("%w: %q (want one of %s)", aiclient.ErrUnsupportedAction, args[0], strings.Join(actionNames(), ", "))
			}
			path := ""
			if len(args) > 1 {
				path = args[1]
			}
			if apply && (path == "" || path == "-") {
				return fmt.Errorf("--apply needs a note file")
			}

			content, err := readInput(cmd, path)
			if err != nil {
				return err
			}

			wb := editor.New(a.client, content, tags)
			outcome, err := wb.Run(cmd.Context(), action, selection)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			text, err := render.New("", raw).Analysis(action, &aiclient.AnalysisResponse{
				Result:        outcome.Result.Content,
				SuggestedTags: outcome.Result.Suggestions,
				Success:       true,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, strings.TrimRight(text, "\n"))

			if len(outcome.AddedTags) > 0 {
				fmt.Fprintf(out, "Tags: %s (added %s)\n", strings.Join(wb.Tags(), ", "), strings.Join(outcome.AddedTags, ", "))
			}

			if apply {
				updated := wb.Apply(outcome.Result)
				if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
					return fmt.Errorf("error writing %s: %w", path, err)
				}
				fmt.Fprintf(out, "Applied to %s\n", path)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&raw, "raw", false, "print plain Markdown")
	f.StringVar(&selection, "selection", "", "analyze this text instead of the whole note")
	f.StringSliceVar(&tags, "tags", nil, "existing note tags; suggest-tags reports which ones it adds")
	f.BoolVar(&apply, "apply", false, "write the result back into the note file")
	return cmd
}

func newAnalyzeNoteCmd(a *app) *cobra.Command {
	var (
		raw          bool
		title        string
		analysisType string
		noteID       int64
	)
	cmd := &cobra.Command{
		Use:   "analyze-note [file|-]",
		Short: "Run the generic note analysis endpoint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseAnalysisType(analysisType)
			if err != nil {
				return err
			}
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			content, err := readInput(cmd, path)
			if err != nil {
				return err
			}

			req := aiclient.AnalysisRequest{Content: content, Title: title, AnalysisType: t}
			if cmd.Flags().Changed("note-id") {
				req.NoteID = &noteID
			}
			res, err := a.client.AnalyzeNote(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := res.Err(); err != nil {
				return err
			}

			text, err := render.New("", raw).Result(string(t), res)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&raw, "raw", false, "print plain Markdown")
	f.StringVar(&title, "title", "", "note title")
	f.StringVar(&analysisType, "type", string(aiclient.AnalysisSummary), "analysis type (SUMMARY, CATEGORY, TAGS, OPTIMIZE, EXPLAIN_CODE, GENERATE_OUTLINE, FIND_ERRORS, RELATED_TOPICS) or an action name such as suggest-tags")
	f.Int64Var(&noteID, "note-id", 0, "id of the stored note")
	return cmd
}

// parseAnalysisType accepts a backend analysis type in any case, or the name of
// a dedicated action, which maps to its analysis type.
func parseAnalysisType(s string) (aiclient.AnalysisType, error) {
	if action := aiclient.Action(strings.ToLower(s)); action.Valid() {
		return action.AnalysisType(), nil
	}
	t := aiclient.AnalysisType(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
	if !t.Valid() {
		return "", fmt.Errorf("unknown analysis type %q", s)
	}
	return t, nil
}
