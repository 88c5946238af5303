package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/notesai/internal/aiclient"
)

type mockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, action aiclient.Action, content string) (*aiclient.AnalysisResponse, error)
	targets     []string
}

func (m *mockAnalyzer) Analyze(ctx context.Context, action aiclient.Action, content string) (*aiclient.AnalysisResponse, error) {
	m.targets = append(m.targets, content)
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, action, content)
	}
	return &aiclient.AnalysisResponse{Result: string(action), Success: true}, nil
}

func TestRun_Target(t *testing.T) {
	ctx := context.Background()
	a := &mockAnalyzer{}
	w := New(a, "whole note", nil)

	_, err := w.Run(ctx, aiclient.ActionSummarize, "  picked  ")
	require.NoError(t, err)
	_, err = w.Run(ctx, aiclient.ActionSummarize, "   ")
	require.NoError(t, err)

	require.Equal(t, []string{"picked", "whole note"}, a.targets)
}

func TestRun_NothingToAnalyze(t *testing.T) {
	a := &mockAnalyzer{}
	w := New(a, " \n\t", nil)

	_, err := w.Run(context.Background(), aiclient.ActionSummarize, "")
	require.ErrorIs(t, err, ErrNothingToAnalyze)
	require.Empty(t, a.targets)
}

func TestRun_ResultsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	w := New(&mockAnalyzer{}, "note", nil)

	_, err := w.Run(ctx, aiclient.ActionSummarize, "")
	require.NoError(t, err)
	_, err = w.Run(ctx, aiclient.ActionGenerateOutline, "")
	require.NoError(t, err)

	results := w.Results()
	require.Len(t, results, 2)
	require.Equal(t, aiclient.ActionGenerateOutline, results[0].Action)
	require.Equal(t, aiclient.ActionSummarize, results[1].Action)

	w.ClearResults()
	require.Empty(t, w.Results())
}

func TestRun_SuggestTagsMerges(t *testing.T) {
	a := &mockAnalyzer{
		AnalyzeFunc: func(_ context.Context, _ aiclient.Action, _ string) (*aiclient.AnalysisResponse, error) {
			return &aiclient.AnalysisResponse{
				Result:        "go, http, testing",
				SuggestedTags: []string{"go", "http", "go", "testing"},
				Success:       true,
			}, nil
		},
	}
	w := New(a, "note", []string{"go"})

	out, err := w.Run(context.Background(), aiclient.ActionSuggestTags, "")
	require.NoError(t, err)
	require.Equal(t, []string{"http", "testing"}, out.AddedTags)
	require.Equal(t, []string{"go", "http", "testing"}, w.Tags())
	require.Equal(t, []string{"go", "http", "go", "testing"}, out.Result.Suggestions)
}

func TestRun_SuggestTagsReportsTrimmedTags(t *testing.T) {
	a := &mockAnalyzer{
		AnalyzeFunc: func(_ context.Context, _ aiclient.Action, _ string) (*aiclient.AnalysisResponse, error) {
			return &aiclient.AnalysisResponse{SuggestedTags: []string{" go", "http ", "go"}, Success: true}, nil
		},
	}
	w := New(a, "note", nil)

	out, err := w.Run(context.Background(), aiclient.ActionSuggestTags, "")
	require.NoError(t, err)
	require.Equal(t, []string{"go", "http"}, out.AddedTags)
	require.Equal(t, w.Tags(), out.AddedTags)
}

func TestRun_CategoriesAreSuggestionsButNotTags(t *testing.T) {
	a := &mockAnalyzer{
		AnalyzeFunc: func(_ context.Context, _ aiclient.Action, _ string) (*aiclient.AnalysisResponse, error) {
			return &aiclient.AnalysisResponse{SuggestedCategories: []string{"backend"}, Success: true}, nil
		},
	}
	w := New(a, "note", nil)

	out, err := w.Run(context.Background(), aiclient.ActionSuggestCategories, "")
	require.NoError(t, err)
	require.Equal(t, []string{"backend"}, out.Result.Suggestions)
	require.Empty(t, out.AddedTags)
	require.Empty(t, w.Tags())
}

func TestRun_Failure(t *testing.T) {
	a := &mockAnalyzer{
		AnalyzeFunc: func(_ context.Context, _ aiclient.Action, _ string) (*aiclient.AnalysisResponse, error) {
			return &aiclient.AnalysisResponse{Success: false, ErrorMessage: "content too short"}, nil
		},
	}
	w := New(a, "x", nil)

	_, err := w.Run(context.Background(), aiclient.ActionSummarize, "")
	require.ErrorIs(t, err, aiclient.ErrApplication)
	require.EqualError(t, err, "content too short")
	require.Empty(t, w.Results())
}

func TestApply(t *testing.T) {
	w := New(&mockAnalyzer{}, "draft", nil)

	got := w.Apply(Result{Action: aiclient.ActionSummarize, Content: "tl;dr"})
	require.Equal(t, "draft\n\n## AI suggestion (summarize)\ntl;dr", got)

	got = w.Apply(Result{Action: aiclient.ActionOptimize, Content: "polished"})
	require.Equal(t, "polished", got)
	require.Equal(t, "polished", w.Content())
}

func TestAddTag(t *testing.T) {
	w := New(&mockAnalyzer{}, "", []string{"a"})
	require.True(t, w.AddTag("b"))
	require.False(t, w.AddTag("a"))
	require.False(t, w.AddTag("  "))
	require.Equal(t, []string{"a", "b"}, w.Tags())
}

func TestNew_CopiesTags(t *testing.T) {
	tags := []string{"a"}
	w := New(&mockAnalyzer{}, "", tags)
	w.AddTag("b")
	require.Equal(t, []string{"a"}, tags)
}
