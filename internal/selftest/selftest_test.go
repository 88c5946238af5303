package selftest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comigor/notesai/internal/aiclient"
	"github.com/comigor/notesai/internal/logger"
)

type mockBackend struct {
	StatusFunc         func(ctx context.Context) (aiclient.Status, error)
	TestConnectionFunc func(ctx context.Context) (*aiclient.ChatResponse, error)
	AnalyzeFunc        func(ctx context.Context, action aiclient.Action, content string) (*aiclient.AnalysisResponse, error)

	inputs map[aiclient.Action]string
}

func (m *mockBackend) Status(ctx context.Context) (aiclient.Status, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	return aiclient.Status{"status": "UP"}, nil
}

func (m *mockBackend) TestConnection(ctx context.Context) (*aiclient.ChatResponse, error) {
	if m.TestConnectionFunc != nil {
		return m.TestConnectionFunc(ctx)
	}
	return &aiclient.ChatResponse{Success: true, Model: "glm-4-air"}, nil
}

func (m *mockBackend) Analyze(ctx context.Context, action aiclient.Action, content string) (*aiclient.AnalysisResponse, error) {
	if m.inputs == nil {
		m.inputs = map[aiclient.Action]string{}
	}
	m.inputs[action] = content
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, action, content)
	}
	return &aiclient.AnalysisResponse{Result: "ok", Success: true}, nil
}

func newRunner(b Backend) *Runner {
	r := New(b, WithPause(0))
	r.log = logger.Discard()
	return r
}

func names(results []Result) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.Name)
	}
	return out
}

func TestRun_AllPass(t *testing.T) {
	b := &mockBackend{}
	results := newRunner(b).Run(context.Background())

	require.Equal(t, []string{
		"status", "connection",
		"summarize", "suggest-categories", "suggest-tags", "explain-code", "optimize", "generate-outline",
	}, names(results))
	require.NoError(t, Check(results))
	require.Equal(t, "UP", results[0].Detail)
	require.Equal(t, "glm-4-air", results[1].Detail)

	require.Equal(t, SampleNote, b.inputs[aiclient.ActionSummarize])
	require.Equal(t, sampleCode, b.inputs[aiclient.ActionExplainCode])
	require.Equal(t, sampleText, b.inputs[aiclient.ActionOptimize])
}

func TestRun_ContinuesAfterFailures(t *testing.T) {
	b := &mockBackend{
		StatusFunc: func(_ context.Context) (aiclient.Status, error) {
			return nil, errors.New("offline")
		},
		TestConnectionFunc: func(_ context.Context) (*aiclient.ChatResponse, error) {
			return &aiclient.ChatResponse{Success: false}, nil
		},
		AnalyzeFunc: func(_ context.Context, action aiclient.Action, _ string) (*aiclient.AnalysisResponse, error) {
			if action == aiclient.ActionSuggestTags {
				return &aiclient.AnalysisResponse{Success: false, ErrorMessage: "content too short"}, nil
			}
			return &aiclient.AnalysisResponse{Result: "ok", Success: true}, nil
		},
	}

	results := newRunner(b).Run(context.Background())
	require.Len(t, results, 2+len(aiclient.Actions))

	var failed []string
	for _, r := range results {
		if !r.OK() {
			failed = append(failed, r.Name)
		}
	}
	require.Equal(t, []string{"status", "connection", "suggest-tags"}, failed)

	err := Check(results)
	require.ErrorIs(t, err, ErrFailed)
	require.EqualError(t, err, "self-test failed: 3 of 8 steps")
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := &mockBackend{
		StatusFunc: func(_ context.Context) (aiclient.Status, error) {
			cancel()
			return aiclient.Status{"status": "UP"}, nil
		},
	}

	results := newRunner(b).Run(ctx)
	require.Len(t, results, 2+len(aiclient.Actions))
	require.True(t, results[0].OK())
	for _, r := range results[1:] {
		require.ErrorIs(t, r.Err, context.Canceled, "step %s", r.Name)
	}
	require.Empty(t, b.inputs, "no analysis runs after cancellation")
	require.ErrorIs(t, Check(results), ErrFailed)
}

func TestRun_CancelDuringPause(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := New(&mockBackend{}, WithPause(time.Second))
	r.log = logger.Discard()

	start := time.Now()
	results := r.Run(ctx)
	require.Less(t, time.Since(start), time.Second, "the pause must end on cancellation")

	require.Len(t, results, 2+len(aiclient.Actions))
	require.True(t, results[0].OK())
	require.ErrorIs(t, results[1].Err, context.DeadlineExceeded)

	err := Check(results)
	require.ErrorIs(t, err, ErrFailed)
	require.EqualError(t, err, "self-test failed: 7 of 8 steps")
}
