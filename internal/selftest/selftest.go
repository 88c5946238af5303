// Package selftest checks a backend end to end: service status, the connection
// test endpoint and every dedicated analysis on a sample note.
package selftest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/comigor/notesai/internal/aiclient"
	"github.com/comigor/notesai/internal/logger"
)

// SampleNote is the note the analysis steps run on.
const SampleNote = "# Test note\n\n" +
	"A sample note for exercising the AI features.\n\n" +
	"## Code\n\n" +
	"```javascript\n" +
	"function fibonacci(n) {\n" +
	"  if (n <= 1) return n;\n" +
	"  return fibonacci(n - 1) + fibonacci(n - 2);\n" +
	"}\n\n" +
	"console.log(fibonacci(10));\n" +
	"```\n\n" +
	"## Key points\n\n" +
	"1. The function computes the Fibonacci sequence\n" +
	"2. It is recursive\n" +
	"3. Its time complexity is high and could be improved\n\n" +
	"## Tags\n\n" +
	"JavaScript, algorithms, recursion, math\n"

const (
	sampleCode = `function test() { return "hello"; }`
	sampleText = "This is a simple piece of test content."

	// DefaultPause spaces steps out so the backend is not flooded.
	DefaultPause = time.Second
)

// Backend is what the self-test exercises. *aiclient.Client implements it.
type Backend interface {
	Status(ctx context.Context) (aiclient.Status, error)
	TestConnection(ctx context.Context) (*aiclient.ChatResponse, error)
	Analyze(ctx context.Context, action aiclient.Action, content string) (*aiclient.AnalysisResponse, error)
}

// Result is the outcome of one step.
type Result struct {
	Name     string
	Err      error
	Detail   string
	Duration time.Duration
}

// OK reports whether the step passed.
func (r Result) OK() bool { return r.Err == nil }

type step struct {
	name string
	run  func(ctx context.Context) (string, error)
}

// Runner runs the steps in order.
type Runner struct {
	backend Backend
	pause   time.Duration
	log     *slog.Logger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithPause sets the delay between steps. Zero disables it.
func WithPause(d time.Duration) Option {
	return func(r *Runner) { r.pause = d }
}

// New creates a runner for backend.
func New(backend Backend, opts ...Option) *Runner {
	r := &Runner{
		backend: backend,
		pause:   DefaultPause,
		log:     logger.L.With(slog.String("component", "selftest")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) steps() []step {
	steps := []step{
		{name: "status", run: func(ctx context.Context) (string, error) {
			st, err := r.backend.Status(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprint(st["status"]), nil
		}},
		{name: "connection", run: func(ctx context.Context) (string, error) {
			res, err := r.backend.TestConnection(ctx)
			if err != nil {
				return "", err
			}
			if err := res.Err(); err != nil {
				return "", err
			}
			return res.Model, nil
		}},
	}

	for _, action := range aiclient.Actions {
		input := SampleNote
		switch action {
		case aiclient.ActionExplainCode:
			input = sampleCode
		case aiclient.ActionOptimize:
			input = sampleText
		}
		steps = append(steps, step{name: string(action), run: func(ctx context.Context) (string, error) {
			res, err := r.backend.Analyze(ctx, action, input)
			if err != nil {
				return "", err
			}
			if err := res.Err(); err != nil {
				return "", err
			}
			return fmt.Sprintf("%d chars", len([]rune(res.Result))), nil
		}})
	}
	return steps
}

// Run executes every step, even after failures, and returns one Result per step.
// Once ctx is done the remaining steps are not run and fail with ctx's error.
func (r *Runner) Run(ctx context.Context) []Result {
	steps := r.steps()
	results := make([]Result, 0, len(steps))
	for i, s := range steps {
		if i > 0 && r.pause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.pause):
			}
		}
		if err := ctx.Err(); err != nil {
			r.log.Warn("self-test interrupted", "step", s.name, "error", err)
			for _, rest := range steps[i:] {
				results = append(results, Result{Name: rest.name, Err: err})
			}
			return results
		}

		start := time.Now()
		detail, err := s.run(ctx)
		res := Result{Name: s.name, Err: err, Detail: detail, Duration: time.Since(start)}
		if err != nil {
			r.log.Warn("self-test step failed", "step", s.name, "error", err)
		} else {
			r.log.Info("self-test step passed", "step", s.name, "duration", res.Duration)
		}
		results = append(results, res)
	}
	return results
}

// ErrFailed is returned by Check when any step failed.
var ErrFailed = errors.New("self-test failed")

// Check returns ErrFailed, wrapped with the count, if any result failed.
func Check(results []Result) error {
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d steps", ErrFailed, failed, len(results))
	}
	return nil
}
