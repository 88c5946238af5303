// Package editor is the note-editing workbench: it runs analyses on a note or a
// selection of it, keeps the results most-recent-first and applies them back.
package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/comigor/notesai/internal/aiclient"
)

// ErrNothingToAnalyze is returned by Run when both the selection and the note are blank.
var ErrNothingToAnalyze = errors.New("select some text or make sure the note is not empty")

// Analyzer runs one dedicated analysis. *aiclient.Client implements it.
type Analyzer interface {
	Analyze(ctx context.Context, action aiclient.Action, content string) (*aiclient.AnalysisResponse, error)
}

// Result is one successful analysis.
type Result struct {
	Action      aiclient.Action
	Content     string
	Suggestions []string
	Timestamp   time.Time
}

// Outcome is what Run reports back.
type Outcome struct {
	Result Result
	// AddedTags lists the suggested tags that were new to the note.
	AddedTags []string
}

// Workbench holds a note's content and tags together with the analysis results.
type Workbench struct {
	analyzer Analyzer

	mu      sync.Mutex
	content string
	tags    []string
	results []Result
}

// New creates a workbench for a note.
func New(analyzer Analyzer, content string, tags []string) *Workbench {
	return &Workbench{
		analyzer: analyzer,
		content:  content,
		tags:     slices.Clone(tags),
	}
}

// Run analyzes the selection, or the whole note when the selection is blank.
// Tags suggested by a suggest-tags run are merged into the note's tags.
func (w *Workbench) Run(ctx context.Context, action aiclient.Action, selection string) (*Outcome, error) {
	target := strings.TrimSpace(selection)
	if target == "" {
		w.mu.Lock()
		target = w.content
		w.mu.Unlock()
	}
	if strings.TrimSpace(target) == "" {
		return nil, ErrNothingToAnalyze
	}

	res, err := w.analyzer.Analyze(ctx, action, target)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	out := &Outcome{
		Result: Result{
			Action:      action,
			Content:     res.Result,
			Suggestions: res.Suggestions(),
			Timestamp:   time.Now(),
		},
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.results = slices.Insert(w.results, 0, out.Result)
	if action == aiclient.ActionSuggestTags {
		for _, tag := range res.SuggestedTags {
			tag = strings.TrimSpace(tag)
			if w.addTagLocked(tag) {
				out.AddedTags = append(out.AddedTags, tag)
			}
		}
	}
	return out, nil
}

// Apply writes a result back into the note. An optimized text replaces the
// content; anything else is appended under a heading naming the action.
func (w *Workbench) Apply(r Result) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if r.Action == aiclient.ActionOptimize {
		w.content = r.Content
	} else {
		w.content = fmt.Sprintf("%s\n\n## AI suggestion (%s)\n%s", w.content, r.Action, r.Content)
	}
	return w.content
}

// AddTag adds a single tag, reporting false if it was already present or blank.
func (w *Workbench) AddTag(tag string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.addTagLocked(tag)
}

func (w *Workbench) addTagLocked(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(w.tags, tag) {
		return false
	}
	w.tags = append(w.tags, tag)
	return true
}

// Results returns the analysis results, most recent first.
func (w *Workbench) Results() []Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.results)
}

func (w *Workbench) Content() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.content
}

func (w *Workbench) Tags() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.tags)
}

func (w *Workbench) ClearResults() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.results = nil
}
