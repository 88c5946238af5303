package aiclient

import (
	"context"
	"fmt"
	"net/http"
	"slices"
)

// Action is an analysis with a dedicated endpoint. Its value is the endpoint's
// last path segment.
type Action string

const (
	ActionSummarize         Action = "summarize"
	ActionSuggestCategories Action = "suggest-categories"
	ActionSuggestTags       Action = "suggest-tags"
	ActionExplainCode       Action = "explain-code"
	ActionOptimize          Action = "optimize"
	ActionGenerateOutline   Action = "generate-outline"
)

// Actions lists every dedicated analysis endpoint.
var Actions = []Action{
	ActionSummarize,
	ActionSuggestCategories,
	ActionSuggestTags,
	ActionExplainCode,
	ActionOptimize,
	ActionGenerateOutline,
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return slices.Contains(Actions, a)
}

// AnalysisType maps the action onto the generic analyze-note enum.
func (a Action) AnalysisType() AnalysisType {
	switch a {
	case ActionSummarize:
		return AnalysisSummary
	case ActionSuggestCategories:
		return AnalysisCategory
	case ActionSuggestTags:
		return AnalysisTags
	case ActionExplainCode:
		return AnalysisExplainCode
	case ActionOptimize:
		return AnalysisOptimize
	case ActionGenerateOutline:
		return AnalysisGenerateOutline
	default:
		return ""
	}
}

// Title is a short human label for the action.
func (a Action) Title() string {
	switch a {
	case ActionSummarize:
		return "Summary"
	case ActionSuggestCategories:
		return "Suggested categories"
	case ActionSuggestTags:
		return "Suggested tags"
	case ActionExplainCode:
		return "Code explanation"
	case ActionOptimize:
		return "Optimized content"
	case ActionGenerateOutline:
		return "Outline"
	default:
		return string(a)
	}
}

type contentRequest struct {
	Content string `json:"content"`
}

// AnalyzeNote runs the generic analysis endpoint.
func (c *Client) AnalyzeNote(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	var res AnalysisResponse
	if err := c.do(ctx, http.MethodPost, "/api/ai/analyze-note", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Analyze runs the dedicated endpoint for action on content.
func (c *Client) Analyze(ctx context.Context, action Action, content string) (*AnalysisResponse, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAction, action)
	}

	var res AnalysisResponse
	if err := c.do(ctx, http.MethodPost, "/api/ai/"+string(action), contentRequest{Content: content}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Summarize generates a summary of content.
func (c *Client) Summarize(ctx context.Context, content string) (*AnalysisResponse, error) {
	return c.Analyze(ctx, ActionSummarize, content)
}

// SuggestCategories proposes categories for content.
func (c *Client) SuggestCategories(ctx context.Context, content string) (*AnalysisResponse, error) {
	return c.Analyze(ctx, ActionSuggestCategories, content)
}

// SuggestTags proposes tags for content.
func (c *Client) SuggestTags(ctx context.Context, content string) (*AnalysisResponse, error) {
	return c.Analyze(ctx, ActionSuggestTags, content)
}

// ExplainCode explains the code in content.
func (c *Client) ExplainCode(ctx context.Context, content string) (*AnalysisResponse, error) {
	return c.Analyze(ctx, ActionExplainCode, content)
}

// Optimize rewrites content.
func (c *Client) Optimize(ctx context.Context, content string) (*AnalysisResponse, error) {
	return c.Analyze(ctx, ActionOptimize, content)
}

// GenerateOutline builds an outline of content.
func (c *Client) GenerateOutline(ctx context.Context, content string) (*AnalysisResponse, error) {
	return c.Analyze(ctx, ActionGenerateOutline, content)
}
