package aiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ModelParams are optional sampling overrides forwarded to the backend.
type ModelParams struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	TopP        *float64 `json:"topP,omitempty"`
}

// ChatRequest is the body of POST /api/ai/chat. SessionID is omitted when empty.
type ChatRequest struct {
	Message     string        `json:"message"`
	SessionID   string        `json:"sessionId,omitempty"`
	Context     []ChatMessage `json:"context,omitempty"`
	ModelParams *ModelParams  `json:"modelParams,omitempty"`
}

// TokenUsage reports what a chat turn cost.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// ChatResponse is returned by chat and test calls. A 200 response may still carry
// Success == false; see Err.
type ChatResponse struct {
	Content      string      `json:"content"`
	SessionID    string      `json:"sessionId"`
	Timestamp    Time        `json:"timestamp"`
	Model        string      `json:"model"`
	TokenUsage   *TokenUsage `json:"tokenUsage,omitempty"`
	Success      bool        `json:"success"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}

// Err returns the in-band application error, or nil when Success is set.
func (r *ChatResponse) Err() error {
	if r.Success {
		return nil
	}
	return newAppError(r.ErrorMessage, "AI response failed")
}

// AnalysisType is the backend's analysis enum.
type AnalysisType string

const (
	AnalysisSummary         AnalysisType = "SUMMARY"
	AnalysisCategory        AnalysisType = "CATEGORY"
	AnalysisTags            AnalysisType = "TAGS"
	AnalysisOptimize        AnalysisType = "OPTIMIZE"
	AnalysisExplainCode     AnalysisType = "EXPLAIN_CODE"
	AnalysisGenerateOutline AnalysisType = "GENERATE_OUTLINE"
	AnalysisFindErrors      AnalysisType = "FIND_ERRORS"
	AnalysisRelatedTopics   AnalysisType = "RELATED_TOPICS"
)

// AnalysisTypes lists every analysis type the backend understands.
var AnalysisTypes = []AnalysisType{
	AnalysisSummary,
	AnalysisCategory,
	AnalysisTags,
	AnalysisOptimize,
	AnalysisExplainCode,
	AnalysisGenerateOutline,
	AnalysisFindErrors,
	AnalysisRelatedTopics,
}

// Valid reports whether t is a known analysis type.
func (t AnalysisType) Valid() bool {
	return slices.Contains(AnalysisTypes, t)
}

// AnalysisRequest is the body of POST /api/ai/analyze-note.
type AnalysisRequest struct {
	Content      string       `json:"content"`
	Title        string       `json:"title,omitempty"`
	AnalysisType AnalysisType `json:"analysisType"`
	UserID       *int64       `json:"userId,omitempty"`
	NoteID       *int64       `json:"noteId,omitempty"`
}

// AnalysisResponse is returned by every analysis endpoint.
type AnalysisResponse struct {
	Result              string       `json:"result"`
	AnalysisType        AnalysisType `json:"analysisType,omitempty"`
	SuggestedCategories []string     `json:"suggestedCategories,omitempty"`
	SuggestedTags       []string     `json:"suggestedTags,omitempty"`
	RelatedTopics       []string     `json:"relatedTopics,omitempty"`
	Timestamp           Time         `json:"timestamp"`
	Success             bool         `json:"success"`
	ErrorMessage        string       `json:"errorMessage,omitempty"`
	ConfidenceScore     *float64     `json:"confidenceScore,omitempty"`
}

// Err returns the in-band application error, or nil when Success is set.
func (r *AnalysisResponse) Err() error {
	if r.Success {
		return nil
	}
	return newAppError(r.ErrorMessage, "analysis failed")
}

// Suggestions returns the suggested tags, falling back to suggested categories.
func (r *AnalysisResponse) Suggestions() []string {
	if len(r.SuggestedTags) > 0 {
		return r.SuggestedTags
	}
	return r.SuggestedCategories
}

// Status is the backend's health payload. Its shape is implementation-defined.
type Status map[string]any

// Time decodes the backend's timestamps, which come as RFC 3339, as a zone-less
// local date-time, or as a [y, m, d, h, min, s, nanos] array. Anything else
// decodes to the zero time rather than failing the whole response.
type Time struct {
	time.Time
}

var localLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '[' {
		var parts []int
		if err := json.Unmarshal(b, &parts); err != nil || len(parts) < 3 {
			return nil
		}
		for len(parts) < 7 {
			parts = append(parts, 0)
		}
		t.Time = time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], time.Local)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	for _, layout := range localLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", t.Format(time.RFC3339Nano))), nil
}
