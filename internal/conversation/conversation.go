// Package conversation keeps the client-side state of an AI chat: the visible
// transcript and the backend session id that threads turns together.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comigor/notesai/internal/aiclient"
	"github.com/comigor/notesai/internal/history"
	"github.com/comigor/notesai/internal/logger"
)

var (
	// ErrEmptyMessage is returned by Send for blank input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrNoNoteContent is returned by QuickAction when there is no note to work on.
	ErrNoNoteContent = errors.New("select or edit some note content first")
)

// Backend is the subset of *aiclient.Client a conversation needs.
type Backend interface {
	Chat(ctx context.Context, req aiclient.ChatRequest) (*aiclient.ChatResponse, error)
	ClearSession(ctx context.Context, sessionID string) error
	Analyze(ctx context.Context, action aiclient.Action, content string) (*aiclient.AnalysisResponse, error)
}

// Message is one entry of the visible transcript.
type Message struct {
	ID        string
	Role      aiclient.Role
	Content   string
	Timestamp time.Time
}

// Conversation holds the transcript and session of one chat. State changes are
// guarded by a mutex; callers still serialize Send calls to keep turns ordered.
type Conversation struct {
	backend Backend
	journal history.Journal
	log     *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	messages  []Message
	sessionID string
}

// Option customizes a Conversation.
type Option func(*Conversation)

// WithJournal records every completed turn in j.
func WithJournal(j history.Journal) Option {
	return func(c *Conversation) { c.journal = j }
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conversation) { c.log = l }
}

// New starts an empty conversation without a session.
func New(backend Backend, opts ...Option) *Conversation {
	c := &Conversation{
		backend: backend,
		log:     logger.L,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(slog.String("component", "conversation"))
	return c
}

// Send posts text as the next user turn. The user message is shown right away
// and stays in the transcript even if the turn fails. On success the reply is
// appended and its session id replaces the current one. A success:false answer
// is returned as an *aiclient.AppError.
func (c *Conversation) Send(ctx context.Context, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	user := c.appendLocked(aiclient.RoleUser, text)
	sessionID := c.sessionID
	c.mu.Unlock()

	res, err := c.backend.Chat(ctx, aiclient.ChatRequest{Message: text, SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	reply := c.appendLocked(aiclient.RoleAssistant, res.Content)
	c.sessionID = res.SessionID
	c.mu.Unlock()

	c.record(ctx, res.SessionID, user, reply)
	return &reply, nil
}

var quickPrompts = map[aiclient.Action]string{
	aiclient.ActionSummarize:         "Please summarize my note:",
	aiclient.ActionOptimize:          "Please help me improve this note:",
	aiclient.ActionExplainCode:       "Please explain this code:",
	aiclient.ActionSuggestTags:       "Please suggest tags for my note:",
	aiclient.ActionSuggestCategories: "Please suggest categories for my note:",
	aiclient.ActionGenerateOutline:   "Please outline my note:",
}

// QuickAction runs an analysis on noteContent and, on success, adds the implied
// user prompt and the analysis result to the transcript. Nothing is added on failure.
func (c *Conversation) QuickAction(ctx context.Context, action aiclient.Action, noteContent string) (*Message, error) {
	prompt, ok := quickPrompts[action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", aiclient.ErrUnsupportedAction, action)
	}
	if strings.TrimSpace(noteContent) == "" {
		return nil, ErrNoNoteContent
	}

	res, err := c.backend.Analyze(ctx, action, noteContent)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	user := c.appendLocked(aiclient.RoleUser, prompt)
	reply := c.appendLocked(aiclient.RoleAssistant, res.Result)
	sessionID := c.sessionID
	c.mu.Unlock()

	c.record(ctx, sessionID, user, reply)
	return &reply, nil
}

// Clear ends the conversation. The backend session is dropped on a best-effort
// basis; the local transcript and session id are reset regardless.
func (c *Conversation) Clear(ctx context.Context) {
	c.mu.Lock()
	sessionID := c.sessionID
	c.mu.Unlock()

	if sessionID != "" {
		if err := c.backend.ClearSession(ctx, sessionID); err != nil {
			c.log.Warn("failed to clear session", "sessionID", sessionID, "error", err)
		}
	}

	c.mu.Lock()
	c.messages = nil
	c.sessionID = ""
	c.mu.Unlock()
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// SessionID returns the current backend session, or "" before the first reply.
func (c *Conversation) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Conversation) appendLocked(role aiclient.Role, content string) Message {
	m := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: c.now(),
	}
	c.messages = append(c.messages, m)
	return m
}

func (c *Conversation) record(ctx context.Context, sessionID string, msgs ...Message) {
	if c.journal == nil {
		return
	}
	for _, m := range msgs {
		err := c.journal.Save(ctx, history.Entry{
			SessionID: sessionID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.Timestamp,
		})
		if err != nil {
			c.log.Error("failed to journal message", "error", err)
		}
	}
}
