package history

import (
	"context"
	"time"
)

// Entry is one journaled conversation message.
type Entry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Journal records conversation transcripts.
type Journal interface {
	Save(ctx context.Context, e Entry) error
	// List returns the entries of a session in the order they were saved.
	List(ctx context.Context, sessionID string) ([]Entry, error)
	Close() error
}
