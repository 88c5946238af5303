package aiclient

import (
	"context"
	"net/http"
	"net/url"
)

// Chat sends one conversation turn. The returned SessionID has to be passed in
// the next request to keep the conversation going; it is forwarded verbatim.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var res ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/ai/chat", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TestConnection is a liveness probe answering in the chat response shape.
func (c *Client) TestConnection(ctx context.Context) (*ChatResponse, error) {
	var res ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/ai/test", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ClearSession asks the backend to drop a session. Callers treat it as
// best-effort: the local conversation is reset regardless of the result.
func (c *Client) ClearSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/ai/session/"+url.PathEscape(sessionID), nil, nil)
}

// Status returns the backend's health and model metadata, for display only. A
// payload that is not a JSON object is returned under the "status" key.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var raw any
	if err := c.do(ctx, http.MethodGet, "/api/ai/status", nil, &raw); err != nil {
		return nil, err
	}
	if m, ok := raw.(map[string]any); ok {
		return Status(m), nil
	}
	return Status{"status": raw}, nil
}
