package aiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	msgServerError  = "server error"
	msgNetworkError = "network connection failed, please check your network"
	msgUnknownError = "unknown error"

	// maxErrorBody caps how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

var (
	// ErrTransport matches every *Error: the request did not produce a usable 2xx response.
	ErrTransport = errors.New("transport error")
	// ErrApplication matches every *AppError: the backend answered but reported failure.
	ErrApplication = errors.New("application error")
	// ErrUnsupportedAction is returned by Analyze for an unknown action.
	ErrUnsupportedAction = errors.New("unsupported analysis action")
)

// Error is the normalized transport failure. Message is always non-empty and is
// meant for end users; Err keeps the cause for errors.Is/As.
type Error struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	Message    string
	// TraceID is the X-Trace-Id sent with the failed request.
	TraceID string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return msgUnknownError
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) true for every *Error.
func (e *Error) Is(target error) bool { return target == ErrTransport }

// AppError is an in-band failure reported with success == false.
type AppError struct {
	Message string
}

func (e *AppError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrApplication) true for every *AppError.
func (e *AppError) Is(target error) bool { return target == ErrApplication }

func newAppError(msg, fallback string) *AppError {
	if strings.TrimSpace(msg) == "" {
		msg = fallback
	}
	return &AppError{Message: msg}
}

type errorBody struct {
	Message      string `json:"message"`
	ErrorMessage string `json:"errorMessage"`
}

// statusError builds the error for a non-2xx response, preferring the server's
// own message over the generic one.
func statusError(traceID string, resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := msgServerError
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case strings.TrimSpace(body.Message) != "":
			msg = body.Message
		case strings.TrimSpace(body.ErrorMessage) != "":
			msg = body.ErrorMessage
		}
	}

	return &Error{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("%s (%d)", msg, resp.StatusCode),
		TraceID:    traceID,
		Err:        fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
	}
}

// networkError wraps a failure where no response was received.
func networkError(traceID string, err error) *Error {
	return &Error{
		Message: msgNetworkError,
		TraceID: traceID,
		Err:     err,
	}
}

// otherError wraps anything else, such as building the request or decoding a 2xx body.
func otherError(traceID string, err error) *Error {
	msg := msgUnknownError
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Error{
		Message: msg,
		TraceID: traceID,
		Err:     err,
	}
}
