package aiclient

import (
	"context"
	"fmt"
	"iter"
	"mime"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/comigor/notesai/internal/stream"
)

// StreamAnswer requests the generated answer for a question and yields the
// accumulated text after every read. Bodies served as text/event-stream are
// parsed as events; anything else is read as raw UTF-8 text. A failure is
// yielded once as *Error, after the response body has been closed. The
// sequence performs one request and can be ranged over only once.
func (c *Client) StreamAnswer(ctx context.Context, questionID int) iter.Seq2[string, error] {
	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if used.Swap(true) {
			yield("", stream.ErrConsumed)
			return
		}

		path := fmt.Sprintf("/api/AI/%d", questionID)
		traceID := uuid.NewString()

		if questionID < 1 {
			yield("", c.fail(http.MethodGet, path, otherError(traceID, fmt.Errorf("questionId must be a positive integer, got %d", questionID))))
			return
		}

		req, err := c.newRequest(ctx, http.MethodGet, path, nil, traceID)
		if err != nil {
			yield("", c.fail(http.MethodGet, path, otherError(traceID, err)))
			return
		}
		req.Header.Set("Accept", "text/event-stream")

		resp, err := c.streamClient.Do(req)
		if err != nil {
			yield("", c.fail(http.MethodGet, path, networkError(traceID, err)))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			yield("", c.fail(http.MethodGet, path, statusError(traceID, resp)))
			return
		}

		var seq iter.Seq2[string, error]
		if isEventStream(resp.Header.Get("Content-Type")) {
			seq = stream.AccumulateEvents(resp.Body)
		} else {
			var opts []stream.Option
			if c.streamReadSize > 0 {
				opts = append(opts, stream.WithReadSize(c.streamReadSize))
			}
			seq = stream.Accumulate(resp.Body, opts...)
		}

		for text, err := range seq {
			if err != nil {
				// Cancel the underlying stream before reporting.
				_ = resp.Body.Close()
				yield(text, c.fail(http.MethodGet, path, networkError(traceID, err)))
				return
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

// FetchAnswerStream is the callback form of StreamAnswer: h.OnChunk receives
// each accumulated snapshot, then exactly one of h.OnComplete or h.OnError fires.
// It blocks until the stream ends.
func (c *Client) FetchAnswerStream(ctx context.Context, questionID int, h stream.Handlers) {
	stream.Consume(c.StreamAnswer(ctx, questionID), h)
}

func isEventStream(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/event-stream"
}
