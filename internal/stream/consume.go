package stream

import (
	"context"
	"iter"

	"github.com/qmuntal/stateless"
)

// Handlers receive the lifecycle of one streamed request. Any of them may be nil.
type Handlers struct {
	// OnChunk receives the full text accumulated so far, not the delta.
	OnChunk func(text string)
	// OnComplete fires once after the last OnChunk when the stream ended normally.
	OnComplete func()
	// OnError fires once when the stream failed. OnComplete never fires after it.
	OnError func(err error)
}

type state string

type trigger string

const (
	stateStreaming state = "Streaming"
	stateCompleted state = "Completed"
	stateFailed    state = "Failed"

	triggerChunk trigger = "Chunk"
	triggerEnd   trigger = "End"
	triggerFail  trigger = "Fail"
)

// newLifecycle wires h into a machine where Completed and Failed are terminal:
// every trigger fired after reaching one of them is ignored.
func newLifecycle(h Handlers) *stateless.StateMachine {
	sm := stateless.NewStateMachine(stateStreaming)

	sm.Configure(stateStreaming).
		InternalTransition(triggerChunk, func(_ context.Context, args ...any) error {
			if h.OnChunk != nil {
				h.OnChunk(args[0].(string))
			}
			return nil
		}).
		Permit(triggerEnd, stateCompleted).
		Permit(triggerFail, stateFailed)

	sm.Configure(stateCompleted).
		OnEntry(func(_ context.Context, _ ...any) error {
			if h.OnComplete != nil {
				h.OnComplete()
			}
			return nil
		}).
		Ignore(triggerChunk).
		Ignore(triggerEnd).
		Ignore(triggerFail)

	sm.Configure(stateFailed).
		OnEntryFrom(triggerFail, func(_ context.Context, args ...any) error {
			if h.OnError != nil {
				h.OnError(args[0].(error))
			}
			return nil
		}).
		Ignore(triggerChunk).
		Ignore(triggerEnd).
		Ignore(triggerFail)

	return sm
}

// Consume drains seq into h. A non-nil error from seq ends consumption and is
// delivered to OnError; text yielded alongside an error is not delivered. When
// seq ends without error OnComplete fires. Exactly one of OnComplete and OnError
// fires per call.
func Consume(seq iter.Seq2[string, error], h Handlers) {
	sm := newLifecycle(h)

	for text, err := range seq {
		if err != nil {
			_ = sm.Fire(triggerFail, err)
			return
		}
		_ = sm.Fire(triggerChunk, text)
	}
	_ = sm.Fire(triggerEnd)
}
