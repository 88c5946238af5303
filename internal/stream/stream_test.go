package stream

import (
	"errors"
	"io"
	"iter"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pieceReader returns one piece per Read call, then err (io.EOF when nil).
type pieceReader struct {
	pieces [][]byte
	err    error
}

func (p *pieceReader) Read(b []byte) (int, error) {
	if len(p.pieces) == 0 {
		if p.err != nil {
			return 0, p.err
		}
		return 0, io.EOF
	}
	n := copy(b, p.pieces[0])
	if n < len(p.pieces[0]) {
		p.pieces[0] = p.pieces[0][n:]
	} else {
		p.pieces = p.pieces[1:]
	}
	return n, nil
}

func collect(t *testing.T, seq iter.Seq2[string, error]) ([]string, error) {
	t.Helper()
	var out []string
	for text, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, text)
	}
	return out, nil
}

func TestAccumulate_SnapshotsAreCumulative(t *testing.T) {
	r := &pieceReader{pieces: [][]byte{[]byte("Hello"), []byte(", "), []byte("world")}}

	got, err := collect(t, Accumulate(r))
	require.NoError(t, err)
	require.Equal(t, []string{"Hello", "Hello, ", "Hello, world"}, got)
}

func TestAccumulate_MultiByteSplitAcrossReads(t *testing.T) {
	euro := []byte("€") // e2 82 ac
	r := &pieceReader{pieces: [][]byte{euro[:2], euro[2:]}}

	got, err := collect(t, Accumulate(r))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, s := range got {
		require.True(t, utf8.ValidString(s), "snapshot %q is not valid UTF-8", s)
		require.NotContains(t, s, string(utf8.RuneError))
	}
	require.Equal(t, "€", got[len(got)-1])
}

func TestAccumulate_SmallReadBuffer(t *testing.T) {
	text := "笔记摘要：你好，世界"
	r := &pieceReader{pieces: [][]byte{[]byte(text)}}

	got, err := collect(t, Accumulate(r, WithReadSize(1)))
	require.NoError(t, err)
	for _, s := range got {
		require.True(t, utf8.ValidString(s))
		require.NotContains(t, s, string(utf8.RuneError))
	}
	require.Equal(t, text, got[len(got)-1])
}

func TestAccumulate_TruncatedTailIsFlushed(t *testing.T) {
	euro := []byte("€")
	r := &pieceReader{pieces: [][]byte{[]byte("ok"), euro[:2]}}

	got, err := collect(t, Accumulate(r))
	require.NoError(t, err)
	require.Equal(t, "ok", got[0])
	last := got[len(got)-1]
	require.True(t, strings.HasPrefix(last, "ok"))
	require.Contains(t, last, string(utf8.RuneError))
}

func TestAccumulate_ReadError(t *testing.T) {
	boom := errors.New("connection reset")
	r := &pieceReader{pieces: [][]byte{[]byte("partial")}, err: boom}

	got, err := collect(t, Accumulate(r))
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"partial"}, got)
}

func TestAccumulate_NotRestartable(t *testing.T) {
	seq := Accumulate(strings.NewReader("once"))

	got, err := collect(t, seq)
	require.NoError(t, err)
	require.Equal(t, []string{"once"}, got)

	_, err = collect(t, seq)
	require.ErrorIs(t, err, ErrConsumed)
}

func TestAccumulate_StopEarly(t *testing.T) {
	r := &pieceReader{pieces: [][]byte{[]byte("a"), []byte("b"), []byte("c")}}

	var got []string
	for text, err := range Accumulate(r) {
		require.NoError(t, err)
		got = append(got, text)
		break
	}
	require.Equal(t, []string{"a"}, got)
}

func TestAccumulateEvents(t *testing.T) {
	body := "data: Hello\n\n: keep-alive\n\ndata: , world\n\n"

	got, err := collect(t, AccumulateEvents(strings.NewReader(body)))
	require.NoError(t, err)
	require.Equal(t, []string{"Hello", "Hello, world"}, got)
}

type recorder struct {
	calls []string
	texts []string
	err   error
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnChunk: func(text string) {
			r.calls = append(r.calls, "chunk")
			r.texts = append(r.texts, text)
		},
		OnComplete: func() { r.calls = append(r.calls, "complete") },
		OnError: func(err error) {
			r.calls = append(r.calls, "error")
			r.err = err
		},
	}
}

func TestConsume_CompleteAfterAllChunks(t *testing.T) {
	rec := &recorder{}
	r := &pieceReader{pieces: [][]byte{[]byte("a"), []byte("b")}}

	Consume(Accumulate(r), rec.handlers())

	require.Equal(t, []string{"chunk", "chunk", "complete"}, rec.calls)
	require.Equal(t, []string{"a", "ab"}, rec.texts)
	require.NoError(t, rec.err)
}

func TestConsume_ErrorFiresOnce(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	r := &pieceReader{pieces: [][]byte{[]byte("a")}, err: boom}

	Consume(Accumulate(r), rec.handlers())

	require.Equal(t, []string{"chunk", "error"}, rec.calls)
	require.ErrorIs(t, rec.err, boom)
}

func TestLifecycle_TerminalStatesIgnoreLaterTriggers(t *testing.T) {
	rec := &recorder{}
	sm := newLifecycle(rec.handlers())

	require.NoError(t, sm.Fire(triggerChunk, "a"))
	require.NoError(t, sm.Fire(triggerFail, errors.New("first")))
	require.NoError(t, sm.Fire(triggerChunk, "ab"))
	require.NoError(t, sm.Fire(triggerEnd))
	require.NoError(t, sm.Fire(triggerFail, errors.New("second")))

	require.Equal(t, []string{"chunk", "error"}, rec.calls)
	assert.EqualError(t, rec.err, "first")
	require.Equal(t, stateFailed, sm.MustState())
}

func TestLifecycle_NoErrorAfterComplete(t *testing.T) {
	rec := &recorder{}
	sm := newLifecycle(rec.handlers())

	require.NoError(t, sm.Fire(triggerEnd))
	require.NoError(t, sm.Fire(triggerFail, errors.New("late")))
	require.NoError(t, sm.Fire(triggerChunk, "late"))

	require.Equal(t, []string{"complete"}, rec.calls)
	require.Equal(t, stateCompleted, sm.MustState())
}

func TestConsume_EmptyStreamCompletes(t *testing.T) {
	rec := &recorder{}

	Consume(Accumulate(strings.NewReader("")), rec.handlers())

	require.Equal(t, []string{"complete"}, rec.calls)
}

func TestConsume_NilHandlers(t *testing.T) {
	require.NotPanics(t, func() {
		Consume(Accumulate(strings.NewReader("x")), Handlers{})
	})
}
