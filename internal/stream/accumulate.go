// Package stream turns a streamed HTTP body into a sequence of accumulated-text
// snapshots and dispatches them to chunk/complete/error handlers.
package stream

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/tmaxmax/go-sse"
	"golang.org/x/text/encoding/unicode"
)

// DefaultReadSize is the read buffer size used when none is given.
const DefaultReadSize = 4096

// ErrConsumed is yielded when a sequence is iterated a second time.
var ErrConsumed = errors.New("stream already consumed")

type options struct {
	readSize int
}

// Option configures Accumulate.
type Option func(*options)

// WithReadSize sets the read buffer size. Values below utf8.UTFMax are raised to it.
func WithReadSize(n int) Option {
	return func(o *options) {
		o.readSize = max(n, utf8.UTFMax)
	}
}

// Accumulate reads r until EOF and yields the full text read so far after every
// read that produced new complete characters. Bytes of a character split across
// reads are held back until the character is complete; invalid sequences decode
// to U+FFFD. A read error is yielded once with the text accumulated so far and
// ends the sequence. The sequence can be ranged over only once.
func Accumulate(r io.Reader, opts ...Option) iter.Seq2[string, error] {
	o := options{readSize: DefaultReadSize}
	for _, opt := range opts {
		opt(&o)
	}

	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if used.Swap(true) {
			yield("", ErrConsumed)
			return
		}

		dec := unicode.UTF8.NewDecoder().Reader(r)
		buf := make([]byte, o.readSize)
		var acc []byte
		emitted := 0

		for {
			n, err := dec.Read(buf)
			if n > 0 {
				acc = append(acc, buf[:n]...)
				if end := completePrefix(acc); end > emitted {
					emitted = end
					if !yield(string(acc[:end]), nil) {
						return
					}
				}
			}
			if errors.Is(err, io.EOF) {
				// The decoder flushes trailing bytes as U+FFFD at EOF, so
				// whatever is left is complete now.
				if len(acc) > emitted {
					yield(string(acc), nil)
				}
				return
			}
			if err != nil {
				yield(string(acc[:emitted]), fmt.Errorf("error reading stream: %w", err))
				return
			}
		}
	}
}

// completePrefix returns the length of the longest prefix of b that does not end
// in the middle of a UTF-8 encoded character.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}

// AccumulateEvents is Accumulate for text/event-stream framed bodies: the data of
// each event is appended to the accumulated text. Comment-only and empty events
// are skipped.
func AccumulateEvents(r io.Reader) iter.Seq2[string, error] {
	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if used.Swap(true) {
			yield("", ErrConsumed)
			return
		}

		var sb strings.Builder
		for ev, err := range sse.Read(r, nil) {
			if err != nil {
				yield(sb.String(), fmt.Errorf("error reading event stream: %w", err))
				return
			}
			if ev.Data == "" {
				continue
			}
			sb.WriteString(ev.Data)
			if !yield(sb.String(), nil) {
				return
			}
		}
	}
}
