package chatapi

import (
	"errors"
	"io"
	"log/slog"

	"github.com/madhava696/EACA/internal/sse"
)

// ErrStreamFailed indicates the server reported a failure mid-stream. The
// terminal error delta has already been yielded to the consumer when this is
// returned from Err.
var ErrStreamFailed = errors.New("stream reported an error")

// Stream is a single-pass, pull-based sequence of deltas from one streaming
// exchange. It is not restartable. Iterate with Next/Current and check Err
// once Next returns false:
//
//	for stream.Next() {
//		delta := stream.Current()
//		...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// Close releases the underlying connection and is safe to call on every exit
// path, including after an error.
type Stream struct {
	body   io.Closer
	dec    *sse.Decoder
	logger *slog.Logger

	cur    Delta
	err    error
	done   bool
	closed bool
}

// Next advances to the next delta. It returns false when the stream is
// exhausted: after a final delta, after a terminal error delta, or at
// natural end of input. Natural end of input without a final delta is a
// successful silent close, not an error.
func (s *Stream) Next() bool {
	if s.done || s.closed {
		return false
	}

	for {
		frame, err := s.dec.Next()
		if err != nil {
			s.done = true
			if err != io.EOF {
				s.err = err
			}
			return false
		}

		delta, ok, err := parseFrame(frame)
		if err != nil {
			// A single malformed chunk must not abort the stream.
			s.logger.Warn("skipping malformed stream chunk", "error", err)
			continue
		}
		if !ok {
			continue
		}

		s.cur = delta
		switch delta.Kind {
		case DeltaEnd:
			s.done = true
		case DeltaError:
			// Yield the error delta so the consumer can react, then
			// treat the stream as terminal.
			s.done = true
			s.err = ErrStreamFailed
		}
		return true
	}
}

// Current returns the delta produced by the last successful call to Next.
func (s *Stream) Current() Delta {
	return s.cur
}

// Err returns the terminal error, if any, once Next has returned false.
func (s *Stream) Err() error {
	return s.err
}

// Close releases the underlying response body. It is idempotent.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
