// Package sse decodes server-sent-event style response bodies into discrete
// event frames.
package sse

import (
	"io"
	"strings"
)

// frameSeparator delimits event frames: a blank line between two events.
const frameSeparator = "\n\n"

// Decoder splits a byte stream into event frames. Network reads arrive at
// arbitrary boundaries, so a trailing partial frame is buffered and prepended
// to the next read before re-splitting.
type Decoder struct {
	r       io.Reader
	buf     strings.Builder
	pending []string
	readBuf []byte
	err     error
}

// NewDecoder creates a Decoder reading raw fragments from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:       r,
		readBuf: make([]byte, 4096),
	}
}

// Next returns the next complete event frame. It returns io.EOF when the
// input is exhausted. Whitespace-only segments produce no frame. A non-blank
// remainder left at end of input is emitted as a final frame; anything else
// is discarded silently.
func (d *Decoder) Next() (string, error) {
	for {
		if len(d.pending) > 0 {
			frame := d.pending[0]
			d.pending = d.pending[1:]
			return frame, nil
		}

		if d.err != nil {
			return "", d.err
		}

		n, err := d.r.Read(d.readBuf)
		if n > 0 {
			d.split(string(d.readBuf[:n]))
		}
		if err != nil {
			d.err = err
			if err == io.EOF {
				d.flush()
			}
		}
	}
}

// split appends a fragment to the carry-over buffer and moves every complete
// frame into the pending queue, keeping the trailing partial frame buffered.
func (d *Decoder) split(fragment string) {
	// Normalize after combining so a CRLF split across two fragments is
	// still folded.
	combined := normalizeNewlines(d.buf.String() + fragment)
	d.buf.Reset()

	parts := strings.Split(combined, frameSeparator)
	// The last part is not terminated by a separator yet.
	remainder := parts[len(parts)-1]
	for _, part := range parts[:len(parts)-1] {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d.pending = append(d.pending, part)
	}
	d.buf.WriteString(remainder)
}

// flush emits the buffered remainder as a final frame if it has content.
func (d *Decoder) flush() {
	remainder := d.buf.String()
	d.buf.Reset()
	if strings.TrimSpace(remainder) != "" {
		d.pending = append(d.pending, remainder)
	}
}

// normalizeNewlines folds CRLF separators into bare LF so that frame
// splitting behaves identically for both wire conventions.
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r\n") {
		return s
	}
	return strings.ReplaceAll(s, "\r\n", "\n")
}
