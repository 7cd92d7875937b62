package sse

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader yields its chunks one Read at a time, simulating network
// fragments arriving at arbitrary boundaries.
type chunkReader struct {
	chunks []string
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	c := r.chunks[0]
	n := copy(p, c)
	if n < len(c) {
		r.chunks[0] = c[n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func collectFrames(t *testing.T, chunks ...string) []string {
	t.Helper()
	dec := NewDecoder(&chunkReader{chunks: chunks})
	var frames []string
	for {
		frame, err := dec.Next()
		if err == io.EOF {
			return frames
		}
		require.NoError(t, err)
		frames = append(frames, frame)
	}
}

func TestDecoder_SplitsFrames(t *testing.T) {
	frames := collectFrames(t, "data: one\n\ndata: two\n\ndata: three\n\n")
	assert.Equal(t, []string{"data: one", "data: two", "data: three"}, frames)
}

func TestDecoder_FragmentationInvariance(t *testing.T) {
	input := "data: {\"content\": \"Hel\"}\n\ndata: {\"content\": \"lo\"}\n\ndata: {\"done\": true}\n\n"

	whole := collectFrames(t, input)
	require.NotEmpty(t, whole)

	// Re-split the same input at every possible boundary, including
	// boundaries inside the frame separator itself.
	for cut := 1; cut < len(input); cut++ {
		frames := collectFrames(t, input[:cut], input[cut:])
		assert.Equal(t, whole, frames, "split at byte %d", cut)
	}

	// Byte-at-a-time delivery.
	bytes := make([]string, 0, len(input))
	for _, b := range []byte(input) {
		bytes = append(bytes, string(b))
	}
	assert.Equal(t, whole, collectFrames(t, bytes...))
}

func TestDecoder_EmitsUnterminatedFinalFrame(t *testing.T) {
	frames := collectFrames(t, "data: one\n\ndata: final")
	assert.Equal(t, []string{"data: one", "data: final"}, frames)
}

func TestDecoder_DiscardsWhitespaceRemainder(t *testing.T) {
	frames := collectFrames(t, "data: one\n\n", "\n \n")
	assert.Equal(t, []string{"data: one"}, frames)
}

func TestDecoder_SkipsBlankSegments(t *testing.T) {
	frames := collectFrames(t, "\n\n\n\ndata: one\n\n\n\n")
	assert.Equal(t, []string{"data: one"}, frames)
}

func TestDecoder_EmptyInput(t *testing.T) {
	assert.Empty(t, collectFrames(t))
	assert.Empty(t, collectFrames(t, ""))
}

func TestDecoder_CRLFSeparators(t *testing.T) {
	frames := collectFrames(t, "data: one\r\n\r\ndata: two\r\n\r\n")
	assert.Equal(t, []string{"data: one", "data: two"}, frames)
}

func TestDecoder_CRLFSplitAcrossFragments(t *testing.T) {
	frames := collectFrames(t, "data: one\r\n\r", "\ndata: two\r\n\r\n")
	assert.Equal(t, []string{"data: one", "data: two"}, frames)
}

func TestDecoder_ConcatenationMatchesInput(t *testing.T) {
	input := "data: a\n\ndata: b\n\ndata: c\n\n"
	frames := collectFrames(t, input)
	assert.Equal(t, strings.ReplaceAll(input, "\n\n", ""), strings.Join(frames, ""))
}
