package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseServer returns a test server that validates the streaming request and
// writes the given frames, flushing after each one.
func sseServer(t *testing.T, frames ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range frames {
			_, _ = w.Write([]byte(frame))
			flusher.Flush()
		}
	}))
}

func drainStream(t *testing.T, stream *Stream) []Delta {
	t.Helper()
	defer stream.Close()
	var deltas []Delta
	for stream.Next() {
		deltas = append(deltas, stream.Current())
	}
	return deltas
}

func TestStream_Success(t *testing.T) {
	server := sseServer(t,
		"data: {\"content\": \"Hel\", \"done\": false}\n\n",
		"data: {\"content\": \"lo\", \"done\": false}\n\n",
		"data: {\"content\": \"\", \"done\": true, \"provider\": \"groq\", \"emotion_used\": \"neutral\"}\n\n",
	)
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	stream, err := c.Stream(context.Background(), ChatRequest{Message: "hi", Emotion: "neutral"})
	require.NoError(t, err)

	deltas := drainStream(t, stream)
	require.NoError(t, stream.Err())
	require.Len(t, deltas, 3)
	assert.Equal(t, DeltaText, deltas[0].Kind)
	assert.Equal(t, "Hel", deltas[0].Text)
	assert.Equal(t, "lo", deltas[1].Text)
	assert.Equal(t, DeltaEnd, deltas[2].Kind)
	assert.Equal(t, "groq", deltas[2].Provider)
}

func TestStream_OpenFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "model unavailable"})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	_, err := c.Stream(context.Background(), ChatRequest{Message: "hi"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "model unavailable", apiErr.Message)
}

func TestStream_ConnectionFailure(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil, nil)
	_, err := c.Stream(context.Background(), ChatRequest{Message: "hi"})
	require.Error(t, err)
}

func TestStream_ErrorDeltaIsTerminal(t *testing.T) {
	server := sseServer(t,
		"data: {\"content\": \"partial\", \"done\": false}\n\n",
		"data: {\"content\": \"boom\", \"done\": true, \"error\": true}\n\n",
		"data: {\"content\": \"never seen\", \"done\": false}\n\n",
	)
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	stream, err := c.Stream(context.Background(), ChatRequest{Message: "hi"})
	require.NoError(t, err)

	deltas := drainStream(t, stream)
	require.Len(t, deltas, 2)
	assert.Equal(t, DeltaError, deltas[1].Kind)
	assert.Equal(t, "boom", deltas[1].Message)
	assert.ErrorIs(t, stream.Err(), ErrStreamFailed)
}

func TestStream_SilentClose(t *testing.T) {
	// End of input with no done frame is a successful close.
	server := sseServer(t,
		"data: {\"content\": \"all there is\", \"done\": false}\n\n",
	)
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	stream, err := c.Stream(context.Background(), ChatRequest{Message: "hi"})
	require.NoError(t, err)

	deltas := drainStream(t, stream)
	require.NoError(t, stream.Err())
	require.Len(t, deltas, 1)
	assert.Equal(t, "all there is", deltas[0].Text)
}

func TestStream_SkipsMalformedFrame(t *testing.T) {
	server := sseServer(t,
		"data: {\"content\": \"a\", \"done\": false}\n\n",
		"data: {definitely not json\n\n",
		"data: {\"content\": \"b\", \"done\": false}\n\n",
		"data: {\"content\": \"\", \"done\": true}\n\n",
	)
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	stream, err := c.Stream(context.Background(), ChatRequest{Message: "hi"})
	require.NoError(t, err)

	deltas := drainStream(t, stream)
	require.NoError(t, stream.Err())
	require.Len(t, deltas, 3)
	assert.Equal(t, "a", deltas[0].Text)
	assert.Equal(t, "b", deltas[1].Text)
	assert.Equal(t, DeltaEnd, deltas[2].Kind)
}

func TestStream_CloseIsIdempotent(t *testing.T) {
	server := sseServer(t, "data: {\"content\": \"x\", \"done\": false}\n\n")
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	stream, err := c.Stream(context.Background(), ChatRequest{Message: "hi"})
	require.NoError(t, err)

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())
	assert.False(t, stream.Next())
}

func TestNewClient_DefaultTimeouts(t *testing.T) {
	c := NewClient("http://localhost", nil, nil)

	// The non-incremental default carries a request timeout; the streaming
	// default must not, since http.Client.Timeout covers the whole body
	// read and would sever a long-lived stream mid-reply.
	assert.NotZero(t, c.client.Timeout)
	assert.Zero(t, c.streamClient.Timeout)
}

func TestNewClient_CustomClientUsedForBothPaths(t *testing.T) {
	custom := &http.Client{}
	c := NewClient("http://localhost", custom, nil)

	assert.Same(t, custom, c.client)
	assert.Same(t, custom, c.streamClient)
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "hello", req.Message)
		assert.Equal(t, []HistoryEntry{{Role: "user", Content: "earlier"}}, req.History)

		_ = json.NewEncoder(w).Encode(ChatReply{Reply: "world", EmotionUsed: "happy", Provider: "groq"})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	reply, err := c.Complete(context.Background(), ChatRequest{
		Message: "hello",
		Emotion: "happy",
		History: []HistoryEntry{{Role: "user", Content: "earlier"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "world", reply.Reply)
	assert.Equal(t, "happy", reply.EmotionUsed)
	assert.Equal(t, "groq", reply.Provider)
}

func TestComplete_ErrorEnvelopes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error field", http.StatusInternalServerError, `{"error": "it broke"}`, "it broke"},
		{"string detail", http.StatusUnauthorized, `{"detail": "not authenticated"}`, "not authenticated"},
		{"structured detail", http.StatusUnprocessableEntity, `{"detail": [{"msg": "field required"}]}`, "field required"},
		{"unparseable body", http.StatusBadGateway, "<html>nope</html>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, nil)
			_, err := c.Complete(context.Background(), ChatRequest{Message: "hi"})

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}
