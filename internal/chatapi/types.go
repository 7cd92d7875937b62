// Package chatapi is the client for the assistant backend's chat API. It
// covers both the incremental (server-sent events) and non-incremental
// request paths.
package chatapi

// HistoryEntry is a role-tagged message sent as context for the next request.
// Only finalized conversation turns are projected into history.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the shared request body for both request paths. Stream
// selects the incremental variant.
type ChatRequest struct {
	Message string         `json:"message"`
	Emotion string         `json:"emotion"`
	History []HistoryEntry `json:"history"`
	Stream  bool           `json:"stream"`
}

// ChatReply is the non-incremental response body.
type ChatReply struct {
	Reply       string `json:"reply"`
	EmotionUsed string `json:"emotion_used"`
	Provider    string `json:"provider,omitempty"`
}

// DeltaKind discriminates the variants of a streamed content delta.
type DeltaKind int

const (
	// DeltaText carries a chunk of generated text to append.
	DeltaText DeltaKind = iota
	// DeltaEnd marks successful completion of the stream.
	DeltaEnd
	// DeltaError marks a server-reported failure; the stream is terminal.
	DeltaError
)

func (k DeltaKind) String() string {
	switch k {
	case DeltaText:
		return "text"
	case DeltaEnd:
		return "end"
	case DeltaError:
		return "error"
	default:
		return "unknown"
	}
}

// Delta is one incremental unit of a streamed reply. Kind selects which
// fields are meaningful: Text for DeltaText, Message for DeltaError, and
// EmotionUsed/Provider whenever the server includes them.
type Delta struct {
	Kind        DeltaKind
	Text        string
	EmotionUsed string
	Provider    string
	Message     string
}

// streamChunk is the wire shape of one streamed frame payload.
type streamChunk struct {
	Content     string `json:"content"`
	Done        bool   `json:"done"`
	EmotionUsed string `json:"emotion_used,omitempty"`
	Provider    string `json:"provider,omitempty"`
	Error       bool   `json:"error,omitempty"`
}
