package chatapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
)

// parseFrame extracts and decodes the payload of one event frame. It returns
// ok = false for frames with no data field, such as comments or keep-alives.
// A decode failure is returned as an error so the caller can log and skip the
// frame; it must not abort the stream.
func parseFrame(frame string) (Delta, bool, error) {
	payload, ok := framePayload(frame)
	if !ok {
		return Delta{}, false, nil
	}

	if payload == doneSentinel {
		return Delta{Kind: DeltaEnd}, true, nil
	}

	var chunk streamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return Delta{}, false, fmt.Errorf("decode chunk: %w", err)
	}

	switch {
	case chunk.Error:
		return Delta{
			Kind:        DeltaError,
			Message:     chunk.Content,
			EmotionUsed: chunk.EmotionUsed,
			Provider:    chunk.Provider,
		}, true, nil
	case chunk.Done:
		return Delta{
			Kind:        DeltaEnd,
			EmotionUsed: chunk.EmotionUsed,
			Provider:    chunk.Provider,
		}, true, nil
	default:
		return Delta{
			Kind:        DeltaText,
			Text:        chunk.Content,
			EmotionUsed: chunk.EmotionUsed,
			Provider:    chunk.Provider,
		}, true, nil
	}
}

// framePayload collects the data lines of an event frame. Multiple data
// lines are joined with newlines per the event-stream convention.
func framePayload(frame string) (string, bool) {
	var data []string
	for _, line := range strings.Split(frame, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		value := strings.TrimPrefix(line, dataPrefix)
		value = strings.TrimPrefix(value, " ")
		data = append(data, value)
	}
	if data == nil {
		return "", false
	}
	return strings.Join(data, "\n"), true
}
