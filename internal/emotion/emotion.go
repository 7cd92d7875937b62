// Package emotion supplies the current mood reading used as a chat request
// parameter. The pipeline only reads moods; detection (webcam, voice, text)
// lives behind the Source interface.
package emotion

import (
	"context"
	"strings"
)

// Canonical labels produced by the facial-expression detector, plus the
// self-reported aliases accepted by the chat backend.
const (
	Neutral   = "neutral"
	Happy     = "happy"
	Sad       = "sad"
	Angry     = "angry"
	Fearful   = "fearful"
	Surprised = "surprised"
	Disgusted = "disgusted"
	Stressed  = "stressed"
	Anxious   = "anxious"
	Confused  = "confused"
)

// Reading is one observation of the user's mood.
type Reading struct {
	Label      string
	Confidence float64
}

// Source provides the current mood reading for the next request.
type Source interface {
	Current(ctx context.Context) (Reading, error)
}

// ManualSource is a Source whose reading is set explicitly, e.g. from a CLI
// flag or a slash command.
type ManualSource struct {
	reading Reading
}

func NewManualSource(label string) *ManualSource {
	return &ManualSource{reading: Reading{Label: Normalize(label), Confidence: 1}}
}

func (s *ManualSource) Set(label string) {
	s.reading = Reading{Label: Normalize(label), Confidence: 1}
}

func (s *ManualSource) Current(_ context.Context) (Reading, error) {
	return s.reading, nil
}

// Normalize maps a raw detector or user-supplied label onto a canonical
// label. Unknown labels fall back to neutral.
func Normalize(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "happy", "happiness", "joy":
		return Happy
	case "sad", "sadness":
		return Sad
	case "angry", "anger":
		return Angry
	case "fear", "fearful":
		return Fearful
	case "surprise", "surprised":
		return Surprised
	case "disgust", "disgusted":
		return Disgusted
	case "stressed", "stress":
		return Stressed
	case "anxious", "anxiety":
		return Anxious
	case "confused", "confusion":
		return Confused
	default:
		return Neutral
	}
}

// Emoji returns the display glyph for a label, as shown next to the mood
// indicator in the UI.
func Emoji(label string) string {
	switch Normalize(label) {
	case Happy:
		return "😊"
	case Sad:
		return "😢"
	case Angry:
		return "😠"
	case Fearful:
		return "😨"
	case Surprised:
		return "😮"
	case Disgusted:
		return "🤢"
	case Stressed:
		return "😫"
	case Anxious:
		return "😰"
	case Confused:
		return "😕"
	default:
		return "😐"
	}
}
