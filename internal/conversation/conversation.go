// Package conversation holds the ordered message collection for a single
// chat session and the lifecycle of the in-progress assistant reply.
package conversation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status is the lifecycle state of a turn. Only final turns are projected
// into request history or persisted.
type Status string

const (
	// StatusFinal marks a completed, immutable turn.
	StatusFinal Status = "final"
	// StatusTyping marks the placeholder shown before the stream opens.
	StatusTyping Status = "pending-typing"
	// StatusStreaming marks the placeholder accumulating streamed text.
	StatusStreaming Status = "pending-stream"
)

// Turn is one entry in the conversation. Turns are mutated only through
// Conversation methods and only while their status is not final.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Status    Status    `json:"status"`
	Emotion   string    `json:"emotion,omitempty"`
	Provider  string    `json:"provider,omitempty"`
}

// HistoryEntry is the lossy projection of a finalized turn used as request
// context.
type HistoryEntry struct {
	Role    Role
	Content string
}

var (
	// ErrTurnPending is returned when a new reply is begun while a
	// placeholder turn is still unresolved.
	ErrTurnPending = errors.New("a reply is already pending")
	// ErrNoPendingTurn is returned by lifecycle operations that require a
	// placeholder turn when none exists.
	ErrNoPendingTurn = errors.New("no pending reply turn")
)

// Conversation is an ordered collection of turns, insertion order being
// chronological order. At most one turn is pending at any time.
type Conversation struct {
	turns []Turn
	now   func() time.Time
}

// New creates an empty conversation.
func New() *Conversation {
	return &Conversation{now: time.Now}
}

// Restore creates a conversation from previously persisted turns. Anything
// that is not a finalized turn is dropped: pending placeholders are
// transient by definition and must not survive a restart.
func Restore(turns []Turn) *Conversation {
	c := New()
	for _, t := range turns {
		if t.Status == StatusFinal {
			c.turns = append(c.turns, t)
		}
	}
	return c
}

// Turns returns a copy of the collection in chronological order.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns, including any pending placeholder.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// History projects the finalized turns, in original order, into request
// context entries. If limit is greater than zero, only the most recent
// limit entries are returned.
func (c *Conversation) History(limit int) []HistoryEntry {
	var entries []HistoryEntry
	for _, t := range c.turns {
		if t.Status != StatusFinal {
			continue
		}
		entries = append(entries, HistoryEntry{Role: t.Role, Content: t.Content})
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries
}

// AppendUser appends the user's message as a final turn, immediately
// visible.
func (c *Conversation) AppendUser(text string, emotion string) Turn {
	turn := Turn{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   text,
		CreatedAt: c.now(),
		Status:    StatusFinal,
		Emotion:   emotion,
	}
	c.turns = append(c.turns, turn)
	return turn
}

// AppendAssistant appends a completed assistant reply as a final turn. Used
// by the non-incremental path, where the full reply arrives at once.
func (c *Conversation) AppendAssistant(text, emotion, provider string) Turn {
	turn := Turn{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   text,
		CreatedAt: c.now(),
		Status:    StatusFinal,
		Emotion:   emotion,
		Provider:  provider,
	}
	c.turns = append(c.turns, turn)
	return turn
}

// BeginTurn appends a typing placeholder for the upcoming assistant reply.
func (c *Conversation) BeginTurn() (Turn, error) {
	if c.pendingIndex() >= 0 {
		return Turn{}, ErrTurnPending
	}
	turn := Turn{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		CreatedAt: c.now(),
		Status:    StatusTyping,
	}
	c.turns = append(c.turns, turn)
	return turn, nil
}

// StreamOpened replaces the typing placeholder with a streaming placeholder
// carrying a fresh identity. Placeholders never share an identity with the
// final turn, so display keys cannot collide across states.
func (c *Conversation) StreamOpened() (Turn, error) {
	i := c.pendingIndex()
	if i < 0 || c.turns[i].Status != StatusTyping {
		return Turn{}, ErrNoPendingTurn
	}
	turn := Turn{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		CreatedAt: c.now(),
		Status:    StatusStreaming,
	}
	c.turns[i] = turn
	return turn, nil
}

// ApplyText appends streamed text to the streaming placeholder. Text deltas
// are concatenation-only and must be applied in arrival order.
func (c *Conversation) ApplyText(text string) error {
	i := c.pendingIndex()
	if i < 0 || c.turns[i].Status != StatusStreaming {
		return ErrNoPendingTurn
	}
	c.turns[i].Content += text
	return nil
}

// SetReplyMeta records the emotion and provider tags on the streaming
// placeholder when the server includes them. Empty values leave the
// existing tags untouched.
func (c *Conversation) SetReplyMeta(emotion, provider string) error {
	i := c.pendingIndex()
	if i < 0 || c.turns[i].Status != StatusStreaming {
		return ErrNoPendingTurn
	}
	if emotion != "" {
		c.turns[i].Emotion = emotion
	}
	if provider != "" {
		c.turns[i].Provider = provider
	}
	return nil
}

// FinalizeTurn assigns the streaming placeholder a permanent identity and
// marks it final, keeping whatever content was accumulated.
func (c *Conversation) FinalizeTurn() (Turn, error) {
	i := c.pendingIndex()
	if i < 0 || c.turns[i].Status != StatusStreaming {
		return Turn{}, ErrNoPendingTurn
	}
	c.turns[i].ID = uuid.NewString()
	c.turns[i].Status = StatusFinal
	return c.turns[i], nil
}

// DiscardPending removes the pending placeholder, if any, leaving no
// partial reply behind. It reports whether a placeholder was removed.
func (c *Conversation) DiscardPending() bool {
	i := c.pendingIndex()
	if i < 0 {
		return false
	}
	c.turns = append(c.turns[:i], c.turns[i+1:]...)
	return true
}

// Clear removes every turn. Clearing an empty conversation is a no-op.
func (c *Conversation) Clear() {
	c.turns = nil
}

func (c *Conversation) pendingIndex() int {
	// The placeholder, when present, is always the most recent turn.
	for i := len(c.turns) - 1; i >= 0; i-- {
		if c.turns[i].Status != StatusFinal {
			return i
		}
	}
	return -1
}
