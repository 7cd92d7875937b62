package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendUser_FinalImmediately(t *testing.T) {
	c := New()
	turn := c.AppendUser("hello", "happy")

	assert.Equal(t, RoleUser, turn.Role)
	assert.Equal(t, StatusFinal, turn.Status)
	assert.Equal(t, "happy", turn.Emotion)
	assert.NotEmpty(t, turn.ID)
	assert.Equal(t, 1, c.Len())
}

func TestApplyText_ConcatenatesInOrder(t *testing.T) {
	c := New()
	c.AppendUser("hi", "")
	_, err := c.BeginTurn()
	require.NoError(t, err)
	_, err = c.StreamOpened()
	require.NoError(t, err)

	for _, chunk := range []string{"Hel", "lo, ", "world"} {
		require.NoError(t, c.ApplyText(chunk))
	}

	turn, err := c.FinalizeTurn()
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", turn.Content)
	assert.Equal(t, StatusFinal, turn.Status)
}

func TestPlaceholderIdentities_AreFresh(t *testing.T) {
	c := New()
	typing, err := c.BeginTurn()
	require.NoError(t, err)

	streaming, err := c.StreamOpened()
	require.NoError(t, err)
	assert.NotEqual(t, typing.ID, streaming.ID)

	final, err := c.FinalizeTurn()
	require.NoError(t, err)
	assert.NotEqual(t, streaming.ID, final.ID)
}

func TestBeginTurn_RejectsSecondPlaceholder(t *testing.T) {
	c := New()
	_, err := c.BeginTurn()
	require.NoError(t, err)

	_, err = c.BeginTurn()
	assert.ErrorIs(t, err, ErrTurnPending)
}

func TestStreamOpened_RequiresTypingPlaceholder(t *testing.T) {
	c := New()
	_, err := c.StreamOpened()
	assert.ErrorIs(t, err, ErrNoPendingTurn)

	_, err = c.BeginTurn()
	require.NoError(t, err)
	_, err = c.StreamOpened()
	require.NoError(t, err)

	// Already streaming; a second replacement is invalid.
	_, err = c.StreamOpened()
	assert.ErrorIs(t, err, ErrNoPendingTurn)
}

func TestDiscardPending_RemovesPlaceholderEntirely(t *testing.T) {
	c := New()
	c.AppendUser("question", "")
	lenBefore := c.Len()

	_, err := c.BeginTurn()
	require.NoError(t, err)
	_, err = c.StreamOpened()
	require.NoError(t, err)
	require.NoError(t, c.ApplyText("half-written "))
	require.NoError(t, c.ApplyText("reply"))

	assert.True(t, c.DiscardPending())
	assert.Equal(t, lenBefore, c.Len())
	for _, turn := range c.Turns() {
		assert.Equal(t, StatusFinal, turn.Status)
	}

	// Nothing left to discard.
	assert.False(t, c.DiscardPending())
}

func TestHistory_ProjectsOnlyFinalTurns(t *testing.T) {
	c := New()
	c.AppendUser("one", "")
	c.AppendAssistant("two", "neutral", "groq")
	_, err := c.BeginTurn()
	require.NoError(t, err)

	history := c.History(0)
	require.Len(t, history, 2)
	assert.Equal(t, HistoryEntry{Role: RoleUser, Content: "one"}, history[0])
	assert.Equal(t, HistoryEntry{Role: RoleAssistant, Content: "two"}, history[1])
}

func TestHistory_Limit(t *testing.T) {
	c := New()
	c.AppendUser("a", "")
	c.AppendAssistant("b", "", "")
	c.AppendUser("c", "")
	c.AppendAssistant("d", "", "")

	history := c.History(2)
	require.Len(t, history, 2)
	assert.Equal(t, "c", history[0].Content)
	assert.Equal(t, "d", history[1].Content)
}

func TestSetReplyMeta_KeepsExistingOnEmpty(t *testing.T) {
	c := New()
	_, err := c.BeginTurn()
	require.NoError(t, err)
	_, err = c.StreamOpened()
	require.NoError(t, err)

	require.NoError(t, c.SetReplyMeta("happy", "groq"))
	require.NoError(t, c.SetReplyMeta("", ""))

	turn, err := c.FinalizeTurn()
	require.NoError(t, err)
	assert.Equal(t, "happy", turn.Emotion)
	assert.Equal(t, "groq", turn.Provider)
}

func TestClear_IsIdempotent(t *testing.T) {
	c := New()
	c.AppendUser("hello", "")
	c.Clear()
	assert.Equal(t, 0, c.Len())

	// Clearing twice in a row is a no-op the second time.
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestRestore_DropsPendingTurns(t *testing.T) {
	c := New()
	c.AppendUser("hello", "")
	_, err := c.BeginTurn()
	require.NoError(t, err)

	restored := Restore(c.Turns())
	assert.Equal(t, 1, restored.Len())
	assert.Equal(t, StatusFinal, restored.Turns()[0].Status)
}

func TestApplyText_RequiresStreamingPlaceholder(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.ApplyText("x"), ErrNoPendingTurn)

	_, err := c.BeginTurn()
	require.NoError(t, err)
	// Typing placeholder does not accept content.
	assert.ErrorIs(t, c.ApplyText("x"), ErrNoPendingTurn)
}
