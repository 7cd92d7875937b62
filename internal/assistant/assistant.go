// Package assistant orchestrates one conversation with the emotion-aware
// chat backend: it drives the streaming reply pipeline and falls back to the
// non-incremental request path when streaming fails.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/madhava696/EACA/internal/chatapi"
	"github.com/madhava696/EACA/internal/conversation"
	"github.com/madhava696/EACA/internal/emotion"
	"github.com/madhava696/EACA/internal/store"
)

// ErrBusy is returned by Send while a previous message is still unresolved.
// Sends are serialized: there is never more than one streaming exchange per
// conversation.
var ErrBusy = errors.New("a message is already in flight")

// DeltaStream is the single-pass delta sequence produced by a streaming
// exchange. *chatapi.Stream satisfies it.
type DeltaStream interface {
	Next() bool
	Current() chatapi.Delta
	Err() error
	Close() error
}

// Backend is the remote chat service.
type Backend interface {
	Stream(ctx context.Context, req chatapi.ChatRequest) (DeltaStream, error)
	Complete(ctx context.Context, req chatapi.ChatRequest) (chatapi.ChatReply, error)
}

// ClientBackend adapts *chatapi.Client to the Backend interface.
type ClientBackend struct {
	Client *chatapi.Client
}

func (b ClientBackend) Stream(ctx context.Context, req chatapi.ChatRequest) (DeltaStream, error) {
	stream, err := b.Client.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (b ClientBackend) Complete(ctx context.Context, req chatapi.ChatRequest) (chatapi.ChatReply, error) {
	return b.Client.Complete(ctx, req)
}

// ProviderOffline tags replies synthesized locally when both request paths
// fail.
const ProviderOffline = "offline"

// Config holds the assistant's collaborators and tuning knobs.
type Config struct {
	// HistoryLimit bounds how many finalized turns are sent as context.
	// Zero means no limit.
	HistoryLimit int
	// ConversationKey identifies this conversation in the store.
	ConversationKey string
	// Store, when set, persists the conversation after each completed turn.
	Store store.Store
	// OnDelta, when set, is invoked for each streamed text chunk as it is
	// applied. Display-layer hook; the assistant itself never renders.
	OnDelta func(text string)
	// FallbackTimeout bounds the non-incremental retry. Zero means no
	// bound beyond the caller's context.
	FallbackTimeout time.Duration

	Logger *slog.Logger
	Tracer trace.Tracer
}

// Assistant owns one conversation and guarantees that every sent message
// ends with exactly one final assistant turn, streamed, fallback, or
// offline.
type Assistant struct {
	backend  Backend
	conv     *conversation.Conversation
	emotions emotion.Source
	cfg      Config

	inFlight atomic.Bool
}

func New(backend Backend, conv *conversation.Conversation, emotions emotion.Source, cfg Config) *Assistant {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("assistant")
	}
	if cfg.ConversationKey == "" {
		cfg.ConversationKey = "default"
	}
	return &Assistant{
		backend:  backend,
		conv:     conv,
		emotions: emotions,
		cfg:      cfg,
	}
}

// Conversation returns the underlying message collection.
func (a *Assistant) Conversation() *conversation.Conversation {
	return a.conv
}

// Send submits one user message and resolves it to a final assistant turn.
// The streaming path is attempted first; any transport failure triggers a
// single non-incremental retry, and if that also fails the reply is
// synthesized locally and tagged offline. A Send while another is in flight
// is rejected with ErrBusy.
func (a *Assistant) Send(ctx context.Context, text string) (conversation.Turn, error) {
	if !a.inFlight.CompareAndSwap(false, true) {
		return conversation.Turn{}, ErrBusy
	}
	defer a.inFlight.Store(false)

	ctx, span := a.cfg.Tracer.Start(ctx, "assistant.send")
	defer span.End()

	mood := a.currentMood(ctx)
	span.SetAttributes(attribute.String("chat.emotion", mood))

	// History contains only turns final before this message; the new user
	// text travels in the message field, never duplicated into history.
	history := a.conv.History(a.cfg.HistoryLimit)
	a.conv.AppendUser(text, mood)

	req := chatapi.ChatRequest{
		Message: text,
		Emotion: mood,
		History: toWireHistory(history),
	}

	turn, err := a.streamReply(ctx, req)
	if err != nil {
		a.cfg.Logger.Warn("streaming reply failed, falling back", "error", err)
		span.AddEvent("fallback", trace.WithAttributes(attribute.String("reason", err.Error())))
		turn = a.fallbackReply(ctx, req, mood)
	}
	span.SetAttributes(attribute.String("chat.provider", turn.Provider))

	a.persist(ctx)
	return turn, nil
}

// streamReply runs the incremental path: open the stream, replace the
// typing placeholder, apply deltas in arrival order, and finalize. On any
// failure the placeholder is discarded so no partial reply is left behind.
func (a *Assistant) streamReply(ctx context.Context, req chatapi.ChatRequest) (conversation.Turn, error) {
	ctx, span := a.cfg.Tracer.Start(ctx, "assistant.stream")
	defer span.End()

	if _, err := a.conv.BeginTurn(); err != nil {
		return conversation.Turn{}, err
	}

	stream, err := a.backend.Stream(ctx, req)
	if err != nil {
		// Establishment failure: the typing placeholder never became a
		// streaming one.
		a.conv.DiscardPending()
		span.SetStatus(codes.Error, "open failed")
		span.RecordError(err)
		return conversation.Turn{}, err
	}
	defer stream.Close()

	if _, err := a.conv.StreamOpened(); err != nil {
		a.conv.DiscardPending()
		return conversation.Turn{}, err
	}

	if err := a.drain(stream); err != nil {
		a.conv.DiscardPending()
		span.SetStatus(codes.Error, "stream failed")
		span.RecordError(err)
		return conversation.Turn{}, err
	}

	// Natural end of input without a final delta still finalizes whatever
	// content was accumulated.
	return a.conv.FinalizeTurn()
}

// drain applies deltas to the streaming placeholder in arrival order.
func (a *Assistant) drain(stream DeltaStream) error {
	for stream.Next() {
		delta := stream.Current()
		switch delta.Kind {
		case chatapi.DeltaText:
			if err := a.conv.ApplyText(delta.Text); err != nil {
				return err
			}
			if a.cfg.OnDelta != nil && delta.Text != "" {
				a.cfg.OnDelta(delta.Text)
			}
			if err := a.conv.SetReplyMeta(delta.EmotionUsed, delta.Provider); err != nil {
				return err
			}
		case chatapi.DeltaEnd:
			if err := a.conv.SetReplyMeta(delta.EmotionUsed, delta.Provider); err != nil {
				return err
			}
		case chatapi.DeltaError:
			a.cfg.Logger.Warn("server reported stream error", "message", delta.Message)
		}
	}
	return stream.Err()
}

// fallbackReply makes the single non-incremental retry, synthesizing an
// offline reply if that fails too. The user never sees a raw error.
func (a *Assistant) fallbackReply(ctx context.Context, req chatapi.ChatRequest, mood string) conversation.Turn {
	ctx, span := a.cfg.Tracer.Start(ctx, "assistant.fallback")
	defer span.End()

	if a.cfg.FallbackTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.FallbackTimeout)
		defer cancel()
	}

	reply, err := a.backend.Complete(ctx, req)
	if err != nil {
		a.cfg.Logger.Warn("fallback request failed, synthesizing offline reply", "error", err)
		span.SetStatus(codes.Error, "fallback failed")
		span.RecordError(err)
		return a.conv.AppendAssistant(offlineReply(mood), mood, ProviderOffline)
	}

	provider := reply.Provider
	if provider == "" {
		provider = "fallback"
	}
	return a.conv.AppendAssistant(reply.Reply, reply.EmotionUsed, provider)
}

// ClearHistory empties the conversation and removes its persisted snapshot.
// Clearing an already-empty conversation is a no-op.
func (a *Assistant) ClearHistory(ctx context.Context) error {
	a.conv.Clear()
	if a.cfg.Store == nil {
		return nil
	}
	return a.cfg.Store.Delete(ctx, a.cfg.ConversationKey)
}

func (a *Assistant) currentMood(ctx context.Context) string {
	reading, err := a.emotions.Current(ctx)
	if err != nil {
		a.cfg.Logger.Warn("emotion source unavailable, assuming neutral", "error", err)
		return emotion.Neutral
	}
	return emotion.Normalize(reading.Label)
}

func (a *Assistant) persist(ctx context.Context) {
	if a.cfg.Store == nil {
		return
	}
	if err := a.cfg.Store.Set(ctx, a.cfg.ConversationKey, a.conv.Turns()); err != nil {
		a.cfg.Logger.Warn("failed to persist conversation", "error", err)
	}
}

func toWireHistory(entries []conversation.HistoryEntry) []chatapi.HistoryEntry {
	wire := make([]chatapi.HistoryEntry, len(entries))
	for i, e := range entries {
		wire[i] = chatapi.HistoryEntry{Role: string(e.Role), Content: e.Content}
	}
	return wire
}
