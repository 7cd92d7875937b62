package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"golang.org/x/oauth2"

	"github.com/madhava696/EACA/internal/assistant"
	"github.com/madhava696/EACA/internal/chatapi"
	"github.com/madhava696/EACA/internal/conversation"
	"github.com/madhava696/EACA/internal/emotion"
	"github.com/madhava696/EACA/internal/store"
	"github.com/madhava696/EACA/internal/telemetry"
	"github.com/madhava696/EACA/internal/transport"
)

func setupContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		log.Println("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		log.Fatal("Forcing shutdown")
	}()

	return ctx
}

func createChatClient(ctx context.Context, logger *slog.Logger) *chatapi.Client {
	httpClient := &http.Client{
		Transport: transport.WithRateLimiting(nil, logger),
	}
	if config.APIToken != "" {
		tokenSource := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: config.APIToken},
		)
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, tokenSource)
	}
	return chatapi.NewClient(config.BaseURL, httpClient, logger)
}

func createTelemetryProvider(ctx context.Context) (*telemetry.Provider, error) {
	return telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  config.TelemetryEnabled,
		Endpoint: config.OTLPEndpoint,
	})
}

// createStore selects the conversation store from configuration. The
// returned cleanup func is never nil.
func createStore(ctx context.Context) (store.Store, func(), error) {
	if config.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, config.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return pg, pg.Close, nil
	}
	if config.ConversationsDir != "" {
		fs, err := store.NewFileStore(config.ConversationsDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return fs, func() {}, nil
	}
	return nil, func() {}, nil
}

// createAssistant wires the full pipeline for the configured conversation.
// The returned cleanup releases the store and flushes telemetry.
func createAssistant(ctx context.Context, onDelta func(string)) (*assistant.Assistant, *emotion.ManualSource, func(), error) {
	logger := slog.Default()

	tel, err := createTelemetryProvider(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	st, closeStore, err := createStore(ctx)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, nil, nil, err
	}

	conv := conversation.New()
	if st != nil {
		turns, err := st.Get(ctx, config.ConversationKey)
		if err != nil {
			closeStore()
			_ = tel.Shutdown(ctx)
			return nil, nil, nil, fmt.Errorf("failed to load conversation: %w", err)
		}
		conv = conversation.Restore(turns)
	}

	moods := emotion.NewManualSource(config.Emotion)
	a := assistant.New(assistant.ClientBackend{Client: createChatClient(ctx, logger)}, conv, moods, assistant.Config{
		HistoryLimit:    config.MaxHistory,
		ConversationKey: config.ConversationKey,
		Store:           st,
		OnDelta:         onDelta,
		FallbackTimeout: config.FallbackTimeout,
		Logger:          logger,
		Tracer:          tel.Tracer(),
	})

	cleanup := func() {
		closeStore()
		_ = tel.Shutdown(context.Background())
	}
	return a, moods, cleanup, nil
}
