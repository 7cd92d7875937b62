package cmd

import (
	"log"
	"os"
	"strconv"
	"time"
)

var config = Config{}

type Config struct {
	// Backend connection
	BaseURL  string // Base URL of the assistant backend
	APIToken string // Opaque bearer credential, forwarded as-is

	// Conversation options
	ConversationKey  string
	ConversationsDir string // File store location; empty disables file persistence
	DatabaseURL      string // Postgres store; takes precedence over the file store
	MaxHistory       int
	Emotion          string
	FallbackTimeout  time.Duration

	// Telemetry config
	TelemetryEnabled bool
	OTLPEndpoint     string
}

func loadOptionalFromEnv(dest *string, key string) {
	parseOptionalFromEnv(dest, key, func(v string) (string, error) { return v, nil })
}

func parseOptionalFromEnv[T any](dest *T, key string, parseFn func(string) (T, error)) {
	str := os.Getenv(key)
	if str == "" {
		return // Leave default value
	}
	v, err := parseFn(str)
	if err != nil {
		log.Fatalf("failed to parse environment variable '%s' value '%s' as '%T': %v", key, str, *dest, err)
	}
	*dest = v
}

func parseBool(v string) (bool, error) {
	return strconv.ParseBool(v)
}

func parseInt(v string) (int, error) {
	return strconv.Atoi(v)
}
