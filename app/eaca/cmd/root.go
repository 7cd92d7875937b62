package cmd

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "eaca",
	Short: "Emotion-aware coding assistant client",
	Long: `EACA is a client for the emotion-aware coding assistant backend. Replies
stream in incrementally as they are generated; when streaming fails, a single
non-incremental retry is made before falling back to an offline reply.`,
	PersistentPreRun: loadRootConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(_ *cobra.Command, _ []string) {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	loadOptionalFromEnv(&config.BaseURL, "EACA_BASE_URL")
	loadOptionalFromEnv(&config.APIToken, "EACA_API_TOKEN")
	loadOptionalFromEnv(&config.ConversationsDir, "EACA_CONVERSATIONS_DIR")
	loadOptionalFromEnv(&config.DatabaseURL, "DATABASE_URL")
	parseOptionalFromEnv(&config.MaxHistory, "EACA_MAX_HISTORY", parseInt)
	parseOptionalFromEnv(&config.FallbackTimeout, "EACA_REQUEST_TIMEOUT", time.ParseDuration)
	parseOptionalFromEnv(&config.TelemetryEnabled, "EACA_TELEMETRY_ENABLED", parseBool)
	loadOptionalFromEnv(&config.OTLPEndpoint, "EACA_OTLP_ENDPOINT")
}

func init() {
	config.BaseURL = "http://localhost:8000"
	config.ConversationKey = "default"
	config.MaxHistory = 10
	config.Emotion = "neutral"
	config.FallbackTimeout = 20 * time.Second

	rootCmd.PersistentFlags().StringVar(&config.ConversationKey, "conversation", config.ConversationKey, "Name of the conversation to use")
	rootCmd.PersistentFlags().StringVar(&config.Emotion, "emotion", config.Emotion, "Current mood label sent with each message")
}
