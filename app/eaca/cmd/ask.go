package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a single message and print the reply",
	Long: `Sends one message in the configured conversation and prints the assistant's
reply once it is complete. Useful for scripting; use 'chat' for an
interactive session.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	a, _, cleanup, err := createAssistant(ctx, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	turn, err := a.Send(ctx, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	fmt.Println(turn.Content)
	return nil
}
