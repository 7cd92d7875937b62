package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the persisted conversation",
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the persisted conversation",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	a, _, cleanup, err := createAssistant(ctx, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	printConversation(a)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	a, _, cleanup, err := createAssistant(ctx, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.ClearHistory(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Printf("Cleared conversation %q\n", config.ConversationKey)
	return nil
}
