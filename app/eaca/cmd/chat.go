package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/madhava696/EACA/internal/assistant"
	"github.com/madhava696/EACA/internal/emotion"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Opens an interactive session with the assistant. Replies stream in as they
are generated. Slash commands:

  /emotion <label>  set the mood sent with subsequent messages
  /history          print the conversation so far
  /clear            clear the conversation history
  /quit             leave the session`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	var printed strings.Builder
	a, moods, cleanup, err := createAssistant(ctx, func(text string) {
		printed.WriteString(text)
		fmt.Print(text)
	})
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("Connected to %s (conversation %q). Type /quit to leave.\n", config.BaseURL, config.ConversationKey)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runSlashCommand(ctx, a, moods, line); quit {
				return nil
			}
			continue
		}

		printed.Reset()
		fmt.Print("assistant> ")
		turn, err := a.Send(ctx, line)
		if err != nil {
			return fmt.Errorf("send failed: %w", err)
		}
		fmt.Print(replyRemainder(printed.String(), turn.Content))
		fmt.Printf("  %s\n", emotion.Emoji(turn.Emotion))

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return scanner.Err()
}

// replyRemainder returns what still needs printing once the reply turn is
// final. Streamed chunks were already printed as they arrived; a fallback or
// offline reply replaces a discarded partial, so it is printed whole on a
// fresh line.
func replyRemainder(printed, full string) string {
	if rest, ok := strings.CutPrefix(full, printed); ok {
		return rest
	}
	return "\n" + full
}

func runSlashCommand(ctx context.Context, a *assistant.Assistant, moods *emotion.ManualSource, line string) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/emotion":
		if len(fields) < 2 {
			fmt.Println("usage: /emotion <label>")
			return false
		}
		moods.Set(fields[1])
		fmt.Printf("mood set to %s %s\n", emotion.Normalize(fields[1]), emotion.Emoji(fields[1]))
	case "/history":
		printConversation(a)
	case "/clear":
		if err := a.ClearHistory(ctx); err != nil {
			log.Printf("Failed to clear history: %v", err)
			return false
		}
		fmt.Println("history cleared")
	default:
		fmt.Printf("unknown command %s\n", fields[0])
	}
	return false
}

func printConversation(a *assistant.Assistant) {
	turns := a.Conversation().Turns()
	if len(turns) == 0 {
		fmt.Println("(empty conversation)")
		return
	}
	for _, t := range turns {
		fmt.Printf("%s> %s\n", t.Role, t.Content)
	}
}
