package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history <chat-id>",
	Short: "Show the transcript of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if namespaceService == nil {
		return errors.New("namespace service not configured")
	}

	messages, err := namespaceService.Messages(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to load chat %s: %w", args[0], err)
	}

	if historyJSON {
		return outputJSON(cmd, messages)
	}

	if len(messages) == 0 {
		cmd.Println("No messages found.")
		return nil
	}

	cmd.Printf("Namespace: %s\n\n", messages[0].Namespace)
	for _, m := range messages {
		label := "You"
		if m.Sender == domain.SenderBot {
			label = "Bot"
		}
		cmd.Printf("[%s] %s: %s\n", m.CreatedAt.Format("2006-01-02 15:04"), label, m.Content)
	}
	return nil
}
