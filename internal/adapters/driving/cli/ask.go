package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

var (
	askNamespace string
	askChatID    string
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about a namespace",
	Long: `Answers a question from the documents ingested into a namespace.

Follow-up questions can reuse the conversation with --chat-id; the previous
exchanges are used to turn the follow-up into a standalone question.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askNamespace, "namespace", "n", "", "namespace to answer from (required)")
	askCmd.Flags().StringVar(&askChatID, "chat-id", "", "continue an earlier conversation")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	_ = askCmd.MarkFlagRequired("namespace")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured. Run 'askdocs settings' to configure providers")
	}

	question := strings.Join(args, " ")
	resp, err := conversationService.Send(commandContext(cmd), domain.ChatRequest{
		ChatID:    askChatID,
		Namespace: askNamespace,
		UserEmail: userEmail,
		Question:  question,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, resp)
	}

	cmd.Println(resp.Text)
	printSources(cmd, resp.SourceDocuments)
	cmd.Println()
	cmd.Printf("Chat ID: %s\n", resp.ChatID)
	return nil
}

func printSources(cmd *cobra.Command, matches []domain.Match) {
	if len(matches) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, m := range matches {
		cmd.Printf("  [%d] %s (%s)\n", i+1, sourceLabel(m), scoreLabel(m))
	}
}

func sourceLabel(m domain.Match) string {
	if m.Metadata.Source == "" {
		return m.ID
	}
	return filepath.Base(m.Metadata.Source)
}

func scoreLabel(m domain.Match) string {
	if !m.Scored {
		return "unscored"
	}
	return fmt.Sprintf("score %.2f", m.Score)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
