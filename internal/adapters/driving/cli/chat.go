package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui"
	"github.com/custodia-labs/askdocs/internal/core/domain"
)

var (
	chatNamespace string
	chatID        string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Starts a conversation with a namespace. Follow-up questions are answered
with the earlier exchanges in mind.

On a terminal this opens the chat UI:
  Enter   - Send question
  Ctrl+S  - Toggle sources
  Ctrl+N  - New conversation
  F1      - Help
  Esc     - Quit

When input is piped, each line is sent as a question and answers are
printed as plain text. Type 'exit' to stop.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatNamespace, "namespace", "n", "", "namespace to answer from (required)")
	chatCmd.Flags().StringVar(&chatID, "chat-id", "", "resume an earlier conversation")
	_ = chatCmd.MarkFlagRequired("namespace")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured. Run 'askdocs settings' to configure providers")
	}

	session := tui.Session{
		Namespace: chatNamespace,
		UserEmail: userEmail,
		ChatID:    chatID,
	}

	if isTerminal(cmd) {
		return runChatTUI(cmd, session)
	}
	return runChatLines(cmd, session)
}

// isTerminal reports whether both ends of the command are attached to a terminal.
func isTerminal(cmd *cobra.Command) bool {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	out, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd()))
}

func runChatTUI(cmd *cobra.Command, session tui.Session) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Conversation: conversationService,
		Namespace:    namespaceService,
	}, session)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(commandContext(cmd)).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if id := app.ChatID(); id != "" {
		cmd.Printf("Chat ID: %s\n", id)
	}
	return nil
}

// runChatLines reads one question per line until EOF or "exit".
func runChatLines(cmd *cobra.Command, session tui.Session) error {
	ctx := commandContext(cmd)
	scanner := bufio.NewScanner(cmd.InOrStdin())

	cmd.Printf("Chatting with %q. Type 'exit' to quit.\n", session.Namespace)
	for scanner.Scan() {
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		resp, err := conversationService.Send(ctx, domain.ChatRequest{
			ChatID:    session.ChatID,
			Namespace: session.Namespace,
			UserEmail: session.UserEmail,
			Question:  question,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}

		session.ChatID = resp.ChatID
		cmd.Printf("Bot: %s\n", resp.Text)
		printSources(cmd, resp.SourceDocuments)
		cmd.Println()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading questions: %w", err)
	}

	if session.ChatID != "" {
		cmd.Printf("Chat ID: %s\n", session.ChatID)
	}
	return nil
}
