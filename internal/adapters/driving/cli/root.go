// Package cli provides the askdocs command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// skipBootstrap marks commands that run without services.
const skipBootstrap = "askdocs/skip-bootstrap"

// Services holds what the commands drive. Nil services make the
// commands that need them fail with a hint.
type Services struct {
	Ingest       driving.IngestService
	Conversation driving.ConversationService
	Namespace    driving.NamespaceService
	Settings     driving.SettingsService
	Loader       driven.DocumentLoader

	// UserEmail scopes namespaces and transcripts.
	UserEmail string
}

// Bootstrap builds the services for a config directory. An empty
// configDir selects the default. The returned func releases them.
type Bootstrap func(ctx context.Context, configDir string) (*Services, func(), error)

var (
	ingestService       driving.IngestService
	conversationService driving.ConversationService
	namespaceService    driving.NamespaceService
	settingsService     driving.SettingsService
	documentLoader      driven.DocumentLoader
	userEmail           = domain.DefaultUserEmail

	bootstrap Bootstrap
	release   func()
)

var (
	verbose   bool
	logFormat string
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "askdocs",
	Short: "Ask questions about your documents",
	Long: `askdocs ingests a directory of documents into a namespace and answers
questions about them with a language model, keeping a conversation history.

Get started:
  askdocs settings embedding
  askdocs settings llm
  askdocs ingest ./docs --namespace docs
  askdocs ask "How do I deploy?" --namespace docs`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatText, "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.askdocs)")
}

// SetServices replaces the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	ingestService = s.Ingest
	conversationService = s.Conversation
	namespaceService = s.Namespace
	settingsService = s.Settings
	documentLoader = s.Loader
	userEmail = s.UserEmail
	if userEmail == "" {
		userEmail = domain.DefaultUserEmail
	}
}

// SetBootstrap sets the function that builds services once flags are parsed.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version printed by "askdocs version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer teardown()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if err := logger.SetFormat(logFormat); err != nil {
		return err
	}

	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	services, cleanup, err := bootstrap(cmd.Context(), configDir)
	if err != nil {
		return fmt.Errorf("starting askdocs: %w", err)
	}
	SetServices(services)
	release = cleanup
	return nil
}

func teardown() {
	if release != nil {
		release()
		release = nil
	}
}

// commandContext returns the command's context, falling back to Background
// when the command runs outside ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
