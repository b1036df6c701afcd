package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/ai"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/config/file"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/loader/filesystem"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/cli"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/services"
	"github.com/custodia-labs/askdocs/internal/logger"
	"github.com/custodia-labs/askdocs/internal/normalisers"
	"github.com/custodia-labs/askdocs/internal/postprocessors/chunker"
)

// bootstrap opens the configuration, the database and the providers
// under configDir and builds the services the CLI drives. Providers that
// are not configured leave the services depending on them nil.
func bootstrap(ctx context.Context, configDir string) (*cli.Services, func(), error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, nil, err
		}
		configDir = dir
	}
	logger.Section("Bootstrap")
	logger.Debug("Config directory: %s", configDir)

	if err := file.LoadEnv(configDir); err != nil {
		return nil, nil, err
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
	if err != nil {
		return nil, nil, err
	}

	aiResult, err := ai.Init(ctx, settings, store, false)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}

	cleanup := func() {
		aiResult.Close()
		if err := store.Close(); err != nil {
			logger.Warn("closing database: %v", err)
		}
	}

	var conversations driven.ConversationStore = store.ConversationStore()
	if settings.Index.Backend == domain.IndexBackendMemory {
		conversations = memory.NewConversationStore()
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	svc := &cli.Services{
		Namespace: services.NewNamespaceService(conversations, aiResult.VectorStore),
		Settings:  settingsSvc,
		Loader:    filesystem.New(normalisers.NewDefaultRegistry()),
		UserEmail: settings.UserEmail,
	}

	if aiResult.EmbeddingService != nil {
		ingest := services.NewIngestService(chunker.New(), aiResult.EmbeddingService, aiResult.VectorStore, settings.Chunking)
		ingest.SetConversationStore(conversations)
		svc.Ingest = ingest
	}

	if aiResult.EmbeddingService != nil && aiResult.LLMService != nil {
		chain := services.NewChainService(
			aiResult.LLMService, aiResult.EmbeddingService, aiResult.VectorStore, settings.Retrieval,
		)
		chain.SetPromptStore(prompts)
		svc.Conversation = services.NewConversationService(chain, conversations)
	}

	return svc, cleanup, nil
}
