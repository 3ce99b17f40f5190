// Command finsearch is the entry point for the semantic search engine.
// It assembles the driven adapters (embedder, vector index, snapshot
// store, config store), builds the retrieval service and hands it to
// the cobra command surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/finsight-labs/finsearch-cli/internal/adapters/driven/config/file"
	"github.com/finsight-labs/finsearch-cli/internal/adapters/driven/embedding/hashing"
	"github.com/finsight-labs/finsearch-cli/internal/adapters/driven/embedding/ollama"
	"github.com/finsight-labs/finsearch-cli/internal/adapters/driven/embedding/openai"
	"github.com/finsight-labs/finsearch-cli/internal/adapters/driven/storage/sqlite"
	"github.com/finsight-labs/finsearch-cli/internal/adapters/driven/vector/flat"
	"github.com/finsight-labs/finsearch-cli/internal/adapters/driving/cli"
	"github.com/finsight-labs/finsearch-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsearch-cli/internal/core/services"
	"github.com/finsight-labs/finsearch-cli/internal/logger"
)

func main() {
	// Optional; local development convenience.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}

	embedder, err := buildEmbedder(configStore)
	if err != nil {
		return err
	}
	defer embedder.Close()

	index, err := flat.New(embedder.Dimensions())
	if err != nil {
		return err
	}

	snapshots, err := sqlite.NewStore(configStore.GetString("snapshot.dir"))
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	defer snapshots.Close()

	svc, err := services.New(embedder, index, services.WithSnapshotStore(snapshots))
	if err != nil {
		return err
	}

	if restored, err := svc.Restore(ctx); err != nil {
		logger.Warn("Snapshot restore failed: %v", err)
	} else if restored {
		logger.Debug("Index restored from snapshot")
	}

	return cli.ExecuteContext(ctx, cli.Services{
		Search: svc,
		Ingest: svc,
		Index:  svc,
		Config: configStore,
	})
}

// buildEmbedder selects the embedding provider from config. Environment
// variables override stored settings for keys and endpoints.
func buildEmbedder(cfg driven.ConfigStore) (driven.Embedder, error) {
	provider := cfg.GetString("embedding.provider")
	if provider == "" {
		provider = "hashing"
	}

	switch provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			apiKey = cfg.GetString("openai.api_key")
		}
		return openai.New(openai.Config{
			APIKey:     apiKey,
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})

	case "ollama":
		return ollama.New(ollama.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		}), nil

	case "hashing":
		return hashing.New(cfg.GetInt("embedding.dimensions")), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}
