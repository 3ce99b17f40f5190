// Package watch ingests files dropped into a directory. Text and markdown
// files become documents; JSON files are parsed as financial-data
// snapshots. Events are debounced so a file is ingested once its writer
// has gone quiet, not on every partial write.
package watch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/finsight-labs/finsearch-cli/internal/chunker"
	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
	"github.com/finsight-labs/finsearch-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsearch-cli/internal/logger"
)

// DefaultSettle is how long a file must stay unchanged before ingestion.
const DefaultSettle = 500 * time.Millisecond

// Watcher ingests files dropped into a watched directory.
type Watcher struct {
	ingest driving.IngestService
	dir    string
	settle time.Duration
}

// New creates a watcher over dir. Settle <= 0 selects the default.
func New(ingest driving.IngestService, dir string, settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{ingest: ingest, dir: dir, settle: settle}
}

// Run watches the directory until the context is cancelled. Files already
// present at startup are ingested first.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	logger.Info("Watching %s", w.dir)

	if err := w.ingestExisting(ctx); err != nil {
		return err
	}

	// pending maps path to the time of its last event; a ticker flushes
	// entries that have been quiet for the settle window.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				if ingestable(event.Name) {
					pending[event.Name] = time.Now()
				}
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				delete(pending, path)
				if err := w.ingestFile(ctx, path); err != nil {
					logger.Warn("Failed to ingest %s: %v", path, err)
				}
			}
		}
	}
}

func (w *Watcher) ingestExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if !ingestable(path) {
			continue
		}
		if err := w.ingestFile(ctx, path); err != nil {
			logger.Warn("Failed to ingest %s: %v", path, err)
		}
	}
	return nil
}

func (w *Watcher) ingestFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var data map[string]any
		if err := json.Unmarshal(content, &data); err != nil {
			return err
		}
		res, err := w.ingest.AddFinancialData(ctx, data, "watch")
		if err != nil {
			return err
		}
		logger.Info("Ingested %s as financial data (document %d)", name, res.DocumentID)
		return nil
	}

	metadata := domain.Metadata{
		domain.KeySource: domain.String("watch"),
		"filename":       domain.String(name),
	}
	res, err := w.ingest.AddDocument(ctx, string(content), metadata,
		chunker.DefaultChunkSize, chunker.DefaultChunkOverlap)
	if err != nil {
		return err
	}
	logger.Info("Ingested %s (document %d, %d chunks)", name, res.DocumentID, res.Chunks)
	return nil
}

func ingestable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".json":
		return true
	default:
		return false
	}
}
