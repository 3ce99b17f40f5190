package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/finsight-labs/finsearch-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
	"github.com/finsight-labs/finsearch-cli/internal/core/ports/driven"
)

var _ driven.SnapshotStore = (*Store)(nil)

// Store persists index snapshots in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite snapshot store at the specified data directory.
// If dataDir is empty, defaults to ~/.finsearch/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".finsearch", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save writes the snapshot, replacing any previous one.
func (s *Store) Save(ctx context.Context, snap *driven.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// One snapshot at a time; cascades clear documents and vectors.
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("clearing previous snapshot: %w", err)
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, model, dimensions, created_at)
		VALUES (?, ?, ?, ?)
	`, id, snap.Model, snap.Dimensions, time.Now().UTC()); err != nil {
		return fmt.Errorf("saving snapshot header: %w", err)
	}

	docStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_documents (snapshot_id, doc_id, text, metadata, chunks, chunk_meta)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing document statement: %w", err)
	}
	defer docStmt.Close()

	for _, doc := range snap.Documents {
		metadataJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for document %d: %w", doc.ID, err)
		}
		chunksJSON, err := json.Marshal(doc.Chunks)
		if err != nil {
			return fmt.Errorf("marshalling chunks for document %d: %w", doc.ID, err)
		}
		chunkMetaJSON, err := json.Marshal(doc.ChunkMeta)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata for document %d: %w", doc.ID, err)
		}

		if _, err := docStmt.ExecContext(ctx, id, doc.ID, doc.Text,
			string(metadataJSON), string(chunksJSON), string(chunkMetaJSON)); err != nil {
			return fmt.Errorf("saving document %d: %w", doc.ID, err)
		}
	}

	vecStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_vectors (snapshot_id, entry_id, embedding)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing vector statement: %w", err)
	}
	defer vecStmt.Close()

	for entry, vec := range snap.Vectors {
		if _, err := vecStmt.ExecContext(ctx, id, entry, float32SliceToBytes(vec)); err != nil {
			return fmt.Errorf("saving vector %d: %w", entry, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. ok is false when none exists.
func (s *Store) Load(ctx context.Context) (*driven.Snapshot, bool, error) {
	var id string
	snap := &driven.Snapshot{}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, model, dimensions FROM snapshots
		ORDER BY created_at DESC LIMIT 1
	`)
	if err := row.Scan(&id, &snap.Model, &snap.Dimensions); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("scanning snapshot header: %w", err)
	}

	docs, err := s.loadDocuments(ctx, id)
	if err != nil {
		return nil, false, err
	}
	snap.Documents = docs

	vecs, err := s.loadVectors(ctx, id)
	if err != nil {
		return nil, false, err
	}
	snap.Vectors = vecs

	return snap, true, nil
}

func (s *Store) loadDocuments(ctx context.Context, snapshotID string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, text, metadata, chunks, chunk_meta
		FROM snapshot_documents WHERE snapshot_id = ?
		ORDER BY doc_id
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var metadataJSON, chunksJSON, chunkMetaJSON string
		if err := rows.Scan(&doc.ID, &doc.Text, &metadataJSON, &chunksJSON, &chunkMetaJSON); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata for document %d: %w", doc.ID, err)
		}
		if err := json.Unmarshal([]byte(chunksJSON), &doc.Chunks); err != nil {
			return nil, fmt.Errorf("unmarshaling chunks for document %d: %w", doc.ID, err)
		}
		if err := json.Unmarshal([]byte(chunkMetaJSON), &doc.ChunkMeta); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata for document %d: %w", doc.ID, err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func (s *Store) loadVectors(ctx context.Context, snapshotID string) ([][]float32, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT embedding FROM snapshot_vectors
		WHERE snapshot_id = ?
		ORDER BY entry_id
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var vecs [][]float32 //nolint:prealloc // size unknown from query
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		vecs = append(vecs, bytesToFloat32Slice(blob))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}
	return vecs, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
