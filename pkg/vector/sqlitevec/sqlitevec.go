// Package sqlitevec provides a SQLite-backed vector driver using sqlite-vec.
// It persists documents and chunks beside their embeddings, with the
// embedding model identity pinned as index metadata so a store written by
// one model can never be silently searched with another.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/vector"
)

// Driver implements vector.Driver using SQLite with sqlite-vec.
type Driver struct {
	db     *sql.DB
	config Config
	logger *zap.Logger
}

// Config holds configuration for the sqlite-vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the embedding dimension. Required.
	Dimensions int

	// ModelID is the embedding model identity. Required; a stored index
	// written with a different model fails to open with
	// knowledge.ErrIndexCorrupt.
	ModelID string
}

// NewDriver opens (or creates) a sqlite-vec backed vector index.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if c.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be configured")
	}
	if c.ModelID == "" {
		return nil, fmt.Errorf("embedding model identity must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	d := &Driver{db: db, config: c, logger: logger}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	if err := d.checkMeta(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite-vec vector driver initialized",
		zap.String("db_path", c.DBPath),
		zap.Int("dimensions", c.Dimensions),
		zap.String("model", c.ModelID),
		zap.String("vec_version", vecVersion),
	)

	return d, nil
}

func (d *Driver) migrate() error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS index_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			format TEXT NOT NULL,
			raw_text TEXT NOT NULL,
			ingested_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			document_id TEXT NOT NULL REFERENCES documents(id),
			seq INTEGER NOT NULL,
			text TEXT NOT NULL,
			start_off INTEGER NOT NULL,
			end_off INTEGER NOT NULL
		)`,
		// vec0 virtual tables use integer rowids; chunk embeddings share
		// the chunks table rowid.
		fmt.Sprintf(
			`CREATE VIRTUAL TABLE IF NOT EXISTS chunk_embeddings USING vec0(embedding float[%d] distance_metric=cosine)`,
			d.config.Dimensions,
		),
	}

	for _, stmt := range ddl {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	return nil
}

// checkMeta pins the model identity and dimensions on first use and
// rejects reuse with a different embedder.
func (d *Driver) checkMeta() error {
	var model, dims string
	err := d.db.QueryRow(`SELECT value FROM index_meta WHERE key = 'model_id'`).Scan(&model)
	switch err {
	case nil:
		_ = d.db.QueryRow(`SELECT value FROM index_meta WHERE key = 'dimensions'`).Scan(&dims)
		want := fmt.Sprintf("%d", d.config.Dimensions)
		if model != d.config.ModelID || dims != want {
			return fmt.Errorf("%w: index written with model %s (dim %s), configured model %s (dim %s)",
				knowledge.ErrIndexCorrupt, model, dims, d.config.ModelID, want)
		}
		return nil
	case sql.ErrNoRows:
		return d.writeMeta()
	default:
		return fmt.Errorf("reading index metadata: %w", err)
	}
}

func (d *Driver) writeMeta() error {
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO index_meta (key, value) VALUES
			('model_id', ?), ('dimensions', ?)`,
		d.config.ModelID, fmt.Sprintf("%d", d.config.Dimensions),
	)
	if err != nil {
		return fmt.Errorf("writing index metadata: %w", err)
	}
	return nil
}

// serializeFloat32 converts a float32 slice to the little-endian BLOB
// format sqlite-vec expects.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Add inserts the document and all its chunks in one transaction, so a
// concurrent Query sees either the whole document or none of it.
func (d *Driver) Add(ctx context.Context, doc knowledge.Document, chunks []knowledge.Chunk) error {
	for _, chunk := range chunks {
		if len(chunk.Embedding) != d.config.Dimensions {
			return fmt.Errorf("%w: chunk %s has dimension %d, index expects %d",
				knowledge.ErrIndexCorrupt, chunk.ID, len(chunk.Embedding), d.config.Dimensions)
		}
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, filename, format, raw_text, ingested_at) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, string(doc.Format), doc.Text, doc.IngestedAt,
	); err != nil {
		return fmt.Errorf("inserting document %s: %w", doc.ID, err)
	}

	for _, chunk := range chunks {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (id, document_id, seq, text, start_off, end_off) VALUES (?, ?, ?, ?, ?, ?)`,
			chunk.ID, chunk.DocumentID, chunk.Seq, chunk.Text, chunk.Start, chunk.End,
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ID, err)
		}

		rowID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting rowid for chunk %s: %w", chunk.ID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunk_embeddings (rowid, embedding) VALUES (?, ?)`,
			rowID, serializeFloat32(chunk.Embedding),
		); err != nil {
			return fmt.Errorf("inserting embedding for chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("added document to sqlite-vec index",
		zap.String("document_id", doc.ID),
		zap.Int("chunks", len(chunks)),
	)

	return nil
}

// Query runs a KNN search via vec0 MATCH and joins back the chunk and
// document rows.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int, scoreThreshold float32) ([]knowledge.SearchResult, error) {
	if len(embedding) != d.config.Dimensions {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			knowledge.ErrIndexCorrupt, len(embedding), d.config.Dimensions)
	}
	if topK <= 0 {
		topK = 10
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT
			c.id, c.document_id, c.seq, c.text, c.start_off, c.end_off,
			doc.filename,
			ce.distance
		FROM chunk_embeddings ce
		INNER JOIN chunks c ON c.rowid = ce.rowid
		INNER JOIN documents doc ON doc.id = c.document_id
		WHERE ce.embedding MATCH ?
			AND ce.k = ?
		ORDER BY ce.distance
	`, serializeFloat32(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []knowledge.SearchResult
	for rows.Next() {
		var chunk knowledge.Chunk
		var filename string
		var distance float64
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Seq, &chunk.Text,
			&chunk.Start, &chunk.End, &filename, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		results = append(results, knowledge.SearchResult{
			Chunk:    chunk,
			Filename: filename,
			// Cosine distance to similarity: distance is in [0, 2].
			Score: float32(1.0 - distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	return vector.RankResults(results, topK, scoreThreshold), nil
}

// RemoveDocument deletes a document, its chunks and their embeddings.
func (d *Driver) RemoveDocument(ctx context.Context, docID string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunk_embeddings WHERE rowid IN (SELECT rowid FROM chunks WHERE document_id = ?)`,
		docID,
	); err != nil {
		return fmt.Errorf("deleting embeddings for document %s: %w", docID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("deleting chunks for document %s: %w", docID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, docID); err != nil {
		return fmt.Errorf("deleting document %s: %w", docID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Reset clears all documents, chunks and embeddings, then re-seeds the
// index metadata for the configured embedder.
func (d *Driver) Reset(ctx context.Context) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM chunk_embeddings`,
		`DELETE FROM chunks`,
		`DELETE FROM documents`,
		`DELETE FROM index_meta`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("resetting index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return d.writeMeta()
}

// Documents lists the stored documents with chunk counts.
func (d *Driver) Documents(ctx context.Context) ([]knowledge.DocumentInfo, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT
			doc.id, doc.filename, doc.format, doc.raw_text, doc.ingested_at,
			COUNT(c.rowid)
		FROM documents doc
		LEFT JOIN chunks c ON c.document_id = doc.id
		GROUP BY doc.id
		ORDER BY doc.ingested_at, doc.id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var infos []knowledge.DocumentInfo
	for rows.Next() {
		var info knowledge.DocumentInfo
		var format, rawText string
		if err := rows.Scan(&info.ID, &info.Filename, &format, &rawText, &info.IngestedAt, &info.Chunks); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		info.Format = knowledge.Format(format)
		info.Preview = vector.Preview(rawText)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}

	return infos, nil
}

// Close releases the database handle.
func (d *Driver) Close() error {
	return d.db.Close()
}

var _ vector.Driver = (*Driver)(nil)
