package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/contentarch/semstore/internal/models"
)

// SQLiteStorage implements Storage using SQLite, for corpora that should
// survive a restart.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS content_documents (
		id TEXT PRIMARY KEY,
		content_type TEXT,
		title TEXT,
		payload TEXT NOT NULL,
		searchable_text TEXT NOT NULL,
		embedding BLOB NOT NULL,
		metadata TEXT,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_content_type ON content_documents(content_type);

	CREATE TABLE IF NOT EXISTS embedding_records (
		id TEXT PRIMARY KEY,
		content_id TEXT NOT NULL,
		vector BLOB NOT NULL,
		content_type TEXT,
		title TEXT,
		dimensions INTEGER NOT NULL,
		model TEXT,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS search_history (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		user_id TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL,
		result_count INTEGER NOT NULL,
		threshold REAL NOT NULL,
		content_type TEXT,
		model TEXT,
		seq INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_history_recorded_at ON search_history(recorded_at);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateDocument inserts a document.
func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *models.ContentDocument) error {
	payloadJSON, metadataJSON, err := marshalDocumentFields(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO content_documents (id, content_type, title, payload, searchable_text, embedding, metadata, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.ContentType, doc.Title, payloadJSON, doc.SearchableText,
		vectorToBytes(doc.Embedding), metadataJSON, doc.Status, doc.CreatedAt, doc.UpdatedAt,
	)
	return err
}

// GetDocument returns a document by id, or ErrNotFound.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.ContentDocument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content_type, title, payload, searchable_text, embedding, metadata, status, created_at, updated_at
		 FROM content_documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, err
}

// UpdateDocument replaces an existing document, or returns ErrNotFound.
func (s *SQLiteStorage) UpdateDocument(ctx context.Context, doc *models.ContentDocument) error {
	payloadJSON, metadataJSON, err := marshalDocumentFields(doc)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE content_documents
		 SET content_type = ?, title = ?, payload = ?, searchable_text = ?, embedding = ?, metadata = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		doc.ContentType, doc.Title, payloadJSON, doc.SearchableText,
		vectorToBytes(doc.Embedding), metadataJSON, doc.Status, doc.UpdatedAt, doc.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, ErrNotFound)
	}
	return nil
}

// DeleteDocument removes a document by id. Deleting an absent id is a no-op.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM content_documents WHERE id = ?`, id)
	return err
}

// ListDocuments returns documents ordered by id, filtered by content type
// when contentType is non-empty.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, contentType string) ([]*models.ContentDocument, error) {
	query := `SELECT id, content_type, title, payload, searchable_text, embedding, metadata, status, created_at, updated_at
		 FROM content_documents`
	args := []any{}
	if contentType != "" {
		query += ` WHERE content_type = ?`
		args = append(args, contentType)
	}
	query += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.ContentDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// PutEmbeddingRecord inserts or replaces an embedding record.
func (s *SQLiteStorage) PutEmbeddingRecord(ctx context.Context, rec *models.EmbeddingRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO embedding_records (id, content_id, vector, content_type, title, dimensions, model, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   content_id = excluded.content_id, vector = excluded.vector,
		   content_type = excluded.content_type, title = excluded.title,
		   dimensions = excluded.dimensions, model = excluded.model,
		   updated_at = excluded.updated_at`,
		rec.ID, rec.ContentID, vectorToBytes(rec.Vector), rec.ContentType,
		rec.Title, rec.Dimensions, rec.Model, rec.UpdatedAt,
	)
	return err
}

// GetEmbeddingRecord returns an embedding record by id, or ErrNotFound.
func (s *SQLiteStorage) GetEmbeddingRecord(ctx context.Context, id string) (*models.EmbeddingRecord, error) {
	var rec models.EmbeddingRecord
	var vec []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content_id, vector, content_type, title, dimensions, model, updated_at
		 FROM embedding_records WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.ContentID, &vec, &rec.ContentType, &rec.Title, &rec.Dimensions, &rec.Model, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("embedding record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	rec.Vector = bytesToVector(vec)
	return &rec, nil
}

// DeleteEmbeddingRecord removes an embedding record. Absent ids are a no-op.
func (s *SQLiteStorage) DeleteEmbeddingRecord(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM embedding_records WHERE id = ?`, id)
	return err
}

// AppendSearch appends a search history record.
func (s *SQLiteStorage) AppendSearch(ctx context.Context, rec *models.SearchHistoryRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_history (id, query, user_id, recorded_at, result_count, threshold, content_type, model, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM search_history))`,
		rec.ID, rec.Query, rec.UserID, rec.RecordedAt, rec.ResultCount,
		rec.Threshold, rec.ContentType, rec.Model,
	)
	return err
}

// ListSearchesSince returns history records with recorded_at >= cutoff in
// append order.
func (s *SQLiteStorage) ListSearchesSince(ctx context.Context, cutoff time.Time) ([]*models.SearchHistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, user_id, recorded_at, result_count, threshold, content_type, model
		 FROM search_history WHERE recorded_at >= ? ORDER BY seq`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.SearchHistoryRecord
	for rows.Next() {
		var rec models.SearchHistoryRecord
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.UserID, &rec.RecordedAt,
			&rec.ResultCount, &rec.Threshold, &rec.ContentType, &rec.Model); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_documents`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func marshalDocumentFields(doc *models.ContentDocument) (payloadJSON, metadataJSON string, err error) {
	p, err := json.Marshal(doc.Payload)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	m, err := json.Marshal(doc.Metadata)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return string(p), string(m), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.ContentDocument, error) {
	var doc models.ContentDocument
	var payloadJSON, metadataJSON string
	var vec []byte
	err := row.Scan(&doc.ID, &doc.ContentType, &doc.Title, &payloadJSON, &doc.SearchableText,
		&vec, &metadataJSON, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	doc.Embedding = bytesToVector(vec)
	if payloadJSON != "" && payloadJSON != "null" {
		doc.Payload = &models.ContentPayload{}
		if err := json.Unmarshal([]byte(payloadJSON), doc.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}
	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &doc, nil
}

// Vectors are stored as little-endian float32 blobs.
func vectorToBytes(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:(i+1)*4], math.Float32bits(f))
	}
	return out
}

func bytesToVector(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : (i+1)*4]))
	}
	return out
}
