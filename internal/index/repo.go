package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/relyaml/internal/apperr"
	"github.com/starford/relyaml/internal/models"
)

// Stamp is what Sync compares to decide whether a file must be re-read.
type Stamp struct {
	Checksum   string
	ModifiedAt time.Time
}

// Matches reports whether fi describes the same file version.
func (s Stamp) Matches(fi models.FileInfo) bool {
	return s.Checksum == fi.Checksum && s.ModifiedAt.Equal(fi.ModifiedAt)
}

const documentColumns = `path, name, checksum, metadata, created_at, modified_at`

// UpsertDocument inserts or replaces a document row.
func (db *DB) UpsertDocument(doc models.Document) error {
	var md sql.NullString
	if doc.Metadata != nil {
		data, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("index: encode metadata: %w", err)
		}
		md = sql.NullString{String: string(data), Valid: true}
	}

	_, err := db.conn.Exec(`
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name        = excluded.name,
			checksum    = excluded.checksum,
			metadata    = excluded.metadata,
			created_at  = excluded.created_at,
			modified_at = excluded.modified_at
	`, doc.Path, doc.Name, doc.Checksum, md, doc.CreatedAt, doc.ModifiedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}
	return nil
}

// DeleteDocument removes a document row. Deleting a missing row is not an error.
func (db *DB) DeleteDocument(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return nil
}

// GetChecksum returns the stored checksum for a document, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// GetDocument returns one cached document or apperr.ErrNotFound.
func (db *DB) GetDocument(path string) (*models.Document, error) {
	row := db.conn.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE path = ?`, path)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns every cached document ordered by path.
func (db *DB) ListDocuments() ([]models.Document, error) {
	rows, err := db.conn.Query(`SELECT ` + documentColumns + ` FROM documents ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("index: list documents: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// AllStamps returns checksum and modification time for every cached document.
func (db *DB) AllStamps() (map[string]Stamp, error) {
	rows, err := db.conn.Query(`SELECT path, checksum, modified_at FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all stamps: %w", err)
	}
	defer rows.Close()
	out := make(map[string]Stamp)
	for rows.Next() {
		var p string
		var s Stamp
		if err := rows.Scan(&p, &s.Checksum, &s.ModifiedAt); err != nil {
			return nil, err
		}
		out[p] = s
	}
	return out, rows.Err()
}

// GetSetting returns a persisted setting value and whether it exists.
func (db *DB) GetSetting(key string) (string, bool, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("index: get setting: %w", err)
	}
	return v, true, nil
}

// PutSetting stores a setting value.
func (db *DB) PutSetting(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("index: put setting: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (models.Document, error) {
	var doc models.Document
	var md sql.NullString
	if err := s.Scan(&doc.Path, &doc.Name, &doc.Checksum, &md, &doc.CreatedAt, &doc.ModifiedAt); err != nil {
		return models.Document{}, err
	}
	if md.Valid {
		// A row that no longer decodes is served without metadata rather
		// than failing the whole listing.
		var decoded models.Metadata
		if err := json.Unmarshal([]byte(md.String), &decoded); err == nil {
			if decoded == nil {
				decoded = models.Metadata{}
			}
			doc.Metadata = decoded
		}
	}
	return doc, nil
}
