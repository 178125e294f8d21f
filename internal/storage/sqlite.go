// Package storage persists extracted records in a SQLite database.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/refsift/refsift/internal/export"
	"github.com/refsift/refsift/internal/record"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectRecordFields contains the standard field list for SELECT queries.
const selectRecordFields = `cite_key, ordinal, raw_text, number,
	authors_json, title, pub_year, venue, volume, issue,
	page_start, page_end, publisher, issn, doi, url, keywords_json,
	ref_type, confidence, enriched_by, provenance_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Extracted references, keyed by citation key
		CREATE TABLE IF NOT EXISTS records (
			cite_key TEXT PRIMARY KEY,
			ordinal INTEGER NOT NULL,
			raw_text TEXT NOT NULL,
			number TEXT,
			authors_json TEXT NOT NULL,
			title TEXT,
			pub_year INTEGER,
			venue TEXT,
			volume TEXT,
			issue TEXT,
			page_start INTEGER,
			page_end INTEGER,
			publisher TEXT,
			issn TEXT,
			doi TEXT,
			url TEXT,
			keywords_json TEXT,
			ref_type TEXT NOT NULL,
			confidence REAL NOT NULL,
			enriched_by TEXT,
			provenance_json TEXT,
			source_pdf TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		-- Index for DOI lookups
		CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi) WHERE doi IS NOT NULL AND doi != '';

		-- One row per processed document
		CREATE TABLE IF NOT EXISTS processing_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pdf_path TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			avg_confidence REAL NOT NULL,
			text_quality REAL NOT NULL,
			enriched INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'ok',
			error TEXT,
			processed_at TEXT NOT NULL
		);

		-- One row per export run
		CREATE TABLE IF NOT EXISTS export_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			format TEXT NOT NULL,
			output_path TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			exported_at TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveAll inserts or replaces the given records, keyed by citation key.
// The source PDF path is stored alongside each record. Returns the
// number of rows written.
func (d *DB) SaveAll(records []record.Record, sourcePDF string) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO records (
			cite_key, ordinal, raw_text, number,
			authors_json, title, pub_year, venue, volume, issue,
			page_start, page_end, publisher, issn, doi, url, keywords_json,
			ref_type, confidence, enriched_by, provenance_json,
			source_pdf, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cite_key) DO UPDATE SET
			ordinal = excluded.ordinal,
			raw_text = excluded.raw_text,
			number = excluded.number,
			authors_json = excluded.authors_json,
			title = excluded.title,
			pub_year = excluded.pub_year,
			venue = excluded.venue,
			volume = excluded.volume,
			issue = excluded.issue,
			page_start = excluded.page_start,
			page_end = excluded.page_end,
			publisher = excluded.publisher,
			issn = excluded.issn,
			doi = excluded.doi,
			url = excluded.url,
			keywords_json = excluded.keywords_json,
			ref_type = excluded.ref_type,
			confidence = excluded.confidence,
			enriched_by = excluded.enriched_by,
			provenance_json = excluded.provenance_json,
			source_pdf = excluded.source_pdf,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing records insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	keys := export.AssignKeys(records)
	for i, rec := range records {
		authorsJSON, err := json.Marshal(rec.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", keys[i], err)
		}
		var provenanceJSON []byte
		if len(rec.Provenance) > 0 {
			provenanceJSON, err = json.Marshal(rec.Provenance)
			if err != nil {
				return 0, fmt.Errorf("marshaling provenance for %s: %w", keys[i], err)
			}
		}
		var keywordsJSON []byte
		if len(rec.Keywords) > 0 {
			keywordsJSON, err = json.Marshal(rec.Keywords)
			if err != nil {
				return 0, fmt.Errorf("marshaling keywords for %s: %w", keys[i], err)
			}
		}

		_, err = stmt.Exec(
			keys[i], rec.Ordinal, rec.RawText, nullableStringValue(rec.Number),
			string(authorsJSON), rec.Title, rec.Year, nullableStringValue(rec.Venue),
			nullableStringValue(rec.Volume), nullableStringValue(rec.Issue),
			rec.Pages.Start, rec.Pages.End,
			nullableStringValue(rec.Publisher), nullableStringValue(rec.ISSN),
			nullableStringValue(rec.DOI), nullableStringValue(rec.URL),
			nullableString(keywordsJSON),
			string(rec.Type), rec.Confidence,
			nullableStringValue(string(rec.EnrichedBy)),
			nullableString(provenanceJSON),
			nullableStringValue(sourcePDF), now, now,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting record %s: %w", keys[i], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return len(records), nil
}

// GetByKey retrieves a record by its citation key. Returns nil when
// the key is unknown.
func (d *DB) GetByKey(key string) (*record.Record, error) {
	row := d.db.QueryRow(`SELECT `+selectRecordFields+` FROM records WHERE cite_key = ?`, key)
	return scanRecord(row)
}

// Search matches the query against title, authors and venue with a
// case-insensitive substring match, highest confidence first.
func (d *DB) Search(query string, limit int) ([]record.Record, error) {
	pattern := "%" + query + "%"
	rows, err := d.db.Query(`
		SELECT `+selectRecordFields+`
		FROM records
		WHERE title LIKE ? OR authors_json LIKE ? OR venue LIKE ?
		ORDER BY confidence DESC
		LIMIT ?`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListAll returns all records ordered by citation key, optionally limited.
func (d *DB) ListAll(limit int) ([]record.Record, error) {
	query := `SELECT ` + selectRecordFields + ` FROM records ORDER BY cite_key`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Delete removes a record by citation key. Reports whether a row was
// actually removed.
func (d *DB) Delete(key string) (bool, error) {
	res, err := d.db.Exec("DELETE FROM records WHERE cite_key = ?", key)
	if err != nil {
		return false, fmt.Errorf("deleting record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear removes all records, keeping history tables intact.
func (d *DB) Clear() error {
	_, err := d.db.Exec("DELETE FROM records")
	return err
}

// Count returns the total number of stored records.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

// ProcessingEntry is one processing history row. ProcessedAt is set by
// RecordProcessing; Status defaults to "ok" when empty.
type ProcessingEntry struct {
	PDFPath       string  `json:"pdf_path"`
	RecordCount   int     `json:"record_count"`
	AvgConfidence float64 `json:"avg_confidence"`
	TextQuality   float64 `json:"text_quality"`
	Enriched      bool    `json:"enriched"`
	DurationMS    int64   `json:"duration_ms"`
	Status        string  `json:"status"`
	Error         string  `json:"error,omitempty"`
	ProcessedAt   string  `json:"processed_at"`
}

// RecordProcessing appends a processing history row for a document run.
func (d *DB) RecordProcessing(e ProcessingEntry) error {
	enrichedFlag := 0
	if e.Enriched {
		enrichedFlag = 1
	}
	status := e.Status
	if status == "" {
		status = "ok"
	}
	_, err := d.db.Exec(`
		INSERT INTO processing_history (pdf_path, record_count, avg_confidence, text_quality, enriched, duration_ms, status, error, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.PDFPath, e.RecordCount, e.AvgConfidence, e.TextQuality, enrichedFlag, e.DurationMS, status, nullableStringValue(e.Error), time.Now().UTC().Format(time.RFC3339))
	return err
}

// RecordExport appends an export history row.
func (d *DB) RecordExport(format export.Format, outputPath string, recordCount int) error {
	_, err := d.db.Exec(`
		INSERT INTO export_history (format, output_path, record_count, exported_at)
		VALUES (?, ?, ?, ?)
	`, string(format), outputPath, recordCount, time.Now().UTC().Format(time.RFC3339))
	return err
}

// ListProcessingHistory returns processing history, newest first.
func (d *DB) ListProcessingHistory(limit int) ([]ProcessingEntry, error) {
	query := `SELECT pdf_path, record_count, avg_confidence, text_quality, enriched, duration_ms, status, error, processed_at
		FROM processing_history ORDER BY id DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing processing history: %w", err)
	}
	defer rows.Close()

	var entries []ProcessingEntry
	for rows.Next() {
		var e ProcessingEntry
		var enriched int
		var errMsg sql.NullString
		if err := rows.Scan(&e.PDFPath, &e.RecordCount, &e.AvgConfidence, &e.TextQuality, &enriched, &e.DurationMS, &e.Status, &errMsg, &e.ProcessedAt); err != nil {
			return nil, err
		}
		e.Enriched = enriched != 0
		e.Error = errMsg.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats summarizes the database contents.
type Stats struct {
	Records       int     `json:"records"`
	Documents     int     `json:"documents"`
	Exports       int     `json:"exports"`
	AvgConfidence float64 `json:"avg_confidence"`
	WithDOI       int     `json:"with_doi"`
	Enriched      int     `json:"enriched"`
}

// DatabaseStats computes summary statistics over stored records and history.
func (d *DB) DatabaseStats() (Stats, error) {
	var s Stats
	err := d.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(AVG(confidence), 0),
			COALESCE(SUM(CASE WHEN doi IS NOT NULL AND doi != '' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN enriched_by IS NOT NULL AND enriched_by != '' THEN 1 ELSE 0 END), 0)
		FROM records
	`).Scan(&s.Records, &s.AvgConfidence, &s.WithDOI, &s.Enriched)
	if err != nil {
		return Stats{}, fmt.Errorf("computing record stats: %w", err)
	}
	if err := d.db.QueryRow("SELECT COUNT(*) FROM processing_history").Scan(&s.Documents); err != nil {
		return Stats{}, err
	}
	if err := d.db.QueryRow("SELECT COUNT(*) FROM export_history").Scan(&s.Exports); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*record.Record, error) {
	var rec record.Record
	var citeKey string
	var authorsJSON string
	var provenanceJSON, number, venue, volume, issue sql.NullString
	var publisher, issn, doi, url, keywordsJSON, enrichedBy sql.NullString
	var refType string

	err := s.Scan(
		&citeKey, &rec.Ordinal, &rec.RawText, &number,
		&authorsJSON, &rec.Title, &rec.Year, &venue, &volume, &issue,
		&rec.Pages.Start, &rec.Pages.End, &publisher, &issn, &doi, &url, &keywordsJSON,
		&refType, &rec.Confidence, &enrichedBy, &provenanceJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rec.Number = number.String
	rec.Venue = venue.String
	rec.Volume = volume.String
	rec.Issue = issue.String
	rec.Publisher = publisher.String
	rec.ISSN = issn.String
	rec.DOI = doi.String
	rec.URL = url.String
	rec.Type = record.CitationType(refType)
	rec.EnrichedBy = record.Source(enrichedBy.String)

	if err := json.Unmarshal([]byte(authorsJSON), &rec.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors JSON for %s: %w", citeKey, err)
	}
	if keywordsJSON.Valid && keywordsJSON.String != "" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &rec.Keywords); err != nil {
			return nil, fmt.Errorf("parsing keywords JSON for %s: %w", citeKey, err)
		}
	}
	if provenanceJSON.Valid && provenanceJSON.String != "" {
		if err := json.Unmarshal([]byte(provenanceJSON.String), &rec.Provenance); err != nil {
			return nil, fmt.Errorf("parsing provenance JSON for %s: %w", citeKey, err)
		}
	}

	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]record.Record, error) {
	var records []record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, rows.Err()
}

func nullableString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
