// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package recorder provides append-only persistence of execution outcomes.
// Every completed plan execution is stored as an ExecutionRecord and forwarded
// once to the learning store for weight adaptation.
package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	log "github.com/sirupsen/logrus"

	"github.com/traylinx/capRoute/internal/util"
)

// Ingester receives every persisted record exactly once. The learning store
// implements it; the interface keeps this package free of a learning import.
type Ingester interface {
	Ingest(rec *ExecutionRecord)
}

// Recorder persists execution records to SQLite. Records are append-only;
// the recorder performs no deduplication — submitting the same logical
// outcome twice is two events, and deduplication is the caller's concern.
type Recorder struct {
	db            *sql.DB
	dbPath        string
	retentionDays int
	enabled       bool
	ingester      Ingester
	done          chan struct{}
	mu            sync.RWMutex
}

// NewRecorder creates a recorder writing to the SQLite file at dbPath.
// Records older than retentionDays are purged periodically.
func NewRecorder(dbPath string, retentionDays int) (*Recorder, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if retentionDays <= 0 {
		retentionDays = 90
	}

	return &Recorder{
		dbPath:        dbPath,
		retentionDays: retentionDays,
	}, nil
}

// SetIngester wires the learning store. Must be called before Record;
// a nil ingester means records are persisted but not learned from.
func (r *Recorder) SetIngester(ing Ingester) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingester = ing
}

// Initialize opens the database and creates the schema.
func (r *Recorder) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", r.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS execution_records (
		id TEXT PRIMARY KEY,
		chain_id TEXT NOT NULL,
		request_text TEXT NOT NULL,
		primary_provider TEXT NOT NULL,
		secondary_providers TEXT,
		plan_confidence REAL NOT NULL,
		status TEXT NOT NULL,
		score REAL NOT NULL,
		execution_ms INTEGER NOT NULL,
		providers_used TEXT NOT NULL,
		error_detail TEXT,
		metadata TEXT,
		timestamp DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_records_chain ON execution_records(chain_id);
	CREATE INDEX IF NOT EXISTS idx_records_timestamp ON execution_records(timestamp);
	CREATE INDEX IF NOT EXISTS idx_records_status ON execution_records(status);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Infof("Execution recorder initialized (db: %s, retention: %d days)", r.dbPath, r.retentionDays)

	r.db = db
	r.enabled = true
	r.done = make(chan struct{})

	go r.cleanupLoop(context.Background())

	return nil
}

// IsEnabled returns whether the recorder is active.
func (r *Recorder) IsEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// Record validates, persists, and forwards one execution outcome.
// Out-of-range scores are clamped rather than rejected since upstream
// scoring is heuristic. The stored record is returned with its assigned ID.
func (r *Recorder) Record(ctx context.Context, rec *ExecutionRecord) (*ExecutionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.enabled {
		return nil, fmt.Errorf("execution recorder not enabled")
	}
	if rec == nil {
		return nil, fmt.Errorf("record cannot be nil")
	}
	if _, err := ParseStatus(string(rec.Status)); err != nil {
		return nil, err
	}

	stored := *rec
	stored.Score = util.Clamp01(rec.Score)
	stored.PlanConfidence = util.Clamp01(rec.PlanConfidence)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}

	secondaries, err := json.Marshal(stored.SecondaryProviders)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal secondary providers: %w", err)
	}
	used, err := json.Marshal(stored.ProvidersUsed)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal providers used: %w", err)
	}

	metadataJSON := []byte("{}")
	if stored.Metadata != nil {
		metadataJSON, err = json.Marshal(stored.Metadata)
		if err != nil {
			log.Warnf("Failed to marshal record metadata: %v", err)
			metadataJSON = []byte("{}")
		}
	}
	stored.MetadataJSON = string(metadataJSON)

	query := `
	INSERT INTO execution_records (
		id, chain_id, request_text, primary_provider, secondary_providers,
		plan_confidence, status, score, execution_ms, providers_used,
		error_detail, metadata, timestamp
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		stored.ID,
		stored.ChainID,
		stored.RequestText,
		stored.PrimaryProvider,
		string(secondaries),
		stored.PlanConfidence,
		string(stored.Status),
		stored.Score,
		stored.ExecutionTime.Milliseconds(),
		string(used),
		stored.ErrorDetail,
		stored.MetadataJSON,
		stored.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert execution record: %w", err)
	}

	log.Debugf("Recorded execution %s (chain: %s, status: %s, score: %.2f)",
		stored.ID, stored.ChainID, stored.Status, stored.Score)

	// Exactly one ingestion per persisted record
	if r.ingester != nil {
		r.ingester.Ingest(&stored)
	}

	return &stored, nil
}

// Recent returns up to limit records for a request chain, newest first.
func (r *Recorder) Recent(ctx context.Context, chainID string, limit int) ([]ExecutionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.enabled {
		return nil, fmt.Errorf("execution recorder not enabled")
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
	SELECT id, chain_id, request_text, primary_provider, secondary_providers,
		plan_confidence, status, score, execution_ms, providers_used,
		error_detail, metadata, timestamp
	FROM execution_records
	WHERE chain_id = ?
	ORDER BY timestamp DESC, created_at DESC
	LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, chainID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution records: %w", err)
	}
	defer rows.Close()

	var records []ExecutionRecord
	for rows.Next() {
		var rec ExecutionRecord
		var status string
		var secondaries, used, errorDetail, metadata sql.NullString
		var execMs int64

		if err := rows.Scan(
			&rec.ID, &rec.ChainID, &rec.RequestText, &rec.PrimaryProvider,
			&secondaries, &rec.PlanConfidence, &status, &rec.Score, &execMs,
			&used, &errorDetail, &metadata, &rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan execution record: %w", err)
		}

		rec.Status = ResultStatus(status)
		rec.ExecutionTime = time.Duration(execMs) * time.Millisecond
		rec.ErrorDetail = errorDetail.String
		rec.MetadataJSON = metadata.String
		if secondaries.Valid && secondaries.String != "" {
			if err := json.Unmarshal([]byte(secondaries.String), &rec.SecondaryProviders); err != nil {
				log.Warnf("Failed to unmarshal secondary providers for record %s: %v", rec.ID, err)
			}
		}
		if used.Valid && used.String != "" {
			if err := json.Unmarshal([]byte(used.String), &rec.ProvidersUsed); err != nil {
				log.Warnf("Failed to unmarshal providers used for record %s: %v", rec.ID, err)
			}
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// Count returns the total number of stored records.
func (r *Recorder) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.enabled {
		return 0, fmt.Errorf("execution recorder not enabled")
	}

	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM execution_records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count execution records: %w", err)
	}
	return count, nil
}

// cleanupLoop prunes aged records at startup and once a day after, until
// the recorder is closed.
func (r *Recorder) cleanupLoop(ctx context.Context) {
	r.cleanupOldRecords(ctx)

	r.mu.RLock()
	done := r.done
	r.mu.RUnlock()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			r.cleanupOldRecords(ctx)
		}
	}
}

// cleanupOldRecords removes records older than the retention period.
func (r *Recorder) cleanupOldRecords(ctx context.Context) {
	r.mu.RLock()
	db := r.db
	retention := r.retentionDays
	r.mu.RUnlock()

	if db == nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -retention)
	result, err := db.ExecContext(ctx, `DELETE FROM execution_records WHERE timestamp < ?`, cutoff)
	if err != nil {
		log.Warnf("Failed to clean up old execution records: %v", err)
		return
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		log.Infof("Cleaned up %d execution records older than %d days", n, retention)
	}
}

// Close shuts the recorder down.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.enabled = false
	if r.done != nil {
		close(r.done)
		r.done = nil
	}
	if r.db != nil {
		err := r.db.Close()
		r.db = nil
		return err
	}
	return nil
}
