// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package database is the DuckDB-backed idea store.
//
// It owns the ideas table plus the append-only tables that record how
// ideas change: the feedback log, idea version snapshots and temporal
// embedding snapshots. Similarity search runs as a brute-force cosine scan
// for small corpora and switches to an in-memory flat index once the corpus
// reaches the configured threshold; both paths return the same scores.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/logging"
)

// DefaultIndexThreshold is the corpus size at which search switches from a
// brute-force scan to the flat index.
const DefaultIndexThreshold = 100

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	// Flat similarity index, rebuilt lazily when dataVersion moves past
	// the version it was built at.
	index       *flatIndex
	indexMu     sync.Mutex
	dataVersion int64
	versionMu   sync.RWMutex

	maxRetries int
	retryDelay time.Duration
}

// New opens (or creates) the database at cfg.Path and initializes the schema.
// Use ":memory:" for an ephemeral database.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:       conn,
		cfg:        cfg,
		maxRetries: 3,
		retryDelay: 50 * time.Millisecond,
	}

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Int("threads", numThreads).Msg("Database opened")
	return db, nil
}

// Conn returns the underlying SQL connection. The audit store shares it.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// IndexThreshold returns the corpus size at which the flat index is used.
func (db *DB) IndexThreshold() int {
	if db.cfg.IndexThreshold > 0 {
		return db.cfg.IndexThreshold
	}
	return DefaultIndexThreshold
}

// Close checkpoints the WAL and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if db.cfg.Path != ":memory:" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Checkpoint(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}
	return db.conn.Close()
}

// Ping checks if the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// initialize creates tables and indexes.
func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}
	if err := db.createIndexes(); err != nil {
		return err
	}
	return nil
}

// bumpVersion marks the corpus as changed so the flat index is rebuilt.
func (db *DB) bumpVersion() {
	db.versionMu.Lock()
	db.dataVersion++
	db.versionMu.Unlock()
}

func (db *DB) version() int64 {
	db.versionMu.RLock()
	defer db.versionMu.RUnlock()
	return db.dataVersion
}
