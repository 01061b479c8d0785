/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

// Package db stores Microsoft Graph access tokens in a BoltDB file.
//
// Tokens are keyed by profile name. Acquiring tokens is someone else's job;
// this package only keeps what the operator hands it and reports expiry.
package db

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/PivotLLM/MCPGraph/global"
)

const (
	// DatabaseFile is the file name inside the data directory
	DatabaseFile = "mcpgraph.db"

	bucketTokens     = "graph_tokens"
	bucketSystem     = "system"
	keySchemaVersion = "schema_version"
	schemaVersion    = "1.0"
)

// DB is a BoltDB-backed token store
type DB struct {
	db      *bbolt.DB
	logger  global.Logger
	dataDir string
	mutex   sync.RWMutex
	closed  bool
}

// Config holds configuration options for the database
type Config struct {
	DataDir string
	Logger  global.Logger
	Timeout time.Duration
}

// Option defines a configuration option for the database
type Option func(*Config)

// WithDataDir sets the data directory for the database
func WithDataDir(dataDir string) Option {
	return func(c *Config) {
		c.DataDir = dataDir
	}
}

// WithLogger sets the logger for the database
func WithLogger(logger global.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithOpenTimeout bounds how long Open waits for the file lock
func WithOpenTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// New opens (creating if needed) the token database
func New(opts ...Option) (*DB, error) {
	config := &Config{Timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(config)
	}

	if config.Logger == nil {
		return nil, NewValidationError("logger", nil, "logger is required")
	}

	d := &DB{logger: config.Logger}

	if config.DataDir == "" {
		config.DataDir = d.determineDataDirectory()
	}
	d.dataDir = config.DataDir

	if err := os.MkdirAll(d.dataDir, 0700); err != nil {
		return nil, NewDatabaseError("create_data_dir",
			fmt.Errorf("failed to create data directory %s: %w", d.dataDir, err))
	}

	dbPath := filepath.Join(d.dataDir, DatabaseFile)
	bdb, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: config.Timeout})
	if err != nil {
		return nil, NewDatabaseError("open_db",
			fmt.Errorf("failed to open database at %s: %w", dbPath, err))
	}
	d.db = bdb

	if err := d.initializeSchema(); err != nil {
		_ = d.db.Close()
		return nil, NewDatabaseError("init_schema", err)
	}

	d.logger.Infof("Token database initialized at %s", dbPath)
	return d, nil
}

// Path returns the database file path
func (d *DB) Path() string {
	return filepath.Join(d.dataDir, DatabaseFile)
}

// determineDataDirectory prefers /opt/mcpgraph and falls back to ~/.mcpgraph
func (d *DB) determineDataDirectory() string {
	systemDir := "/opt/mcpgraph"
	if isDirectoryWritable(systemDir) {
		d.logger.Debugf("Using system data directory: %s", systemDir)
		return systemDir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		d.logger.Warningf("Cannot determine home directory: %v", err)
		return filepath.Join(os.TempDir(), "mcpgraph")
	}

	userDir := filepath.Join(homeDir, ".mcpgraph")
	d.logger.Debugf("Using user data directory: %s", userDir)
	return userDir
}

func isDirectoryWritable(dir string) bool {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return false
	}

	testFile := filepath.Join(dir, ".test")
	if err := os.WriteFile(testFile, []byte("test"), 0600); err != nil {
		return false
	}

	_ = os.Remove(testFile)
	return true
}

func (d *DB) initializeSchema() error {
	return d.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketTokens, bucketSystem} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		system := tx.Bucket([]byte(bucketSystem))
		if err := system.Put([]byte(keySchemaVersion), []byte(schemaVersion)); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
		return nil
	})
}

// Close closes the database connection. Closing twice is a no-op.
func (d *DB) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.closed || d.db == nil {
		d.closed = true
		return nil
	}

	err := d.db.Close()
	d.closed = true
	if err != nil {
		return NewDatabaseError("close_db", err)
	}

	d.logger.Debug("Token database closed")
	return nil
}

func (d *DB) checkClosed() error {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	if d.closed {
		return ErrDatabaseClosed
	}
	return nil
}
