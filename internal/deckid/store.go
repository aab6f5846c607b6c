// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deckid allocates unique 9-digit deck IDs and records every issued
// ID in an append-only log so later runs do not reuse them.
//
// Neither store supports concurrent writers: two processes allocating at the
// same time can both load the same log and issue the same ID. Use from a
// single process at a time.
package deckid

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/spire-tally/pkg/types"
)

const (
	defaultFileName = "deck-ids.txt"
	defaultDBName   = "deck-ids.db"
)

// Store is an append-only record of issued deck IDs.
type Store interface {
	// Load returns every ID recorded so far.
	Load(ctx context.Context) ([]types.DeckID, error)

	// Append records id.
	Append(ctx context.Context, id types.DeckID) error

	// Close releases any resources held by the store.
	Close() error
}

// DefaultDir returns ~/.config/spire-tally, or the working directory when
// the home directory cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "spire-tally")
}

// Open returns the store selected by cfg. An empty path resolves to a file
// under DefaultDir.
func Open(cfg types.IDStoreConfig, runID string) (Store, error) {
	switch cfg.Backend {
	case "", types.IDStoreFile:
		path := cfg.Path
		if path == "" {
			path = filepath.Join(DefaultDir(), defaultFileName)
		}
		return NewFileStore(path), nil
	case types.IDStoreSQLite:
		path := cfg.Path
		if path == "" {
			path = filepath.Join(DefaultDir(), defaultDBName)
		}
		return NewSQLiteStore(path, runID)
	default:
		return nil, fmt.Errorf("unknown id store backend %q", cfg.Backend)
	}
}
