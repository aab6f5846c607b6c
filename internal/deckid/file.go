// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deckid

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/spire-tally/pkg/types"
)

// FileStore keeps issued IDs in a newline-delimited text file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created on the
// first Append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads every non-blank line as an ID. A missing file is an empty log.
func (s *FileStore) Load(ctx context.Context) ([]types.DeckID, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening id log %s: %w", s.path, err)
	}
	defer f.Close()

	var ids []types.DeckID
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		ids = append(ids, types.DeckID(line))
	}
	if err := sc.Err(); err != nil {
		return ids, fmt.Errorf("reading id log %s: %w", s.path, err)
	}
	return ids, ctx.Err()
}

// Append writes id on its own line at the end of the file.
func (s *FileStore) Append(ctx context.Context, id types.DeckID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating id log directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening id log %s: %w", s.path, err)
	}
	if _, err := f.WriteString(string(id) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("appending to id log: %w", err)
	}
	return f.Close()
}

// Close is a no-op; the file is opened per call.
func (s *FileStore) Close() error {
	return nil
}
