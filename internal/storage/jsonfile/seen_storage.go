package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/interfaces"
)

// SeenStorage persists the seen-set as a single JSON array of URL strings
type SeenStorage struct {
	path   string
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.SeenStorage = (*SeenStorage)(nil)

// NewSeenStorage creates a SeenStorage backed by the file at path
func NewSeenStorage(path string, logger arbor.ILogger) *SeenStorage {
	return &SeenStorage{
		path:   path,
		logger: logger,
	}
}

// Location returns the backing file path
func (s *SeenStorage) Location() string {
	return s.path
}

// LoadSeen reads the persisted URLs.
// A missing or empty file returns interfaces.ErrNoSeenState; anything other than a JSON array is an error.
// Non-string entries inside the array are skipped.
func (s *SeenStorage) LoadSeen(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, interfaces.ErrNoSeenState
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read seen file %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, interfaces.ErrNoSeenState
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("seen file %s is not a JSON array of strings: %w", s.path, err)
	}

	urls := make([]string, 0, len(raw))
	skipped := 0
	for _, v := range raw {
		url, ok := v.(string)
		if !ok {
			skipped++
			continue
		}
		urls = append(urls, url)
	}

	if skipped > 0 {
		s.logger.Warn().
			Int("skipped", skipped).
			Str("path", s.path).
			Msg("Ignored non-string entries in seen file")
	}

	return urls, nil
}

// SaveSeen overwrites the file with the full sorted set.
// The data goes to a temporary file in the same directory first and is renamed into place,
// so a crash mid-write leaves the previous snapshot intact.
func (s *SeenStorage) SaveSeen(ctx context.Context, urls []string) error {
	sorted := make([]string, len(urls))
	copy(sorted, urls)
	sort.Strings(sorted)

	data, err := json.MarshalIndent(sorted, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode seen set: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for seen file: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp seen file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write seen file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync seen file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close seen file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace seen file %s: %w", s.path, err)
	}

	return nil
}
