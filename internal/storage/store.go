// Package storage persists upload payloads on disk, one directory per
// user. The raw snapshot and its enriched companion live side by side so
// either can be rebuilt or served independently.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"pokedex-tracker/internal/config"

	"github.com/rs/zerolog"
)

type Store struct {
	root   string
	logger zerolog.Logger
}

func NewStore(cfg *config.Config, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &Store{
		root:   cfg.UploadsDir,
		logger: logger.With().Str("component", "storage").Logger(),
	}, nil
}

func (s *Store) rawPath(userID, fileID string) string {
	return filepath.Join(s.root, userID, fileID+".json")
}

func (s *Store) enrichedPath(userID, fileID string) string {
	return filepath.Join(s.root, userID, fileID+"_enriched.json")
}

// WriteRaw persists the original upload payload.
func (s *Store) WriteRaw(userID, fileID string, payload []byte) error {
	return s.write(s.rawPath(userID, fileID), payload)
}

// WriteEnriched persists the enriched record list for an upload.
func (s *Store) WriteEnriched(userID, fileID string, payload []byte) error {
	return s.write(s.enrichedPath(userID, fileID), payload)
}

func (s *Store) ReadRaw(userID, fileID string) ([]byte, error) {
	return os.ReadFile(s.rawPath(userID, fileID))
}

func (s *Store) ReadEnriched(userID, fileID string) ([]byte, error) {
	return os.ReadFile(s.enrichedPath(userID, fileID))
}

// HasEnriched reports whether the enriched companion file exists.
func (s *Store) HasEnriched(userID, fileID string) bool {
	_, err := os.Stat(s.enrichedPath(userID, fileID))
	return err == nil
}

// Delete removes both payload files for an upload. A missing file is not
// an error; the row may have outlived a partial cleanup.
func (s *Store) Delete(userID, fileID string) error {
	for _, path := range []string{s.rawPath(userID, fileID), s.enrichedPath(userID, fileID)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
	}
	return nil
}

// write lands the payload via a temp file plus rename so readers never see
// a half-written file.
func (s *Store) write(path string, payload []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create user dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close payload file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize payload file: %w", err)
	}
	return nil
}
