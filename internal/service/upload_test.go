package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pokedex-tracker/internal/config"
	"pokedex-tracker/internal/database"
	"pokedex-tracker/internal/domain"
	"pokedex-tracker/internal/enrich"
	"pokedex-tracker/internal/master"
	"pokedex-tracker/internal/repository"
	"pokedex-tracker/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogicalIdentity(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantUser string
		wantDate string
	}{
		{
			name:     "standard export name",
			filename: "Pokemons-Ash-05-03-2025.json",
			wantUser: "Ash",
			wantDate: "2025-03-05",
		},
		{
			name:     "trainer name with dashes",
			filename: "Pokemons-Ash-Ketchum-05-03-2025.json",
			wantUser: "Ash-Ketchum",
			wantDate: "2025-03-05",
		},
		{
			name:     "unrelated filename",
			filename: "backup.json",
		},
		{
			name:     "missing date",
			filename: "Pokemons-Ash.json",
		},
		{
			name:     "wrong extension",
			filename: "Pokemons-Ash-05-03-2025.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, date := logicalIdentity(tt.filename)
			assert.Equal(t, tt.wantUser, user)
			assert.Equal(t, tt.wantDate, date)
		})
	}
}

func TestUploadRollsBackRowWhenPayloadWriteFails(t *testing.T) {
	tmp := t.TempDir()
	cfg := &config.Config{
		DBPath:         filepath.Join(tmp, "test.db"),
		UploadsDir:     filepath.Join(tmp, "uploads"),
		TierBoundaries: []float64{0, 0.1, 51.1, 82.2, 100},
	}

	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewUploadRepository(db, zerolog.Nop())
	store, err := storage.NewStore(cfg, zerolog.Nop())
	require.NoError(t, err)

	masterIdx, err := master.Parse([]byte(`[]`))
	require.NoError(t, err)
	pipeline := enrich.NewPipeline(cfg, masterIdx, nil, zerolog.Nop())

	svc := NewUploadService(cfg, repo, store, pipeline, zerolog.Nop())

	// A regular file where the user's upload directory should go makes
	// the payload write fail after the metadata row was inserted.
	require.NoError(t, os.WriteFile(filepath.Join(cfg.UploadsDir, "trainer"), nil, 0o644))

	payload := []byte(`{"42": {"mon_number": 1, "mon_name": "Bulbasaur", "mon_cp": 500}}`)
	_, err = svc.Upload(context.Background(), "trainer", "Pokemons-Ash-05-03-2025.json", payload)
	require.Error(t, err)

	uploads, err := svc.List(context.Background(), "trainer")
	require.NoError(t, err)
	assert.Empty(t, uploads, "a payload that never landed leaves no row behind")
}

func TestProgressUnknownFile(t *testing.T) {
	s := &UploadService{progress: map[string]*domain.Progress{}}
	p := s.Progress("nope")
	assert.Equal(t, domain.ProgressNotFound, p.Status)
}

func TestProgressRoundTrip(t *testing.T) {
	s := &UploadService{progress: map[string]*domain.Progress{}}
	s.setProgress("f1", &domain.Progress{Current: 3, Total: 10, Status: domain.ProgressProcessing})

	p := s.Progress("f1")
	assert.Equal(t, 3, p.Current)
	assert.Equal(t, 10, p.Total)
	assert.Equal(t, domain.ProgressProcessing, p.Status)

	s.clearProgress("f1")
	assert.Equal(t, domain.ProgressNotFound, s.Progress("f1").Status)
}
