package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"pokedex-tracker/internal/config"
	"pokedex-tracker/internal/constants"
	"pokedex-tracker/internal/domain"
	"pokedex-tracker/internal/enrich"
	"pokedex-tracker/internal/repository"
	"pokedex-tracker/internal/snapshot"
	"pokedex-tracker/internal/storage"

	"github.com/rs/zerolog"
)

// Snapshot filenames exported by the companion app look like
// Pokemons-<trainer>-dd-mm-yyyy.json; the trainer name and date drive the
// one-snapshot-per-trainer retention policy.
var snapshotNameRe = regexp.MustCompile(`^Pokemons-(.+)-(\d{2})-(\d{2})-(\d{4})\.json$`)

// enrichChunk keeps progress reporting responsive on large uploads.
const enrichChunk = 500

type UploadService struct {
	repo     *repository.UploadRepository
	store    *storage.Store
	pipeline *enrich.Pipeline
	logger   zerolog.Logger

	progressMu sync.RWMutex
	progress   map[string]*domain.Progress
}

func NewUploadService(cfg *config.Config, repo *repository.UploadRepository, store *storage.Store, pipeline *enrich.Pipeline, logger zerolog.Logger) *UploadService {
	return &UploadService{
		repo:     repo,
		store:    store,
		pipeline: pipeline,
		logger:   logger,
		progress: make(map[string]*domain.Progress),
	}
}

// Upload validates, stores and enriches one snapshot payload. The upload
// is rejected whole on a malformed payload; enrichment failures after the
// raw payload landed mark the upload failed but keep the raw file.
func (s *UploadService) Upload(ctx context.Context, userID, filename string, payload []byte) (*domain.Upload, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.UploadTimeout)
	defer cancel()

	snap, err := snapshot.Parse(payload)
	if err != nil {
		return nil, err
	}

	upload := &domain.Upload{
		UserID:           userID,
		OriginalFilename: filename,
		TotalRecords:     len(snap.Records),
	}
	upload.LogicalUser, upload.LogicalDate = logicalIdentity(filename)

	if _, err := s.repo.Insert(ctx, upload); err != nil {
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}
	if err := s.store.WriteRaw(userID, upload.ID, payload); err != nil {
		// The row must not outlive a payload that never landed.
		if derr := s.repo.Delete(ctx, userID, upload.ID); derr != nil {
			s.logger.Warn().Err(derr).Str("file_id", upload.ID).Msg("failed to roll back upload row")
		}
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	s.setProgress(upload.ID, &domain.Progress{Total: len(snap.Records), Status: domain.ProgressQueued})

	s.logger.Info().
		Str("user_id", userID).
		Str("file_id", upload.ID).
		Str("format", snap.Format).
		Int("records", len(snap.Records)).
		Msg("upload accepted")

	if err := s.process(ctx, upload, snap); err != nil {
		s.setProgress(upload.ID, &domain.Progress{Total: len(snap.Records), Status: domain.ProgressFailed})
		return nil, err
	}

	s.retainNewest(ctx, upload)
	return upload, nil
}

// process enriches the snapshot in chunks, advancing the progress counter
// after each one, and lands the enriched companion file.
func (s *UploadService) process(ctx context.Context, upload *domain.Upload, snap *snapshot.Snapshot) error {
	total := len(snap.Records)
	s.setProgress(upload.ID, &domain.Progress{Total: total, Status: domain.ProgressProcessing})

	enriched := make([]domain.EnrichedRecord, 0, total)
	unknown := 0

	for start := 0; start < total; start += enrichChunk {
		end := min(start+enrichChunk, total)
		res, err := s.pipeline.Enrich(ctx, snap.Records[start:end])
		if err != nil {
			return err
		}
		enriched = append(enriched, res.Records...)
		unknown += res.UnknownSpecies
		s.setProgress(upload.ID, &domain.Progress{Current: end, Total: total, Status: domain.ProgressProcessing})
	}

	body, err := json.Marshal(enriched)
	if err != nil {
		return fmt.Errorf("failed to encode enriched records: %w", err)
	}
	if err := s.store.WriteEnriched(upload.UserID, upload.ID, body); err != nil {
		return fmt.Errorf("failed to store enriched records: %w", err)
	}
	if err := s.repo.SetEnriched(ctx, upload.ID, total, unknown); err != nil {
		return err
	}

	upload.UnknownSpecies = unknown
	upload.Enriched = true
	s.setProgress(upload.ID, &domain.Progress{Current: total, Total: total, Status: domain.ProgressCompleted})
	return nil
}

// retainNewest drops the user's older uploads for the same trainer. Best
// effort: a cleanup failure never fails the upload that triggered it.
func (s *UploadService) retainNewest(ctx context.Context, upload *domain.Upload) {
	ids, err := s.repo.ListOlderLogical(ctx, upload.UserID, upload.LogicalUser, upload.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("file_id", upload.ID).Msg("retention scan failed")
		return
	}
	for _, id := range ids {
		if err := s.repo.Delete(ctx, upload.UserID, id); err != nil {
			s.logger.Warn().Err(err).Str("file_id", id).Msg("failed to delete superseded upload")
			continue
		}
		if err := s.store.Delete(upload.UserID, id); err != nil {
			s.logger.Warn().Err(err).Str("file_id", id).Msg("failed to delete superseded payloads")
		}
		s.logger.Info().Str("file_id", id).Str("logical_user", upload.LogicalUser).Msg("superseded upload removed")
	}
}

// List returns the user's uploads, newest first.
func (s *UploadService) List(ctx context.Context, userID string) ([]*domain.Upload, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	uploads, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if uploads == nil {
		uploads = []*domain.Upload{}
	}
	return uploads, nil
}

// Delete removes one upload, row and payload files both.
func (s *UploadService) Delete(ctx context.Context, userID, fileID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	if err := s.repo.Delete(ctx, userID, fileID); err != nil {
		return err
	}
	if err := s.store.Delete(userID, fileID); err != nil {
		return err
	}
	s.clearProgress(fileID)
	return nil
}

// ResolveOwner maps a file id onto its owning user, for public sharing.
func (s *UploadService) ResolveOwner(ctx context.Context, fileID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.repo.FindOwner(ctx, fileID)
}

// Progress reports enrichment progress for an upload. Ids this process
// never saw yield the not_found status, not an error; progress is held in
// memory only and resets on restart.
func (s *UploadService) Progress(fileID string) domain.Progress {
	s.progressMu.RLock()
	defer s.progressMu.RUnlock()
	if p, ok := s.progress[fileID]; ok {
		return *p
	}
	return domain.Progress{Status: domain.ProgressNotFound}
}

func (s *UploadService) setProgress(fileID string, p *domain.Progress) {
	s.progressMu.Lock()
	s.progress[fileID] = p
	s.progressMu.Unlock()
}

func (s *UploadService) clearProgress(fileID string) {
	s.progressMu.Lock()
	delete(s.progress, fileID)
	s.progressMu.Unlock()
}

// logicalIdentity extracts the trainer name and ISO date from a snapshot
// filename, empty when the filename doesn't follow the export convention.
func logicalIdentity(filename string) (string, string) {
	m := snapshotNameRe.FindStringSubmatch(filename)
	if m == nil {
		return "", ""
	}
	return m[1], fmt.Sprintf("%s-%s-%s", m[4], m[3], m[2])
}
