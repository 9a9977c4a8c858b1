package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pokedex-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type UploadRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewUploadRepository(sqlDB *sql.DB, logger zerolog.Logger) *UploadRepository {
	return &UploadRepository{
		db:     sqlDB,
		logger: logger,
	}
}

const uploadColumns = `id, user_id, original_filename, logical_user, logical_date,
	total_records, unknown_species, enriched, created_at, updated_at`

// Insert stores a new upload row and returns its generated id.
func (r *UploadRepository) Insert(ctx context.Context, upload *domain.Upload) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate upload id: %w", err)
	}

	now := time.Now().Unix()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO uploads (`+uploadColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, upload.UserID, upload.OriginalFilename, upload.LogicalUser, upload.LogicalDate,
		upload.TotalRecords, upload.UnknownSpecies, upload.Enriched, now, now,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", upload.UserID).Msg("failed to insert upload")
		return "", err
	}

	upload.ID = id
	upload.CreatedAt = now
	upload.UpdatedAt = now
	return id, nil
}

// SetEnriched records the enrichment outcome for an upload.
func (r *UploadRepository) SetEnriched(ctx context.Context, id string, totalRecords, unknownSpecies int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE uploads
		SET total_records = ?, unknown_species = ?, enriched = 1, updated_at = ?
		WHERE id = ?`,
		totalRecords, unknownSpecies, time.Now().Unix(), id,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id).Msg("failed to mark upload enriched")
	}
	return err
}

func (r *UploadRepository) GetByID(ctx context.Context, userID, id string) (*domain.Upload, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+uploadColumns+`
		FROM uploads
		WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	return scanUpload(row)
}

// ListByUser returns a user's uploads, newest first.
func (r *UploadRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Upload, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+uploadColumns+`
		FROM uploads
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list uploads")
		return nil, err
	}
	defer rows.Close()

	var uploads []*domain.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// ListOlderLogical returns older upload ids for the same logical user so
// only the newest snapshot per in-game account is retained.
func (r *UploadRepository) ListOlderLogical(ctx context.Context, userID, logicalUser, keepID string) ([]string, error) {
	if logicalUser == "" {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id
		FROM uploads
		WHERE user_id = ? AND logical_user = ? AND id != ?`,
		userID, logicalUser, keepID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *UploadRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id).Msg("failed to delete upload")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindOwner resolves which user an upload belongs to, for the public
// read-only share endpoint.
func (r *UploadRepository) FindOwner(ctx context.Context, id string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM uploads WHERE id = ?`, id).Scan(&userID)
	if err != nil {
		return "", err
	}
	return userID, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpload(row rowScanner) (*domain.Upload, error) {
	var u domain.Upload
	err := row.Scan(
		&u.ID, &u.UserID, &u.OriginalFilename, &u.LogicalUser, &u.LogicalDate,
		&u.TotalRecords, &u.UnknownSpecies, &u.Enriched, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
