package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/upb/agri-advisory-gateway/models"
	"github.com/upb/agri-advisory-gateway/repositories"
	"go.uber.org/zap"
)

// ProfileRepository implements the repositories.ProfileRepository interface
type ProfileRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB, logger *zap.Logger) repositories.ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts a profile or overwrites the stored one
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, display_name, mobile, role, farm_location, progress, preferred_categories, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			mobile = EXCLUDED.mobile,
			role = EXCLUDED.role,
			farm_location = EXCLUDED.farm_location,
			progress = EXCLUDED.progress,
			preferred_categories = EXCLUDED.preferred_categories,
			updated_at = EXCLUDED.updated_at
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		profile.ID,
		nullString(profile.DisplayName),
		nullString(profile.Mobile),
		nullString(profile.Role),
		models.JSONOrNull(profile.FarmLocation),
		models.JSONOrNull(profile.Progress),
		pq.Array(profile.PreferredCategories),
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", translateError(err))
	}

	r.logger.Debug("profile upserted", zap.String("id", profile.ID))
	return nil
}

// GetByID retrieves a profile by uid
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, display_name, mobile, role, farm_location, progress, preferred_categories, updated_at
		FROM profiles
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	profile := &models.Profile{}
	var displayName, mobile, role sql.NullString
	var farmLocation, progress []byte

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&displayName,
		&mobile,
		&role,
		&farmLocation,
		&progress,
		pq.Array(&profile.PreferredCategories),
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.DisplayName = displayName.String
	profile.Mobile = mobile.String
	profile.Role = role.String
	profile.FarmLocation = farmLocation
	profile.Progress = progress
	return profile, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// translateError maps constraint violations onto repository sentinels
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code.Name() {
	case "unique_violation":
		return fmt.Errorf("%w: %s", repositories.ErrDuplicate, pqErr.Constraint)
	case "foreign_key_violation":
		return fmt.Errorf("%w: %s", repositories.ErrMissingParent, pqErr.Constraint)
	}
	return err
}
