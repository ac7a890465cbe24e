package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/upb/agri-advisory-gateway/models"
	"github.com/upb/agri-advisory-gateway/repositories"
	"go.uber.org/zap"
)

// AdvisoryEventRepository implements the repositories.AdvisoryEventRepository interface
type AdvisoryEventRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAdvisoryEventRepository creates a new advisory event repository
func NewAdvisoryEventRepository(db *DB, logger *zap.Logger) repositories.AdvisoryEventRepository {
	return &AdvisoryEventRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new advisory event
func (r *AdvisoryEventRepository) Insert(ctx context.Context, event *models.AdvisoryEvent) error {
	query := `
		INSERT INTO advisory_events (
			id, request_id, operation, provider, backend, outcome, source,
			language, vision_fallback, has_image, latency_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		event.ID,
		event.RequestID,
		event.Operation,
		event.Provider,
		nullString(event.Backend),
		event.Outcome,
		nullString(event.Source),
		nullString(event.Language),
		event.VisionFallback,
		event.HasImage,
		event.LatencyMs,
		event.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert advisory event: %w", translateError(err))
	}
	return nil
}

// ListRecent retrieves the newest advisory events
func (r *AdvisoryEventRepository) ListRecent(ctx context.Context, limit int) ([]*models.AdvisoryEvent, error) {
	query := `
		SELECT id, request_id, operation, provider, backend, outcome, source,
			language, vision_fallback, has_image, latency_ms, created_at
		FROM advisory_events
		ORDER BY created_at DESC
		LIMIT $1
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list advisory events: %w", err)
	}
	defer rows.Close()

	events := []*models.AdvisoryEvent{}
	for rows.Next() {
		event := &models.AdvisoryEvent{}
		var backend, source, language sql.NullString

		if err := rows.Scan(
			&event.ID,
			&event.RequestID,
			&event.Operation,
			&event.Provider,
			&backend,
			&event.Outcome,
			&source,
			&language,
			&event.VisionFallback,
			&event.HasImage,
			&event.LatencyMs,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan advisory event: %w", err)
		}

		event.Backend = backend.String
		event.Source = source.String
		event.Language = language.String
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating advisory events: %w", err)
	}

	return events, nil
}
