package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/upb/agri-advisory-gateway/models"
	"github.com/upb/agri-advisory-gateway/repositories"
	"go.uber.org/zap"
)

// ReportRepository implements the repositories.ReportRepository interface
type ReportRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *DB, logger *zap.Logger) repositories.ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new report
func (r *ReportRepository) Insert(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (id, user_id, timestamp, type, title, content, audio_base64, image_url, icon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		report.ID,
		report.UserID,
		report.Timestamp,
		string(report.Type),
		report.Title,
		report.Content,
		nullString(report.AudioBase64),
		nullString(report.ImageURL),
		nullString(report.Icon),
	)

	if err != nil {
		return fmt.Errorf("failed to insert report: %w", translateError(err))
	}

	r.logger.Debug("report inserted",
		zap.String("id", report.ID.String()),
		zap.String("user_id", report.UserID),
		zap.String("type", string(report.Type)))
	return nil
}

// ListByUser retrieves a user's reports, newest first
func (r *ReportRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Report, error) {
	query := `
		SELECT id, user_id, timestamp, type, title, content, audio_base64, image_url, icon
		FROM reports
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []*models.Report{}
	for rows.Next() {
		report := &models.Report{}
		var reportType string
		var audio, imageURL, icon sql.NullString

		if err := rows.Scan(
			&report.ID,
			&report.UserID,
			&report.Timestamp,
			&reportType,
			&report.Title,
			&report.Content,
			&audio,
			&imageURL,
			&icon,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		report.Type = models.ReportType(reportType)
		report.AudioBase64 = audio.String
		report.ImageURL = imageURL.String
		report.Icon = icon.String
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}
