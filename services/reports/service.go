package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/upb/agri-advisory-gateway/models"
	"github.com/upb/agri-advisory-gateway/repositories"
	"github.com/upb/agri-advisory-gateway/services"
	"go.uber.org/zap"
)

const (
	// DefaultPageSize is used when ListReports is called without a limit
	DefaultPageSize = 20
	// MaxPageSize caps a single page of reports
	MaxPageSize = 100
)

// Service persists farmer profiles and their saved reports
type Service struct {
	profiles repositories.ProfileRepository
	reports  repositories.ReportRepository
	txMgr    repositories.TransactionManager
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a report service. A nil repos means no database is
// configured; every call then fails with services.ErrPersistenceDisabled.
func NewService(repos *repositories.Repositories, txMgr repositories.TransactionManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{txMgr: txMgr, logger: logger, now: time.Now}
	if repos != nil {
		s.profiles = repos.Profiles
		s.reports = repos.Reports
	}
	return s
}

// Enabled reports whether a database backs the service
func (s *Service) Enabled() bool {
	return s.profiles != nil && s.reports != nil && s.txMgr != nil
}

// SyncProfile upserts a profile and stamps its update time
func (s *Service) SyncProfile(ctx context.Context, profile *models.Profile) error {
	if !s.Enabled() {
		return services.ErrPersistenceDisabled
	}
	if err := checkProfile(profile); err != nil {
		return err
	}

	profile.Touch()
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return s.mapError("failed to sync profile", err)
	}

	s.logger.Info("profile synced", zap.String("user_id", profile.ID))
	return nil
}

// GetProfile returns a stored profile
func (s *Service) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	if !s.Enabled() {
		return nil, services.ErrPersistenceDisabled
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.ErrInvalidInput.WithDetail("id", "profile id is required")
	}

	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError("failed to load profile", err)
	}
	return profile, nil
}

// SaveReport stores a report for userID. When profile is given it is
// upserted first in the same transaction so the report's owner exists.
func (s *Service) SaveReport(ctx context.Context, userID string, report *models.Report, profile *models.Profile) (*models.Report, error) {
	if !s.Enabled() {
		return nil, services.ErrPersistenceDisabled
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, services.ErrInvalidInput.WithDetail("user_id", "user id is required")
	}
	if report == nil {
		return nil, services.ErrInvalidInput.WithDetail("report", "report is required")
	}
	if profile != nil {
		profile.ID = userID
		if err := checkProfile(profile); err != nil {
			return nil, err
		}
	}

	report.UserID = userID
	report.EnsureDefaults(s.now())

	saved, err := services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) (*models.Report, error) {
		if profile != nil {
			profile.Touch()
			if err := s.profiles.Upsert(ctx, profile); err != nil {
				return nil, err
			}
		}
		if err := s.reports.Insert(ctx, report); err != nil {
			return nil, err
		}
		return report, nil
	})
	if err != nil {
		return nil, s.mapError("failed to save report", err)
	}

	s.logger.Info("report saved",
		zap.String("report_id", saved.ID.String()),
		zap.String("user_id", userID),
		zap.String("type", string(saved.Type)),
		zap.Bool("with_profile", profile != nil))
	return saved, nil
}

// ListReports returns a page of a user's reports, newest first
func (s *Service) ListReports(ctx context.Context, userID string, limit, offset int) ([]*models.Report, error) {
	if !s.Enabled() {
		return nil, services.ErrPersistenceDisabled
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, services.ErrInvalidInput.WithDetail("user_id", "user id is required")
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.reports.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, s.mapError("failed to list reports", err)
	}
	return list, nil
}

func checkProfile(profile *models.Profile) error {
	if profile == nil {
		return services.ErrInvalidInput.WithDetail("profile", "profile is required")
	}
	profile.ID = strings.TrimSpace(profile.ID)
	if profile.ID == "" {
		return services.ErrInvalidInput.WithDetail("id", "profile id is required")
	}
	return nil
}

// mapError turns repository sentinels into domain errors
func (s *Service) mapError(message string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return services.ErrProfileNotFound
	case errors.Is(err, repositories.ErrDuplicate):
		return services.ErrDuplicateReport
	case errors.Is(err, repositories.ErrMissingParent):
		return services.ErrProfileNotFound.WithDetail("hint", "sync the profile before saving reports")
	}
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error(message, zap.Error(err))
	return services.WrapInternal(message, err)
}
