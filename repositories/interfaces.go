package repositories

import (
	"context"
	"errors"

	"github.com/upb/agri-advisory-gateway/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert hits a unique constraint
	ErrDuplicate = errors.New("record already exists")

	// ErrMissingParent is returned when a foreign key target does not exist
	ErrMissingParent = errors.New("referenced record does not exist")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction, or joins the one ctx already carries
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// ProfileRepository handles farmer profile data operations
type ProfileRepository interface {
	// Upsert inserts the profile or replaces every column of an existing one
	Upsert(ctx context.Context, profile *models.Profile) error

	// GetByID retrieves a profile by its uid
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// ReportRepository handles saved report data operations
type ReportRepository interface {
	// Insert inserts a new report
	Insert(ctx context.Context, report *models.Report) error

	// ListByUser retrieves a user's reports, newest first, with pagination
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Report, error)
}

// AdvisoryEventRepository stores the routing decision trail
type AdvisoryEventRepository interface {
	// Insert inserts a new event
	Insert(ctx context.Context, event *models.AdvisoryEvent) error

	// ListRecent retrieves the newest events
	ListRecent(ctx context.Context, limit int) ([]*models.AdvisoryEvent, error)
}

// Repositories groups all repository instances
type Repositories struct {
	Profiles ProfileRepository
	Reports  ReportRepository
	Events   AdvisoryEventRepository
}
