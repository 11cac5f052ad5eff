package store

import (
	"context"
	"errors"

	"budgetbox-server/src/models"
)

var (
	// ErrNoRecord is returned when a user has no budget record or the
	// requested snapshot does not exist for that user.
	ErrNoRecord = errors.New("no record")
	// ErrDuplicateEmail is returned when registering an email that exists.
	ErrDuplicateEmail = errors.New("email already exists")
)

// Store is the storage contract shared by the Postgres and in-memory
// implementations.
//
// ReconcileBudget is the one compound operation: it must run as a single
// atomic unit under an exclusive per-user lock, so two concurrent pushes for
// the same user can never interleave, and no reader may observe a budget
// written without its matching timestamp. Everything else is a plain
// single-row read or write.
type Store interface {
	CreateUser(ctx context.Context, email string, passwordHash []byte) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ReconcileBudget applies last-writer-wins by claimed timestamp:
	// no existing record always accepts; an incoming claim that is
	// same-age-or-newer than the stored timestamp overwrites; a strictly
	// older claim is discarded and the stored copy is returned instead.
	ReconcileBudget(ctx context.Context, userID int64, incoming models.Budget) (*models.SyncResult, error)
	GetLatestBudget(ctx context.Context, userID int64) (*models.BudgetRecord, error)

	CreateSnapshot(ctx context.Context, userID int64, budget models.Budget) (*models.Snapshot, error)
	ListSnapshots(ctx context.Context, userID int64) ([]models.Snapshot, error)
	GetSnapshot(ctx context.Context, userID, snapshotID int64) (*models.Snapshot, error)
	DeleteSnapshot(ctx context.Context, userID, snapshotID int64) (int64, error)

	Close()
}
