package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// beginner is satisfied by *pgxpool.Pool and pgx.Tx (where Begin opens a savepoint).
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UserLocker runs work that must not interleave with other work for the same user.
type UserLocker interface {
	// WithUserLock calls fn with a TripRepo bound to a transaction that holds
	// an advisory lock keyed by userID. The transaction commits when fn returns
	// nil and rolls back otherwise.
	WithUserLock(ctx context.Context, userID string, fn func(trips TripRepo) error) error
}

type pgUserLocker struct {
	db beginner
}

// NewUserLocker constructs a UserLocker that opens its transactions on db.
func NewUserLocker(db beginner) UserLocker {
	return &pgUserLocker{db: db}
}

func (l *pgUserLocker) WithUserLock(ctx context.Context, userID string, fn func(trips TripRepo) error) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return classify("repo.UserLocker.WithUserLock: begin", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	const q = `SELECT pg_advisory_xact_lock(hashtextextended(@user_id, 0))`
	if _, err := tx.Exec(ctx, q, pgx.NamedArgs{"user_id": userID}); err != nil {
		return classify("repo.UserLocker.WithUserLock: lock", err)
	}

	if err := fn(NewTripRepo(tx)); err != nil {
		return fmt.Errorf("repo.UserLocker.WithUserLock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("repo.UserLocker.WithUserLock: commit", err)
	}
	return nil
}
