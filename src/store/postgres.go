package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"budgetbox-server/src/db"
	"budgetbox-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the production implementation backed by pgx. Budgets are
// stored one row per user as JSONB next to the authoritative timestamp;
// reconciliation takes a row lock via SELECT ... FOR UPDATE inside a
// transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) CreateUser(ctx context.Context, email string, passwordHash []byte) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, created_at
	`
	var u models.User
	err := s.pool.QueryRow(ctx, query, email, passwordHash).
		Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.PasswordHash = passwordHash
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`
	var u models.User
	err := s.pool.QueryRow(ctx, query, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ReconcileBudget implements last-writer-wins by claimed timestamp. The
// claimed timestamp is both the comparison key and the value persisted on
// accept, so every comparison uses the same clock basis; the server clock is
// used only for a bootstrap write that carries no claim.
func (s *PostgresStore) ReconcileBudget(ctx context.Context, userID int64, incoming models.Budget) (*models.SyncResult, error) {
	claimed := incoming.UpdatedAt

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reconcile: %w", err)
	}
	defer tx.Rollback(ctx)

	var data []byte
	var storedAt time.Time
	err = tx.QueryRow(ctx,
		`SELECT budget_data, updated_at FROM budgets WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&data, &storedAt)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		at := claimed
		if at.IsZero() {
			at = time.Now().UTC()
		}
		incoming.UpdatedAt = at
		payload, merr := json.Marshal(incoming)
		if merr != nil {
			return nil, fmt.Errorf("encode budget: %w", merr)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO budgets (user_id, budget_data, updated_at) VALUES ($1, $2, $3)`,
			userID, payload, at,
		); err != nil {
			return nil, fmt.Errorf("insert budget: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit reconcile: %w", err)
		}
		db.DelLatestCache(db.LatestCacheKey(userID))
		return &models.SyncResult{Accepted: true, Timestamp: at, Budget: incoming}, nil

	case err != nil:
		return nil, fmt.Errorf("read budget for update: %w", err)
	}

	if !claimed.Before(storedAt) {
		incoming.UpdatedAt = claimed
		payload, merr := json.Marshal(incoming)
		if merr != nil {
			return nil, fmt.Errorf("encode budget: %w", merr)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE budgets SET budget_data = $1, updated_at = $2 WHERE user_id = $3`,
			payload, claimed, userID,
		); err != nil {
			return nil, fmt.Errorf("update budget: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit reconcile: %w", err)
		}
		db.DelLatestCache(db.LatestCacheKey(userID))
		return &models.SyncResult{Accepted: true, Timestamp: claimed, Budget: incoming}, nil
	}

	// Incoming claim is strictly older: keep the stored copy and hand it
	// back so a lost race reads like a pull.
	var stored models.Budget
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode stored budget: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reconcile: %w", err)
	}
	return &models.SyncResult{Accepted: false, Timestamp: storedAt, Budget: stored}, nil
}

func (s *PostgresStore) GetLatestBudget(ctx context.Context, userID int64) (*models.BudgetRecord, error) {
	cacheKey := db.LatestCacheKey(userID)
	if cached, found := db.Cache.Get(cacheKey); found {
		if rec, ok := cached.(*models.BudgetRecord); ok {
			return rec, nil
		}
	}

	var data []byte
	var rec models.BudgetRecord
	err := s.pool.QueryRow(ctx,
		`SELECT budget_data, updated_at FROM budgets WHERE user_id = $1`,
		userID,
	).Scan(&data, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("get latest budget: %w", err)
	}
	if err := json.Unmarshal(data, &rec.Budget); err != nil {
		return nil, fmt.Errorf("decode stored budget: %w", err)
	}
	rec.UserID = userID

	db.SetLatestCache(cacheKey, &rec)
	return &rec, nil
}

func (s *PostgresStore) CreateSnapshot(ctx context.Context, userID int64, budget models.Budget) (*models.Snapshot, error) {
	payload, err := json.Marshal(budget)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	query := `
		INSERT INTO history (user_id, snapshot, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`
	snap := models.Snapshot{UserID: userID, Budget: budget.Clone()}
	if err := s.pool.QueryRow(ctx, query, userID, payload).Scan(&snap.ID, &snap.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	db.DelSnapshotCache(db.SnapshotCacheKey(userID))
	return &snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, userID int64) ([]models.Snapshot, error) {
	cacheKey := db.SnapshotCacheKey(userID)
	if cached, found := db.Cache.Get(cacheKey); found {
		if snaps, ok := cached.([]models.Snapshot); ok {
			return snaps, nil
		}
	}

	query := `
		SELECT id, snapshot, created_at
		FROM history WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var data []byte
		snap := models.Snapshot{UserID: userID}
		if err := rows.Scan(&snap.ID, &data, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal(data, &snap.Budget); err != nil {
			return nil, fmt.Errorf("decode snapshot %d: %w", snap.ID, err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	db.SetSnapshotCache(cacheKey, snapshots)
	return snapshots, nil
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, userID, snapshotID int64) (*models.Snapshot, error) {
	query := `SELECT id, snapshot, created_at FROM history WHERE id = $1 AND user_id = $2`
	var data []byte
	snap := models.Snapshot{UserID: userID}
	err := s.pool.QueryRow(ctx, query, snapshotID, userID).Scan(&snap.ID, &data, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap.Budget); err != nil {
		return nil, fmt.Errorf("decode snapshot %d: %w", snap.ID, err)
	}
	return &snap, nil
}

func (s *PostgresStore) DeleteSnapshot(ctx context.Context, userID, snapshotID int64) (int64, error) {
	cmd, err := s.pool.Exec(ctx,
		`DELETE FROM history WHERE id = $1 AND user_id = $2`,
		snapshotID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete snapshot: %w", err)
	}
	if cmd.RowsAffected() > 0 {
		db.DelSnapshotCache(db.SnapshotCacheKey(userID))
	}
	return cmd.RowsAffected(), nil
}
