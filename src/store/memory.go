package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"budgetbox-server/src/models"
)

// MemoryStore keeps all state in process-local maps. It honors the same
// atomicity contract as the Postgres store: reconciles for one user are
// serialized by a per-user mutex, and record state is only ever swapped
// whole. Used for tests and single-node runs without a database.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[int64]*models.User
	emails    map[string]int64
	budgets   map[int64]*models.BudgetRecord
	snapshots map[int64]models.Snapshot

	nextUserID     int64
	nextSnapshotID int64

	userLocks sync.Map
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[int64]*models.User),
		emails:    make(map[string]int64),
		budgets:   make(map[int64]*models.BudgetRecord),
		snapshots: make(map[int64]models.Snapshot),
	}
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) userLock(userID int64) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *MemoryStore) CreateUser(_ context.Context, email string, passwordHash []byte) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[email]; exists {
		return nil, ErrDuplicateEmail
	}
	s.nextUserID++
	u := &models.User{
		ID:           s.nextUserID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.emails[email] = u.ID
	return u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, ErrNoRecord
	}
	u := *s.users[id]
	return &u, nil
}

func (s *MemoryStore) ReconcileBudget(_ context.Context, userID int64, incoming models.Budget) (*models.SyncResult, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	claimed := incoming.UpdatedAt

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.budgets[userID]
	if !exists {
		at := claimed
		if at.IsZero() {
			at = time.Now().UTC()
		}
		stored := incoming.Clone()
		stored.UpdatedAt = at
		s.budgets[userID] = &models.BudgetRecord{UserID: userID, Budget: stored, UpdatedAt: at}
		return &models.SyncResult{Accepted: true, Timestamp: at, Budget: stored.Clone()}, nil
	}

	if !claimed.Before(rec.UpdatedAt) {
		stored := incoming.Clone()
		stored.UpdatedAt = claimed
		s.budgets[userID] = &models.BudgetRecord{UserID: userID, Budget: stored, UpdatedAt: claimed}
		return &models.SyncResult{Accepted: true, Timestamp: claimed, Budget: stored.Clone()}, nil
	}

	return &models.SyncResult{Accepted: false, Timestamp: rec.UpdatedAt, Budget: rec.Budget.Clone()}, nil
}

func (s *MemoryStore) GetLatestBudget(_ context.Context, userID int64) (*models.BudgetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.budgets[userID]
	if !ok {
		return nil, ErrNoRecord
	}
	return &models.BudgetRecord{
		UserID:    rec.UserID,
		Budget:    rec.Budget.Clone(),
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func (s *MemoryStore) CreateSnapshot(_ context.Context, userID int64, budget models.Budget) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSnapshotID++
	snap := models.Snapshot{
		ID:        s.nextSnapshotID,
		UserID:    userID,
		Budget:    budget.Clone(),
		CreatedAt: time.Now().UTC(),
	}
	s.snapshots[snap.ID] = snap
	copied := snap
	copied.Budget = snap.Budget.Clone()
	return &copied, nil
}

func (s *MemoryStore) ListSnapshots(_ context.Context, userID int64) ([]models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snapshots []models.Snapshot
	for _, snap := range s.snapshots {
		if snap.UserID != userID {
			continue
		}
		copied := snap
		copied.Budget = snap.Budget.Clone()
		snapshots = append(snapshots, copied)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if !snapshots[i].CreatedAt.Equal(snapshots[j].CreatedAt) {
			return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
		}
		return snapshots[i].ID > snapshots[j].ID
	})
	return snapshots, nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, userID, snapshotID int64) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[snapshotID]
	if !ok || snap.UserID != userID {
		return nil, ErrNoRecord
	}
	copied := snap
	copied.Budget = snap.Budget.Clone()
	return &copied, nil
}

func (s *MemoryStore) DeleteSnapshot(_ context.Context, userID, snapshotID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[snapshotID]
	if !ok || snap.UserID != userID {
		return 0, nil
	}
	delete(s.snapshots, snapshotID)
	return 1, nil
}
