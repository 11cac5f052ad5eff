package client

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"budgetbox-server/src/models"
)

// SyncStatus tracks how the local draft relates to the server copy.
type SyncStatus string

const (
	// StatusLocalOnly: never synced.
	StatusLocalOnly SyncStatus = "local-only"
	// StatusPending: edited since the last successful sync.
	StatusPending SyncStatus = "sync-pending"
	// StatusSynced: matches the server as of the last round-trip.
	StatusSynced SyncStatus = "synced"
)

// ReplaceSource says where a wholesale overwrite came from; it decides the
// resulting sync status.
type ReplaceSource int

const (
	// ReplaceFromPull: the draft now matches the server.
	ReplaceFromPull ReplaceSource = iota
	// ReplaceFromRestore: the restored state must still be pushed before it
	// becomes authoritative.
	ReplaceFromRestore
)

// DefaultCategories is the category set a fresh budget starts with.
var DefaultCategories = []string{"income", "monthlyBills", "food", "transport", "subscriptions", "misc"}

// LocalStore holds the user's budget draft. It is the only thing form input
// mutates; sync flows read from it and replace it wholesale. State is
// persisted to a JSON file so an offline draft survives restarts.
type LocalStore struct {
	mu    sync.Mutex
	path  string
	state localState
	now   func() time.Time
}

type localState struct {
	Budget       models.Budget `json:"budget"`
	SyncStatus   SyncStatus    `json:"syncStatus"`
	LastSyncedAt time.Time     `json:"lastSyncedAt"`
}

// NewLocalStore loads state from path if it exists, otherwise starts a fresh
// draft with the default categories. An empty path keeps state in memory
// only.
func NewLocalStore(path string) (*LocalStore, error) {
	s := &LocalStore{path: path, now: time.Now}
	s.state = localState{
		Budget:     defaultBudget(),
		SyncStatus: StatusLocalOnly,
	}

	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local store: %w", err)
	}
	var loaded localState
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("decode local store: %w", err)
	}
	if loaded.SyncStatus == "" {
		loaded.SyncStatus = StatusLocalOnly
	}
	if loaded.Budget.Amounts == nil {
		loaded.Budget.Amounts = make(map[string]float64)
	}
	s.state = loaded
	return s, nil
}

func defaultBudget() models.Budget {
	amounts := make(map[string]float64, len(DefaultCategories))
	for _, c := range DefaultCategories {
		amounts[c] = 0
	}
	return models.Budget{Amounts: amounts}
}

// SetField updates one category value; nil clears the field. Every edit
// stamps updatedAt and moves the draft to sync-pending.
func (s *LocalStore) SetField(key string, value *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == nil {
		delete(s.state.Budget.Amounts, key)
	} else {
		s.state.Budget.Amounts[key] = *value
	}
	s.state.Budget.UpdatedAt = s.now().UTC()
	s.state.SyncStatus = StatusPending
	return s.persist()
}

// Replace overwrites the draft wholesale. A pull leaves the draft synced; a
// restore leaves it pending since it must still be pushed.
func (s *LocalStore) Replace(budget models.Budget, source ReplaceSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Budget = budget.Clone()
	if s.state.Budget.Amounts == nil {
		s.state.Budget.Amounts = make(map[string]float64)
	}
	switch source {
	case ReplaceFromPull:
		s.state.SyncStatus = StatusSynced
		s.state.LastSyncedAt = budget.UpdatedAt
	case ReplaceFromRestore:
		s.state.SyncStatus = StatusPending
		s.state.Budget.UpdatedAt = s.now().UTC()
	}
	return s.persist()
}

// MarkPending forces the draft back to sync-pending (used when a push is
// deferred or fails).
func (s *LocalStore) MarkPending() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SyncStatus = StatusPending
	return s.persist()
}

func (s *LocalStore) Budget() models.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Budget.Clone()
}

func (s *LocalStore) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SyncStatus
}

func (s *LocalStore) LastSyncedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LastSyncedAt
}

// Reset clears the draft back to its initial state (logout).
func (s *LocalStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = localState{
		Budget:     defaultBudget(),
		SyncStatus: StatusLocalOnly,
	}
	return s.persist()
}

func (s *LocalStore) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write local store: %w", err)
	}
	return nil
}
