package client

import (
	"context"
	"sync"
	"time"
)

// PushOutcome reports what a push did. Deferred means the client was offline
// and made no network call; the draft stays pending and will sync on the
// next offline→online transition.
type PushOutcome struct {
	Deferred  bool
	Accepted  bool
	Timestamp time.Time
}

// Syncer drives the sync protocol between a LocalStore and the server.
// Overlapping pushes from this process are serialized here for tidiness, but
// correctness under concurrent pushes is owned by the server's per-user
// lock, not by the client.
type Syncer struct {
	mu     sync.Mutex
	api    *Client
	store  *LocalStore
	online bool
}

func NewSyncer(api *Client, store *LocalStore) *Syncer {
	return &Syncer{api: api, store: store, online: true}
}

func (s *Syncer) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// SetOnline records connectivity. The offline→online transition triggers
// exactly one automatic push if the draft is pending; its outcome is
// returned. Going offline never touches the store.
func (s *Syncer) SetOnline(ctx context.Context, online bool) (*PushOutcome, error) {
	s.mu.Lock()
	wasOnline := s.online
	s.online = online
	s.mu.Unlock()

	if online && !wasOnline && s.store.Status() == StatusPending {
		return s.Push(ctx)
	}
	return nil, nil
}

// Push sends the current draft. Whatever the server decided, the returned
// authoritative budget and timestamp overwrite the draft: an accepted push
// confirms our state, a rejected one hands us the newer server copy. Any
// failure leaves the draft pending and untouched.
func (s *Syncer) Push(ctx context.Context) (*PushOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.online {
		if err := s.store.MarkPending(); err != nil {
			return nil, err
		}
		return &PushOutcome{Deferred: true}, nil
	}

	resp, err := s.api.PushBudget(ctx, s.store.Budget())
	if err != nil {
		if perr := s.store.MarkPending(); perr != nil {
			return nil, perr
		}
		return nil, err
	}

	authoritative := resp.Budget
	authoritative.UpdatedAt = resp.Timestamp
	if err := s.store.Replace(authoritative, ReplaceFromPull); err != nil {
		return nil, err
	}
	return &PushOutcome{Accepted: resp.Accepted, Timestamp: resp.Timestamp}, nil
}

// Pull fetches the server copy and adopts it only if it is strictly newer
// than the draft (or the draft has no timestamp). Returns whether the draft
// was replaced. No server copy leaves local state untouched.
func (s *Syncer) Pull(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.api.PullLatest(ctx)
	if err != nil {
		return false, err
	}
	if !res.Present {
		return false, nil
	}

	local := s.store.Budget()
	if !local.UpdatedAt.IsZero() && !res.UpdatedAt.After(local.UpdatedAt) {
		return false, nil
	}

	adopted := res.Budget
	adopted.UpdatedAt = res.UpdatedAt
	if err := s.store.Replace(adopted, ReplaceFromPull); err != nil {
		return false, err
	}
	return true, nil
}

// SaveSnapshot captures the current draft as an immutable server-side
// snapshot. Snapshots are explicit point-in-time copies; no ordering is
// guaranteed relative to concurrent pushes.
func (s *Syncer) SaveSnapshot(ctx context.Context) (int64, error) {
	resp, err := s.api.CreateSnapshot(ctx, s.store.Budget())
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// RestoreSnapshot applies a snapshot's stored copy as the new draft. The
// draft becomes pending: the restored state only becomes authoritative once
// pushed.
func (s *Syncer) RestoreSnapshot(ctx context.Context, snapshotID int64) error {
	budget, err := s.api.RestoreSnapshot(ctx, snapshotID)
	if err != nil {
		return err
	}
	return s.store.Replace(*budget, ReplaceFromRestore)
}
