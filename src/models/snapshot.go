package models

import "time"

// Snapshot is an immutable point-in-time copy of a user's budget. Snapshots
// are created explicitly, never mutated, and restoring one does not delete it.
type Snapshot struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Budget    Budget    `json:"budget"`
	CreatedAt time.Time `json:"createdAt"`
}
