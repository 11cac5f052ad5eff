package models

import "time"

// Wire shapes for the HTTP API. The schema is fixed on purpose: clients must
// not need defensive multi-shape parsing.

type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	UserID int64  `json:"userId"`
	Token  string `json:"token"`
}

type SyncRequest struct {
	Budget Budget `json:"budget"`
}

type SyncResponse struct {
	Accepted  bool      `json:"accepted"`
	Timestamp time.Time `json:"timestamp"`
	Budget    Budget    `json:"budget"`
}

type LatestResponse struct {
	Budget    Budget    `json:"budget"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SnapshotRequest struct {
	Budget Budget `json:"budget"`
}

type SnapshotCreatedResponse struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type SnapshotListResponse struct {
	Snapshots []Snapshot `json:"snapshots"`
}

type DeleteSnapshotResponse struct {
	Deleted int64 `json:"deleted"`
}

type RestoreResponse struct {
	Budget Budget `json:"budget"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
