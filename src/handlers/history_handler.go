package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"budgetbox-server/src/middleware"
	"budgetbox-server/src/models"
	"budgetbox-server/src/store"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func CreateSnapshot(st store.Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req models.SnapshotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to decode snapshot request body")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		snap, err := st.CreateSnapshot(r.Context(), userID, req.Budget)
		if err != nil {
			logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to save snapshot")
			http.Error(w, "failed to save snapshot", http.StatusInternalServerError)
			return
		}

		logger.Info().Int64("user_id", userID).Int64("snapshot_id", snap.ID).Msg("Snapshot saved")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.SnapshotCreatedResponse{ID: snap.ID, CreatedAt: snap.CreatedAt})
	}
}

func ListSnapshots(st store.Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		snapshots, err := st.ListSnapshots(r.Context(), userID)
		if err != nil {
			logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to fetch snapshots")
			http.Error(w, "failed to fetch snapshots", http.StatusInternalServerError)
			return
		}
		if snapshots == nil {
			snapshots = []models.Snapshot{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.SnapshotListResponse{Snapshots: snapshots})
	}
}

func DeleteSnapshot(st store.Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		idStr := chi.URLParam(r, "snapshot_id")
		snapshotID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "invalid snapshot id", http.StatusBadRequest)
			return
		}

		deleted, err := st.DeleteSnapshot(r.Context(), userID, snapshotID)
		if err != nil {
			logger.Error().Err(err).Int64("user_id", userID).Int64("snapshot_id", snapshotID).Msg("Failed to delete snapshot")
			http.Error(w, "failed to delete snapshot", http.StatusInternalServerError)
			return
		}

		logger.Info().Int64("user_id", userID).Int64("snapshot_id", snapshotID).Int64("deleted", deleted).Msg("Snapshot delete")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.DeleteSnapshotResponse{Deleted: deleted})
	}
}

// RestoreSnapshot returns the stored copy for the client to adopt as its new
// draft. The server copy is untouched; the restored state only becomes
// authoritative once the client pushes it.
func RestoreSnapshot(st store.Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		idStr := chi.URLParam(r, "snapshot_id")
		snapshotID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "invalid snapshot id", http.StatusBadRequest)
			return
		}

		snap, err := st.GetSnapshot(r.Context(), userID, snapshotID)
		if errors.Is(err, store.ErrNoRecord) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(models.ErrorResponse{Error: "snapshot not found"})
			return
		}
		if err != nil {
			logger.Error().Err(err).Int64("user_id", userID).Int64("snapshot_id", snapshotID).Msg("Failed to restore snapshot")
			http.Error(w, "failed to restore snapshot", http.StatusInternalServerError)
			return
		}

		logger.Info().Int64("user_id", userID).Int64("snapshot_id", snapshotID).Msg("Snapshot restored")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.RestoreResponse{Budget: snap.Budget})
	}
}
