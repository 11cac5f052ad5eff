package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"budgetbox-server/src/middleware"
	"budgetbox-server/src/models"
	"budgetbox-server/src/store"

	"github.com/rs/zerolog"
)

// SyncBudget is the push half of the sync protocol. The response always
// carries the authoritative budget and timestamp; accepted=false means the
// incoming claim lost to a newer stored copy and the caller must adopt the
// returned state.
func SyncBudget(st store.Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req models.SyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to decode sync request body")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		result, err := st.ReconcileBudget(r.Context(), userID, req.Budget)
		if err != nil {
			logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to reconcile budget")
			http.Error(w, "sync failed", http.StatusInternalServerError)
			return
		}

		logger.Info().
			Int64("user_id", userID).
			Bool("accepted", result.Accepted).
			Time("timestamp", result.Timestamp).
			Msg("Budget sync")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.SyncResponse{
			Accepted:  result.Accepted,
			Timestamp: result.Timestamp,
			Budget:    result.Budget,
		})
	}
}

// GetLatestBudget is the pull half: 204 when the user has no server copy.
func GetLatestBudget(st store.Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rec, err := st.GetLatestBudget(r.Context(), userID)
		if errors.Is(err, store.ErrNoRecord) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to fetch latest budget")
			http.Error(w, "fetch latest failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.LatestResponse{
			Budget:    rec.Budget,
			UpdatedAt: rec.UpdatedAt,
		})
	}
}
