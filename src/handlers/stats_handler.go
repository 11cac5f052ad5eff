package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"budgetbox-server/src/middleware"
	"budgetbox-server/src/stats"
	"budgetbox-server/src/store"

	"github.com/rs/zerolog"
)

// GetStats summarizes the server-of-record copy. 204 when the user has
// never synced.
func GetStats(st store.Store, logger zerolog.Logger) http.HandlerFunc {
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
			logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to fetch budget for stats")
			http.Error(w, "failed to compute stats", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats.Summarize(rec.Budget))
	}
}
