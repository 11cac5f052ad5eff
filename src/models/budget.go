package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Budget is an open-ended mapping of category keys (income plus any number of
// expense categories) to amounts, with the client-side edit timestamp.
//
// On the wire the shape is flat, matching what the browser stores locally:
//
//	{"income":50000,"food":10000,"updatedAt":"2024-01-02T00:00:00Z"}
type Budget struct {
	Amounts   map[string]float64
	UpdatedAt time.Time
}

func (b Budget) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(b.Amounts)+1)
	for k, v := range b.Amounts {
		out[k] = v
	}
	if !b.UpdatedAt.IsZero() {
		out["updatedAt"] = b.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(out)
}

func (b *Budget) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	amounts := make(map[string]float64, len(raw))
	var updatedAt time.Time
	for key, val := range raw {
		if string(val) == "null" {
			continue
		}
		if key == "updatedAt" {
			var ts string
			if err := json.Unmarshal(val, &ts); err != nil {
				return fmt.Errorf("updatedAt must be an RFC3339 string: %w", err)
			}
			parsed, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				return fmt.Errorf("updatedAt must be an RFC3339 string: %w", err)
			}
			updatedAt = parsed
			continue
		}
		var amount float64
		if err := json.Unmarshal(val, &amount); err != nil {
			return fmt.Errorf("category %q must be numeric", key)
		}
		amounts[key] = amount
	}

	b.Amounts = amounts
	b.UpdatedAt = updatedAt
	return nil
}

// Clone returns a deep copy; stored and returned budgets must never alias
// caller-owned maps.
func (b Budget) Clone() Budget {
	amounts := make(map[string]float64, len(b.Amounts))
	for k, v := range b.Amounts {
		amounts[k] = v
	}
	return Budget{Amounts: amounts, UpdatedAt: b.UpdatedAt}
}

// BudgetRecord is the server-of-record copy: exactly one row per user.
// UpdatedAt is the authoritative timestamp used for the last-writer-wins
// comparison against incoming claimed timestamps.
type BudgetRecord struct {
	UserID    int64     `json:"user_id"`
	Budget    Budget    `json:"budget"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncResult is the outcome of a reconcile: Accepted reports whether the
// incoming write won; Budget and Timestamp always carry the authoritative
// state so a rejected push doubles as a pull.
type SyncResult struct {
	Accepted  bool
	Timestamp time.Time
	Budget    Budget
}
