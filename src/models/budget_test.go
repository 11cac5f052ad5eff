package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetWireShapeIsFlat(t *testing.T) {
	b := Budget{
		Amounts:   map[string]float64{"income": 50000, "food": 10000},
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(50000), raw["income"])
	assert.Equal(t, float64(10000), raw["food"])
	assert.Equal(t, "2024-01-01T00:00:00Z", raw["updatedAt"])
}

func TestBudgetDecode(t *testing.T) {
	var b Budget
	err := json.Unmarshal([]byte(`{"income":50000,"food":12000,"updatedAt":"2024-01-02T00:00:00Z"}`), &b)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"income": 50000, "food": 12000}, b.Amounts)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), b.UpdatedAt)
}

func TestBudgetDecodeWithoutTimestamp(t *testing.T) {
	var b Budget
	require.NoError(t, json.Unmarshal([]byte(`{"misc":70}`), &b))
	assert.True(t, b.UpdatedAt.IsZero())
	assert.Equal(t, map[string]float64{"misc": 70}, b.Amounts)
}

func TestBudgetDecodeSkipsNulls(t *testing.T) {
	var b Budget
	require.NoError(t, json.Unmarshal([]byte(`{"food":null,"income":1,"updatedAt":null}`), &b))
	assert.Equal(t, map[string]float64{"income": 1}, b.Amounts)
	assert.True(t, b.UpdatedAt.IsZero())
}

func TestBudgetDecodeRejectsNonNumericCategory(t *testing.T) {
	var b Budget
	err := json.Unmarshal([]byte(`{"food":"a lot"}`), &b)
	assert.Error(t, err)
}

func TestBudgetDecodeRejectsMalformedTimestamp(t *testing.T) {
	var b Budget
	err := json.Unmarshal([]byte(`{"updatedAt":"yesterday"}`), &b)
	assert.Error(t, err)
}

func TestBudgetRoundTrip(t *testing.T) {
	in := Budget{
		Amounts:   map[string]float64{"income": 50000, "monthlyBills": 7000, "subscriptions": 499.5},
		UpdatedAt: time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Budget
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Amounts, out.Amounts)
	assert.True(t, in.UpdatedAt.Equal(out.UpdatedAt))
}

func TestBudgetCloneIsDeep(t *testing.T) {
	in := Budget{Amounts: map[string]float64{"food": 1}}
	cloned := in.Clone()
	cloned.Amounts["food"] = 2
	assert.Equal(t, float64(1), in.Amounts["food"])
}
