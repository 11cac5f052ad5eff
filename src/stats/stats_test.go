package stats

import (
	"testing"

	"budgetbox-server/src/models"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	b := models.Budget{Amounts: map[string]float64{
		"income":        50000,
		"monthlyBills":  20000,
		"food":          10000,
		"transport":     5000,
		"subscriptions": 500,
	}}

	s := Summarize(b)
	assert.Equal(t, float64(50000), s.Income)
	assert.Equal(t, float64(35500), s.TotalExpenses)
	assert.Equal(t, int64(71), s.BurnPercent)
	assert.Equal(t, float64(14500), s.Savings)

	// monthlyBills is 40% of income, the only category at or above 30%.
	assert.Len(t, s.Anomalies, 1)
	assert.Equal(t, "monthlyBills", s.Anomalies[0].Category)
	assert.Equal(t, int64(40), s.Anomalies[0].Percent)
}

func TestSummarizeZeroIncome(t *testing.T) {
	b := models.Budget{Amounts: map[string]float64{"food": 1000}}
	s := Summarize(b)
	assert.Equal(t, int64(0), s.BurnPercent)
	assert.Equal(t, float64(-1000), s.Savings)
	assert.Empty(t, s.Anomalies)
}

func TestSummarizeOverspend(t *testing.T) {
	b := models.Budget{Amounts: map[string]float64{"income": 1000, "rent": 1200}}
	s := Summarize(b)
	assert.Equal(t, int64(120), s.BurnPercent)
	assert.Equal(t, float64(-200), s.Savings)
	assert.Len(t, s.Anomalies, 1)
	assert.Equal(t, int64(120), s.Anomalies[0].Percent)
}

func TestSummarizeIgnoresNegativeExpenses(t *testing.T) {
	b := models.Budget{Amounts: map[string]float64{"income": 1000, "refund": -50, "food": 100}}
	s := Summarize(b)
	assert.Equal(t, float64(100), s.TotalExpenses)
}

func TestSummarizeAnomaliesSortedByShare(t *testing.T) {
	b := models.Budget{Amounts: map[string]float64{
		"income": 1000,
		"rent":   500,
		"food":   300,
		"misc":   10,
	}}
	s := SummarizeWithThreshold(b, 30)
	assert.Len(t, s.Anomalies, 2)
	assert.Equal(t, "rent", s.Anomalies[0].Category)
	assert.Equal(t, "food", s.Anomalies[1].Category)
}

func TestSummarizeAlternateIncomeKey(t *testing.T) {
	b := models.Budget{Amounts: map[string]float64{"salary": 2000, "food": 200}}
	s := Summarize(b)
	assert.Equal(t, float64(2000), s.Income)
	assert.Equal(t, int64(10), s.BurnPercent)
}

func TestSummarizeExactPercentages(t *testing.T) {
	// 3333.33 / 10000 rounds to 33%, not a float artifact.
	b := models.Budget{Amounts: map[string]float64{"income": 10000, "food": 3333.33}}
	s := Summarize(b)
	assert.Equal(t, int64(33), s.BurnPercent)
}
