// Package stats computes display statistics over a budget: burn rate,
// savings potential, and per-category anomaly flags. Pure functions, exact
// to the cent via decimal arithmetic.
package stats

import (
	"sort"

	"budgetbox-server/src/models"

	"github.com/shopspring/decimal"
)

// DefaultAnomalyThreshold flags any expense consuming at least this percent
// of income.
const DefaultAnomalyThreshold = 30

var incomeKeys = map[string]bool{
	"income":        true,
	"monthlyIncome": true,
	"salary":        true,
}

type Anomaly struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  int64   `json:"percent"`
}

type Summary struct {
	Income        float64   `json:"income"`
	TotalExpenses float64   `json:"totalExpenses"`
	BurnPercent   int64     `json:"burnPercent"`
	Savings       float64   `json:"savings"`
	Anomalies     []Anomaly `json:"anomalies"`
}

func splitIncome(b models.Budget) (decimal.Decimal, map[string]decimal.Decimal) {
	income := decimal.Zero
	expenses := make(map[string]decimal.Decimal)
	for key, amount := range b.Amounts {
		d := decimal.NewFromFloat(amount)
		if incomeKeys[key] {
			income = d
			continue
		}
		if d.IsPositive() {
			expenses[key] = d
		}
	}
	return income, expenses
}

// Summarize computes totals, burn-rate percent and savings potential.
// Burn rate is zero when income is zero or negative.
func Summarize(b models.Budget) Summary {
	return SummarizeWithThreshold(b, DefaultAnomalyThreshold)
}

func SummarizeWithThreshold(b models.Budget, thresholdPercent int64) Summary {
	income, expenses := splitIncome(b)

	total := decimal.Zero
	for _, amount := range expenses {
		total = total.Add(amount)
	}

	burn := int64(0)
	if income.IsPositive() {
		burn = total.Div(income).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	}

	s := Summary{
		Income:        income.InexactFloat64(),
		TotalExpenses: total.InexactFloat64(),
		BurnPercent:   burn,
		Savings:       income.Sub(total).InexactFloat64(),
		Anomalies:     []Anomaly{},
	}

	if !income.IsPositive() {
		return s
	}

	hundred := decimal.NewFromInt(100)
	threshold := decimal.NewFromInt(thresholdPercent)
	for category, amount := range expenses {
		percent := amount.Div(income).Mul(hundred)
		if percent.GreaterThanOrEqual(threshold) {
			s.Anomalies = append(s.Anomalies, Anomaly{
				Category: category,
				Amount:   amount.InexactFloat64(),
				Percent:  percent.Round(0).IntPart(),
			})
		}
	}
	sort.Slice(s.Anomalies, func(i, j int) bool {
		if s.Anomalies[i].Percent != s.Anomalies[j].Percent {
			return s.Anomalies[i].Percent > s.Anomalies[j].Percent
		}
		return s.Anomalies[i].Category < s.Anomalies[j].Category
	})
	return s
}
