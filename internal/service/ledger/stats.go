package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
)

// Summarize folds the transaction list into its income/expense totals.
// balance == totalIncome - totalExpense holds by construction, including for
// an empty list.
func Summarize(transactions []models.Transaction) (totalIncome, totalExpense, balance decimal.Decimal) {
	for _, tx := range transactions {
		switch tx.Type {
		case models.TransactionIncome:
			totalIncome = totalIncome.Add(tx.Amount)
		case models.TransactionExpense:
			totalExpense = totalExpense.Add(tx.Amount)
		}
	}
	return totalIncome, totalExpense, totalIncome.Sub(totalExpense)
}

// ComputeStats derives the dashboard aggregate from a state snapshot. Pure
// and cheap; recomputed on every read instead of cached.
func ComputeStats(state models.FarmState) models.Stats {
	var stats models.Stats

	for _, flock := range state.Flocks {
		stats.TotalBirds += flock.CurrentCount
		stats.InitialBirds += flock.InitialCount
		stats.TotalMortality += flock.TotalMortality()
	}

	// Zero, not NaN, when no birds were ever recorded.
	if stats.InitialBirds > 0 {
		stats.MortalityRate = float64(stats.TotalMortality) / float64(stats.InitialBirds) * 100
	}

	for _, item := range state.Inventory {
		if item.LowStock() {
			stats.LowStockCount++
		}
	}

	stats.TotalIncome, stats.TotalExpense, stats.Balance = Summarize(state.Transactions)
	return stats
}

// Stats computes the dashboard aggregate over the live state.
func (s *Service) Stats() models.Stats {
	return ComputeStats(s.Snapshot())
}
