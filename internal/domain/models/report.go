package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stats is the dashboard aggregate recomputed on every read.
type Stats struct {
	TotalBirds     int             `json:"total_birds"`
	InitialBirds   int             `json:"initial_birds"`
	TotalMortality int             `json:"total_mortality"`
	MortalityRate  float64         `json:"mortality_rate"`
	LowStockCount  int             `json:"low_stock_count"`
	TotalIncome    decimal.Decimal `json:"total_income"`
	TotalExpense   decimal.Decimal `json:"total_expense"`
	Balance        decimal.Decimal `json:"balance"`
}

// BatchReport is the printable per-flock projection: cost attribution and
// profit derived from the transactions referencing the flock.
type BatchReport struct {
	FlockID        string          `json:"flock_id"`
	BatchName      string          `json:"batch_name"`
	Breed          string          `json:"breed"`
	StartDate      string          `json:"start_date"`
	InitialCount   int             `json:"initial_count"`
	CurrentCount   int             `json:"current_count"`
	TotalMortality int             `json:"total_mortality"`
	FeedCost       decimal.Decimal `json:"feed_cost"`
	MedicineCost   decimal.Decimal `json:"medicine_cost"`
	OtherExpense   decimal.Decimal `json:"other_expense"`
	TotalExpense   decimal.Decimal `json:"total_expense"`
	Income         decimal.Decimal `json:"income"`
	NetProfit      decimal.Decimal `json:"net_profit"`
}

// DailySnapshot is the aggregated dashboard state stored by the scheduler.
type DailySnapshot struct {
	Date           time.Time `bson:"date" json:"date"`
	TotalBirds     int       `bson:"total_birds" json:"total_birds"`
	InitialBirds   int       `bson:"initial_birds" json:"initial_birds"`
	TotalMortality int       `bson:"total_mortality" json:"total_mortality"`
	MortalityRate  float64   `bson:"mortality_rate" json:"mortality_rate"`
	LowStockCount  int       `bson:"low_stock_count" json:"low_stock_count"`
	TotalIncome    float64   `bson:"total_income" json:"total_income"`
	TotalExpense   float64   `bson:"total_expense" json:"total_expense"`
	Balance        float64   `bson:"balance" json:"balance"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// SnapshotFromStats converts the live dashboard aggregate into its stored form.
func SnapshotFromStats(stats Stats, now time.Time) DailySnapshot {
	return DailySnapshot{
		Date:           now.Truncate(24 * time.Hour),
		TotalBirds:     stats.TotalBirds,
		InitialBirds:   stats.InitialBirds,
		TotalMortality: stats.TotalMortality,
		MortalityRate:  stats.MortalityRate,
		LowStockCount:  stats.LowStockCount,
		TotalIncome:    stats.TotalIncome.InexactFloat64(),
		TotalExpense:   stats.TotalExpense.InexactFloat64(),
		Balance:        stats.Balance.InexactFloat64(),
		CreatedAt:      now,
	}
}
