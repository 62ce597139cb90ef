// Package report builds the printable per-batch statement: cost attribution,
// income and net profit for one flock, derived purely from the ledger.
package report

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
	"github.com/nahidfarms/poultrypro/internal/repository/sheets"
)

const exportRange = "BatchReports!A:J"

// Build projects the flock's attributed transactions into a batch report.
// No state is mutated; report totals always reconcile with the ledger sums
// for that flock's transactions.
func Build(flock models.Flock, transactions []models.Transaction) models.BatchReport {
	rep := models.BatchReport{
		FlockID:        flock.ID,
		BatchName:      flock.BatchName,
		Breed:          flock.Breed,
		StartDate:      flock.StartDate,
		InitialCount:   flock.InitialCount,
		CurrentCount:   flock.CurrentCount,
		TotalMortality: flock.TotalMortality(),
	}

	for _, tx := range transactions {
		if tx.FlockID != flock.ID {
			continue
		}
		switch tx.Type {
		case models.TransactionIncome:
			rep.Income = rep.Income.Add(tx.Amount)
		case models.TransactionExpense:
			switch tx.Category {
			case models.CategoryFeed:
				rep.FeedCost = rep.FeedCost.Add(tx.Amount)
			case models.CategoryMedicine:
				rep.MedicineCost = rep.MedicineCost.Add(tx.Amount)
			default:
				rep.OtherExpense = rep.OtherExpense.Add(tx.Amount)
			}
		}
	}

	rep.TotalExpense = rep.FeedCost.Add(rep.MedicineCost).Add(rep.OtherExpense)
	rep.NetProfit = rep.Income.Sub(rep.TotalExpense)
	return rep
}

// Render formats the report as a printable plain-text document.
func Render(rep models.BatchReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Batch Report: %s (%s)\n", rep.BatchName, rep.Breed)
	fmt.Fprintf(&b, "Started: %s\n", rep.StartDate)
	fmt.Fprintf(&b, "Birds: %d of %d alive, %d lost\n\n", rep.CurrentCount, rep.InitialCount, rep.TotalMortality)
	fmt.Fprintf(&b, "Feed cost:      %s\n", rep.FeedCost.StringFixed(2))
	fmt.Fprintf(&b, "Medicine cost:  %s\n", rep.MedicineCost.StringFixed(2))
	fmt.Fprintf(&b, "Other expense:  %s\n", rep.OtherExpense.StringFixed(2))
	fmt.Fprintf(&b, "Total expense:  %s\n", rep.TotalExpense.StringFixed(2))
	fmt.Fprintf(&b, "Income:         %s\n", rep.Income.StringFixed(2))
	fmt.Fprintf(&b, "Net profit:     %s\n", rep.NetProfit.StringFixed(2))

	return b.String()
}

// Service optionally exports finished reports to a Google Sheet.
type Service struct {
	sheets sheets.Repository
	logger *zap.Logger
}

// NewService wires a report service. A nil sheets repository disables export.
func NewService(sheetsRepo sheets.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sheets: sheetsRepo, logger: logger}
}

// Export appends the report as a spreadsheet row. A no-op when export is not
// configured.
func (s *Service) Export(ctx context.Context, rep models.BatchReport) error {
	if s.sheets == nil {
		return nil
	}

	values := []interface{}{
		rep.BatchName,
		rep.Breed,
		rep.StartDate,
		rep.InitialCount,
		rep.CurrentCount,
		rep.FeedCost.StringFixed(2),
		rep.MedicineCost.StringFixed(2),
		rep.OtherExpense.StringFixed(2),
		rep.Income.StringFixed(2),
		rep.NetProfit.StringFixed(2),
	}

	if err := s.sheets.WriteRow(ctx, exportRange, values); err != nil {
		return fmt.Errorf("export batch report: %w", err)
	}

	s.logger.Info("batch report exported", zap.String("batch", rep.BatchName))
	return nil
}
