// Package repository defines the persistence boundary for the farm ledger.
// The engine mutates in memory and hands finished snapshots to a Store; which
// backend a Store writes to is entirely the adapter's business.
package repository

import (
	"context"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
)

// Store durably keeps the farm state. Load returns an empty-collections state
// when nothing has been stored yet.
type Store interface {
	Load(ctx context.Context) (models.FarmState, error)
	Save(ctx context.Context, state models.FarmState) error
}
