package localfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
)

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	repo, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state.Transactions)
	require.NotNil(t, state.Flocks)
	require.NotNil(t, state.Inventory)
	require.Empty(t, state.Flocks)
}

func TestLoadMalformedFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFileName), []byte("{not json"), 0o644))

	repo, err := New(dir, nil)
	require.NoError(t, err)

	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, state.Flocks)
	require.NotNil(t, state.Transactions)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	saved := models.FarmState{
		Transactions: []models.Transaction{
			{ID: "t1", Date: "2026-03-01", Type: models.TransactionExpense, Category: models.CategoryFeed, Amount: decimal.RequireFromString("1250.75")},
		},
		Flocks: []models.Flock{
			{
				ID: "f1", BatchName: "Batch A", InitialCount: 500, CurrentCount: 490,
				MortalityLogs: []models.MortalityLog{{ID: "m1", Date: "2026-03-02", Count: 10, Reason: "disease"}},
				FeedLogs:      []models.FeedLog{{ID: "fl1", Date: "2026-03-03", Amount: 2, Unit: models.FeedUnitBag}},
			},
		},
		Inventory: []models.InventoryItem{
			{ID: "i1", Name: "Grower feed", Category: models.CategoryFeed, CurrentQuantity: 8, Unit: "bag", MinThreshold: 2},
		},
	}

	require.NoError(t, repo.Save(ctx, saved))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Transactions, 1)
	require.True(t, loaded.Transactions[0].Amount.Equal(decimal.RequireFromString("1250.75")))
	require.Equal(t, 490, loaded.Flocks[0].CurrentCount)
	require.Equal(t, 10, loaded.Flocks[0].MortalityLogs[0].Count)
	require.Equal(t, models.FeedUnitBag, loaded.Flocks[0].FeedLogs[0].Unit)
	require.Equal(t, "Grower feed", loaded.Inventory[0].Name)
}

func TestSaveOverwritesPrevious(t *testing.T) {
	repo, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, models.FarmState{Flocks: []models.Flock{{ID: "old"}}}))
	require.NoError(t, repo.Save(ctx, models.FarmState{Flocks: []models.Flock{{ID: "new"}}}))

	state, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, state.Flocks, 1)
	require.Equal(t, "new", state.Flocks[0].ID)
}
