// Package ledger owns the in-memory farm state and every rule that mutates
// it: the transaction ledger, flock lifecycle, mortality and feed derivation,
// and inventory reconciliation. Persistence happens after the fact, through
// an injected store, and never blocks or corrupts the in-memory books.
package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
	"github.com/nahidfarms/poultrypro/internal/repository"
)

// ErrFlockNotFound indicates the referenced flock does not exist.
var ErrFlockNotFound = errors.New("flock not found")

// ErrItemNotFound indicates the referenced inventory item does not exist.
var ErrItemNotFound = errors.New("inventory item not found")

// ErrInvalidAmount is returned for non-positive amounts under strict policy.
var ErrInvalidAmount = errors.New("transaction amount must be positive")

// ErrNothingToUndo indicates no delete has happened since the last undo.
var ErrNothingToUndo = errors.New("nothing to undo")

const saveTimeout = 10 * time.Second

// Options tune ledger policy.
type Options struct {
	// StrictAmounts rejects zero and negative transaction amounts. The
	// default mirrors the historical behavior: amounts are accepted as given.
	StrictAmounts bool
	// Matcher resolves which inventory line a feed entry draws down from.
	// Nil selects DefaultFeedMatcher.
	Matcher FeedMatcher
}

// Service is the farm ledger engine. All mutations go through it; the state
// it holds is authoritative and the store merely trails behind.
type Service struct {
	mu      sync.Mutex
	state   models.FarmState
	undo    *models.FarmState
	store   repository.Store
	matcher FeedMatcher
	strict  bool
	logger  *zap.Logger
	newID   func() string
}

// NewService constructs the engine with an empty state. Call Hydrate to pull
// whatever the store has.
func NewService(store repository.Store, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	matcher := opts.Matcher
	if matcher == nil {
		matcher = DefaultFeedMatcher
	}

	svc := &Service{
		store:   store,
		matcher: matcher,
		strict:  opts.StrictAmounts,
		logger:  logger,
		newID:   uuid.NewString,
	}
	svc.state.Normalize()
	return svc
}

// Hydrate replaces the in-memory state with whatever the store holds. A load
// failure leaves the engine running on an empty state and is reported so the
// caller can surface a degraded-start warning.
func (s *Service) Hydrate(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	state, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load persisted state, starting empty", zap.Error(err))
		return err
	}
	state.Normalize()

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.logger.Info("farm state hydrated",
		zap.Int("transactions", len(state.Transactions)),
		zap.Int("flocks", len(state.Flocks)),
		zap.Int("inventory", len(state.Inventory)))
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() models.FarmState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// TransactionInput carries the caller-supplied fields of a ledger entry.
type TransactionInput struct {
	Date        string
	Type        models.TransactionType
	Category    models.Category
	Amount      decimal.Decimal
	Description string
	FlockID     string
}

// AddTransaction mints an id and prepends the entry; the transaction list is
// ordered most-recent-first regardless of the date field.
func (s *Service) AddTransaction(ctx context.Context, input TransactionInput) (models.Transaction, error) {
	if s.strict && input.Amount.Sign() <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}

	tx := models.Transaction{
		ID:          s.newID(),
		Date:        input.Date,
		Type:        input.Type,
		Category:    input.Category,
		Amount:      input.Amount,
		Description: input.Description,
		FlockID:     input.FlockID,
	}

	s.mu.Lock()
	s.state.Transactions = append([]models.Transaction{tx}, s.state.Transactions...)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return tx, nil
}

// DeleteTransaction removes the matching entry. An unknown id is ignored.
func (s *Service) DeleteTransaction(ctx context.Context, id string) {
	s.mu.Lock()
	found := false
	for i, tx := range s.state.Transactions {
		if tx.ID == id {
			s.stashUndoLocked()
			s.state.Transactions = append(s.state.Transactions[:i], s.state.Transactions[i+1:]...)
			found = true
			break
		}
	}
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if !found {
		s.logger.Debug("delete ignored, transaction not found", zap.String("id", id))
		return
	}
	s.persist(ctx, snapshot)
}

// FlockInput carries the creation fields of a flock.
type FlockInput struct {
	BatchName    string
	Breed        string
	StartDate    string
	InitialCount int
}

// CreateFlock starts a new batch; the live count begins equal to the intake.
func (s *Service) CreateFlock(ctx context.Context, input FlockInput) (models.Flock, error) {
	initial := clampCount(input.InitialCount)

	flock := models.Flock{
		ID:            s.newID(),
		BatchName:     input.BatchName,
		Breed:         input.Breed,
		StartDate:     input.StartDate,
		InitialCount:  initial,
		CurrentCount:  initial,
		WeightLogs:    []models.WeightLog{},
		MortalityLogs: []models.MortalityLog{},
		FeedLogs:      []models.FeedLog{},
	}

	s.mu.Lock()
	s.state.Flocks = append([]models.Flock{flock}, s.state.Flocks...)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return flock, nil
}

// FlockPatch is a partial flock update. Log collections and counts are
// deliberately absent: history can only grow through the record operations
// and the live count only moves through mortality or an explicit override.
type FlockPatch struct {
	BatchName *string
	Breed     *string
	StartDate *string
}

// UpdateFlock merges the supplied fields into an existing flock.
func (s *Service) UpdateFlock(ctx context.Context, id string, patch FlockPatch) (models.Flock, error) {
	s.mu.Lock()
	flock := s.findFlockLocked(id)
	if flock == nil {
		s.mu.Unlock()
		return models.Flock{}, ErrFlockNotFound
	}

	if patch.BatchName != nil {
		flock.BatchName = *patch.BatchName
	}
	if patch.Breed != nil {
		flock.Breed = *patch.Breed
	}
	if patch.StartDate != nil {
		flock.StartDate = *patch.StartDate
	}

	updated := *flock
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return updated, nil
}

// OverrideCount is the administrative correction path for a flock's live
// count. It bypasses the mortality derivation on purpose and exists so the
// generic update never has to.
func (s *Service) OverrideCount(ctx context.Context, id string, count int) (models.Flock, error) {
	s.mu.Lock()
	flock := s.findFlockLocked(id)
	if flock == nil {
		s.mu.Unlock()
		return models.Flock{}, ErrFlockNotFound
	}

	previous := flock.CurrentCount
	flock.CurrentCount = clampCount(count)
	updated := *flock
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.logger.Info("flock count overridden",
		zap.String("flock_id", id),
		zap.Int("previous", previous),
		zap.Int("current", updated.CurrentCount))

	s.persist(ctx, snapshot)
	return updated, nil
}

// DeleteFlock removes the flock together with all of its logs. Transactions
// referencing it keep their flock_id as a dangling attribution.
func (s *Service) DeleteFlock(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i, f := range s.state.Flocks {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrFlockNotFound
	}

	s.stashUndoLocked()
	s.state.Flocks = append(s.state.Flocks[:idx], s.state.Flocks[idx+1:]...)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return nil
}

// WeightInput carries a weighing session.
type WeightInput struct {
	Date          string
	AverageWeight float64
	SampleSize    int
}

// RecordWeight appends a weight log. Pure append; insertion order is the
// recency signal for the "latest weight" display.
func (s *Service) RecordWeight(ctx context.Context, flockID string, input WeightInput) (models.WeightLog, error) {
	log := models.WeightLog{
		ID:            s.newID(),
		Date:          input.Date,
		AverageWeight: sanitizeQuantity(input.AverageWeight),
		SampleSize:    clampCount(input.SampleSize),
	}

	s.mu.Lock()
	flock := s.findFlockLocked(flockID)
	if flock == nil {
		s.mu.Unlock()
		return models.WeightLog{}, ErrFlockNotFound
	}
	flock.WeightLogs = append(flock.WeightLogs, log)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return log, nil
}

// MortalityInput carries a mortality incident.
type MortalityInput struct {
	Date   string
	Count  int
	Reason string
}

// RecordMortality appends the log and decrements the flock's live count in
// the same critical section; the count never drops below zero.
func (s *Service) RecordMortality(ctx context.Context, flockID string, input MortalityInput) (models.MortalityLog, error) {
	count := clampCount(input.Count)

	log := models.MortalityLog{
		ID:     s.newID(),
		Date:   input.Date,
		Count:  count,
		Reason: input.Reason,
	}

	s.mu.Lock()
	flock := s.findFlockLocked(flockID)
	if flock == nil {
		s.mu.Unlock()
		return models.MortalityLog{}, ErrFlockNotFound
	}
	flock.MortalityLogs = append(flock.MortalityLogs, log)
	flock.CurrentCount = clampCount(flock.CurrentCount - count)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return log, nil
}

// InventoryInput carries the fields of a stock line.
type InventoryInput struct {
	Name            string
	Category        models.Category
	CurrentQuantity float64
	Unit            string
	MinThreshold    float64
}

// AddItem registers a new inventory line.
func (s *Service) AddItem(ctx context.Context, input InventoryInput) (models.InventoryItem, error) {
	item := models.InventoryItem{
		ID:              s.newID(),
		Name:            input.Name,
		Category:        input.Category,
		CurrentQuantity: sanitizeQuantity(input.CurrentQuantity),
		Unit:            input.Unit,
		MinThreshold:    sanitizeQuantity(input.MinThreshold),
	}

	s.mu.Lock()
	s.state.Inventory = append([]models.InventoryItem{item}, s.state.Inventory...)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return item, nil
}

// ItemPatch is a partial inventory update.
type ItemPatch struct {
	Name            *string
	Category        *models.Category
	CurrentQuantity *float64
	Unit            *string
	MinThreshold    *float64
}

// UpdateItem merges the supplied fields into an existing item. Quantities are
// clamped at zero.
func (s *Service) UpdateItem(ctx context.Context, id string, patch ItemPatch) (models.InventoryItem, error) {
	s.mu.Lock()
	item := s.findItemLocked(id)
	if item == nil {
		s.mu.Unlock()
		return models.InventoryItem{}, ErrItemNotFound
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.CurrentQuantity != nil {
		item.CurrentQuantity = sanitizeQuantity(*patch.CurrentQuantity)
	}
	if patch.Unit != nil {
		item.Unit = *patch.Unit
	}
	if patch.MinThreshold != nil {
		item.MinThreshold = sanitizeQuantity(*patch.MinThreshold)
	}

	updated := *item
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return updated, nil
}

// DeleteItem removes a stock line.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i, item := range s.state.Inventory {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}

	s.stashUndoLocked()
	s.state.Inventory = append(s.state.Inventory[:idx], s.state.Inventory[idx+1:]...)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return nil
}

// Undo restores the state captured before the most recent delete. One level
// deep; a second undo without an intervening delete fails.
func (s *Service) Undo(ctx context.Context) error {
	s.mu.Lock()
	if s.undo == nil {
		s.mu.Unlock()
		return ErrNothingToUndo
	}
	s.state = *s.undo
	s.undo = nil
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.logger.Info("last delete undone")
	s.persist(ctx, snapshot)
	return nil
}

// stashUndoLocked snapshots the state ahead of a destructive operation.
// Callers must hold the mutex.
func (s *Service) stashUndoLocked() {
	clone := s.state.Clone()
	s.undo = &clone
}

func (s *Service) findFlockLocked(id string) *models.Flock {
	for i := range s.state.Flocks {
		if s.state.Flocks[i].ID == id {
			return &s.state.Flocks[i]
		}
	}
	return nil
}

func (s *Service) findItemLocked(id string) *models.InventoryItem {
	for i := range s.state.Inventory {
		if s.state.Inventory[i].ID == id {
			return &s.state.Inventory[i]
		}
	}
	return nil
}

// persist hands the snapshot to the store without blocking the caller. The
// in-memory state is already committed; a failed save is logged and, when the
// store degraded to its local cache, noted as recoverable.
func (s *Service) persist(ctx context.Context, snapshot models.FarmState) {
	if s.store == nil {
		return
	}

	go func() {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		defer cancel()

		if err := s.store.Save(saveCtx, snapshot); err != nil {
			if errors.Is(err, repository.ErrDegraded) {
				s.logger.Warn("state saved to local cache only", zap.Error(err))
				return
			}
			s.logger.Error("failed to persist farm state", zap.Error(err))
		}
	}()
}

func clampCount(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// sanitizeQuantity coerces malformed numeric input (NaN, infinities,
// negatives) to zero so a bad quantity records a zero-effect log instead of
// failing the append.
func sanitizeQuantity(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
