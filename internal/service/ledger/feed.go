package ledger

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
)

// FeedMatcher picks the inventory line a feed entry draws down from. It
// returns an index into items, or -1 when no line qualifies. The default is a
// documented first-match policy; tests and future callers can substitute a
// deterministic strategy.
type FeedMatcher func(items []models.InventoryItem) int

// feedNameTerms are the substrings that mark an item as feed stock when its
// category does not already say so. The Bengali terms cover the names users
// actually type.
var feedNameTerms = []string{"feed", "ফিড", "খাদ্য"}

// DefaultFeedMatcher returns the first item, in list order, whose category is
// FEED or whose name mentions feed.
func DefaultFeedMatcher(items []models.InventoryItem) int {
	for i, item := range items {
		if item.Category == models.CategoryFeed {
			return i
		}
		name := strings.ToLower(item.Name)
		for _, term := range feedNameTerms {
			if strings.Contains(name, term) {
				return i
			}
		}
	}
	return -1
}

// FeedInput carries a feed consumption entry.
type FeedInput struct {
	Date   string
	Amount float64
	Unit   models.FeedUnit
}

// RecordFeed appends the feed log and reconciles inventory: the consumed
// amount is normalized to kilograms (1 bag = 50 kg, anything else passes
// through), one candidate stock line is located, and its quantity is
// decremented in its own unit, clamped at zero. When no candidate exists the
// log is still appended and only a warning is raised — this is a best-effort
// reconciliation, not a guaranteed ledger.
func (s *Service) RecordFeed(ctx context.Context, flockID string, input FeedInput) (models.FeedLog, error) {
	amount := sanitizeQuantity(input.Amount)

	log := models.FeedLog{
		ID:     s.newID(),
		Date:   input.Date,
		Amount: amount,
		Unit:   input.Unit,
	}

	kilograms := amount
	if input.Unit == models.FeedUnitBag {
		kilograms = amount * models.KilogramsPerBag
	}

	s.mu.Lock()
	flock := s.findFlockLocked(flockID)
	if flock == nil {
		s.mu.Unlock()
		return models.FeedLog{}, ErrFlockNotFound
	}
	flock.FeedLogs = append(flock.FeedLogs, log)

	idx := s.matcher(s.state.Inventory)
	if idx >= 0 && idx < len(s.state.Inventory) {
		item := &s.state.Inventory[idx]
		consumed := kilograms
		if strings.EqualFold(item.Unit, string(models.FeedUnitBag)) {
			consumed = kilograms / models.KilogramsPerBag
		}
		remaining := item.CurrentQuantity - consumed
		if remaining < 0 {
			remaining = 0
		}
		item.CurrentQuantity = remaining
	}
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if idx < 0 {
		s.logger.Warn("no feed stock line matched, inventory untouched",
			zap.String("flock_id", flockID),
			zap.Float64("amount", amount),
			zap.String("unit", string(input.Unit)))
	}

	s.persist(ctx, snapshot)
	return log, nil
}
