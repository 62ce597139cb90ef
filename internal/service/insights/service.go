// Package insights mediates between the ledger and the AI advisor. Whatever
// goes wrong on the wire, callers always receive the full three-field shape.
package insights

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
	"github.com/nahidfarms/poultrypro/pkg/clients/gemini"
)

// Service holds the single latest-insights slot. Refreshes are
// last-writer-wins: a stale in-flight result is discarded when a newer
// request has been issued meanwhile.
type Service struct {
	client gemini.Client
	logger *zap.Logger

	mu     sync.Mutex
	seq    uint64
	latest *models.Insights
}

// NewService wires the insights service. A nil client disables the remote
// call entirely; every refresh then yields the fallback payload.
func NewService(client gemini.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// Refresh requests fresh insights for the snapshot and returns them. The
// result is stored in the latest slot unless a newer refresh started while
// this one was in flight.
func (s *Service) Refresh(ctx context.Context, snapshot models.FarmState) models.Insights {
	s.mu.Lock()
	s.seq++
	ticket := s.seq
	s.mu.Unlock()

	result := s.fetch(ctx, snapshot)

	s.mu.Lock()
	if ticket == s.seq {
		stored := result
		s.latest = &stored
	} else {
		s.logger.Debug("stale insights result discarded", zap.Uint64("ticket", ticket))
	}
	s.mu.Unlock()

	return result
}

// Latest returns the most recently stored insights, if any.
func (s *Service) Latest() (models.Insights, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return models.Insights{}, false
	}
	return *s.latest, true
}

func (s *Service) fetch(ctx context.Context, snapshot models.FarmState) models.Insights {
	if s.client == nil {
		s.logger.Debug("ai client disabled, serving fallback insights")
		return models.FallbackInsights()
	}

	insights, err := s.client.GenerateInsights(ctx, snapshot)
	if err != nil {
		s.logger.Warn("ai insights call failed, serving fallback", zap.Error(err))
		return models.FallbackInsights()
	}

	// Never hand out nil slices, even when the model omits a list.
	if insights.Warnings == nil {
		insights.Warnings = []string{}
	}
	if insights.Recommendations == nil {
		insights.Recommendations = []string{}
	}
	return insights
}
