package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
)

// StatsSource supplies the live dashboard aggregate.
type StatsSource interface {
	Stats() models.Stats
}

// SnapshotSink persists a captured snapshot.
type SnapshotSink interface {
	SaveDailySnapshot(ctx context.Context, snapshot models.DailySnapshot) error
}

// Scheduler captures a dashboard snapshot on a cron schedule so mortality and
// balance trends survive outside the live state document.
type Scheduler struct {
	cron     *cron.Cron
	source   StatsSource
	sink     SnapshotSink
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(schedule string, source StatsSource, sink SnapshotSink, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour,
	// dom, month, dow).
	c := cron.New()

	return &Scheduler{
		cron:     c,
		source:   source,
		sink:     sink,
		schedule: schedule,
		logger:   logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.captureSnapshot); err != nil {
		s.logger.Error("failed to schedule daily snapshot", zap.Error(err))
		return
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) captureSnapshot() {
	s.logger.Info("capturing daily snapshot")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snapshot := models.SnapshotFromStats(s.source.Stats(), time.Now().UTC())

	if err := s.sink.SaveDailySnapshot(ctx, snapshot); err != nil {
		s.logger.Error("failed to save daily snapshot", zap.Error(err))
		return
	}
	s.logger.Info("daily snapshot saved",
		zap.Int("total_birds", snapshot.TotalBirds),
		zap.Float64("balance", snapshot.Balance))
}
