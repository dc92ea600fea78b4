package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/market"
	"github.com/predictleague/prediction-league/internal/platform/logging"
)

const (
	syncMarketsPath      = "/v1/internal/jobs/sync-markets"
	sweepResolutionsPath = "/v1/internal/jobs/sweep-resolutions"
	resetWeeklyPath      = "/v1/internal/jobs/reset-weekly"
)

// Publisher is the queue surface the scheduler needs.
type Publisher interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

// Scheduler enqueues the recurring maintenance jobs. Deduplication ids are
// derived from the game week (or day, for sweeps) so re-running the
// scheduler never stacks duplicate deliveries.
type Scheduler struct {
	publisher Publisher
	logger    *logging.Logger
	now       func() time.Time
}

func NewScheduler(publisher Publisher, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ScheduleMarketSync queues one market sync for the current game week.
func (s *Scheduler) ScheduleMarketSync(ctx context.Context, delay time.Duration) error {
	week := market.WeekStartOf(s.now()).Format("2006-01-02")
	dedupID := "sync-markets-" + week
	if err := s.publisher.Enqueue(ctx, syncMarketsPath, nil, delay, dedupID); err != nil {
		return fmt.Errorf("schedule market sync: %w", err)
	}

	s.logger.InfoContext(ctx, "market sync scheduled", "week_start", week, "delay", delay.String())
	return nil
}

// ScheduleResolutionSweep queues a sweep; dedup is per hour so repeated
// scheduling within the same hour is a no-op.
func (s *Scheduler) ScheduleResolutionSweep(ctx context.Context, delay time.Duration) error {
	hour := s.now().UTC().Format("2006-01-02T15")
	dedupID := "sweep-resolutions-" + hour
	if err := s.publisher.Enqueue(ctx, sweepResolutionsPath, nil, delay, dedupID); err != nil {
		return fmt.Errorf("schedule resolution sweep: %w", err)
	}

	s.logger.InfoContext(ctx, "resolution sweep scheduled", "dedup_id", dedupID, "delay", delay.String())
	return nil
}

// ScheduleWeeklyReset queues the weekly points reset for the start of the
// next game week.
func (s *Scheduler) ScheduleWeeklyReset(ctx context.Context) error {
	now := s.now().UTC()
	nextWeek := market.WeekStartOf(now).AddDate(0, 0, 7)
	delay := nextWeek.Sub(now)
	if delay < 0 {
		delay = 0
	}

	dedupID := "reset-weekly-" + nextWeek.Format("2006-01-02")
	if err := s.publisher.Enqueue(ctx, resetWeeklyPath, nil, delay, dedupID); err != nil {
		return fmt.Errorf("schedule weekly reset: %w", err)
	}

	s.logger.InfoContext(ctx, "weekly reset scheduled", "week_start", nextWeek.Format("2006-01-02"), "delay", delay.String())
	return nil
}
