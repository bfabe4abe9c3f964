package scheduler

import (
	"context"
	"fmt"
	"go-elearn-app/internal/logger"
	"time"

	"github.com/go-co-op/gocron"
)

// runTimeout bounds a single retry run.
const runTimeout = 2 * time.Minute

// Retrier re-sends notifications that failed earlier.
type Retrier interface {
	RetryPending(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	log       logger.Logger
}

// New creates a new scheduler instance
func New(log logger.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	// A slow run must not overlap the next one.
	s.SingletonModeAll()
	return &Scheduler{scheduler: s, log: log}
}

// ScheduleContactRetry runs r every interval minutes. A non-positive
// interval schedules nothing.
func (s *Scheduler) ScheduleContactRetry(r Retrier, interval int) error {
	if interval <= 0 {
		s.log.Info("Contact notification retry disabled")
		return nil
	}
	if _, err := s.scheduler.Every(interval).Minutes().WaitForSchedule().Do(s.retryContacts, r); err != nil {
		return fmt.Errorf("failed to schedule contact retry: %w", err)
	}
	return nil
}

// Start begins running all scheduled tasks in the background.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Jobs returns how many jobs are scheduled.
func (s *Scheduler) Jobs() int {
	return len(s.scheduler.Jobs())
}

func (s *Scheduler) retryContacts(r Retrier) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	sent, err := r.RetryPending(ctx)
	if err != nil {
		s.log.Error(err, "Contact notification retry failed")
		return
	}
	if sent > 0 {
		s.log.Info(fmt.Sprintf("Delivered %d pending contact notifications", sent))
	}
}
