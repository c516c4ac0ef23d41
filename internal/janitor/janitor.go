// Package janitor removes expired login sessions on a schedule.
package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/and161185/factshare/internal/repository"
)

// Janitor periodically deletes sessions whose expiry has passed.
type Janitor struct {
	sched    gocron.Scheduler
	sessions repository.SessionRepository
	log      *zap.Logger
	now      func() time.Time
}

// New schedules a sweep every interval. The scheduler is idle until Start.
func New(sessions repository.SessionRepository, every time.Duration, log *zap.Logger) (*Janitor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("janitor scheduler: %w", err)
	}
	j := &Janitor{sched: s, sessions: sessions, log: log, now: time.Now}
	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() { _, _ = j.Sweep(context.Background()) }),
		gocron.WithName("session-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("janitor job: %w", err)
	}
	return j, nil
}

// Start begins running sweeps in the background.
func (j *Janitor) Start() { j.sched.Start() }

// Shutdown stops the scheduler and waits for a running sweep.
func (j *Janitor) Shutdown() error { return j.sched.Shutdown() }

// Sweep deletes expired sessions once and reports how many went.
func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	n, err := j.sessions.DeleteExpired(ctx, j.now())
	if err != nil {
		j.log.Warn("session sweep failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		j.log.Debug("expired sessions removed", zap.Int64("count", n))
	}
	return n, nil
}
