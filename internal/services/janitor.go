package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/HammerMeetNail/watchtogether/internal/logging"
)

const purgeTimeout = 30 * time.Second

// SessionPurger removes expired sessions.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// SessionJanitor purges expired sessions on a cron schedule.
type SessionJanitor struct {
	purger SessionPurger
	spec   string
	cron   *cron.Cron
}

func NewSessionJanitor(purger SessionPurger, spec string) *SessionJanitor {
	return &SessionJanitor{
		purger: purger,
		spec:   spec,
		cron:   cron.New(),
	}
}

// Start schedules the purge and starts the scheduler in its own goroutine.
func (j *SessionJanitor) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.run); err != nil {
		return fmt.Errorf("scheduling session cleanup %q: %w", j.spec, err)
	}
	j.cron.Start()
	logging.Info("Session cleanup scheduled", logging.Fields{"schedule": j.spec})
	return nil
}

// Stop prevents new runs and waits for a running purge to finish.
func (j *SessionJanitor) Stop() {
	<-j.cron.Stop().Done()
}

// RunOnce purges expired sessions immediately.
func (j *SessionJanitor) RunOnce(ctx context.Context) (int64, error) {
	return j.purger.PurgeExpiredSessions(ctx)
}

func (j *SessionJanitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	removed, err := j.RunOnce(ctx)
	if err != nil {
		logging.Error("Session cleanup failed", logging.Fields{"error": err})
		return
	}
	if removed > 0 {
		logging.Info("Expired sessions purged", logging.Fields{"removed": removed})
	}
}
