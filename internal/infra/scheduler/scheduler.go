package scheduler

import (
	"context"
	"fmt"
	"time"

	"discord_intro_bot/internal/domain/audit"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RetentionScheduler periodically prunes old submission records.
type RetentionScheduler struct {
	cronEngine    *cron.Cron
	auditRepo     audit.Repository
	logger        *logrus.Entry
	cronSpec      string
	retentionDays int
	now           func() time.Time
}

func NewRetentionScheduler(
	auditRepo audit.Repository,
	logger *logrus.Entry,
	cronSpec string, // e.g., "0 4 * * *" (04:00 daily)
	retentionDays int,
) *RetentionScheduler {
	return &RetentionScheduler{
		cronEngine:    cron.New(cron.WithLocation(time.Local)),
		auditRepo:     auditRepo,
		logger:        logger.WithField("component", "retention_scheduler"),
		cronSpec:      cronSpec,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

func (s *RetentionScheduler) Start() error {
	s.logger.Info("Starting retention scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Info("Cron job triggered for submission record pruning.")
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if _, err := s.Prune(ctx); err != nil {
			s.logger.WithError(err).Error("Error during submission record pruning")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add pruning cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpec).Info("Retention scheduler started.")
	return nil
}

// Prune deletes records older than the retention window.
func (s *RetentionScheduler) Prune(ctx context.Context) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -s.retentionDays)
	n, err := s.auditRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.logger.WithFields(logrus.Fields{
		"deleted": n,
		"cutoff":  cutoff.Format(time.RFC3339),
	}).Info("Submission records pruned")
	return n, nil
}

func (s *RetentionScheduler) Stop() {
	s.logger.Info("Stopping retention scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Retention scheduler gracefully stopped.")
}
