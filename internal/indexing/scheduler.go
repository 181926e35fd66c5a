package indexing

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/nightjar-app/nightjar/internal/journal"
	"github.com/nightjar-app/nightjar/internal/logger"
)

// Scheduler runs background indexing passes on a cron schedule. Users are
// handled one after another; within a user the pipeline is sequential
// anyway.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *Pipeline
	journal  *journal.Store
}

func NewScheduler(pipeline *Pipeline, store *journal.Store, spec string) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		pipeline: pipeline,
		journal:  store,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("auto-index scheduler started")
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) tick() {
	users, err := s.journal.UsersWithPending()
	if err != nil {
		logger.Error("auto-index: listing users failed", "error", err)
		return
	}

	for _, userID := range users {
		outcome, err := s.pipeline.IndexPending(context.Background(), userID)
		if err != nil {
			// one user's failure must not starve the rest
			logger.Error("auto-index failed", "user", userID, "error", err)
			continue
		}
		if outcome.SuccessCount > 0 || outcome.FailureCount > 0 {
			logger.Info("auto-index pass", "user", userID,
				"indexed", outcome.SuccessCount, "failed", outcome.FailureCount)
		}
	}
}
