package cache

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Cleaner is a cache that can drop its expired entries
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically removes expired entries from an in-process cache
type Janitor struct {
	cron    *cron.Cron
	cleaner Cleaner
	spec    string
	logger  *zap.Logger
}

// NewJanitor creates a janitor running on a standard 5-field cron spec
func NewJanitor(cleaner Cleaner, spec string, logger *zap.Logger) *Janitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{
		cron:    cron.New(),
		cleaner: cleaner,
		spec:    spec,
		logger:  logger,
	}
}

// Start schedules the cleanup job and starts the cron runner
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.Sweep); err != nil {
		return fmt.Errorf("schedule cache cleanup %q: %w", j.spec, err)
	}
	j.logger.Info("starting cache janitor", zap.String("spec", j.spec))
	j.cron.Start()
	return nil
}

// Stop stops the runner and waits for a running sweep to finish
func (j *Janitor) Stop() {
	j.logger.Info("stopping cache janitor")
	<-j.cron.Stop().Done()
}

// Sweep runs one cleanup pass
func (j *Janitor) Sweep() {
	removed := j.cleaner.CleanExpired()
	if removed > 0 {
		j.logger.Debug("expired schedules removed", zap.Int("count", removed))
	}
}
