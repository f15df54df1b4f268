/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package recon

import (
	"context"
	"errors"
	"sync"
	"time"

	"trust-reconciliation-go/internal/store"

	"go.uber.org/zap"
)

// Scheduler triggers one reconciliation run per calendar day. It checks on
// an interval rather than firing at a fixed hour so a run that aborted
// (trust balance not yet posted) or failed transiently is retried later the
// same day. Completed days are not re-run.
type Scheduler struct {
	runner        *Runner
	checkInterval time.Duration

	mu          sync.Mutex
	lastRunDate string

	stopChan chan struct{}
	doneChan chan struct{}
}

func NewScheduler(runner *Runner, checkInterval time.Duration) *Scheduler {
	if checkInterval <= 0 {
		checkInterval = 1 * time.Hour
	}
	return &Scheduler{
		runner:        runner,
		checkInterval: checkInterval,
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
	}
}

// Start begins the daily check loop. The first check runs immediately.
func (s *Scheduler) Start(ctx context.Context) {
	zap.L().Info("Starting reconciliation scheduler",
		zap.Duration("check_interval", s.checkInterval))
	go s.loop(ctx)
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	zap.L().Info("Stopping reconciliation scheduler")
	close(s.stopChan)
	<-s.doneChan
	zap.L().Info("Reconciliation scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.doneChan)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	s.checkAndRun(ctx)

	for {
		select {
		case <-ticker.C:
			s.checkAndRun(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) checkAndRun(ctx context.Context) {
	today := time.Now().UTC().Format(time.DateOnly)

	s.mu.Lock()
	done := s.lastRunDate == today
	s.mu.Unlock()
	if done {
		return
	}

	outcome, err := s.runner.RunDaily(ctx, time.Now().UTC())
	if errors.Is(err, store.ErrRunInProgress) {
		zap.L().Info("Skipping scheduled reconciliation: a run is already in progress")
		return
	}
	if err != nil {
		zap.L().Error("Scheduled reconciliation failed to start", zap.Error(err))
		return
	}

	switch outcome.Status {
	case RunCompleted, RunPartialSuccess:
		s.mu.Lock()
		s.lastRunDate = today
		s.mu.Unlock()
	case RunAborted:
		zap.L().Warn("Scheduled reconciliation aborted, will retry",
			zap.String("reason", outcome.Reason))
	case RunFailed:
		if outcome.Retryable {
			zap.L().Warn("Scheduled reconciliation failed, will retry",
				zap.String("reason", outcome.Reason))
		} else {
			zap.L().Error("Scheduled reconciliation failed",
				zap.String("reason", outcome.Reason))
			s.mu.Lock()
			s.lastRunDate = today
			s.mu.Unlock()
		}
	}
}
