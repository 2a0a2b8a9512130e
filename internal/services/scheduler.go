// Package services – sync scheduling.
//
// The background job system that wakes the sync pass is external; the write
// path only ever sends it a fire-and-forget trigger. ChannelScheduler is the
// in-process implementation: a one-slot channel so the trigger never blocks
// the write path and redundant triggers collapse into one pending wakeup
// (drain is idempotent, so collapsing is safe).
package services

import (
	"context"

	"github.com/rs/zerolog/log"
)

// SyncScheduler requests that the offline queue be drained soon.
type SyncScheduler interface {
	// ScheduleSync is fire-and-forget: it must return immediately and must
	// never fail from the caller's point of view.
	ScheduleSync()
}

// ChannelScheduler delivers triggers to a single consumer goroutine.
type ChannelScheduler struct {
	ch chan struct{}
}

// NewChannelScheduler constructs a scheduler with a one-slot trigger buffer.
func NewChannelScheduler() *ChannelScheduler {
	return &ChannelScheduler{ch: make(chan struct{}, 1)}
}

// ScheduleSync records a pending wakeup. When one is already pending the
// trigger is dropped; the coming drain pass covers both.
func (s *ChannelScheduler) ScheduleSync() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Run consumes triggers and invokes the coordinator until ctx is cancelled.
// Drain failures are logged and swallowed; the next trigger retries.
func (s *ChannelScheduler) Run(ctx context.Context, c *SyncCoordinator) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ch:
			report, err := c.Run(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("offline sync pass failed")
				continue
			}
			log.Info().
				Str("pass_id", report.PassID).
				Int("submitted", report.Submitted).
				Int("failed", report.Failed).
				Int("remaining", report.Remaining).
				Msg("offline sync pass complete")
		}
	}
}
