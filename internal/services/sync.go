package services

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/lusk/underseerr-data/internal/domain"
)

// SyncCoordinator runs offline queue drain passes. Passes are serialized
// with a mutex and individual submissions are paced by a token-bucket
// limiter so a long backlog does not hammer the server the moment it comes
// back.
type SyncCoordinator struct {
	Queue     *OfflineQueue
	Transport Transport

	limiter *rate.Limiter
	mu      sync.Mutex
}

// NewSyncCoordinator wires a coordinator pacing submissions at rps with the
// given burst.
func NewSyncCoordinator(q *OfflineQueue, t Transport, rps float64, burst int) *SyncCoordinator {
	if rps <= 0 {
		rps = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &SyncCoordinator{
		Queue:     q,
		Transport: t,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Run executes one drain pass. It is safe to call from multiple goroutines;
// overlapping calls serialize, and running a pass against an already empty
// queue is a no-op.
func (c *SyncCoordinator) Run(ctx context.Context) (DrainReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Queue.Drain(ctx, c.submit)
}

func (c *SyncCoordinator) submit(ctx context.Context, intent domain.OfflineRequest) (*domain.MediaRequest, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Transport.SubmitRequest(ctx, SubmitParams{
		MediaType:      intent.MediaType,
		MediaID:        intent.MediaID,
		Seasons:        intent.Seasons,
		QualityProfile: intent.QualityProfile,
		RootFolder:     intent.RootFolder,
	})
}
