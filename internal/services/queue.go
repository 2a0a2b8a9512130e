package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lusk/underseerr-data/internal/domain"
	"github.com/lusk/underseerr-data/internal/observability"
	"github.com/lusk/underseerr-data/internal/repo"
)

// OfflineQueue persists write intents captured while the server was
// unreachable and drains them once connectivity returns.
type OfflineQueue struct {
	DB *gorm.DB

	// Now returns the current time in Unix milliseconds. Overridable in
	// tests.
	Now func() int64
}

// NewOfflineQueue builds an OfflineQueue over the given database.
func NewOfflineQueue(db *gorm.DB) *OfflineQueue {
	return &OfflineQueue{
		DB:  db,
		Now: func() int64 { return time.Now().UnixMilli() },
	}
}

// DrainReport summarizes one drain pass.
type DrainReport struct {
	// PassID identifies the pass in logs and traces.
	PassID string
	// Submitted counts intents accepted by the server.
	Submitted int
	// Failed counts intents discarded after a permanent rejection.
	Failed int
	// Remaining counts intents still queued when the pass ended.
	Remaining int
	// StoppedOnConnectivity is true when the pass ended early because the
	// server became unreachable again.
	StoppedOnConnectivity bool
}

// SubmitFunc submits one stored intent to the server and returns the
// server's record of the created request.
type SubmitFunc func(ctx context.Context, intent domain.OfflineRequest) (*domain.MediaRequest, error)

// Enqueue stores a write intent, replacing any intent already queued for the
// same media id. Resubmitting before a sync therefore never produces two
// queued writes, mirroring the deterministic placeholder key. The caller is
// responsible for creating the matching placeholder request row.
func (q *OfflineQueue) Enqueue(ctx context.Context, intent *domain.OfflineRequest) error {
	tr := otel.Tracer("services/queue")
	ctx, span := tr.Start(ctx, "Enqueue",
		trace.WithAttributes(
			attribute.String("media.type", string(intent.MediaType)),
			attribute.Int("media.id", intent.MediaID),
		))
	defer span.End()

	if err := repo.DeleteOfflineRequestsByMediaID(ctx, q.DB, intent.MediaID); err != nil {
		return fmt.Errorf("replace offline request: %w", err)
	}
	intent.CreatedAt = q.Now()
	if err := repo.EnqueueOfflineRequest(ctx, q.DB, intent); err != nil {
		return fmt.Errorf("enqueue offline request: %w", err)
	}
	q.updateDepthGauge(ctx)
	return nil
}

// Depth reports the number of queued intents.
func (q *OfflineQueue) Depth(ctx context.Context) (int64, error) {
	return repo.CountOfflineRequests(ctx, q.DB)
}

// DeleteByMediaID drops any queued intents for the media id. Used when a
// queued request is cancelled before it ever reaches the server.
func (q *OfflineQueue) DeleteByMediaID(ctx context.Context, mediaID int) error {
	if err := repo.DeleteOfflineRequestsByMediaID(ctx, q.DB, mediaID); err != nil {
		return fmt.Errorf("delete offline requests: %w", err)
	}
	q.updateDepthGauge(ctx)
	return nil
}

// Drain submits queued intents oldest-first until the queue is empty or a
// connectivity failure stops the pass.
//
// Per intent: success deletes the intent, replaces its placeholder with the
// server's record, and continues. A permanent rejection deletes the intent,
// marks the placeholder declined, and continues. A connectivity failure
// leaves the intent queued and ends the pass; the whole remainder is retried
// next time.
func (q *OfflineQueue) Drain(ctx context.Context, submit SubmitFunc) (DrainReport, error) {
	tr := otel.Tracer("services/queue")
	ctx, span := tr.Start(ctx, "Drain")
	defer span.End()

	report := DrainReport{PassID: uuid.NewString()}

	intents, err := repo.ListOfflineRequests(ctx, q.DB)
	if err != nil {
		return report, fmt.Errorf("list offline requests: %w", err)
	}
	span.SetAttributes(attribute.Int("queue.depth", len(intents)))

	for i, intent := range intents {
		if err := ctx.Err(); err != nil {
			report.Remaining = len(intents) - i
			return report, err
		}

		created, err := submit(ctx, intent)
		switch {
		case err == nil:
			if err := q.resolveSuccess(ctx, intent, created); err != nil {
				report.Remaining = len(intents) - i
				return report, err
			}
			report.Submitted++
			observability.SyncSubmissions.WithLabelValues("success").Inc()

		case domain.IsConnectivity(err):
			report.Remaining = len(intents) - i
			report.StoppedOnConnectivity = true
			observability.SyncSubmissions.WithLabelValues("connectivity").Inc()
			log.Debug().
				Str("pass_id", report.PassID).
				Int("media_id", intent.MediaID).
				Msg("drain stopped, server unreachable")
			q.updateDepthGauge(ctx)
			return report, nil

		case domain.IsPermanent(err):
			if err := q.resolveRejected(ctx, intent); err != nil {
				report.Remaining = len(intents) - i
				return report, err
			}
			report.Failed++
			observability.SyncSubmissions.WithLabelValues("permanent").Inc()
			log.Warn().
				Str("pass_id", report.PassID).
				Int("media_id", intent.MediaID).
				Err(err).
				Msg("queued request rejected by server")

		default:
			report.Remaining = len(intents) - i
			return report, fmt.Errorf("submit offline request: %w", err)
		}
	}

	q.updateDepthGauge(ctx)
	return report, nil
}

// resolveSuccess removes the intent, drops the placeholder row, and stores
// the server's record in its place.
func (q *OfflineQueue) resolveSuccess(ctx context.Context, intent domain.OfflineRequest, created *domain.MediaRequest) error {
	if err := repo.DeleteOfflineRequestByID(ctx, q.DB, intent.ID); err != nil {
		return fmt.Errorf("delete offline request: %w", err)
	}
	if err := repo.DeleteRequestByID(ctx, q.DB, domain.PlaceholderID(intent.MediaID)); err != nil {
		return fmt.Errorf("delete placeholder: %w", err)
	}
	if created != nil {
		if err := repo.UpsertRequest(ctx, q.DB, created); err != nil {
			return fmt.Errorf("store created request: %w", err)
		}
	}
	return nil
}

// resolveRejected removes the intent and flips its placeholder to declined
// so the rejection is visible to the user.
func (q *OfflineQueue) resolveRejected(ctx context.Context, intent domain.OfflineRequest) error {
	if err := repo.DeleteOfflineRequestByID(ctx, q.DB, intent.ID); err != nil {
		return fmt.Errorf("delete offline request: %w", err)
	}
	placeholder, err := repo.GetRequest(ctx, q.DB, domain.PlaceholderID(intent.MediaID))
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load placeholder: %w", err)
	}
	placeholder.Status = domain.RequestStatusDeclined
	if err := repo.UpsertRequest(ctx, q.DB, placeholder); err != nil {
		return fmt.Errorf("mark placeholder declined: %w", err)
	}
	return nil
}

func (q *OfflineQueue) updateDepthGauge(ctx context.Context) {
	n, err := repo.CountOfflineRequests(ctx, q.DB)
	if err != nil {
		return
	}
	observability.OfflineQueueDepth.Set(float64(n))
}
