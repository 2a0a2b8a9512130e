package services

import (
	"context"
	"testing"

	"github.com/lusk/underseerr-data/internal/domain"
	"github.com/lusk/underseerr-data/internal/repo"
)

func TestSyncCoordinator_RunDrainsQueue(t *testing.T) {
	db := newSvcDB(t)
	q := NewOfflineQueue(db)
	ctx := context.Background()

	seedIntent(t, q, 42)
	seedPlaceholder(t, q, 42)

	tr := &fakeTransport{
		submitFn: func(ctx context.Context, p SubmitParams) (*domain.MediaRequest, error) {
			return &domain.MediaRequest{
				ID: 812, MediaType: p.MediaType, MediaID: p.MediaID,
				Title: "Heat", Status: domain.RequestStatusPending, RequestedAt: 1,
			}, nil
		},
	}
	c := NewSyncCoordinator(q, tr, 100, 10)

	report, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Submitted != 1 || report.Remaining != 0 {
		t.Fatalf("report: %+v", report)
	}
	if report.PassID == "" {
		t.Fatal("pass id missing")
	}
	if len(tr.submits) != 1 || tr.submits[0].MediaID != 42 {
		t.Fatalf("submitted params: %+v", tr.submits)
	}
}

func TestSyncCoordinator_SecondRunIsNoop(t *testing.T) {
	db := newSvcDB(t)
	q := NewOfflineQueue(db)
	ctx := context.Background()

	seedIntent(t, q, 1)
	seedPlaceholder(t, q, 1)

	tr := &fakeTransport{
		submitFn: func(ctx context.Context, p SubmitParams) (*domain.MediaRequest, error) {
			return &domain.MediaRequest{
				ID: 900, MediaType: p.MediaType, MediaID: p.MediaID,
				Title: "x", Status: domain.RequestStatusPending, RequestedAt: 1,
			}, nil
		},
	}
	c := NewSyncCoordinator(q, tr, 100, 10)

	if _, err := c.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	report, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.Submitted != 0 || report.Failed != 0 {
		t.Fatalf("second pass must be a no-op: %+v", report)
	}
	if len(tr.submits) != 1 {
		t.Fatalf("duplicate submission: %d calls", len(tr.submits))
	}
	// Exactly one server record, no placeholder.
	n, err := repo.CountRequests(ctx, db)
	if err != nil {
		t.Fatalf("CountRequests: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 request row, got %d", n)
	}
}

func TestChannelScheduler_CollapsesRedundantTriggers(t *testing.T) {
	s := NewChannelScheduler()

	// Dozens of triggers with no consumer must never block.
	for i := 0; i < 50; i++ {
		s.ScheduleSync()
	}

	// Exactly one wakeup is pending.
	select {
	case <-s.ch:
	default:
		t.Fatal("expected a pending trigger")
	}
	select {
	case <-s.ch:
		t.Fatal("triggers must collapse into one pending wakeup")
	default:
	}
}
