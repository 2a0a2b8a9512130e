package repo

import (
	"context"
	"testing"

	"github.com/lusk/underseerr-data/internal/domain"
)

func TestOfflineRequests_FIFOOrder(t *testing.T) {
	db := newTestDB(t, &domain.OfflineRequest{})
	ctx := context.Background()

	for i, mediaID := range []int{30, 10, 20} {
		intent := &domain.OfflineRequest{
			MediaType: domain.MediaTypeMovie,
			MediaID:   mediaID,
			CreatedAt: int64(100 + i),
		}
		if err := EnqueueOfflineRequest(ctx, db, intent); err != nil {
			t.Fatalf("EnqueueOfflineRequest: %v", err)
		}
	}

	got, err := ListOfflineRequests(ctx, db)
	if err != nil {
		t.Fatalf("ListOfflineRequests: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 intents, got %d", len(got))
	}
	// Insertion order, not media id order.
	if got[0].MediaID != 30 || got[1].MediaID != 10 || got[2].MediaID != 20 {
		t.Fatalf("wrong order: %v %v %v", got[0].MediaID, got[1].MediaID, got[2].MediaID)
	}
}

func TestDeleteOfflineRequestsByMediaID(t *testing.T) {
	db := newTestDB(t, &domain.OfflineRequest{})
	ctx := context.Background()

	for _, mediaID := range []int{5, 6, 5} {
		intent := &domain.OfflineRequest{MediaType: domain.MediaTypeTv, MediaID: mediaID, CreatedAt: 1}
		if err := EnqueueOfflineRequest(ctx, db, intent); err != nil {
			t.Fatalf("EnqueueOfflineRequest: %v", err)
		}
	}

	if err := DeleteOfflineRequestsByMediaID(ctx, db, 5); err != nil {
		t.Fatalf("DeleteOfflineRequestsByMediaID: %v", err)
	}

	n, err := CountOfflineRequests(ctx, db)
	if err != nil {
		t.Fatalf("CountOfflineRequests: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 intent left, got %d", n)
	}
	rest, err := ListOfflineRequests(ctx, db)
	if err != nil {
		t.Fatalf("ListOfflineRequests: %v", err)
	}
	if rest[0].MediaID != 6 {
		t.Fatalf("wrong survivor: %+v", rest[0])
	}
}
