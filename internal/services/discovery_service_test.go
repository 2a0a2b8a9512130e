package services

import (
	"context"
	"testing"

	"github.com/lusk/underseerr-data/internal/domain"
	"github.com/lusk/underseerr-data/internal/repo"
)

func newDiscoveryHarness(t *testing.T) (*DiscoveryService, *fakeTransport) {
	t.Helper()
	db := newSvcDB(t)
	tr := &fakeTransport{}
	cache := NewCacheService(db, DefaultEvictionPolicy())
	return NewDiscoveryService(db, tr, cache), tr
}

func TestGetMovieDetails_FetchReconcileCache(t *testing.T) {
	svc, tr := newDiscoveryHarness(t)
	ctx := context.Background()

	// Local placeholder exists for this media.
	placeholder := &domain.MediaRequest{
		ID: -42, MediaType: domain.MediaTypeMovie, MediaID: 42,
		Title: "Queued Request", Status: domain.RequestStatusPending,
		RequestedAt: 1, IsOfflineQueued: true,
	}
	if err := repo.UpsertRequest(ctx, svc.DB, placeholder); err != nil {
		t.Fatalf("seed placeholder: %v", err)
	}

	tr.movieFn = func(ctx context.Context, id int) (*domain.Movie, error) {
		return &domain.Movie{ID: id, Title: "Heat"}, nil
	}

	got, err := svc.GetMovieDetails(ctx, 42)
	if err != nil {
		t.Fatalf("GetMovieDetails: %v", err)
	}
	if got.MediaInfo == nil || got.MediaInfo.Status != domain.MediaStatusPending {
		t.Fatalf("local state not reconciled: %+v", got.MediaInfo)
	}

	// The reconciled result, not the raw fetch, lands in the cache.
	cached, err := svc.Cache.GetCachedMovie(ctx, 42)
	if err != nil {
		t.Fatalf("GetCachedMovie: %v", err)
	}
	if cached.MediaInfo == nil || cached.MediaInfo.Status != domain.MediaStatusPending {
		t.Fatalf("cache holds unreconciled copy: %+v", cached.MediaInfo)
	}
}

func TestGetMovieDetails_OfflineFallsBackToCache(t *testing.T) {
	svc, tr := newDiscoveryHarness(t)
	ctx := context.Background()

	if err := repo.UpsertMovie(ctx, svc.DB, &domain.Movie{ID: 42, Title: "Heat", CachedAt: 1}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	tr.movieFn = func(ctx context.Context, id int) (*domain.Movie, error) {
		return nil, domain.ConnectivityError("server unreachable", nil)
	}

	got, err := svc.GetMovieDetails(ctx, 42)
	if err != nil {
		t.Fatalf("cache fallback failed: %v", err)
	}
	if got.Title != "Heat" {
		t.Fatalf("unexpected fallback result: %+v", got)
	}
}

func TestGetMovieDetails_OfflineUncachedSurfacesError(t *testing.T) {
	svc, tr := newDiscoveryHarness(t)

	tr.movieFn = func(ctx context.Context, id int) (*domain.Movie, error) {
		return nil, domain.ConnectivityError("server unreachable", nil)
	}

	if _, err := svc.GetMovieDetails(context.Background(), 42); !domain.IsConnectivity(err) {
		t.Fatalf("expected the fetch error, got %v", err)
	}
}

func TestGetMovieDetails_PermanentErrorNeverFallsBack(t *testing.T) {
	svc, tr := newDiscoveryHarness(t)
	ctx := context.Background()

	// A cached copy exists, but a 404 is not an outage.
	if err := repo.UpsertMovie(ctx, svc.DB, &domain.Movie{ID: 42, Title: "Heat", CachedAt: 1}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	tr.movieFn = func(ctx context.Context, id int) (*domain.Movie, error) {
		return nil, domain.PermanentError(404, "movie not found", nil)
	}

	if _, err := svc.GetMovieDetails(ctx, 42); !domain.IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestGetTvShowDetails_AvailableWinsOverLocalState(t *testing.T) {
	svc, tr := newDiscoveryHarness(t)
	ctx := context.Background()

	local := &domain.MediaRequest{
		ID: 812, MediaType: domain.MediaTypeTv, MediaID: 7,
		Title: "Fargo", Status: domain.RequestStatusPending, RequestedAt: 1,
	}
	if err := repo.UpsertRequest(ctx, svc.DB, local); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	tr.tvFn = func(ctx context.Context, id int) (*domain.TvShow, error) {
		return &domain.TvShow{
			ID: id, Name: "Fargo",
			MediaInfo: &domain.MediaInfo{Status: domain.MediaStatusAvailable, Available: true},
		}, nil
	}

	got, err := svc.GetTvShowDetails(ctx, 7)
	if err != nil {
		t.Fatalf("GetTvShowDetails: %v", err)
	}
	if got.MediaInfo.Status != domain.MediaStatusAvailable {
		t.Fatalf("server availability overridden: %+v", got.MediaInfo)
	}
}
