package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lusk/underseerr-data/internal/domain"
	"github.com/lusk/underseerr-data/internal/repo"
)

// test DB helper with all engine tables migrated
func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(
		&domain.Movie{}, &domain.TvShow{},
		&domain.MediaRequest{}, &domain.OfflineRequest{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// fakeClock yields a controllable, strictly increasing Now seam.
type fakeClock struct{ now int64 }

func (c *fakeClock) Now() int64 {
	c.now++
	return c.now
}

func TestCacheService_WriteStampsCachedAt(t *testing.T) {
	db := newSvcDB(t)
	svc := NewCacheService(db, DefaultEvictionPolicy())
	svc.Now = func() int64 { return 12345 }
	ctx := context.Background()

	if err := svc.CacheMovie(ctx, &domain.Movie{ID: 1, Title: "Heat"}); err != nil {
		t.Fatalf("CacheMovie: %v", err)
	}

	got, err := svc.GetCachedMovie(ctx, 1)
	if err != nil {
		t.Fatalf("GetCachedMovie: %v", err)
	}
	if got.CachedAt != 12345 {
		t.Fatalf("CachedAt not stamped: %d", got.CachedAt)
	}
}

func TestCacheService_RewriteRefreshesRecency(t *testing.T) {
	db := newSvcDB(t)
	svc := NewCacheService(db, DefaultEvictionPolicy())
	clock := &fakeClock{}
	svc.Now = clock.Now
	ctx := context.Background()

	if err := svc.CacheMovie(ctx, &domain.Movie{ID: 1, Title: "Heat"}); err != nil {
		t.Fatalf("CacheMovie: %v", err)
	}
	if err := svc.CacheMovie(ctx, &domain.Movie{ID: 2, Title: "Ronin"}); err != nil {
		t.Fatalf("CacheMovie: %v", err)
	}
	// Re-cache the first movie: it becomes the newest.
	if err := svc.CacheMovie(ctx, &domain.Movie{ID: 1, Title: "Heat"}); err != nil {
		t.Fatalf("CacheMovie rewrite: %v", err)
	}

	oldest, err := repo.OldestMovies(ctx, db, 1)
	if err != nil {
		t.Fatalf("OldestMovies: %v", err)
	}
	if oldest[0].ID != 2 {
		t.Fatalf("rewrite did not refresh recency, oldest = %d", oldest[0].ID)
	}
}

func TestCacheService_GetCachedMovie_Miss(t *testing.T) {
	db := newSvcDB(t)
	svc := NewCacheService(db, DefaultEvictionPolicy())

	if _, err := svc.GetCachedMovie(context.Background(), 404); err != ErrNotCached {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}
}

func TestCacheService_WriteTriggeredEviction(t *testing.T) {
	db := newSvcDB(t)
	// Budget for 10 entries; per-kind 20% shed once exceeded.
	policy := EvictionPolicy{MaxTotalBytes: 1000, MovieEntryBytes: 100, TvShowEntryBytes: 100}
	svc := NewCacheService(db, policy)
	clock := &fakeClock{}
	svc.Now = clock.Now
	ctx := context.Background()

	// 10 movies fill the budget exactly, one per write so CachedAt orders
	// them 1..10.
	for i := 1; i <= 10; i++ {
		if err := svc.CacheMovie(ctx, &domain.Movie{ID: i, Title: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("CacheMovie %d: %v", i, err)
		}
	}
	n, _ := repo.CountMovies(ctx, db)
	if n != 10 {
		t.Fatalf("premature eviction: %d rows", n)
	}

	// The 11th write tips the estimate over: 11 * 20% = 2 oldest evicted.
	if err := svc.CacheMovie(ctx, &domain.Movie{ID: 11, Title: "m11"}); err != nil {
		t.Fatalf("CacheMovie 11: %v", err)
	}
	n, _ = repo.CountMovies(ctx, db)
	if n != 9 {
		t.Fatalf("expected 9 rows after eviction, got %d", n)
	}
	for _, id := range []int{1, 2} {
		if _, err := svc.GetCachedMovie(ctx, id); err != ErrNotCached {
			t.Fatalf("oldest entry %d should be evicted, err=%v", id, err)
		}
	}
	if _, err := svc.GetCachedMovie(ctx, 11); err != nil {
		t.Fatalf("newest entry must survive: %v", err)
	}
}

func TestCacheService_EvictionSpansBothKinds(t *testing.T) {
	db := newSvcDB(t)
	policy := EvictionPolicy{MaxTotalBytes: 1000, MovieEntryBytes: 100, TvShowEntryBytes: 100}
	svc := NewCacheService(db, policy)
	clock := &fakeClock{}
	svc.Now = clock.Now
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		if err := svc.CacheMovie(ctx, &domain.Movie{ID: i, Title: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("CacheMovie: %v", err)
		}
	}
	for i := 1; i <= 4; i++ {
		if err := svc.CacheTvShow(ctx, &domain.TvShow{ID: i, Name: fmt.Sprintf("t%d", i)}); err != nil {
			t.Fatalf("CacheTvShow: %v", err)
		}
	}

	// 11th entry of 10-entry budget: movies shed 6*20%=1, tv 5*20%=1.
	if err := svc.CacheTvShow(ctx, &domain.TvShow{ID: 5, Name: "t5"}); err != nil {
		t.Fatalf("CacheTvShow: %v", err)
	}

	movies, shows, err := repo.CacheCounts(ctx, db)
	if err != nil {
		t.Fatalf("CacheCounts: %v", err)
	}
	if movies != 5 || shows != 4 {
		t.Fatalf("both kinds must shed: movies=%d tv=%d", movies, shows)
	}
	// The oldest of each kind is gone even though only the tv write tipped
	// the budget.
	if _, err := svc.GetCachedMovie(ctx, 1); err != ErrNotCached {
		t.Fatalf("oldest movie should be evicted, err=%v", err)
	}
	if _, err := svc.GetCachedTvShow(ctx, 1); err != ErrNotCached {
		t.Fatalf("oldest tv show should be evicted, err=%v", err)
	}
}

func TestCacheService_EvictUnderBudgetIsNoOp(t *testing.T) {
	db := newSvcDB(t)
	// Budget for 100 entries; 10 rows sit far under it.
	policy := EvictionPolicy{MaxTotalBytes: 10000, MovieEntryBytes: 100, TvShowEntryBytes: 100}
	svc := NewCacheService(db, policy)
	clock := &fakeClock{}
	svc.Now = clock.Now
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		if err := svc.CacheMovie(ctx, &domain.Movie{ID: i, Title: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("CacheMovie: %v", err)
		}
	}

	if err := svc.EvictLeastRecentlyUsed(ctx); err != nil {
		t.Fatalf("EvictLeastRecentlyUsed: %v", err)
	}
	n, _ := repo.CountMovies(ctx, db)
	if n != 10 {
		t.Fatalf("under-budget evict must not delete rows: %d remain", n)
	}
}

func TestCacheService_EvictOverBudgetSheds(t *testing.T) {
	db := newSvcDB(t)
	policy := EvictionPolicy{MaxTotalBytes: 1000, MovieEntryBytes: 100, TvShowEntryBytes: 100}
	svc := NewCacheService(db, policy)
	clock := &fakeClock{}
	svc.Now = clock.Now
	ctx := context.Background()

	// Seed past the budget without triggering write-time eviction.
	for i := 1; i <= 12; i++ {
		if err := repo.UpsertMovie(ctx, db, &domain.Movie{
			ID: i, Title: fmt.Sprintf("m%d", i), CachedAt: clock.Now(),
		}); err != nil {
			t.Fatalf("UpsertMovie: %v", err)
		}
	}

	if err := svc.EvictLeastRecentlyUsed(ctx); err != nil {
		t.Fatalf("EvictLeastRecentlyUsed: %v", err)
	}
	n, _ := repo.CountMovies(ctx, db)
	if n != 10 {
		t.Fatalf("expected 12*20%%=2 evicted, %d remain", n)
	}
	for _, id := range []int{1, 2} {
		if _, err := svc.GetCachedMovie(ctx, id); err != ErrNotCached {
			t.Fatalf("oldest entry %d should be evicted, err=%v", id, err)
		}
	}
}

func TestCacheService_DeleteOlderThan(t *testing.T) {
	db := newSvcDB(t)
	svc := NewCacheService(db, DefaultEvictionPolicy())
	ctx := context.Background()

	now := time.Now().UnixMilli()
	week := (7 * 24 * time.Hour).Milliseconds()

	svc.Now = func() int64 { return now - week - 1000 }
	if err := svc.CacheMovie(ctx, &domain.Movie{ID: 1, Title: "stale"}); err != nil {
		t.Fatalf("CacheMovie: %v", err)
	}
	if err := svc.CacheTvShow(ctx, &domain.TvShow{ID: 1, Name: "stale"}); err != nil {
		t.Fatalf("CacheTvShow: %v", err)
	}
	svc.Now = func() int64 { return now }
	if err := svc.CacheMovie(ctx, &domain.Movie{ID: 2, Title: "fresh"}); err != nil {
		t.Fatalf("CacheMovie: %v", err)
	}

	deleted, err := svc.DeleteOlderThan(ctx, now-week)
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 stale entries deleted, got %d", deleted)
	}
	if _, err := svc.GetCachedMovie(ctx, 2); err != nil {
		t.Fatalf("fresh entry must survive: %v", err)
	}
}

func TestCacheService_EstimateSizeBytes(t *testing.T) {
	db := newSvcDB(t)
	policy := EvictionPolicy{MaxTotalBytes: 1 << 30, MovieEntryBytes: 5120, TvShowEntryBytes: 5120}
	svc := NewCacheService(db, policy)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := svc.CacheMovie(ctx, &domain.Movie{ID: i, Title: "m"}); err != nil {
			t.Fatalf("CacheMovie: %v", err)
		}
	}
	if err := svc.CacheTvShow(ctx, &domain.TvShow{ID: 1, Name: "t"}); err != nil {
		t.Fatalf("CacheTvShow: %v", err)
	}

	size, err := svc.EstimateSizeBytes(ctx)
	if err != nil {
		t.Fatalf("EstimateSizeBytes: %v", err)
	}
	if size != 4*5120 {
		t.Fatalf("estimate: got %d, want %d", size, 4*5120)
	}
}

func TestCacheService_ClearAllCaches(t *testing.T) {
	db := newSvcDB(t)
	svc := NewCacheService(db, DefaultEvictionPolicy())
	ctx := context.Background()

	if err := svc.CacheMovie(ctx, &domain.Movie{ID: 1, Title: "m"}); err != nil {
		t.Fatalf("CacheMovie: %v", err)
	}
	if err := svc.CacheTvShow(ctx, &domain.TvShow{ID: 1, Name: "t"}); err != nil {
		t.Fatalf("CacheTvShow: %v", err)
	}

	if err := svc.ClearAllCaches(ctx); err != nil {
		t.Fatalf("ClearAllCaches: %v", err)
	}
	movies, shows, err := repo.CacheCounts(ctx, db)
	if err != nil {
		t.Fatalf("CacheCounts: %v", err)
	}
	if movies != 0 || shows != 0 {
		t.Fatalf("caches not cleared: movies=%d tv=%d", movies, shows)
	}
}
