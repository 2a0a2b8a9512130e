package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/lusk/underseerr-data/internal/domain"
	"github.com/lusk/underseerr-data/internal/observability"
	"github.com/lusk/underseerr-data/internal/repo"
)

// CacheService is the write-through media cache. Every write stamps the rows,
// persists them, and then re-evaluates the eviction policy; reads never
// mutate recency.
type CacheService struct {
	DB     *gorm.DB
	Policy EvictionPolicy

	// Now returns the current time in Unix milliseconds. Overridable in
	// tests; defaults to wall clock.
	Now func() int64
}

// NewCacheService builds a CacheService with the given policy.
func NewCacheService(db *gorm.DB, policy EvictionPolicy) *CacheService {
	return &CacheService{
		DB:     db,
		Policy: policy,
		Now:    func() int64 { return time.Now().UnixMilli() },
	}
}

// CacheMovie stores one movie and runs the eviction check.
func (s *CacheService) CacheMovie(ctx context.Context, m *domain.Movie) error {
	return s.CacheMovies(ctx, []domain.Movie{*m})
}

// CacheMovies stores a batch of movies. All rows in the batch receive the
// same CachedAt stamp, and the eviction policy is evaluated once after the
// write.
func (s *CacheService) CacheMovies(ctx context.Context, movies []domain.Movie) error {
	tr := otel.Tracer("services/cache")
	ctx, span := tr.Start(ctx, "CacheMovies",
		trace.WithAttributes(attribute.Int("batch.size", len(movies))))
	defer span.End()

	if len(movies) == 0 {
		return nil
	}

	now := s.Now()
	for i := range movies {
		movies[i].Title = norm.NFC.String(movies[i].Title)
		movies[i].CachedAt = now
	}
	if err := repo.UpsertMovies(ctx, s.DB, movies); err != nil {
		return fmt.Errorf("cache movies: %w", err)
	}
	return s.evictIfNeeded(ctx)
}

// CacheTvShow stores one TV show and runs the eviction check.
func (s *CacheService) CacheTvShow(ctx context.Context, t *domain.TvShow) error {
	return s.CacheTvShows(ctx, []domain.TvShow{*t})
}

// CacheTvShows stores a batch of TV shows, mirroring CacheMovies.
func (s *CacheService) CacheTvShows(ctx context.Context, shows []domain.TvShow) error {
	tr := otel.Tracer("services/cache")
	ctx, span := tr.Start(ctx, "CacheTvShows",
		trace.WithAttributes(attribute.Int("batch.size", len(shows))))
	defer span.End()

	if len(shows) == 0 {
		return nil
	}

	now := s.Now()
	for i := range shows {
		shows[i].Name = norm.NFC.String(shows[i].Name)
		shows[i].CachedAt = now
	}
	if err := repo.UpsertTvShows(ctx, s.DB, shows); err != nil {
		return fmt.Errorf("cache tv shows: %w", err)
	}
	return s.evictIfNeeded(ctx)
}

// GetCachedMovie returns the cached movie or ErrNotCached. The read does not
// refresh the entry's CachedAt stamp.
func (s *CacheService) GetCachedMovie(ctx context.Context, id int) (*domain.Movie, error) {
	m, err := repo.GetMovie(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		observability.CacheReads.WithLabelValues("movie", "miss").Inc()
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("get cached movie: %w", err)
	}
	observability.CacheReads.WithLabelValues("movie", "hit").Inc()
	return m, nil
}

// GetCachedTvShow returns the cached TV show or ErrNotCached.
func (s *CacheService) GetCachedTvShow(ctx context.Context, id int) (*domain.TvShow, error) {
	t, err := repo.GetTvShow(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		observability.CacheReads.WithLabelValues("tv", "miss").Inc()
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("get cached tv show: %w", err)
	}
	observability.CacheReads.WithLabelValues("tv", "hit").Inc()
	return t, nil
}

// EstimateSizeBytes reports the count-based footprint estimate for the whole
// cache.
func (s *CacheService) EstimateSizeBytes(ctx context.Context) (int64, error) {
	movies, shows, err := repo.CacheCounts(ctx, s.DB)
	if err != nil {
		return 0, fmt.Errorf("cache counts: %w", err)
	}
	return s.Policy.EstimateBytes(movies, shows), nil
}

// EvictLeastRecentlyUsed re-evaluates the eviction policy and, only when the
// size estimate exceeds the budget, sheds 20% of each kind's rows, oldest
// CachedAt first. Under budget it is a no-op. The name is kept from the
// original public API even though recency only advances on writes.
func (s *CacheService) EvictLeastRecentlyUsed(ctx context.Context) error {
	tr := otel.Tracer("services/cache")
	ctx, span := tr.Start(ctx, "EvictLeastRecentlyUsed")
	defer span.End()

	return s.evictIfNeeded(ctx)
}

// DeleteOlderThan removes every cached entry of both kinds whose CachedAt is
// before the cutoff. Returns the number of rows removed.
func (s *CacheService) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	tr := otel.Tracer("services/cache")
	ctx, span := tr.Start(ctx, "DeleteOlderThan",
		trace.WithAttributes(attribute.Int64("cutoff", cutoff)))
	defer span.End()

	nm, err := repo.DeleteMoviesOlderThan(ctx, s.DB, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale movies: %w", err)
	}
	nt, err := repo.DeleteTvShowsOlderThan(ctx, s.DB, cutoff)
	if err != nil {
		return nm, fmt.Errorf("delete stale tv shows: %w", err)
	}
	s.updateSizeGauge(ctx)
	return nm + nt, nil
}

// ClearMovieCache drops every cached movie.
func (s *CacheService) ClearMovieCache(ctx context.Context) error {
	if err := repo.DeleteAllMovies(ctx, s.DB); err != nil {
		return fmt.Errorf("clear movie cache: %w", err)
	}
	s.updateSizeGauge(ctx)
	return nil
}

// ClearTvShowCache drops every cached TV show.
func (s *CacheService) ClearTvShowCache(ctx context.Context) error {
	if err := repo.DeleteAllTvShows(ctx, s.DB); err != nil {
		return fmt.Errorf("clear tv show cache: %w", err)
	}
	s.updateSizeGauge(ctx)
	return nil
}

// ClearAllCaches drops both kinds.
func (s *CacheService) ClearAllCaches(ctx context.Context) error {
	if err := s.ClearMovieCache(ctx); err != nil {
		return err
	}
	return s.ClearTvShowCache(ctx)
}

// evictIfNeeded re-evaluates the policy after a write and applies its
// decision.
func (s *CacheService) evictIfNeeded(ctx context.Context) error {
	movies, shows, err := repo.CacheCounts(ctx, s.DB)
	if err != nil {
		return fmt.Errorf("cache counts: %w", err)
	}
	observability.CacheSizeBytes.Set(float64(s.Policy.EstimateBytes(movies, shows)))
	d := s.Policy.Decide(movies, shows)
	if !d.ShouldEvict {
		return nil
	}
	return s.applyEviction(ctx, d)
}

func (s *CacheService) applyEviction(ctx context.Context, d EvictionDecision) error {
	if d.Movies > 0 {
		victims, err := repo.OldestMovies(ctx, s.DB, d.Movies)
		if err != nil {
			return fmt.Errorf("select eviction victims: %w", err)
		}
		for _, m := range victims {
			if err := repo.DeleteMovieByID(ctx, s.DB, m.ID); err != nil {
				return fmt.Errorf("evict movie %d: %w", m.ID, err)
			}
		}
		observability.CacheEvictions.WithLabelValues("movie").Add(float64(len(victims)))
	}
	if d.TvShows > 0 {
		victims, err := repo.OldestTvShows(ctx, s.DB, d.TvShows)
		if err != nil {
			return fmt.Errorf("select eviction victims: %w", err)
		}
		for _, t := range victims {
			if err := repo.DeleteTvShowByID(ctx, s.DB, t.ID); err != nil {
				return fmt.Errorf("evict tv show %d: %w", t.ID, err)
			}
		}
		observability.CacheEvictions.WithLabelValues("tv").Add(float64(len(victims)))
	}
	s.updateSizeGauge(ctx)
	return nil
}

func (s *CacheService) updateSizeGauge(ctx context.Context) {
	movies, shows, err := repo.CacheCounts(ctx, s.DB)
	if err != nil {
		return
	}
	observability.CacheSizeBytes.Set(float64(s.Policy.EstimateBytes(movies, shows)))
}
