package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lusk/underseerr-data/internal/domain"
	"github.com/lusk/underseerr-data/internal/repo"
)

// DiscoveryService serves media detail reads: network-first with local
// request state reconciled onto the result, and the cache as the offline
// fallback.
type DiscoveryService struct {
	DB        *gorm.DB
	Transport Transport
	Cache     *CacheService
}

// NewDiscoveryService wires a DiscoveryService.
func NewDiscoveryService(db *gorm.DB, t Transport, cache *CacheService) *DiscoveryService {
	return &DiscoveryService{DB: db, Transport: t, Cache: cache}
}

// GetMovieDetails fetches the movie, overlays local request state, caches
// the reconciled result, and returns it. When the server is unreachable the
// cached copy is served instead; a connectivity failure with no cached copy,
// or any non-connectivity failure, surfaces the fetch error.
func (s *DiscoveryService) GetMovieDetails(ctx context.Context, id int) (*domain.Movie, error) {
	tr := otel.Tracer("services/discovery")
	ctx, span := tr.Start(ctx, "GetMovieDetails",
		trace.WithAttributes(attribute.Int("media.id", id)))
	defer span.End()

	fetched, err := s.Transport.FetchMovie(ctx, id)
	if err != nil {
		if domain.IsConnectivity(err) {
			cached, cacheErr := s.Cache.GetCachedMovie(ctx, id)
			if cacheErr == nil {
				log.Debug().Int("media_id", id).Msg("serving movie from cache, server unreachable")
				return cached, nil
			}
		}
		return nil, err
	}

	local := s.localRequest(ctx, id)
	reconciled := ReconcileMovie(fetched, local)
	if err := s.Cache.CacheMovie(ctx, reconciled); err != nil {
		return nil, err
	}
	return reconciled, nil
}

// GetTvShowDetails mirrors GetMovieDetails for TV shows.
func (s *DiscoveryService) GetTvShowDetails(ctx context.Context, id int) (*domain.TvShow, error) {
	tr := otel.Tracer("services/discovery")
	ctx, span := tr.Start(ctx, "GetTvShowDetails",
		trace.WithAttributes(attribute.Int("media.id", id)))
	defer span.End()

	fetched, err := s.Transport.FetchTvShow(ctx, id)
	if err != nil {
		if domain.IsConnectivity(err) {
			cached, cacheErr := s.Cache.GetCachedTvShow(ctx, id)
			if cacheErr == nil {
				log.Debug().Int("media_id", id).Msg("serving tv show from cache, server unreachable")
				return cached, nil
			}
		}
		return nil, err
	}

	local := s.localRequest(ctx, id)
	reconciled := ReconcileTvShow(fetched, local)
	if err := s.Cache.CacheTvShow(ctx, reconciled); err != nil {
		return nil, err
	}
	return reconciled, nil
}

// localRequest loads the local request row for a media id, if any. Lookup
// errors degrade to "no local state"; reconciliation is best-effort and must
// not block the read path.
func (s *DiscoveryService) localRequest(ctx context.Context, mediaID int) *domain.MediaRequest {
	r, err := repo.GetRequestByMediaID(ctx, s.DB, mediaID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Warn().Err(err).Int("media_id", mediaID).Msg("local request lookup failed")
		}
		return nil
	}
	return r
}
