package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lusk/underseerr-data/internal/domain"
	"github.com/lusk/underseerr-data/internal/repo"
)

// Placeholder titles used when the cache holds no entry for the media.
const (
	fallbackMovieTitle = "Queued Request"
	fallbackTvTitle    = "Queued TV Request"
)

// RequestService owns the media request lifecycle: submission with offline
// fallback, cancellation, listing, and the bulk refresh from the server.
type RequestService struct {
	DB        *gorm.DB
	Transport Transport
	Queue     *OfflineQueue
	Scheduler SyncScheduler

	// Now returns the current time in Unix milliseconds. Overridable in
	// tests.
	Now func() int64
}

// NewRequestService wires a RequestService.
func NewRequestService(db *gorm.DB, t Transport, q *OfflineQueue, sched SyncScheduler) *RequestService {
	return &RequestService{
		DB:        db,
		Transport: t,
		Queue:     q,
		Scheduler: sched,
		Now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// RequestMovie submits a movie request, falling back to the offline queue
// when the server is unreachable. The returned request is either the
// server's record or the local placeholder.
func (s *RequestService) RequestMovie(ctx context.Context, p SubmitParams) (*domain.MediaRequest, error) {
	p.MediaType = domain.MediaTypeMovie
	return s.submitOrQueue(ctx, p)
}

// RequestTvShow submits a TV show request with offline fallback. Season
// selection follows the params; domain.AllSeasons requests everything.
func (s *RequestService) RequestTvShow(ctx context.Context, p SubmitParams) (*domain.MediaRequest, error) {
	p.MediaType = domain.MediaTypeTv
	if len(p.Seasons) == 0 {
		p.Seasons = domain.AllSeasons
	}
	return s.submitOrQueue(ctx, p)
}

func (s *RequestService) submitOrQueue(ctx context.Context, p SubmitParams) (*domain.MediaRequest, error) {
	tr := otel.Tracer("services/request")
	ctx, span := tr.Start(ctx, "SubmitRequest",
		trace.WithAttributes(
			attribute.String("media.type", string(p.MediaType)),
			attribute.Int("media.id", p.MediaID),
		))
	defer span.End()

	created, err := s.Transport.SubmitRequest(ctx, p)
	if err == nil {
		if err := repo.UpsertRequest(ctx, s.DB, created); err != nil {
			return nil, fmt.Errorf("store created request: %w", err)
		}
		return created, nil
	}
	if !domain.IsConnectivity(err) {
		return nil, err
	}

	// Server unreachable: capture the intent and surface a placeholder so
	// the request is immediately visible locally.
	placeholder := s.buildPlaceholder(ctx, p)
	if err := repo.UpsertRequest(ctx, s.DB, placeholder); err != nil {
		return nil, fmt.Errorf("store placeholder: %w", err)
	}
	intent := &domain.OfflineRequest{
		MediaType:      p.MediaType,
		MediaID:        p.MediaID,
		Seasons:        p.Seasons,
		QualityProfile: p.QualityProfile,
		RootFolder:     p.RootFolder,
	}
	if err := s.Queue.Enqueue(ctx, intent); err != nil {
		return nil, err
	}
	s.Scheduler.ScheduleSync()

	log.Info().
		Str("media_type", string(p.MediaType)).
		Int("media_id", p.MediaID).
		Msg("request queued for offline submission")
	return placeholder, nil
}

// buildPlaceholder constructs the local pending row for a queued request.
// The title comes from the cache when the media is cached, otherwise a
// generic fallback.
func (s *RequestService) buildPlaceholder(ctx context.Context, p SubmitParams) *domain.MediaRequest {
	title := fallbackMovieTitle
	var poster *string
	if p.MediaType == domain.MediaTypeTv {
		title = fallbackTvTitle
		if t, err := repo.GetTvShow(ctx, s.DB, p.MediaID); err == nil {
			title = t.Name
			poster = t.PosterPath
		}
	} else {
		if m, err := repo.GetMovie(ctx, s.DB, p.MediaID); err == nil {
			title = m.Title
			poster = m.PosterPath
		}
	}
	return &domain.MediaRequest{
		ID:              domain.PlaceholderID(p.MediaID),
		MediaType:       p.MediaType,
		MediaID:         p.MediaID,
		Title:           title,
		PosterPath:      poster,
		Status:          domain.RequestStatusPending,
		RequestedAt:     s.Now(),
		Seasons:         p.Seasons,
		IsOfflineQueued: true,
	}
}

// CancelRequest removes a request. Placeholders are resolved purely locally:
// the queued intent and the local row are deleted without touching the
// server. Server-confirmed requests are deleted remotely first; a 404 means
// the server already forgot it and counts as success.
func (s *RequestService) CancelRequest(ctx context.Context, id int) error {
	tr := otel.Tracer("services/request")
	ctx, span := tr.Start(ctx, "CancelRequest",
		trace.WithAttributes(attribute.Int("request.id", id)))
	defer span.End()

	r, err := repo.GetRequest(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}

	if r.IsPlaceholder() {
		if err := s.Queue.DeleteByMediaID(ctx, r.MediaID); err != nil {
			return err
		}
		return repo.DeleteRequestByID(ctx, s.DB, r.ID)
	}

	if err := s.Transport.DeleteRequest(ctx, id); err != nil {
		var ae *domain.AppError
		if !(errors.As(err, &ae) && ae.StatusCode == 404) {
			return err
		}
	}
	return repo.DeleteRequestByID(ctx, s.DB, id)
}

// GetRequest returns one locally known request by id.
func (s *RequestService) GetRequest(ctx context.Context, id int) (*domain.MediaRequest, error) {
	r, err := repo.GetRequest(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	return r, err
}

// ListRequests returns every locally known request, newest first.
// Placeholders and server-confirmed rows interleave in one list.
func (s *RequestService) ListRequests(ctx context.Context) ([]domain.MediaRequest, error) {
	return repo.ListRequests(ctx, s.DB)
}

// ListRequestsPage returns one page of requests, newest first.
func (s *RequestService) ListRequestsPage(ctx context.Context, offset, limit int) ([]domain.MediaRequest, error) {
	return repo.ListRequestsPage(ctx, s.DB, offset, limit)
}

// ListRequestsByStatus filters the local request list by lifecycle state.
func (s *RequestService) ListRequestsByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.MediaRequest, error) {
	return repo.ListRequestsByStatus(ctx, s.DB, status)
}

// IsMediaRequested reports whether any local request row, placeholder or
// confirmed, exists for the media id.
func (s *RequestService) IsMediaRequested(ctx context.Context, mediaID int) (bool, error) {
	_, err := repo.GetRequestByMediaID(ctx, s.DB, mediaID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RefreshRequests pulls pages of the caller's requests from the server and
// replaces the local copies. Placeholder rows are left alone; they belong to
// the offline queue until it drains them. Returns how many requests were
// fetched and the server-reported total.
func (s *RequestService) RefreshRequests(ctx context.Context, page, pageSize int) (int, int, error) {
	tr := otel.Tracer("services/request")
	ctx, span := tr.Start(ctx, "RefreshRequests",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page.size", pageSize),
		))
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultRefreshPageSize
	}

	res, err := s.Transport.ListRequests(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return 0, 0, err
	}
	if err := repo.UpsertRequests(ctx, s.DB, res.Results); err != nil {
		return 0, 0, fmt.Errorf("store refreshed requests: %w", err)
	}
	return len(res.Results), res.Total, nil
}

const defaultRefreshPageSize = 20
