// Media HTTP handlers.
//
// This file exposes REST endpoints for media detail reads:
//   - GET /movies/{id}
//   - GET /tv/{id}
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. A connectivity
// failure with no cached fallback maps to 503 so clients can distinguish
// "server offline" from "not found".
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lusk/underseerr-data/internal/domain"
)

//
// Service contracts (context-aware)
//

// DiscoveryService defines media detail reads consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type DiscoveryService interface {
	// GetMovieDetails returns a movie with local request state reconciled in.
	GetMovieDetails(ctx context.Context, id int) (*domain.Movie, error)
	// GetTvShowDetails returns a TV show with local request state reconciled in.
	GetTvShowDetails(ctx context.Context, id int) (*domain.TvShow, error)
}

// mediaID parses and validates the :id path parameter.
func mediaID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "media id must be a positive integer")
		return 0, false
	}
	return id, true
}

// failFetch maps a detail-fetch error onto an HTTP response.
func failFetch(c *gin.Context, err error) {
	var ae *domain.AppError
	if errors.As(err, &ae) {
		switch {
		case ae.Class == domain.ErrClassConnectivity:
			fail(c, http.StatusServiceUnavailable, ErrCodeUpstreamFailed, "server unreachable and media not cached")
		case ae.StatusCode == http.StatusNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "media not found")
		default:
			fail(c, http.StatusBadGateway, ErrCodeUpstreamFailed, ae.Message)
		}
		return
	}
	fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
}

// GetMovie serves GET /movies/:id.
func (h *Handlers) GetMovie(c *gin.Context) {
	id, okID := mediaID(c)
	if !okID {
		return
	}
	m, err := h.discoverySvc.GetMovieDetails(c.Request.Context(), id)
	if err != nil {
		failFetch(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}

// GetTvShow serves GET /tv/:id.
func (h *Handlers) GetTvShow(c *gin.Context) {
	id, okID := mediaID(c)
	if !okID {
		return
	}
	t, err := h.discoverySvc.GetTvShowDetails(c.Request.Context(), id)
	if err != nil {
		failFetch(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}
