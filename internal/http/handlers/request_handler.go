// Request HTTP handlers.
//
// This file exposes REST endpoints for the media request lifecycle:
//   - POST   /requests            (submit, queues offline on connectivity failure)
//   - GET    /requests            (list, paginated, status filter, ETag support)
//   - GET    /requests/{id}
//   - DELETE /requests/{id}       (cancel locally and on the server)
//   - POST   /requests/refresh    (pull server state into the local store)
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lusk/underseerr-data/internal/domain"
	"github.com/lusk/underseerr-data/internal/repo"
	"github.com/lusk/underseerr-data/internal/services"
	"github.com/lusk/underseerr-data/internal/utils"
)

// RequestService defines media request operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RequestService interface {
	// RequestMovie submits a movie request with offline fallback.
	RequestMovie(ctx context.Context, p services.SubmitParams) (*domain.MediaRequest, error)
	// RequestTvShow submits a TV show request with offline fallback.
	RequestTvShow(ctx context.Context, p services.SubmitParams) (*domain.MediaRequest, error)
	// CancelRequest removes a request locally and, for confirmed rows, remotely.
	CancelRequest(ctx context.Context, id int) error
	// GetRequest returns one locally known request.
	GetRequest(ctx context.Context, id int) (*domain.MediaRequest, error)
	// ListRequestsPage returns a page of locally known requests, newest first.
	ListRequestsPage(ctx context.Context, offset, limit int) ([]domain.MediaRequest, error)
	// ListRequestsByStatus filters the request list by lifecycle state.
	ListRequestsByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.MediaRequest, error)
	// RefreshRequests pulls one server page into the local store.
	RefreshRequests(ctx context.Context, page, pageSize int) (int, int, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for media details, requests, and cache
// administration. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	discoverySvc DiscoveryService
	requestSvc   RequestService
	cacheSvc     CacheService

	// db backs the best-effort ETag pre-check on list endpoints.
	db *gorm.DB
}

// New constructs a Handlers instance bound to the given services.
func New(d DiscoveryService, r RequestService, cache CacheService, db *gorm.DB) *Handlers {
	return &Handlers{discoverySvc: d, requestSvc: r, cacheSvc: cache, db: db}
}

//
// DTOs
//

// SubmitRequestBody is the JSON payload for creating a media request.
type SubmitRequestBody struct {
	MediaType      string  `json:"media_type" binding:"required,oneof=movie tv"`
	MediaID        int     `json:"media_id"   binding:"required,gt=0"`
	Seasons        []int   `json:"seasons,omitempty"`
	QualityProfile *int    `json:"quality_profile,omitempty"`
	RootFolder     *string `json:"root_folder,omitempty"`
}

// RefreshRequestBody is the JSON payload for POST /requests/refresh.
type RefreshRequestBody struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// RefreshResponse reports the outcome of a refresh call.
type RefreshResponse struct {
	Fetched int `json:"fetched"`
	Total   int `json:"total"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// ListRequestsResponse wraps a page of requests and pagination information.
type ListRequestsResponse struct {
	Requests   []domain.MediaRequest `json:"requests"`
	Pagination Pagination            `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// parseStatus maps the optional status query param onto a RequestStatus.
func parseStatus(s string) (domain.RequestStatus, bool) {
	switch s {
	case "pending":
		return domain.RequestStatusPending, true
	case "approved":
		return domain.RequestStatusApproved, true
	case "declined":
		return domain.RequestStatusDeclined, true
	case "available":
		return domain.RequestStatusAvailable, true
	}
	return 0, false
}

//
// Handlers
//

// SubmitRequest serves POST /requests. A 202 response carries a placeholder
// row meaning the request was queued for later submission; 201 means the
// server accepted it directly.
func (h *Handlers) SubmitRequest(c *gin.Context) {
	var body SubmitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p := services.SubmitParams{
		MediaID:        body.MediaID,
		Seasons:        body.Seasons,
		QualityProfile: body.QualityProfile,
		RootFolder:     body.RootFolder,
	}

	var (
		created *domain.MediaRequest
		err     error
	)
	if body.MediaType == "tv" {
		created, err = h.requestSvc.RequestTvShow(c.Request.Context(), p)
	} else {
		created, err = h.requestSvc.RequestMovie(c.Request.Context(), p)
	}
	if err != nil {
		var ae *domain.AppError
		if errors.As(err, &ae) && ae.Class == domain.ErrClassPermanent {
			fail(c, http.StatusBadGateway, ErrCodeRequestFailed, ae.Message)
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeRequestFailed, err.Error())
		return
	}

	status := http.StatusCreated
	if created.IsOfflineQueued {
		status = http.StatusAccepted
	}
	ok(c, status, created)
}

// ListRequests serves GET /requests. A status query filters by lifecycle
// state (unpaginated); otherwise the endpoint paginates with a weak ETag
// derived from the row count and newest timestamp.
func (h *Handlers) ListRequests(c *gin.Context) {
	ctx := c.Request.Context()

	if s := c.Query("status"); s != "" {
		status, okStatus := parseStatus(s)
		if !okStatus {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be one of: pending, approved, declined, available")
			return
		}
		items, err := h.requestSvc.ListRequestsByStatus(ctx, status)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
			return
		}
		ok(c, http.StatusOK, gin.H{"requests": items})
		return
	}

	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	count, newest, err := repo.RequestsStats(ctx, h.db)
	if err == nil {
		etag := fmt.Sprintf(`W/"requests:%d:%d"`, count, newest)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.requestSvc.ListRequestsPage(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListRequestsResponse{
		Requests: items,
		Pagination: Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    count,
		},
	})
}

// GetRequest serves GET /requests/:id. Negative ids address placeholder
// rows.
func (h *Handlers) GetRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request id must be a non-zero integer")
		return
	}
	r, err := h.requestSvc.GetRequest(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, r)
}

// CancelRequest serves DELETE /requests/:id.
func (h *Handlers) CancelRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request id must be a non-zero integer")
		return
	}
	if err := h.requestSvc.CancelRequest(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
		case domain.IsConnectivity(err):
			fail(c, http.StatusServiceUnavailable, ErrCodeCancelFailed, "server unreachable")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCancelFailed, err.Error())
		}
		return
	}
	noContent(c)
}

// RefreshRequests serves POST /requests/refresh.
func (h *Handlers) RefreshRequests(c *gin.Context) {
	var body RefreshRequestBody
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	fetched, total, err := h.requestSvc.RefreshRequests(c.Request.Context(), body.Page, body.PageSize)
	if err != nil {
		if domain.IsConnectivity(err) {
			fail(c, http.StatusServiceUnavailable, ErrCodeUpstreamFailed, "server unreachable")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, RefreshResponse{Fetched: fetched, Total: total})
}
