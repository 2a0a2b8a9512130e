// Cache administration HTTP handlers.
//
// This file exposes REST endpoints for cache introspection and maintenance:
//   - GET    /cache/size
//   - POST   /cache/evict
//   - DELETE /cache/stale?age_ms=...
//   - DELETE /cache
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lusk/underseerr-data/internal/utils"
)

// CacheService defines cache maintenance operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CacheService interface {
	// EstimateSizeBytes reports the count-based footprint estimate.
	EstimateSizeBytes(ctx context.Context) (int64, error)
	// EvictLeastRecentlyUsed runs one eviction pass when over budget.
	EvictLeastRecentlyUsed(ctx context.Context) error
	// DeleteOlderThan purges entries cached before the cutoff (Unix millis).
	DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error)
	// ClearAllCaches drops every cached entry of both kinds.
	ClearAllCaches(ctx context.Context) error
}

// CacheSizeResponse reports the estimated cache footprint.
type CacheSizeResponse struct {
	EstimatedBytes int64 `json:"estimated_bytes"`
}

// PurgeResponse reports how many entries a purge removed.
type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// defaultStaleAge bounds DELETE /cache/stale when no age is given.
const defaultStaleAge = 7 * 24 * time.Hour

// GetCacheSize serves GET /cache/size.
func (h *Handlers) GetCacheSize(c *gin.Context) {
	size, err := h.cacheSvc.EstimateSizeBytes(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCacheFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, CacheSizeResponse{EstimatedBytes: size})
}

// EvictCache serves POST /cache/evict. The pass is a no-op while the cache
// sits under its budget.
func (h *Handlers) EvictCache(c *gin.Context) {
	if err := h.cacheSvc.EvictLeastRecentlyUsed(c.Request.Context()); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCacheFailed, err.Error())
		return
	}
	noContent(c)
}

// DeleteStaleCache serves DELETE /cache/stale. The age_ms query overrides
// the default seven-day horizon.
func (h *Handlers) DeleteStaleCache(c *gin.Context) {
	ageMs := utils.Atoi64Default(c.Query("age_ms"), defaultStaleAge.Milliseconds())
	if ageMs <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "age_ms must be a positive integer")
		return
	}
	cutoff := time.Now().UnixMilli() - ageMs
	deleted, err := h.cacheSvc.DeleteOlderThan(c.Request.Context(), cutoff)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCacheFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, PurgeResponse{Deleted: deleted})
}

// ClearCache serves DELETE /cache.
func (h *Handlers) ClearCache(c *gin.Context) {
	if err := h.cacheSvc.ClearAllCaches(c.Request.Context()); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCacheFailed, err.Error())
		return
	}
	noContent(c)
}
