// Package handlers defines HTTP-layer error codes used across all API
// endpoints. Codes are lowercase snake_case and form a stable,
// machine-readable taxonomy supplementing the human-readable messages.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeUpstreamFailed = "upstream_failed"
	ErrCodeRequestFailed  = "request_failed"
	ErrCodeCancelFailed   = "cancel_failed"
	ErrCodeListFailed     = "list_failed"
	ErrCodeCacheFailed    = "cache_failed"
)
