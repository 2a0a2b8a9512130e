// Package services defines the business logic of the cache and offline
// request engine. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer. Transport and storage failures carry a
// domain.AppError classification instead.
package services

import "errors"

var (
	// ErrNotCached indicates that the requested entity has no row in the
	// local cache. On the read path it means a connectivity failure cannot
	// be masked and must surface as-is.
	ErrNotCached = errors.New("media not cached")

	// ErrRequestNotFound indicates that no local request row exists for the
	// given id or media id.
	ErrRequestNotFound = errors.New("request not found")
)
