// Package domain – error taxonomy.
//
// Every failure crossing a component boundary is classified so callers can
// branch on the class rather than inspect messages:
//
//   - Connectivity: network unreachable or timed out. Write paths react by
//     queueing the intent offline; read paths fall back to the cache.
//   - Permanent: the server rejected the operation (validation, permission,
//     not found, 4xx). Surfaced immediately, never queued.
//   - Storage: a local table operation failed. Fatal to the current
//     operation; no retry is defined for local storage faults.
package domain

import (
	"errors"
	"fmt"
)

// ErrorClass partitions failures by how the data layer reacts to them.
type ErrorClass int

const (
	ErrClassConnectivity ErrorClass = iota + 1
	ErrClassPermanent
	ErrClassStorage
)

// String returns the canonical name of the class.
func (c ErrorClass) String() string {
	switch c {
	case ErrClassConnectivity:
		return "connectivity"
	case ErrClassPermanent:
		return "permanent"
	case ErrClassStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// AppError is the typed error carried across every boundary of the data
// layer. StatusCode is the HTTP status when the failure originated from the
// transport, zero otherwise.
type AppError struct {
	Class      ErrorClass
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Class, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *AppError) Unwrap() error { return e.Err }

// ConnectivityError wraps a network-unreachable or timeout failure.
func ConnectivityError(msg string, cause error) *AppError {
	return &AppError{Class: ErrClassConnectivity, Message: msg, Err: cause}
}

// PermanentError wraps a server-side rejection with its HTTP status.
func PermanentError(status int, msg string, cause error) *AppError {
	return &AppError{Class: ErrClassPermanent, StatusCode: status, Message: msg, Err: cause}
}

// StorageError wraps a local table I/O failure.
func StorageError(msg string, cause error) *AppError {
	return &AppError{Class: ErrClassStorage, Message: msg, Err: cause}
}

// classOf extracts the class from an error chain, or zero when untyped.
func classOf(err error) ErrorClass {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Class
	}
	return 0
}

// IsConnectivity reports whether err is classified as a connectivity failure.
func IsConnectivity(err error) bool { return classOf(err) == ErrClassConnectivity }

// IsPermanent reports whether err is classified as a permanent failure.
func IsPermanent(err error) bool { return classOf(err) == ErrClassPermanent }

// IsStorage reports whether err is classified as a storage failure.
func IsStorage(err error) bool { return classOf(err) == ErrClassStorage }
