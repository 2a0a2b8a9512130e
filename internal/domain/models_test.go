package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestPlaceholderID(t *testing.T) {
	if got := PlaceholderID(42); got != -42 {
		t.Fatalf("PlaceholderID(42) = %d", got)
	}
	r := MediaRequest{ID: PlaceholderID(42)}
	if !r.IsPlaceholder() {
		t.Fatal("negative id must be a placeholder")
	}
	if (MediaRequest{ID: 812}).IsPlaceholder() {
		t.Fatal("positive id must not be a placeholder")
	}
}

func TestStatusStrings(t *testing.T) {
	if MediaStatusPartiallyAvailable.String() != "partially_available" {
		t.Fatalf("media status: %s", MediaStatusPartiallyAvailable)
	}
	if MediaStatus(99).String() != "unknown" {
		t.Fatalf("out-of-range media status: %s", MediaStatus(99))
	}
	if RequestStatusDeclined.String() != "declined" {
		t.Fatalf("request status: %s", RequestStatusDeclined)
	}
	if RequestStatusCompleted.String() != "completed" {
		t.Fatalf("request status: %s", RequestStatusCompleted)
	}
}

func TestAppError_ClassChecks(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := ConnectivityError("server unreachable", cause)

	if !IsConnectivity(err) || IsPermanent(err) || IsStorage(err) {
		t.Fatalf("wrong classification: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause must unwrap")
	}

	wrapped := fmt.Errorf("submit: %w", PermanentError(409, "already requested", nil))
	if !IsPermanent(wrapped) {
		t.Fatalf("classification must survive wrapping: %v", wrapped)
	}
	var ae *AppError
	if !errors.As(wrapped, &ae) || ae.StatusCode != 409 {
		t.Fatalf("status code lost: %v", wrapped)
	}

	if IsConnectivity(errors.New("plain")) {
		t.Fatal("untyped errors have no class")
	}
}
