// Package services – transport contract.
//
// The network client talking to the media server is an external
// collaborator; the engine consumes it through this interface only. Every
// returned error must carry a domain.AppError classification so the write
// path can distinguish "queue it for later" (connectivity) from "tell the
// user now" (permanent).
package services

import (
	"context"

	"github.com/lusk/underseerr-data/internal/domain"
)

// SubmitParams carries one media request submission. Optional selections
// stay pointers so "absent" is distinguishable from zero; Seasons is nil for
// movies and may be domain.AllSeasons when partial requests are disabled.
type SubmitParams struct {
	MediaType      domain.MediaType
	MediaID        int
	Seasons        []int
	QualityProfile *int
	RootFolder     *string
}

// RequestPage is one page of server-side request records.
type RequestPage struct {
	Results []domain.MediaRequest
	// Total is the number of requests on the server across all pages.
	Total int
}

// Transport is the network path to the media server.
//
// Implementations must bound every call with their own timeout; an expired
// timeout is classified as a connectivity failure.
type Transport interface {
	// SubmitRequest submits a media request and returns the
	// server-confirmed record (positive id).
	SubmitRequest(ctx context.Context, p SubmitParams) (*domain.MediaRequest, error)

	// DeleteRequest cancels a server-side request by id.
	DeleteRequest(ctx context.Context, id int) error

	// ListRequests fetches a page of the user's server-side requests.
	ListRequests(ctx context.Context, take, skip int) (*RequestPage, error)

	// FetchMovie retrieves current movie details from the server.
	FetchMovie(ctx context.Context, id int) (*domain.Movie, error)

	// FetchTvShow retrieves current TV show details from the server.
	FetchTvShow(ctx context.Context, id int) (*domain.TvShow, error)
}
