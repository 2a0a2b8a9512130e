// Package upstream implements the HTTP client for the media-request server.
//
// The client translates wire DTOs into domain types and classifies every
// failure into the error taxonomy the sync machinery depends on: transport
// failures and 5xx responses are connectivity errors (retry later, keep the
// queued intent), 4xx responses are permanent (the request as formulated
// will never succeed).
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lusk/underseerr-data/internal/config"
	"github.com/lusk/underseerr-data/internal/domain"
	"github.com/lusk/underseerr-data/internal/services"
)

const apiKeyHeader = "X-Api-Key"

// Client talks to the media-request server's v1 API.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient builds a Client from upstream configuration.
func NewClient(cfg config.UpstreamConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: cfg.Timeout},
	}
}

// compile-time interface check
var _ services.Transport = (*Client)(nil)

//
// Wire DTOs
//

type mediaInfoDTO struct {
	Status   int `json:"status"`
	Requests []struct {
		ID int `json:"id"`
	} `json:"requests"`
}

type movieDTO struct {
	ID           int           `json:"id"`
	Title        string        `json:"title"`
	Overview     string        `json:"overview"`
	PosterPath   *string       `json:"posterPath"`
	BackdropPath *string       `json:"backdropPath"`
	ReleaseDate  *string       `json:"releaseDate"`
	VoteAverage  float64       `json:"voteAverage"`
	MediaInfo    *mediaInfoDTO `json:"mediaInfo"`
}

type tvShowDTO struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Overview     string        `json:"overview"`
	PosterPath   *string       `json:"posterPath"`
	BackdropPath *string       `json:"backdropPath"`
	FirstAirDate *string       `json:"firstAirDate"`
	VoteAverage  float64       `json:"voteAverage"`
	MediaInfo    *mediaInfoDTO `json:"mediaInfo"`
}

type requestDTO struct {
	ID        int    `json:"id"`
	Type      string `json:"type"`
	Status    int    `json:"status"`
	CreatedAt int64  `json:"createdAt"`
	Media     struct {
		TmdbID     int     `json:"tmdbId"`
		Title      string  `json:"title"`
		PosterPath *string `json:"posterPath"`
	} `json:"media"`
	Seasons []struct {
		SeasonNumber int `json:"seasonNumber"`
	} `json:"seasons"`
}

type requestPageDTO struct {
	PageInfo struct {
		Results int `json:"results"`
	} `json:"pageInfo"`
	Results []requestDTO `json:"results"`
}

type submitBody struct {
	MediaType  string  `json:"mediaType"`
	MediaID    int     `json:"mediaId"`
	Seasons    []int   `json:"seasons,omitempty"`
	ProfileID  *int    `json:"profileId,omitempty"`
	RootFolder *string `json:"rootFolder,omitempty"`
}

//
// DTO translation
//

func (d *mediaInfoDTO) toDomain() *domain.MediaInfo {
	if d == nil {
		return nil
	}
	info := &domain.MediaInfo{
		Status:    domain.MediaStatus(d.Status),
		Available: domain.MediaStatus(d.Status) == domain.MediaStatusAvailable,
	}
	if len(d.Requests) > 0 {
		id := d.Requests[0].ID
		info.RequestID = &id
	}
	return info
}

func (d requestDTO) toDomain() domain.MediaRequest {
	mt := domain.MediaTypeMovie
	if d.Type == "tv" {
		mt = domain.MediaTypeTv
	}
	var seasons []int
	for _, s := range d.Seasons {
		seasons = append(seasons, s.SeasonNumber)
	}
	return domain.MediaRequest{
		ID:          d.ID,
		MediaType:   mt,
		MediaID:     d.Media.TmdbID,
		Title:       d.Media.Title,
		PosterPath:  d.Media.PosterPath,
		Status:      domain.RequestStatus(d.Status),
		RequestedAt: d.CreatedAt,
		Seasons:     seasons,
	}
}

//
// Transport implementation
//

// SubmitRequest creates a media request on the server.
func (c *Client) SubmitRequest(ctx context.Context, p services.SubmitParams) (*domain.MediaRequest, error) {
	body := submitBody{
		MediaType:  string(p.MediaType),
		MediaID:    p.MediaID,
		Seasons:    p.Seasons,
		ProfileID:  p.QualityProfile,
		RootFolder: p.RootFolder,
	}
	var dto requestDTO
	if err := c.do(ctx, http.MethodPost, "/api/v1/request", body, &dto); err != nil {
		return nil, err
	}
	r := dto.toDomain()
	return &r, nil
}

// DeleteRequest removes a request on the server. A 404 surfaces as a
// permanent error with StatusCode 404; callers decide whether that counts
// as success.
func (c *Client) DeleteRequest(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/request/%d", id), nil, nil)
}

// ListRequests fetches one page of the caller's requests.
func (c *Client) ListRequests(ctx context.Context, take, skip int) (*services.RequestPage, error) {
	var dto requestPageDTO
	path := fmt.Sprintf("/api/v1/request?take=%d&skip=%d&sort=added", take, skip)
	if err := c.do(ctx, http.MethodGet, path, nil, &dto); err != nil {
		return nil, err
	}
	page := &services.RequestPage{Total: dto.PageInfo.Results}
	for _, r := range dto.Results {
		page.Results = append(page.Results, r.toDomain())
	}
	return page, nil
}

// FetchMovie fetches movie details.
func (c *Client) FetchMovie(ctx context.Context, id int) (*domain.Movie, error) {
	var dto movieDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/movie/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	return &domain.Movie{
		ID:           dto.ID,
		Title:        dto.Title,
		Overview:     dto.Overview,
		PosterPath:   dto.PosterPath,
		BackdropPath: dto.BackdropPath,
		ReleaseDate:  dto.ReleaseDate,
		VoteAverage:  dto.VoteAverage,
		MediaInfo:    dto.MediaInfo.toDomain(),
	}, nil
}

// FetchTvShow fetches TV show details.
func (c *Client) FetchTvShow(ctx context.Context, id int) (*domain.TvShow, error) {
	var dto tvShowDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/tv/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	return &domain.TvShow{
		ID:           dto.ID,
		Name:         dto.Name,
		Overview:     dto.Overview,
		PosterPath:   dto.PosterPath,
		BackdropPath: dto.BackdropPath,
		FirstAirDate: dto.FirstAirDate,
		VoteAverage:  dto.VoteAverage,
		MediaInfo:    dto.MediaInfo.toDomain(),
	}, nil
}

// do executes one API call, classifying failures. out may be nil for calls
// whose response body is irrelevant.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return domain.ConnectivityError("server unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.PermanentError(resp.StatusCode, "malformed server response", err)
		}
		return nil
	case resp.StatusCode >= 500:
		// Server-side failures are treated like outages: the work is kept
		// and retried on the next pass.
		return domain.ConnectivityError(
			fmt.Sprintf("server error (%d)", resp.StatusCode), nil)
	default:
		return domain.PermanentError(resp.StatusCode,
			fmt.Sprintf("request rejected (%d %s)", resp.StatusCode, http.StatusText(resp.StatusCode)), nil)
	}
}
