// Package domain defines the persistence models for cached catalog media,
// media requests, and offline-queued write intents. These types are mapped
// with GORM and form the core data layer of the application.
package domain

// MediaType distinguishes the two cacheable catalog kinds.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTv    MediaType = "tv"
)

// MediaStatus is the server-reported availability of a catalog entity.
// The numeric codes mirror the media server's wire values.
type MediaStatus int

const (
	MediaStatusUnknown            MediaStatus = 1
	MediaStatusPending            MediaStatus = 2
	MediaStatusProcessing         MediaStatus = 3
	MediaStatusPartiallyAvailable MediaStatus = 4
	MediaStatusAvailable          MediaStatus = 5
)

// String returns the canonical name of the status.
func (s MediaStatus) String() string {
	switch s {
	case MediaStatusPending:
		return "pending"
	case MediaStatusProcessing:
		return "processing"
	case MediaStatusPartiallyAvailable:
		return "partially_available"
	case MediaStatusAvailable:
		return "available"
	default:
		return "unknown"
	}
}

// RequestStatus is the lifecycle state of a media request. The numeric
// codes mirror the media server's wire values.
type RequestStatus int

const (
	RequestStatusPending   RequestStatus = 1
	RequestStatusApproved  RequestStatus = 2
	RequestStatusDeclined  RequestStatus = 3
	RequestStatusAvailable RequestStatus = 4
	RequestStatusCompleted RequestStatus = 5
)

// String returns the canonical name of the status.
func (s RequestStatus) String() string {
	switch s {
	case RequestStatusPending:
		return "pending"
	case RequestStatusApproved:
		return "approved"
	case RequestStatusDeclined:
		return "declined"
	case RequestStatusAvailable:
		return "available"
	case RequestStatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MediaInfo carries the server-reported request/availability state embedded
// in a catalog entity. Absent MediaInfo means the server knows nothing about
// the media (never requested, not in the library).
//
// Invariant: once Status is MediaStatusAvailable from the network, local
// reconciliation must never downgrade it.
type MediaInfo struct {
	Status    MediaStatus `json:"status"`
	RequestID *int        `json:"request_id,omitempty"`
	Available bool        `json:"available"`
}

// Movie is a cached catalog movie.
//
// Fields:
//   - ID: server-assigned identifier (primary key, unique per kind).
//   - MediaInfo: optional server request/availability state, stored as a
//     JSON column so absence stays distinguishable from zero values.
//   - CachedAt: Unix milliseconds of the last insert/update. Set on every
//     write and never on read, so eviction order is oldest-write-first.
type Movie struct {
	ID           int        `json:"id"            gorm:"primaryKey"`
	Title        string     `json:"title"         gorm:"type:varchar(512);not null"`
	Overview     string     `json:"overview"      gorm:"type:text"`
	PosterPath   *string    `json:"poster_path,omitempty"`
	BackdropPath *string    `json:"backdrop_path,omitempty"`
	ReleaseDate  *string    `json:"release_date,omitempty"`
	VoteAverage  float64    `json:"vote_average"`
	MediaInfo    *MediaInfo `json:"media_info,omitempty" gorm:"serializer:json"`
	CachedAt     int64      `json:"cached_at"     gorm:"index;not null"`
}

// TableName returns the database table name for Movie.
func (Movie) TableName() string { return "movies" }

// TvShow is a cached catalog TV show. See Movie for field semantics;
// FirstAirDate takes the place of a movie's release date.
type TvShow struct {
	ID           int        `json:"id"             gorm:"primaryKey"`
	Name         string     `json:"name"           gorm:"type:varchar(512);not null"`
	Overview     string     `json:"overview"       gorm:"type:text"`
	PosterPath   *string    `json:"poster_path,omitempty"`
	BackdropPath *string    `json:"backdrop_path,omitempty"`
	FirstAirDate *string    `json:"first_air_date,omitempty"`
	VoteAverage  float64    `json:"vote_average"`
	MediaInfo    *MediaInfo `json:"media_info,omitempty" gorm:"serializer:json"`
	CachedAt     int64      `json:"cached_at"      gorm:"index;not null"`
}

// TableName returns the database table name for TvShow.
func (TvShow) TableName() string { return "tv_shows" }

// MediaRequest is a locally known media request, either confirmed by the
// server or a not-yet-synced local placeholder.
//
// Key semantics: a positive ID is a server-confirmed request. A negative ID
// is a locally originated placeholder using -MediaID as a deterministic key,
// so at most one unsynced placeholder can exist per media id. When the
// offline queue flushes, the placeholder row is deleted and the
// server-confirmed row inserted, never leaving two rows for one request.
type MediaRequest struct {
	ID              int           `json:"id"          gorm:"primaryKey"`
	MediaType       MediaType     `json:"media_type"  gorm:"type:varchar(8);not null"`
	MediaID         int           `json:"media_id"    gorm:"index;not null"`
	Title           string        `json:"title"       gorm:"type:varchar(512);not null"`
	PosterPath      *string       `json:"poster_path,omitempty"`
	Status          RequestStatus `json:"status"      gorm:"index;not null"`
	RequestedAt     int64         `json:"requested_at" gorm:"index;not null"`
	Seasons         []int         `json:"seasons,omitempty" gorm:"serializer:json"`
	IsOfflineQueued bool          `json:"is_offline_queued"`
}

// TableName returns the database table name for MediaRequest.
func (MediaRequest) TableName() string { return "user_requests" }

// IsPlaceholder reports whether the request is a local, not-yet-synced
// placeholder (negative id).
func (r MediaRequest) IsPlaceholder() bool { return r.ID < 0 }

// PlaceholderID returns the deterministic placeholder key for a media id.
func PlaceholderID(mediaID int) int { return -mediaID }

// AllSeasons is the seasons sentinel meaning "request every season"; it is
// sent when the server has partial requests disabled.
var AllSeasons = []int{0}

// OfflineRequest is a queued write intent created when a submission attempt
// failed for a connectivity reason. Rows are drained in insertion order and
// deleted only after the server confirms the submission.
type OfflineRequest struct {
	ID             int       `json:"id"          gorm:"primaryKey;autoIncrement"`
	MediaType      MediaType `json:"media_type"  gorm:"type:varchar(8);not null"`
	MediaID        int       `json:"media_id"    gorm:"index;not null"`
	Seasons        []int     `json:"seasons,omitempty" gorm:"serializer:json"`
	QualityProfile *int      `json:"quality_profile,omitempty"`
	RootFolder     *string   `json:"root_folder,omitempty"`
	CreatedAt      int64     `json:"created_at"  gorm:"index;not null"`
}

// TableName returns the database table name for OfflineRequest.
func (OfflineRequest) TableName() string { return "offline_requests" }
