// Package services – reconciliation.
//
// After every successful detail fetch, the locally known request state for
// that media id is overlaid onto the server entity before it is cached or
// returned. A request submitted while offline is therefore immediately
// visible as "requested" even though the server has not seen it yet.
// Server-reported availability is authoritative and is never overridden
// downward.
package services

import "github.com/lusk/underseerr-data/internal/domain"

// DerivedStatus maps a local request state onto the media status it implies.
func DerivedStatus(s domain.RequestStatus) domain.MediaStatus {
	switch s {
	case domain.RequestStatusPending:
		return domain.MediaStatusPending
	case domain.RequestStatusApproved:
		return domain.MediaStatusProcessing
	case domain.RequestStatusAvailable, domain.RequestStatusCompleted:
		return domain.MediaStatusAvailable
	default:
		return domain.MediaStatusUnknown
	}
}

// reconcileInfo overlays the derived status and request id onto the server
// MediaInfo, constructing one when the server reported none. It returns the
// input untouched when there is no local request or the server already
// reports the media as available.
func reconcileInfo(info *domain.MediaInfo, local *domain.MediaRequest) *domain.MediaInfo {
	if local == nil {
		return info
	}
	if info != nil && info.Status == domain.MediaStatusAvailable {
		return info
	}

	out := domain.MediaInfo{}
	if info != nil {
		out = *info
	}
	out.Status = DerivedStatus(local.Status)
	id := local.ID
	out.RequestID = &id
	return &out
}

// ReconcileMovie returns the movie with local request state overlaid onto
// its MediaInfo. The input pointer is returned unchanged when no overlay
// applies.
func ReconcileMovie(m *domain.Movie, local *domain.MediaRequest) *domain.Movie {
	if m == nil {
		return nil
	}
	info := reconcileInfo(m.MediaInfo, local)
	if info == m.MediaInfo {
		return m
	}
	out := *m
	out.MediaInfo = info
	return &out
}

// ReconcileTvShow returns the TV show with local request state overlaid onto
// its MediaInfo.
func ReconcileTvShow(t *domain.TvShow, local *domain.MediaRequest) *domain.TvShow {
	if t == nil {
		return nil
	}
	info := reconcileInfo(t.MediaInfo, local)
	if info == t.MediaInfo {
		return t
	}
	out := *t
	out.MediaInfo = info
	return &out
}
