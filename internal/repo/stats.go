// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides cheap aggregate queries used for
// conditional responses (ETags) and cache size estimation.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/lusk/underseerr-data/internal/domain"
)

// RequestsStats returns the request row count and the newest RequestedAt
// (zero when the table is empty). Together they form a cheap change marker
// for weak ETags on request listings.
func RequestsStats(ctx context.Context, db *gorm.DB) (count int64, newest int64, err error) {
	if err = db.WithContext(ctx).Model(&domain.MediaRequest{}).Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}
	row := db.WithContext(ctx).
		Model(&domain.MediaRequest{}).
		Select("MAX(requested_at)").
		Row()
	if err = row.Scan(&newest); err != nil {
		return 0, 0, err
	}
	return count, newest, nil
}

// CacheCounts returns the per-kind cached row counts in one call; the
// eviction policy consumes these.
func CacheCounts(ctx context.Context, db *gorm.DB) (movies, tvShows int64, err error) {
	if movies, err = CountMovies(ctx, db); err != nil {
		return 0, 0, err
	}
	if tvShows, err = CountTvShows(ctx, db); err != nil {
		return 0, 0, err
	}
	return movies, tvShows, nil
}
