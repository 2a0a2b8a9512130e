// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the durable tables behind the media
// cache: one table per cacheable kind (movies, TV shows), each supporting
// upsert, point lookup, count, oldest-N retrieval, and age/row deletion.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lusk/underseerr-data/internal/domain"
)

// UpsertMovie inserts or replaces a cached movie row.
func UpsertMovie(ctx context.Context, db *gorm.DB, m *domain.Movie) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
}

// UpsertMovies inserts or replaces a batch of cached movie rows.
func UpsertMovies(ctx context.Context, db *gorm.DB, ms []domain.Movie) error {
	if len(ms) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&ms).Error
}

// GetMovie fetches a cached movie by id; ErrNotFound when absent.
func GetMovie(ctx context.Context, db *gorm.DB, id int) (*domain.Movie, error) {
	var m domain.Movie
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// CountMovies returns the number of cached movie rows.
func CountMovies(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Movie{}).Count(&n).Error
	return n, err
}

// OldestMovies returns up to n movies ordered by CachedAt ascending
// (ties broken by id for a stable order within one eviction pass).
func OldestMovies(ctx context.Context, db *gorm.DB, n int) ([]domain.Movie, error) {
	var out []domain.Movie
	err := db.WithContext(ctx).
		Order("cached_at ASC, id ASC").
		Limit(n).
		Find(&out).Error
	return out, err
}

// DeleteMovieByID removes one cached movie row. Missing rows are a no-op.
func DeleteMovieByID(ctx context.Context, db *gorm.DB, id int) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Movie{}).Error
}

// DeleteMoviesOlderThan removes all movie rows with CachedAt before cutoff
// (Unix milliseconds) and returns the number of rows removed.
func DeleteMoviesOlderThan(ctx context.Context, db *gorm.DB, cutoff int64) (int64, error) {
	res := db.WithContext(ctx).Where("cached_at < ?", cutoff).Delete(&domain.Movie{})
	return res.RowsAffected, res.Error
}

// DeleteAllMovies clears the movie cache table.
func DeleteAllMovies(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Where("1 = 1").Delete(&domain.Movie{}).Error
}

// UpsertTvShow inserts or replaces a cached TV show row.
func UpsertTvShow(ctx context.Context, db *gorm.DB, t *domain.TvShow) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(t).Error
}

// UpsertTvShows inserts or replaces a batch of cached TV show rows.
func UpsertTvShows(ctx context.Context, db *gorm.DB, ts []domain.TvShow) error {
	if len(ts) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&ts).Error
}

// GetTvShow fetches a cached TV show by id; ErrNotFound when absent.
func GetTvShow(ctx context.Context, db *gorm.DB, id int) (*domain.TvShow, error) {
	var t domain.TvShow
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// CountTvShows returns the number of cached TV show rows.
func CountTvShows(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.TvShow{}).Count(&n).Error
	return n, err
}

// OldestTvShows returns up to n TV shows ordered by CachedAt ascending.
func OldestTvShows(ctx context.Context, db *gorm.DB, n int) ([]domain.TvShow, error) {
	var out []domain.TvShow
	err := db.WithContext(ctx).
		Order("cached_at ASC, id ASC").
		Limit(n).
		Find(&out).Error
	return out, err
}

// DeleteTvShowByID removes one cached TV show row. Missing rows are a no-op.
func DeleteTvShowByID(ctx context.Context, db *gorm.DB, id int) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.TvShow{}).Error
}

// DeleteTvShowsOlderThan removes all TV show rows with CachedAt before
// cutoff (Unix milliseconds) and returns the number of rows removed.
func DeleteTvShowsOlderThan(ctx context.Context, db *gorm.DB, cutoff int64) (int64, error) {
	res := db.WithContext(ctx).Where("cached_at < ?", cutoff).Delete(&domain.TvShow{})
	return res.RowsAffected, res.Error
}

// DeleteAllTvShows clears the TV show cache table.
func DeleteAllTvShows(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Where("1 = 1").Delete(&domain.TvShow{}).Error
}
