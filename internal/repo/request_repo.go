// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for locally known
// media requests (server-confirmed rows and negative-id placeholders).
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lusk/underseerr-data/internal/domain"
)

// UpsertRequest inserts or replaces a request row by id.
func UpsertRequest(ctx context.Context, db *gorm.DB, r *domain.MediaRequest) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(r).Error
}

// UpsertRequests inserts or replaces a batch of request rows.
func UpsertRequests(ctx context.Context, db *gorm.DB, rs []domain.MediaRequest) error {
	if len(rs) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rs).Error
}

// GetRequest fetches a request by id; ErrNotFound when absent.
func GetRequest(ctx context.Context, db *gorm.DB, id int) (*domain.MediaRequest, error) {
	var r domain.MediaRequest
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// GetRequestByMediaID returns the active request for a media id, or
// ErrNotFound. A media id has at most one active request at a time; the
// LIMIT guards against transient duplicates during a sync promotion.
func GetRequestByMediaID(ctx context.Context, db *gorm.DB, mediaID int) (*domain.MediaRequest, error) {
	var r domain.MediaRequest
	err := db.WithContext(ctx).
		Where("media_id = ?", mediaID).
		Limit(1).
		Find(&r).Error
	if err != nil {
		return nil, err
	}
	if r.ID == 0 {
		return nil, ErrNotFound
	}
	return &r, nil
}

// ListRequests returns request rows newest-first.
func ListRequests(ctx context.Context, db *gorm.DB) ([]domain.MediaRequest, error) {
	var out []domain.MediaRequest
	err := db.WithContext(ctx).
		Order("requested_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListRequestsPage returns a page of request rows newest-first.
func ListRequestsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.MediaRequest, error) {
	var out []domain.MediaRequest
	err := db.WithContext(ctx).
		Order("requested_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListRequestsByStatus returns request rows with the given status,
// newest-first.
func ListRequestsByStatus(ctx context.Context, db *gorm.DB, status domain.RequestStatus) ([]domain.MediaRequest, error) {
	var out []domain.MediaRequest
	err := db.WithContext(ctx).
		Where("status = ?", status).
		Order("requested_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// CountRequests returns the total number of request rows.
func CountRequests(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.MediaRequest{}).Count(&n).Error
	return n, err
}

// DeleteRequestByID removes one request row. Missing rows are a no-op.
func DeleteRequestByID(ctx context.Context, db *gorm.DB, id int) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.MediaRequest{}).Error
}

// DeleteAllRequests clears the request table.
func DeleteAllRequests(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Where("1 = 1").Delete(&domain.MediaRequest{}).Error
}
