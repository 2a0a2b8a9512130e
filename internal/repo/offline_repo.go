// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the durable FIFO behind the offline
// write queue. Rows are returned in insertion order (autoincrement id) and
// deleted individually once the server confirms the submission.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/lusk/underseerr-data/internal/domain"
)

// EnqueueOfflineRequest appends a write intent to the queue.
func EnqueueOfflineRequest(ctx context.Context, db *gorm.DB, r *domain.OfflineRequest) error {
	return db.WithContext(ctx).Create(r).Error
}

// ListOfflineRequests returns all queued intents in FIFO order.
func ListOfflineRequests(ctx context.Context, db *gorm.DB) ([]domain.OfflineRequest, error) {
	var out []domain.OfflineRequest
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// CountOfflineRequests returns the queue depth.
func CountOfflineRequests(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.OfflineRequest{}).Count(&n).Error
	return n, err
}

// DeleteOfflineRequestByID removes one queued intent.
func DeleteOfflineRequestByID(ctx context.Context, db *gorm.DB, id int) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.OfflineRequest{}).Error
}

// DeleteOfflineRequestsByMediaID removes every queued intent for a media id.
// Used when a locally queued request is cancelled before it ever synced.
func DeleteOfflineRequestsByMediaID(ctx context.Context, db *gorm.DB, mediaID int) error {
	return db.WithContext(ctx).Where("media_id = ?", mediaID).Delete(&domain.OfflineRequest{}).Error
}
