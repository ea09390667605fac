package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/echotube/echotube/internal/models"
)

func (r *GormRepo) CreateVideo(ctx context.Context, video *models.Video) error {
	return r.DB.WithContext(ctx).Create(video).Error
}

func (r *GormRepo) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&video).Error; err != nil {
		return nil, notFound(err)
	}
	return &video, nil
}

// ListVideos returns videos newest-first. A non-empty ownerID narrows the
// listing to that creator (owner-scoped listings for authors).
func (r *GormRepo) ListVideos(ctx context.Context, ownerID string) ([]models.Video, error) {
	q := r.DB.WithContext(ctx).Model(&models.Video{}).Order("created_at DESC")
	if ownerID != "" {
		q = q.Where("created_by = ?", ownerID)
	}
	var videos []models.Video
	if err := q.Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *GormRepo) SaveVideo(ctx context.Context, video *models.Video) error {
	return r.DB.WithContext(ctx).Save(video).Error
}

func (r *GormRepo) DeleteVideo(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Video{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendCheckIn adds one record to a video's check-in log. The log is
// append-only; a second check-in on the same day stores a second record.
// Read and write run in one transaction so concurrent check-ins cannot
// overwrite each other's records.
func (r *GormRepo) AppendCheckIn(ctx context.Context, id string, step int, at time.Time) (*models.Video, error) {
	var video models.Video
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&video).Error; err != nil {
			return notFound(err)
		}
		video.CheckInRecords = append(video.CheckInRecords, models.CheckInRecord{Date: at, Step: step})
		return tx.Save(&video).Error
	})
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// SearchVideosSQL is the store-side fallback used when no search index is
// configured. Case-insensitive substring match over title and subtitles.
func (r *GormRepo) SearchVideosSQL(ctx context.Context, query, ownerID string) ([]models.Video, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	q := r.DB.WithContext(ctx).Model(&models.Video{}).
		Where("LOWER(title) LIKE ? OR LOWER(subtitles) LIKE ?", pattern, pattern).
		Order("created_at DESC")
	if ownerID != "" {
		q = q.Where("created_by = ?", ownerID)
	}
	var videos []models.Video
	if err := q.Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// ReplaceVideos performs the destructive restore for the videos collection:
// delete-all then insert-all inside one transaction, so a failed import can
// never leave the collection empty.
func (r *GormRepo) ReplaceVideos(ctx context.Context, videos []models.Video) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Video{}).Error; err != nil {
			return err
		}
		if len(videos) == 0 {
			return nil
		}
		return tx.Create(&videos).Error
	})
}
