package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/echotube/echotube/internal/models"
)

func (r *GormRepo) GetConfig(ctx context.Context, key string) (*models.ConfigEntry, error) {
	var entry models.ConfigEntry
	if err := r.DB.WithContext(ctx).Where("key = ?", key).First(&entry).Error; err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}

// SetConfig upserts a key/value entry.
func (r *GormRepo) SetConfig(ctx context.Context, key string, value any) error {
	var entry models.ConfigEntry
	err := r.DB.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = models.ConfigEntry{Key: key, Value: value}
		return r.DB.WithContext(ctx).Create(&entry).Error
	}
	if err != nil {
		return err
	}
	entry.Value = value
	entry.UpdatedAt = time.Now()
	return r.DB.WithContext(ctx).Save(&entry).Error
}

func (r *GormRepo) ListConfigs(ctx context.Context) ([]models.ConfigEntry, error) {
	var entries []models.ConfigEntry
	if err := r.DB.WithContext(ctx).Order("key ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ReplaceConfigs mirrors ReplaceVideos for the configs collection.
func (r *GormRepo) ReplaceConfigs(ctx context.Context, entries []models.ConfigEntry) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ConfigEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		for i := range entries {
			entries[i].ID = 0
		}
		return tx.Create(&entries).Error
	})
}
