package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Seasons/internal/model"
)

// PreferencesRepository 单位偏好存储，每个用户一行
type PreferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Upsert 写入或覆盖用户的单位偏好
func (r *PreferencesRepository) Upsert(ctx context.Context, prefs *model.UnitPreferences) error {
	if prefs.UserID <= 0 {
		return fmt.Errorf("upsert preferences: user id must be positive")
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"body_weight_unit":      prefs.BodyWeightUnit,
				"load_unit":             prefs.LoadUnit,
				"distance_unit":         prefs.DistanceUnit,
				"body_measurement_unit": prefs.BodyMeasurementUnit,
				"updated_at":            time.Now(),
			}),
		}).
		Create(prefs).Error
	if err != nil {
		return fmt.Errorf("failed to upsert unit preferences: %w", err)
	}

	return nil
}

// FindByUserID 查询用户单位偏好，无记录返回 (nil, nil)
func (r *PreferencesRepository) FindByUserID(ctx context.Context, userID int64) (*model.UnitPreferences, error) {
	var prefs model.UnitPreferences
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&prefs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query unit preferences: %w", err)
	}

	return &prefs, nil
}
