package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"Seasons/internal/model"
)

// SeasonRepository 训练赛季存储
type SeasonRepository struct {
	db *gorm.DB
}

func NewSeasonRepository(db *gorm.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) Create(ctx context.Context, season *model.Season) error {
	if err := r.db.WithContext(ctx).Create(season).Error; err != nil {
		return fmt.Errorf("failed to create season: %w", err)
	}

	return nil
}

// FindActive 查询用户当前进行中的赛季，无记录返回 (nil, nil)
func (r *SeasonRepository) FindActive(ctx context.Context, userID int64) (*model.Season, error) {
	var season model.Season
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.SeasonStatusActive).
		Order("start_date DESC").
		First(&season).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query active season: %w", err)
	}

	return &season, nil
}

func (r *SeasonRepository) FindByID(ctx context.Context, userID int64, seasonID int64) (*model.Season, error) {
	var season model.Season
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", seasonID, userID).
		First(&season).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query season: %w", err)
	}

	return &season, nil
}

func (r *SeasonRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*model.Season, error) {
	var seasons []*model.Season
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&seasons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}

	return seasons, nil
}

// HasOverlap 检查新区间 [start, end) 是否与用户已有的进行中赛季重叠
func (r *SeasonRepository) HasOverlap(ctx context.Context, userID int64, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Season{}).
		Where("user_id = ? AND status = ?", userID, model.SeasonStatusActive).
		Where("start_date < ? AND (start_date + duration_weeks * INTERVAL '7 days') > ?", end, start).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check season overlap: %w", err)
	}

	return count > 0, nil
}

// UpdateStatus 更新赛季状态，限定归属用户
func (r *SeasonRepository) UpdateStatus(ctx context.Context, userID int64, seasonID int64, status model.SeasonStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Season{}).
		Where("id = ? AND user_id = ?", seasonID, userID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update season status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
