package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"Seasons/internal/model"
)

// ProfileRepository 用户档案存储
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByPublicID 按对外 ID 查询用户，无记录返回 (nil, nil)
func (r *ProfileRepository) FindByPublicID(ctx context.Context, publicID int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by public id: %w", err)
	}

	return &user, nil
}

func (r *ProfileRepository) FindByDeviceID(ctx context.Context, deviceID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by device id: %w", err)
	}

	return &user, nil
}

func (r *ProfileRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// UpdateByPublicID 按字段更新档案，updates 的 key 为列名
func (r *ProfileRepository) UpdateByPublicID(ctx context.Context, publicID int64, updates map[string]interface{}) error {
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("public_id = ?", publicID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	return nil
}

// IsUsernameAvailable 用户名可用性检查，忽略大小写
func (r *ProfileRepository) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("LOWER(username) = LOWER(?)", username).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check username availability: %w", err)
	}

	return count == 0, nil
}
