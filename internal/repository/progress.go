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

// ProgressRepository 引导进度存储，每个用户至多一行。
// user_id 上的唯一约束加 ON CONFLICT 覆盖写，保证并发下也不会出现重复行。
type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Upsert 写入或覆盖用户的当前进度，返回记录 ID。
// completed_at 每次重写，语义上是「最近一次完成步骤的时间」。
func (r *ProgressRepository) Upsert(ctx context.Context, userID int64, stepName string, stepNumber int) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("upsert progress: user id must be positive")
	}
	if stepName == "" {
		return 0, fmt.Errorf("upsert progress: step name must not be empty")
	}

	now := time.Now()
	record := model.OnboardingProgress{
		UserID:            userID,
		CurrentStepName:   stepName,
		CurrentStepNumber: stepNumber,
		CompletedAt:       now,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"current_step_name":   stepName,
				"current_step_number": stepNumber,
				"completed_at":        now,
				"updated_at":          now,
			}),
		}).
		Create(&record).Error
	if err != nil {
		return 0, fmt.Errorf("failed to upsert onboarding progress: %w", err)
	}

	return record.ID, nil
}

// FindByUserID 查询用户进度，无记录返回 (nil, nil)，新用户没有进度是正常状态
func (r *ProgressRepository) FindByUserID(ctx context.Context, userID int64) (*model.OnboardingProgress, error) {
	var record model.OnboardingProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query onboarding progress: %w", err)
	}

	return &record, nil
}

// HasCompleted 完成判定：无记录为 false，否则比较步骤序号与总步数
func (r *ProgressRepository) HasCompleted(ctx context.Context, userID int64, totalSteps int) (bool, error) {
	record, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}

	return record.CurrentStepNumber >= totalSteps, nil
}

// Delete 删除用户进度，幂等，仅供管理操作和测试清理使用
func (r *ProgressRepository) Delete(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).
		Unscoped().
		Where("user_id = ?", userID).
		Delete(&model.OnboardingProgress{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete onboarding progress: %w", err)
	}

	return nil
}

// ListStalled 查询停滞在引导中途的进度记录（用于定时提醒任务）：
// 未完成且自 before 之后没有任何推进。
func (r *ProgressRepository) ListStalled(ctx context.Context, before time.Time, totalSteps int, limit int) ([]*model.OnboardingProgress, error) {
	var records []*model.OnboardingProgress
	err := r.db.WithContext(ctx).
		Where("current_step_number < ?", totalSteps).
		Where("updated_at < ?", before).
		Order("updated_at ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stalled onboarding progress: %w", err)
	}

	return records, nil
}
