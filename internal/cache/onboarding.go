package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"Seasons/internal/model"
	"Seasons/storage/redis"
)

const (
	// 引导进度快照，读路径优先命中缓存，写路径随写更新
	progressPrefix          = "onboarding:progress"
	reminderScheduledPrefix = "onboarding:reminder:scheduled"
	messageProcessedPrefix  = "message:processed"

	progressTTL  = 6 * time.Hour
	reminderTTL  = 72 * time.Hour
	processedTTL = 48 * time.Hour
)

// Snapshots 把进度快照操作收拢成方法集，服务层按接口注入
type Snapshots struct{}

func (Snapshots) GetProgress(ctx context.Context, userID int64) (*model.OnboardingProgress, error) {
	return GetProgress(ctx, userID)
}

func (Snapshots) SetProgress(ctx context.Context, record *model.OnboardingProgress) error {
	return SetProgress(ctx, record)
}

func (Snapshots) DeleteProgress(ctx context.Context, userID int64) error {
	return DeleteProgress(ctx, userID)
}

// GetProgress 读取进度快照，缓存未命中返回 (nil, nil)
func GetProgress(ctx context.Context, userID int64) (*model.OnboardingProgress, error) {
	key := redis.Key(progressPrefix, fmt.Sprintf("%d", userID))
	raw, err := redis.Client().Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress cache: %w", err)
	}

	var record model.OnboardingProgress
	if err := json.Unmarshal(raw, &record); err != nil {
		// 快照损坏按未命中处理，回源数据库
		return nil, nil
	}
	return &record, nil
}

// SetProgress 写入进度快照
func SetProgress(ctx context.Context, record *model.OnboardingProgress) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal progress cache: %w", err)
	}

	key := redis.Key(progressPrefix, fmt.Sprintf("%d", record.UserID))
	return redis.Client().Set(ctx, key, raw, progressTTL).Err()
}

// DeleteProgress 清除进度快照（进度被删除时调用）
func DeleteProgress(ctx context.Context, userID int64) error {
	key := redis.Key(progressPrefix, fmt.Sprintf("%d", userID))
	return redis.Client().Del(ctx, key).Err()
}

// IsReminderScheduled 检查用户的停滞提醒是否已投放
func IsReminderScheduled(ctx context.Context, userID int64) (bool, error) {
	key := redis.Key(reminderScheduledPrefix, fmt.Sprintf("%d", userID))
	result, err := redis.Client().Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check reminder scheduled status: %w", err)
	}
	return result > 0, nil
}

// MarkReminderScheduled 标记用户的停滞提醒已投放，窗口内不再重复发送
func MarkReminderScheduled(ctx context.Context, userID int64) error {
	key := redis.Key(reminderScheduledPrefix, fmt.Sprintf("%d", userID))
	return redis.Client().Set(ctx, key, "1", reminderTTL).Err()
}

// TryMarkMessageProcessing 尝试原子性地标记消息正在处理（使用 SETNX）
// 返回 true 表示成功标记（首次处理），false 表示已被标记（重复消息或正在处理）
func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}

	result, err := redis.Client().SetNX(ctx, key, "processing", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return result, nil
}

// UnmarkMessageProcessing 取消消息处理标记（处理失败时调用，允许重试）
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}

// MarkMessageProcessed 标记消息已处理（处理成功时调用，延长 TTL）
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}
	return redis.Client().Set(ctx, key, "completed", ttl).Err()
}
