package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Seasons/internal/model"
	"Seasons/pkg/logger"
	"Seasons/storage/mq"
)

// PublishOnboardingCompleted 发布引导完成事件
func PublishOnboardingCompleted(msg model.OnboardingCompletedMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = fmt.Sprintf("ob_completed_%s", uuid.NewString())
	}
	if msg.CompletedAt == "" {
		msg.CompletedAt = time.Now().Format(time.RFC3339)
	}

	err := mq.PublishMessage(
		"seasons.events",       // exchange
		"onboarding.completed", // routing key
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish onboarding completed event",
			zap.String("message_id", msg.MessageID),
			zap.Int64("user_id", msg.UserID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published onboarding completed event",
		zap.String("message_id", msg.MessageID),
		zap.Int64("user_id", msg.UserID),
		zap.String("final_step", msg.FinalStep),
	)

	return nil
}

// PublishOnboardingReminder 发布停滞提醒消息（延迟消息）
func PublishOnboardingReminder(msg model.OnboardingReminderMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = fmt.Sprintf("ob_reminder_%s", uuid.NewString())
	}

	delay := time.Duration(msg.DelaySeconds) * time.Second
	if delay > 24*time.Hour {
		return fmt.Errorf("delay %v exceeds 24 hours limit, use scheduled task instead", delay)
	}

	err := mq.PublishDelayedMessage(
		"scheduler.delayed",             // exchange
		"scheduler.onboarding.reminder", // routing key
		delay,
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish onboarding reminder message",
			zap.String("batch_id", msg.BatchID),
			zap.Int("user_count", len(msg.UserIDs)),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published onboarding reminder message",
		zap.String("message_id", msg.MessageID),
		zap.String("batch_id", msg.BatchID),
		zap.Int("user_count", len(msg.UserIDs)),
		zap.Duration("delay", delay),
	)

	return nil
}
