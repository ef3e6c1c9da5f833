package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"Seasons/internal/cache"
	"Seasons/internal/model"
	"Seasons/internal/service"
	"Seasons/pkg/errors"
	"Seasons/pkg/logger"
	"Seasons/pkg/metrics"
	"Seasons/storage/mq"
)

// StartOnboardingCompletedConsumer 消费引导完成事件：把用户置为 active
func StartOnboardingCompletedConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.OnboardingCompletedMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal onboarding completed message: %w", err)
		}

		// 幂等性检查：使用 SETNX 原子性地检查并标记消息正在处理
		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 检查失败继续处理，激活本身是幂等的
		} else if !processed {
			logger.Logger.Info("Message already processed or being processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.Int64("user_id", msg.UserID),
			)
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing onboarding completed event",
			zap.String("message_id", msg.MessageID),
			zap.Int64("user_id", msg.UserID),
			zap.String("final_step", msg.FinalStep),
		)

		if err := service.Profile().ActivateUser(ctx, msg.UserID); err != nil {
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("failed to activate user %d: %w", msg.UserID, err)
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         "events.onboarding.completed",
		ConsumerTag:   "onboarding_completed_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartOnboardingReminderConsumer 消费停滞提醒消息。
// 消息投递和用户推进之间有时间差，消费时逐个复查完成状态，已完成的用户直接跳过。
func StartOnboardingReminderConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.OnboardingReminderMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal onboarding reminder message: %w", err)
		}

		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !processed {
			logger.Logger.Info("Message already processed or being processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.String("batch_id", msg.BatchID),
			)
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing onboarding reminder batch",
			zap.String("message_id", msg.MessageID),
			zap.String("batch_id", msg.BatchID),
			zap.Int("user_count", len(msg.UserIDs)),
		)

		for _, userID := range msg.UserIDs {
			completed, err := service.Onboarding().HasCompletedOnboarding(ctx, userID)
			if err != nil {
				logger.Logger.Warn("Failed to check onboarding completion, skipping user",
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
				metrics.RecordReminderProcessed("check_failed")
				continue
			}
			if completed {
				// 投递延迟期间用户已走完引导
				metrics.RecordReminderProcessed("already_completed")
				continue
			}

			resume := service.Resume().ResolveForUser(ctx, userID)
			logger.Logger.Info("Onboarding reminder due",
				zap.Int64("user_id", userID),
				zap.String("resume_target", resume.ResumeTarget),
			)
			metrics.RecordReminderProcessed("reminded")
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         "scheduler.onboarding.reminder",
		ConsumerTag:   "onboarding_reminder_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartAllConsumers 启动所有消费者（在 worker 启动时调用）
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"onboarding_completed", StartOnboardingCompletedConsumer},
		{"onboarding_reminder", StartOnboardingReminderConsumer},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()
}
