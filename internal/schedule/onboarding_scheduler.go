package schedule

// 引导停滞调度器：周期扫描长时间未推进的引导进度，投递延迟提醒消息

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Seasons/config"
	"Seasons/internal/cache"
	"Seasons/internal/model"
	"Seasons/internal/queue"
	"Seasons/internal/repository"
	"Seasons/pkg/logger"
	"Seasons/storage/database"
)

const scanBatchSize = 500

var (
	schedulerOnce sync.Once
	schedulerInst *OnboardingScheduler
)

type OnboardingScheduler struct {
	logger          *zap.Logger
	scanJobRunning  bool
	scanJobMu       sync.Mutex
	lastScanJobTime time.Time
}

func GetScheduler() *OnboardingScheduler {
	schedulerOnce.Do(func() {
		schedulerInst = &OnboardingScheduler{
			logger: logger.Logger,
		}
	})
	return schedulerInst
}

// ScanStalledOnboarding 扫描停滞的引导进度并投递提醒消息。
// 已投放过提醒的用户（redis 标记）跳过，避免同一用户窗口内被反复提醒。
func (s *OnboardingScheduler) ScanStalledOnboarding(ctx context.Context) error {
	s.scanJobMu.Lock()
	if s.scanJobRunning {
		s.scanJobMu.Unlock()
		s.logger.Info("Stalled onboarding scan already running, skipping")
		return nil
	}
	s.scanJobRunning = true
	s.scanJobMu.Unlock()

	defer func() {
		s.scanJobMu.Lock()
		s.scanJobRunning = false
		s.scanJobMu.Unlock()
	}()

	startTime := time.Now()
	s.lastScanJobTime = startTime

	catalog := model.DefaultStepCatalog()
	staleBefore := startTime.Add(-time.Duration(config.Cfg.OnboardingStaleHours) * time.Hour)

	s.logger.Info("Starting stalled onboarding scan",
		zap.Time("start_time", startTime),
		zap.Time("stale_before", staleBefore),
	)

	progressRepo := repository.NewProgressRepository(database.DB())
	records, err := progressRepo.ListStalled(ctx, staleBefore, catalog.TotalSteps(), scanBatchSize)
	if err != nil {
		s.logger.Error("Failed to list stalled onboarding progress", zap.Error(err))
		return fmt.Errorf("failed to list stalled onboarding progress: %w", err)
	}

	if len(records) == 0 {
		s.logger.Info("No stalled onboarding users found")
		return nil
	}

	var userIDs []int64
	for _, record := range records {
		scheduled, err := cache.IsReminderScheduled(ctx, record.UserID)
		if err != nil {
			s.logger.Warn("Failed to check reminder scheduled status",
				zap.Int64("user_id", record.UserID),
				zap.Error(err),
			)
			continue
		}
		if scheduled {
			continue
		}
		userIDs = append(userIDs, record.UserID)
	}

	if len(userIDs) == 0 {
		s.logger.Info("All stalled users already have reminders scheduled",
			zap.Int("scanned", len(records)),
		)
		return nil
	}

	batchID := uuid.NewString()
	msg := model.OnboardingReminderMessage{
		MessageID:    fmt.Sprintf("ob_reminder_%s", uuid.NewString()),
		BatchID:      batchID,
		ScheduledAt:  startTime.Format(time.RFC3339),
		UserIDs:      userIDs,
		DelaySeconds: config.Cfg.OnboardingRemindDelaySec,
	}

	if err := queue.PublishOnboardingReminder(msg); err != nil {
		s.logger.Error("Failed to publish onboarding reminder message",
			zap.String("batch_id", batchID),
			zap.Int("user_count", len(userIDs)),
			zap.Error(err),
		)
		return err
	}

	// 消息已入队后才标记，标记失败只会导致下轮多发一次，由消费端幂等兜底
	for _, userID := range userIDs {
		if err := cache.MarkReminderScheduled(ctx, userID); err != nil {
			s.logger.Warn("Failed to mark reminder scheduled after publishing message",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Stalled onboarding scan completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("scanned", len(records)),
		zap.Int("reminded", len(userIDs)),
	)

	return nil
}
