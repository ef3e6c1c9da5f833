package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"Seasons/internal/model"
	"Seasons/internal/model/dto"
	"Seasons/internal/repository"
	pkgerrors "Seasons/pkg/errors"
	"Seasons/pkg/logger"
	"Seasons/storage/database"
)

var (
	resumeService *ResumeService
	resumeOnce    sync.Once
)

func Resume() *ResumeService {
	resumeOnce.Do(func() {
		resumeService = NewResumeService(
			model.DefaultStepCatalog(),
			repository.NewProgressRepository(database.DB()),
		)
	})
	return resumeService
}

// ResumeService 从进度记录推导客户端应该跳到哪个引导页面。
// 恢复永远向前：返回的是最近完成步骤的下一步，而不是重复已完成的步骤。
type ResumeService struct {
	catalog  *model.StepCatalog
	progress progressStore
}

func NewResumeService(catalog *model.StepCatalog, progress progressStore) *ResumeService {
	return &ResumeService{catalog: catalog, progress: progress}
}

// ResolveResume 推导恢复目标：
//   - 无进度记录：从第一步开始
//   - 已走完全部步骤：complete，不再进引导
//   - 记录里的步骤名已不在目录中（目录改版）：回第一步，宁可重做不可跳步
//   - 进度查询出错：降级回第一步，恢复导航不能挡住登录
func (s *ResumeService) ResolveResume(ctx context.Context, userID string) (*dto.ResumeData, error) {
	var userIDInt int64
	if _, err := fmt.Sscanf(userID, "%d", &userIDInt); err != nil {
		return nil, pkgerrors.InvalidUserID
	}

	return s.resolveForUser(ctx, userIDInt), nil
}

// ResolveForUser 内部调用入口，认证流程里 userID 已是数值
func (s *ResumeService) ResolveForUser(ctx context.Context, userID int64) *dto.ResumeData {
	return s.resolveForUser(ctx, userID)
}

func (s *ResumeService) resolveForUser(ctx context.Context, userID int64) *dto.ResumeData {
	first := s.catalog.FirstStep()

	record, err := s.progress.FindByUserID(ctx, userID)
	if err != nil {
		logger.Logger.Warn("Failed to load progress for resume, falling back to first step",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return &dto.ResumeData{State: dto.ResumeStateResume, ResumeTarget: first.ResumeTarget}
	}

	if record == nil {
		return &dto.ResumeData{State: dto.ResumeStateResume, ResumeTarget: first.ResumeTarget}
	}

	// 以目录里的序号为准重新推导，存储的数字可能来自旧版本目录
	if num, ok := s.catalog.StepNumber(record.CurrentStepName); ok {
		if s.catalog.IsComplete(num) {
			return &dto.ResumeData{State: dto.ResumeStateComplete}
		}
		next, _ := s.catalog.NextStep(record.CurrentStepName)
		return &dto.ResumeData{State: dto.ResumeStateResume, ResumeTarget: next.ResumeTarget}
	}

	// 步骤名已不在目录中：存储的序号若已达总数按完成处理，否则回第一步
	if s.catalog.IsComplete(record.CurrentStepNumber) {
		return &dto.ResumeData{State: dto.ResumeStateComplete}
	}

	logger.Logger.Warn("Progress record references unknown step, falling back to first step",
		zap.Int64("user_id", userID),
		zap.String("step", record.CurrentStepName),
	)
	return &dto.ResumeData{State: dto.ResumeStateResume, ResumeTarget: first.ResumeTarget}
}
