package handler

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"Seasons/internal/middleware"
	"Seasons/internal/model"
	"Seasons/internal/model/dto"
	"Seasons/internal/queue"
	"Seasons/internal/service"
	"Seasons/pkg/logger"
	"Seasons/pkg/metrics"
	"Seasons/pkg/response"
)

// CompleteUsernameStep 完成用户名步骤
// POST /v1/onboarding/steps/username
func CompleteUsernameStep(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, fmt.Errorf("user ID not found in context"))
		return
	}

	var req dto.CompleteUsernameRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, completedMsg, err := service.Onboarding().CompleteUsernameStep(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	publishCompletionIfAny(result, completedMsg)
	response.Success(ctx, c, result)
}

// CompletePersonalInfoStep 完成个人资料步骤
// POST /v1/onboarding/steps/personal-info
func CompletePersonalInfoStep(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, fmt.Errorf("user ID not found in context"))
		return
	}

	var req dto.CompletePersonalInfoRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, completedMsg, err := service.Onboarding().CompletePersonalInfoStep(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	publishCompletionIfAny(result, completedMsg)
	response.Success(ctx, c, result)
}

// CompleteUnitPreferencesStep 完成单位偏好步骤
// POST /v1/onboarding/steps/unit-preferences
func CompleteUnitPreferencesStep(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, fmt.Errorf("user ID not found in context"))
		return
	}

	var req dto.UnitPreferencesPayload
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, completedMsg, err := service.Onboarding().CompleteUnitPreferencesStep(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	publishCompletionIfAny(result, completedMsg)
	response.Success(ctx, c, result)
}

// GetOnboardingProgress 获取当前用户的引导进度
// GET /v1/onboarding/progress
func GetOnboardingProgress(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, fmt.Errorf("user ID not found in context"))
		return
	}

	result, err := service.Onboarding().GetProgress(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ResolveResume 获取恢复导航目标
// GET /v1/onboarding/resume
func ResolveResume(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, fmt.Errorf("user ID not found in context"))
		return
	}

	result, err := service.Resume().ResolveResume(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	metrics.RecordResume(result.State)
	response.Success(ctx, c, result)
}

// CheckUsernameAvailability 用户名可用性查询
// GET /v1/onboarding/username-availability?username=xxx
func CheckUsernameAvailability(ctx context.Context, c *app.RequestContext) {
	username := c.Query("username")

	result, err := service.Onboarding().CheckUsernameAvailability(ctx, username)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// publishCompletionIfAny 走完最后一步时发布完成事件，发布失败只记日志，
// 请求本身已成功，激活由 worker 侧补偿。
func publishCompletionIfAny(result *dto.StepCompletedData, msg *model.OnboardingCompletedMessage) {
	metrics.RecordStepCompleted(result.StepName, result.Completed)

	if msg == nil {
		return
	}

	if err := queue.PublishOnboardingCompleted(*msg); err != nil {
		logger.Logger.Error("Failed to publish onboarding completed event",
			zap.Int64("user_id", msg.UserID),
			zap.Error(err),
		)
	}
}
