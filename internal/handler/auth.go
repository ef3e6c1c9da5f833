package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Seasons/internal/model/dto"
	"Seasons/internal/service"
	"Seasons/pkg/metrics"
	"Seasons/pkg/response"
)

// CreateSession 设备换取会话
// POST /v1/auth/sessions
func CreateSession(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateSessionRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Auth().CreateDeviceSession(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	metrics.RecordSessionCreated(result.IsNewUser)
	response.Success(ctx, c, result)
}

// RefreshToken 刷新访问令牌
// POST /v1/auth/token/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Auth().RefreshSession(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
