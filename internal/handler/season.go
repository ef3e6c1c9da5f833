package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"Seasons/internal/middleware"
	"Seasons/internal/model/dto"
	"Seasons/internal/service"
	"Seasons/pkg/response"
)

// CreateSeason 创建训练赛季
// POST /v1/seasons
func CreateSeason(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, fmt.Errorf("user ID not found in context"))
		return
	}

	var req dto.CreateSeasonRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Season().CreateSeason(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetCurrentSeason 查询当前进行中的赛季
// GET /v1/seasons/current
func GetCurrentSeason(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, fmt.Errorf("user ID not found in context"))
		return
	}

	result, err := service.Season().GetCurrentSeason(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ListSeasons 分页查询历史赛季
// GET /v1/seasons?limit=20&offset=0
func ListSeasons(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, fmt.Errorf("user ID not found in context"))
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	result, err := service.Season().ListSeasons(ctx, userID, limit, offset)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, result, map[string]interface{}{
		"count": len(result),
	})
}

// CompleteSeason 结束赛季（正常完成）
// POST /v1/seasons/:season_id/complete
func CompleteSeason(ctx context.Context, c *app.RequestContext) {
	endSeason(ctx, c, false)
}

// AbandonSeason 放弃赛季
// POST /v1/seasons/:season_id/abandon
func AbandonSeason(ctx context.Context, c *app.RequestContext) {
	endSeason(ctx, c, true)
}

func endSeason(ctx context.Context, c *app.RequestContext, abandoned bool) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, fmt.Errorf("user ID not found in context"))
		return
	}

	seasonID := c.Param("season_id")
	if err := service.Season().EndSeason(ctx, userID, seasonID, abandoned); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}
