package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"Seasons/config"
	"Seasons/internal/model"
	"Seasons/internal/model/dto"
	"Seasons/internal/repository"
	pkgerrors "Seasons/pkg/errors"
	"Seasons/pkg/logger"
	"Seasons/storage/database"
	"Seasons/utils"
)

var (
	seasonService *SeasonService
	seasonOnce    sync.Once
)

func Season() *SeasonService {
	seasonOnce.Do(func() {
		seasonService = NewSeasonService(
			repository.NewSeasonRepository(database.DB()),
		)
	})
	return seasonService
}

// seasonStore 赛季存储面
type seasonStore interface {
	Create(ctx context.Context, season *model.Season) error
	FindActive(ctx context.Context, userID int64) (*model.Season, error)
	FindByID(ctx context.Context, userID int64, seasonID int64) (*model.Season, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*model.Season, error)
	HasOverlap(ctx context.Context, userID int64, start, end time.Time) (bool, error)
	UpdateStatus(ctx context.Context, userID int64, seasonID int64, status model.SeasonStatus) error
}

// SeasonService 训练赛季：创建时做区间校验，同一用户的进行中赛季不允许重叠
type SeasonService struct {
	seasons seasonStore
}

func NewSeasonService(seasons seasonStore) *SeasonService {
	return &SeasonService{seasons: seasons}
}

// ValidateCreateSeason 创建请求的字段校验，出错返回第一个违规字段
func (s *SeasonService) ValidateCreateSeason(req dto.CreateSeasonRequest) (time.Time, error) {
	if strings.TrimSpace(req.Name) == "" {
		return time.Time{}, pkgerrors.InvalidField("name", "must not be empty")
	}

	start, ok := utils.ValidDate(req.StartDate)
	if !ok {
		return time.Time{}, pkgerrors.InvalidField("start_date", "must be a valid date in YYYY-MM-DD format")
	}

	if req.DurationWeeks < 1 || req.DurationWeeks > config.Cfg.SeasonMaxDurationWeeks {
		return time.Time{}, pkgerrors.InvalidField("duration_weeks",
			fmt.Sprintf("must be between 1 and %d", config.Cfg.SeasonMaxDurationWeeks))
	}

	if req.TrainingDaysPerWeek < 1 || req.TrainingDaysPerWeek > 7 {
		return time.Time{}, pkgerrors.InvalidField("training_days_per_week", "must be between 1 and 7")
	}

	return start, nil
}

// CreateSeason 创建训练赛季
func (s *SeasonService) CreateSeason(
	ctx context.Context,
	userID string,
	req dto.CreateSeasonRequest,
) (*dto.SeasonData, error) {
	var userIDInt int64
	if _, err := fmt.Sscanf(userID, "%d", &userIDInt); err != nil {
		return nil, pkgerrors.InvalidUserID
	}

	start, err := s.ValidateCreateSeason(req)
	if err != nil {
		return nil, err
	}

	end := start.AddDate(0, 0, req.DurationWeeks*7)
	overlap, err := s.seasons.HasOverlap(ctx, userIDInt, start, end)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, pkgerrors.SeasonOverlap
	}

	season := &model.Season{
		UserID:              userIDInt,
		Name:                strings.TrimSpace(req.Name),
		Goal:                strings.TrimSpace(req.Goal),
		StartDate:           start,
		DurationWeeks:       req.DurationWeeks,
		TrainingDaysPerWeek: req.TrainingDaysPerWeek,
		Status:              model.SeasonStatusActive,
	}
	if err := s.seasons.Create(ctx, season); err != nil {
		return nil, err
	}

	logger.Logger.Info("Season created",
		zap.Int64("user_id", userIDInt),
		zap.Int64("season_id", season.ID),
		zap.String("name", season.Name),
	)

	return toSeasonData(season), nil
}

// GetCurrentSeason 查询当前进行中的赛季
func (s *SeasonService) GetCurrentSeason(ctx context.Context, userID string) (*dto.SeasonData, error) {
	var userIDInt int64
	if _, err := fmt.Sscanf(userID, "%d", &userIDInt); err != nil {
		return nil, pkgerrors.InvalidUserID
	}

	season, err := s.seasons.FindActive(ctx, userIDInt)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, pkgerrors.SeasonNotFound
	}

	return toSeasonData(season), nil
}

// ListSeasons 按开始日期倒序列出用户的赛季
func (s *SeasonService) ListSeasons(ctx context.Context, userID string, limit, offset int) ([]*dto.SeasonData, error) {
	var userIDInt int64
	if _, err := fmt.Sscanf(userID, "%d", &userIDInt); err != nil {
		return nil, pkgerrors.InvalidUserID
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	seasons, err := s.seasons.ListByUserID(ctx, userIDInt, limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.SeasonData, 0, len(seasons))
	for _, season := range seasons {
		result = append(result, toSeasonData(season))
	}

	return result, nil
}

// EndSeason 结束赛季，completed 或 abandoned
func (s *SeasonService) EndSeason(ctx context.Context, userID string, seasonID string, abandoned bool) error {
	var userIDInt int64
	if _, err := fmt.Sscanf(userID, "%d", &userIDInt); err != nil {
		return pkgerrors.InvalidUserID
	}

	seasonIDInt, err := strconv.ParseInt(seasonID, 10, 64)
	if err != nil {
		return pkgerrors.InvalidField("season_id", "must be a numeric id")
	}

	season, err := s.seasons.FindByID(ctx, userIDInt, seasonIDInt)
	if err != nil {
		return err
	}
	if season == nil {
		return pkgerrors.SeasonNotFound
	}

	status := model.SeasonStatusCompleted
	if abandoned {
		status = model.SeasonStatusAbandoned
	}

	return s.seasons.UpdateStatus(ctx, userIDInt, seasonIDInt, status)
}

func toSeasonData(season *model.Season) *dto.SeasonData {
	return &dto.SeasonData{
		ID:                  strconv.FormatInt(season.ID, 10),
		Name:                season.Name,
		Goal:                season.Goal,
		StartDate:           season.StartDate.Format("2006-01-02"),
		EndDate:             season.EndDate().Format("2006-01-02"),
		DurationWeeks:       season.DurationWeeks,
		TrainingDaysPerWeek: season.TrainingDaysPerWeek,
		Status:              string(season.Status),
	}
}
