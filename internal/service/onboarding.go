package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Seasons/internal/cache"
	"Seasons/internal/model"
	"Seasons/internal/model/dto"
	"Seasons/internal/repository"
	pkgerrors "Seasons/pkg/errors"
	"Seasons/pkg/logger"
	"Seasons/storage/database"
	"Seasons/utils"
)

// api 中使用的 user_ID 是 public_id

var (
	onboardingService *OnboardingService
	onboardingOnce    sync.Once
)

func Onboarding() *OnboardingService {
	onboardingOnce.Do(func() {
		db := database.DB()
		onboardingService = NewOnboardingService(
			model.DefaultStepCatalog(),
			repository.NewProfileRepository(db),
			repository.NewPreferencesRepository(db),
			repository.NewProgressRepository(db),
			cache.Snapshots{},
		)
	})
	return onboardingService
}

// profileStore / preferencesStore / progressStore 是服务依赖的最小存储面，
// 测试里用内存实现替换。
type profileStore interface {
	FindByPublicID(ctx context.Context, publicID int64) (*model.User, error)
	UpdateByPublicID(ctx context.Context, publicID int64, updates map[string]interface{}) error
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
}

type preferencesStore interface {
	Upsert(ctx context.Context, prefs *model.UnitPreferences) error
	FindByUserID(ctx context.Context, userID int64) (*model.UnitPreferences, error)
}

type progressStore interface {
	Upsert(ctx context.Context, userID int64, stepName string, stepNumber int) (int64, error)
	FindByUserID(ctx context.Context, userID int64) (*model.OnboardingProgress, error)
	Delete(ctx context.Context, userID int64) error
}

// progressCache 进度快照缓存，传 nil 时跳过缓存层
type progressCache interface {
	GetProgress(ctx context.Context, userID int64) (*model.OnboardingProgress, error)
	SetProgress(ctx context.Context, record *model.OnboardingProgress) error
	DeleteProgress(ctx context.Context, userID int64) error
}

// OnboardingService 引导步骤推进：先校验提交内容，再落业务数据，最后覆盖写进度。
// 校验失败在任何写入发生之前返回，进度写入失败不回滚业务数据（重做该步骤即可恢复）。
type OnboardingService struct {
	catalog   *model.StepCatalog
	profiles  profileStore
	prefs     preferencesStore
	progress  progressStore
	snapshots progressCache
}

func NewOnboardingService(
	catalog *model.StepCatalog,
	profiles profileStore,
	prefs preferencesStore,
	progress progressStore,
	snapshots progressCache,
) *OnboardingService {
	return &OnboardingService{
		catalog:   catalog,
		profiles:  profiles,
		prefs:     prefs,
		progress:  progress,
		snapshots: snapshots,
	}
}

// Catalog 返回服务使用的步骤目录
func (s *OnboardingService) Catalog() *model.StepCatalog {
	return s.catalog
}

// CompleteUsernameStep 完成用户名步骤。
// 用户名冲突返回业务错误，不写进度。
func (s *OnboardingService) CompleteUsernameStep(
	ctx context.Context,
	userID string,
	req dto.CompleteUsernameRequest,
) (*dto.StepCompletedData, *model.OnboardingCompletedMessage, error) {
	var userIDInt int64
	if _, err := fmt.Sscanf(userID, "%d", &userIDInt); err != nil {
		return nil, nil, pkgerrors.InvalidUserID
	}

	username := utils.NormalizeUsername(req.Username)
	if username == "" {
		return nil, nil, pkgerrors.InvalidField("username", "must not be empty")
	}
	if !utils.ValidUsername(username) {
		return nil, nil, pkgerrors.InvalidField("username", "must be 3-30 characters, lowercase letters, digits and underscores, starting with a letter")
	}

	user, err := s.profiles.FindByPublicID(ctx, userIDInt)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, pkgerrors.UserNotFound
	}

	// 自己已持有同名时跳过占用检查，重做该步骤是合法操作
	if user.Username == nil || *user.Username != username {
		available, err := s.profiles.IsUsernameAvailable(ctx, username)
		if err != nil {
			return nil, nil, err
		}
		if !available {
			return nil, nil, pkgerrors.UsernameTaken
		}
	}

	if err := s.profiles.UpdateByPublicID(ctx, userIDInt, map[string]interface{}{
		"username": username,
	}); err != nil {
		return nil, nil, err
	}

	return s.recordStepCompleted(ctx, userIDInt, model.StepUsername)
}

// CompletePersonalInfoStep 完成个人资料步骤，FirstName 可选。
func (s *OnboardingService) CompletePersonalInfoStep(
	ctx context.Context,
	userID string,
	req dto.CompletePersonalInfoRequest,
) (*dto.StepCompletedData, *model.OnboardingCompletedMessage, error) {
	var userIDInt int64
	if _, err := fmt.Sscanf(userID, "%d", &userIDInt); err != nil {
		return nil, nil, pkgerrors.InvalidUserID
	}

	if !model.ValidSex(req.Sex) {
		return nil, nil, pkgerrors.InvalidField("sex", "must be one of: male, female, other")
	}
	if !utils.ValidBirthYear(req.BirthYear) {
		return nil, nil, pkgerrors.InvalidField("birth_year", "out of accepted range")
	}

	user, err := s.profiles.FindByPublicID(ctx, userIDInt)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, pkgerrors.UserNotFound
	}

	updates := map[string]interface{}{
		"sex":        req.Sex,
		"birth_year": req.BirthYear,
	}
	// 名字可选，trim 后为空当作未提供，不写空串
	if req.FirstName != nil {
		if name := strings.TrimSpace(*req.FirstName); name != "" {
			updates["first_name"] = name
		}
	}

	if err := s.profiles.UpdateByPublicID(ctx, userIDInt, updates); err != nil {
		return nil, nil, err
	}

	return s.recordStepCompleted(ctx, userIDInt, model.StepPersonalInfo)
}

// CompleteUnitPreferencesStep 完成单位偏好步骤，整组提交整组校验。
func (s *OnboardingService) CompleteUnitPreferencesStep(
	ctx context.Context,
	userID string,
	req dto.UnitPreferencesPayload,
) (*dto.StepCompletedData, *model.OnboardingCompletedMessage, error) {
	var userIDInt int64
	if _, err := fmt.Sscanf(userID, "%d", &userIDInt); err != nil {
		return nil, nil, pkgerrors.InvalidUserID
	}

	if !model.ValidWeightUnit(req.BodyWeightUnit) {
		return nil, nil, pkgerrors.InvalidField("body_weight_unit", "must be kg or lb")
	}
	if !model.ValidWeightUnit(req.LoadUnit) {
		return nil, nil, pkgerrors.InvalidField("load_unit", "must be kg or lb")
	}
	if !model.ValidDistanceUnit(req.DistanceUnit) {
		return nil, nil, pkgerrors.InvalidField("distance_unit", "must be km or mi")
	}
	if !model.ValidLengthUnit(req.BodyMeasurementUnit) {
		return nil, nil, pkgerrors.InvalidField("body_measurement_unit", "must be cm or in")
	}

	user, err := s.profiles.FindByPublicID(ctx, userIDInt)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, pkgerrors.UserNotFound
	}

	if err := s.prefs.Upsert(ctx, &model.UnitPreferences{
		UserID:              userIDInt,
		BodyWeightUnit:      req.BodyWeightUnit,
		LoadUnit:            req.LoadUnit,
		DistanceUnit:        req.DistanceUnit,
		BodyMeasurementUnit: req.BodyMeasurementUnit,
	}); err != nil {
		return nil, nil, err
	}

	return s.recordStepCompleted(ctx, userIDInt, model.StepUnitPreferences)
}

// recordStepCompleted 覆盖写进度记录。每个步骤完成都落一次，
// 即使用户回头重做更早的步骤，记录也跟着回写，恢复导航据此推进。
// 走完最后一步时返回完成事件消息，由 Handler 层决定是否投递。
func (s *OnboardingService) recordStepCompleted(
	ctx context.Context,
	userID int64,
	stepName string,
) (*dto.StepCompletedData, *model.OnboardingCompletedMessage, error) {
	step, ok := s.catalog.StepByName(stepName)
	if !ok {
		return nil, nil, pkgerrors.OnboardingStepInvalid
	}
	stepNumber, _ := s.catalog.StepNumber(stepName)

	if _, err := s.progress.Upsert(ctx, userID, step.Name, stepNumber); err != nil {
		return nil, nil, err
	}

	completed := s.catalog.IsComplete(stepNumber)

	// 更新缓存快照，失败不影响主流程
	now := time.Now()
	if s.snapshots != nil {
		if err := s.snapshots.SetProgress(ctx, &model.OnboardingProgress{
			UserID:            userID,
			CurrentStepName:   step.Name,
			CurrentStepNumber: stepNumber,
			CompletedAt:       now,
		}); err != nil {
			logger.Logger.Warn("Failed to update progress cache",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}

	logger.Logger.Info("Onboarding step completed",
		zap.Int64("user_id", userID),
		zap.String("step", step.Name),
		zap.Int("step_number", stepNumber),
		zap.Bool("completed", completed),
	)

	result := &dto.StepCompletedData{
		StepName:   step.Name,
		StepNumber: stepNumber,
		Completed:  completed,
	}

	var completedMsg *model.OnboardingCompletedMessage
	if completed {
		completedMsg = &model.OnboardingCompletedMessage{
			MessageID:   fmt.Sprintf("ob_completed_%s", uuid.NewString()),
			UserID:      userID,
			FinalStep:   step.Name,
			CompletedAt: now.Format(time.RFC3339),
		}
	}

	return result, completedMsg, nil
}

// GetProgress 查询用户当前进度，无记录时返回零值进度（未开始）。
func (s *OnboardingService) GetProgress(
	ctx context.Context,
	userID string,
) (*dto.OnboardingProgressData, error) {
	var userIDInt int64
	if _, err := fmt.Sscanf(userID, "%d", &userIDInt); err != nil {
		return nil, pkgerrors.InvalidUserID
	}

	var record *model.OnboardingProgress
	var err error
	if s.snapshots != nil {
		record, err = s.snapshots.GetProgress(ctx, userIDInt)
		if err != nil {
			logger.Logger.Warn("Failed to read progress cache",
				zap.Int64("user_id", userIDInt),
				zap.Error(err),
			)
			record = nil
		}
	}
	if record == nil {
		record, err = s.progress.FindByUserID(ctx, userIDInt)
		if err != nil {
			return nil, err
		}
	}

	result := &dto.OnboardingProgressData{
		TotalSteps: s.catalog.TotalSteps(),
	}
	if record == nil {
		return result, nil
	}

	result.CurrentStepName = record.CurrentStepName
	result.CurrentStepNumber = record.CurrentStepNumber
	result.Completed = s.catalog.IsComplete(record.CurrentStepNumber)
	result.LastCompletedAt = record.CompletedAt.Format(time.RFC3339)

	return result, nil
}

// HasCompletedOnboarding 完成判定，供激活流程和提醒消费者使用
func (s *OnboardingService) HasCompletedOnboarding(ctx context.Context, userID int64) (bool, error) {
	record, err := s.progress.FindByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}
	return s.catalog.IsComplete(record.CurrentStepNumber), nil
}

// CheckUsernameAvailability 用户名可用性查询，不要求认证
func (s *OnboardingService) CheckUsernameAvailability(
	ctx context.Context,
	username string,
) (*dto.UsernameAvailabilityData, error) {
	normalized := utils.NormalizeUsername(username)
	if !utils.ValidUsername(normalized) {
		// 格式非法的名字不可用，但不算请求错误
		return &dto.UsernameAvailabilityData{Username: normalized, Available: false}, nil
	}

	available, err := s.profiles.IsUsernameAvailable(ctx, normalized)
	if err != nil {
		return nil, err
	}

	return &dto.UsernameAvailabilityData{Username: normalized, Available: available}, nil
}

// ResetProgress 清除用户进度，幂等，管理用途
func (s *OnboardingService) ResetProgress(ctx context.Context, userID int64) error {
	if err := s.progress.Delete(ctx, userID); err != nil {
		return err
	}
	if s.snapshots != nil {
		if err := s.snapshots.DeleteProgress(ctx, userID); err != nil {
			logger.Logger.Warn("Failed to clear progress cache",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}
	return nil
}
