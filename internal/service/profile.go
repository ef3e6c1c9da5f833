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
	profileService *ProfileService
	profileOnce    sync.Once
)

func Profile() *ProfileService {
	profileOnce.Do(func() {
		db := database.DB()
		profileService = NewProfileService(
			repository.NewProfileRepository(db),
			repository.NewPreferencesRepository(db),
		)
	})
	return profileService
}

// ProfileService 用户资料查询与状态流转
type ProfileService struct {
	profiles profileStore
	prefs    preferencesStore
}

func NewProfileService(profiles profileStore, prefs preferencesStore) *ProfileService {
	return &ProfileService{profiles: profiles, prefs: prefs}
}

// GetProfile 获取用户资料，附带单位偏好（尚未设置时为空）
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*dto.UserProfileData, error) {
	var userIDInt int64
	if _, err := fmt.Sscanf(userID, "%d", &userIDInt); err != nil {
		return nil, pkgerrors.InvalidUserID
	}

	user, err := s.profiles.FindByPublicID(ctx, userIDInt)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.UserNotFound
	}

	result := &dto.UserProfileData{
		ID:     fmt.Sprintf("%d", user.PublicID),
		Status: model.StatusToStringMap[user.Status],
	}
	if user.Username != nil {
		result.Username = *user.Username
	}
	if user.FirstName != nil {
		result.FirstName = *user.FirstName
	}
	if user.Sex != nil {
		result.Sex = *user.Sex
	}
	if user.BirthYear != nil {
		result.BirthYear = *user.BirthYear
	}

	prefs, err := s.prefs.FindByUserID(ctx, userIDInt)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		result.Units = &dto.UnitPreferencesPayload{
			BodyWeightUnit:      prefs.BodyWeightUnit,
			LoadUnit:            prefs.LoadUnit,
			DistanceUnit:        prefs.DistanceUnit,
			BodyMeasurementUnit: prefs.BodyMeasurementUnit,
		}
	}

	return result, nil
}

// ActivateUser 引导完成后把用户置为 active，幂等
func (s *ProfileService) ActivateUser(ctx context.Context, userID int64) error {
	user, err := s.profiles.FindByPublicID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return pkgerrors.UserNotFound
	}

	if user.Status == model.UserStatusActive {
		return nil
	}

	if err := s.profiles.UpdateByPublicID(ctx, userID, map[string]interface{}{
		"status": string(model.UserStatusActive),
	}); err != nil {
		return err
	}

	logger.Logger.Info("User activated after onboarding",
		zap.Int64("user_id", userID),
	)

	return nil
}
