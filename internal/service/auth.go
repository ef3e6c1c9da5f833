package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"Seasons/internal/model"
	"Seasons/internal/model/dto"
	"Seasons/internal/repository"
	pkgerrors "Seasons/pkg/errors"
	"Seasons/pkg/logger"
	"Seasons/pkg/snowflake"
	"Seasons/pkg/token"
	"Seasons/storage/database"
	"Seasons/storage/redis"
)

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = &AuthService{
			profiles: repository.NewProfileRepository(database.DB()),
			resume:   Resume(),
		}
	})
	return authService
}

// AuthService 设备换会话：按 device_id 查找或创建最小用户，签发令牌对，
// 并顺带返回引导恢复信息，客户端启动时一次请求拿全。
type AuthService struct {
	profiles interface {
		FindByDeviceID(ctx context.Context, deviceID string) (*model.User, error)
		Create(ctx context.Context, user *model.User) error
	}
	resume *ResumeService
}

// CreateDeviceSession 基于 device_id 查找或创建用户并签发令牌
func (s *AuthService) CreateDeviceSession(
	ctx context.Context,
	req dto.CreateSessionRequest,
) (*dto.SessionData, error) {
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		return nil, pkgerrors.DeviceIDRequired
	}

	// 简单限流：按 device_id 统计 60 秒内请求次数
	redisCli := redis.Client()
	rateKey := redis.Key("auth:rate", deviceID)
	if n, err := redisCli.Incr(ctx, rateKey).Result(); err == nil {
		if n == 1 {
			redisCli.Expire(ctx, rateKey, 60*time.Second)
		}
		if n > 30 {
			return nil, pkgerrors.AuthRateLimited
		}
	}

	user, err := s.profiles.FindByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	isNewUser := false
	if user == nil {
		publicID, idErr := snowflake.NextID()
		if idErr != nil {
			return nil, fmt.Errorf("failed to generate public_id: %w", idErr)
		}

		user = &model.User{
			PublicID: publicID,
			DeviceID: deviceID,
			Status:   model.UserStatusOnboarding,
			Timezone: "UTC",
		}
		if err := s.profiles.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		isNewUser = true

		logger.Logger.Info("New user created from device session",
			zap.Int64("public_id", publicID),
		)
	}

	userIDStr := fmt.Sprintf("%d", user.PublicID)
	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	// 只有还在引导中的用户才需要恢复导航
	resume := dto.ResumeData{State: dto.ResumeStateNotApplicable}
	if user.Status == model.UserStatusOnboarding {
		resume = *s.resume.ResolveForUser(ctx, user.PublicID)
	}

	return &dto.SessionData{
		UserID:    userIDStr,
		IsNewUser: isNewUser,
		Status:    model.StatusToStringMap[user.Status],
		Resume:    resume,
		Tokens: dto.TokenPairData{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    expiresIn,
		},
	}, nil
}

// RefreshSession 校验 refresh token 并签发新令牌对
func (s *AuthService) RefreshSession(
	ctx context.Context,
	req dto.RefreshTokenRequest,
) (*dto.TokenPairData, error) {
	userID, err := token.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, pkgerrors.Unauthorized
	}

	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	return &dto.TokenPairData{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
