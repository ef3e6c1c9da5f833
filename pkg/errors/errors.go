package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	Unauthorized      = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID     = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	UserNotFound      = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
	DeviceIDRequired  = Definition{Code: "DEVICE_ID_REQUIRED", Message: "Device ID required"}
	AuthRateLimited   = Definition{Code: "AUTH_RATE_LIMITED", Message: "Auth rate limited"}
	RateLimited       = Definition{Code: "RATE_LIMITED", Message: "Too many requests"}
)

// 引导流程错误。
var (
	OnboardingStepInvalid = Definition{Code: "ONBOARDING_STEP_INVALID", Message: "Onboarding step invalid"}
	UsernameTaken         = Definition{Code: "USERNAME_TAKEN", Message: "Username already taken"}
)

// 训练赛季错误。
var (
	SeasonOverlap  = Definition{Code: "SEASON_OVERLAP", Message: "An active season already exists"}
	SeasonNotFound = Definition{Code: "SEASON_NOT_FOUND", Message: "Season not found"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthorized.Code:          Unauthorized,
	InvalidUserID.Code:         InvalidUserID,
	UserNotFound.Code:          UserNotFound,
	DeviceIDRequired.Code:      DeviceIDRequired,
	AuthRateLimited.Code:       AuthRateLimited,
	RateLimited.Code:           RateLimited,
	OnboardingStepInvalid.Code: OnboardingStepInvalid,
	UsernameTaken.Code:         UsernameTaken,
	SeasonOverlap.Code:         SeasonOverlap,
	SeasonNotFound.Code:        SeasonNotFound,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// FieldViolation 表示字段级校验错误，携带出错字段，便于前端定位到对应输入框。
// 校验错误永远在调用任何外部协作方之前返回。
type FieldViolation struct {
	Field  string
	Reason string
}

func (v FieldViolation) Error() string {
	return "validation failed: " + v.Field + ": " + v.Reason
}

// Code 与 Definition 保持同一套错误码语义。
func (v FieldViolation) Code() string {
	return "VALIDATION_FAILED"
}

// InvalidField 构造字段校验错误。
func InvalidField(field, reason string) error {
	return FieldViolation{Field: field, Reason: reason}
}

// IsFieldViolation 判断是否为字段校验错误。
func IsFieldViolation(err error) (FieldViolation, bool) {
	var v FieldViolation
	if errors.As(err, &v) {
		return v, true
	}
	return FieldViolation{}, false
}

// SkipMessageError 消费者遇到不需要重试的消息时返回，
// 队列层按已处理 Ack，不再重入队。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return "message skipped: " + e.Reason
}

// IsSkipMessageError 判断是否为跳过消息错误。
func IsSkipMessageError(err error) bool {
	var skip *SkipMessageError
	return errors.As(err, &skip)
}

// token 包内部错误。
var (
	ErrTokenGeneratorNotInitialized = errors.New("token generator is not initialized")
	ErrUnexpectedSigningMethod      = errors.New("unexpected signing method")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
	ErrInvalidTokenType             = errors.New("invalid token type")
	ErrUserIDNotFound               = errors.New("user id not found in token claims")
)
