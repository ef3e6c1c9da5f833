package dto

// ========== Auth 相关 DTO ==========

// CreateSessionRequest 设备换取会话请求
type CreateSessionRequest struct {
	DeviceID string `json:"device_id"`
}

// TokenPairData 令牌对响应
type TokenPairData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// SessionData 会话创建响应，附带引导恢复信息方便客户端一次拿全
type SessionData struct {
	UserID       string        `json:"user_id"`
	IsNewUser    bool          `json:"is_new_user"`
	Status       string        `json:"status"`
	Resume       ResumeData    `json:"resume"`
	Tokens       TokenPairData `json:"tokens"`
}

// RefreshTokenRequest 刷新令牌请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}
