package dto

// ========== Profile 相关 DTO ==========

// UserProfileData 用户资料数据
type UserProfileData struct {
	ID        string                  `json:"id"`
	Username  string                  `json:"username,omitempty"`
	FirstName string                  `json:"first_name,omitempty"`
	Sex       string                  `json:"sex,omitempty"`
	BirthYear int                     `json:"birth_year,omitempty"`
	Status    string                  `json:"status"`
	Units     *UnitPreferencesPayload `json:"units,omitempty"` // 未设置偏好时为空
}
