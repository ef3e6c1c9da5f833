package dto

// ========== Onboarding 相关 DTO ==========

// CompleteUsernameRequest 用户名步骤提交
type CompleteUsernameRequest struct {
	Username string `json:"username"`
}

// CompletePersonalInfoRequest 个人资料步骤提交，FirstName 可选
type CompletePersonalInfoRequest struct {
	FirstName *string `json:"first_name"`
	Sex       string  `json:"sex"`
	BirthYear int     `json:"birth_year"`
}

// UnitPreferencesPayload 单位偏好步骤提交，整组提交
type UnitPreferencesPayload struct {
	BodyWeightUnit      string `json:"body_weight_unit"`
	LoadUnit            string `json:"load_unit"`
	DistanceUnit        string `json:"distance_unit"`
	BodyMeasurementUnit string `json:"body_measurement_unit"`
}

// StepCompletedData 步骤完成响应
type StepCompletedData struct {
	StepName   string `json:"step_name"`
	StepNumber int    `json:"step_number"`
	Completed  bool   `json:"completed"` // 是否已走完全部步骤
}

// OnboardingProgressData 引导进度查询响应
type OnboardingProgressData struct {
	CurrentStepName   string `json:"current_step_name"`
	CurrentStepNumber int    `json:"current_step_number"`
	TotalSteps        int    `json:"total_steps"`
	Completed         bool   `json:"completed"`
	LastCompletedAt   string `json:"last_completed_at,omitempty"` // RFC3339，无记录时为空
}

// 恢复导航的三种结果
const (
	ResumeStateResume        = "resume"
	ResumeStateComplete      = "complete"
	ResumeStateNotApplicable = "not_applicable"
)

// ResumeData 恢复导航响应
type ResumeData struct {
	State        string `json:"state"`
	ResumeTarget string `json:"resume_target,omitempty"` // state == resume 时有值
}

// UsernameAvailabilityData 用户名可用性查询响应
type UsernameAvailabilityData struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}
