package dto

// ========== Season 相关 DTO ==========

// CreateSeasonRequest 创建训练赛季请求
type CreateSeasonRequest struct {
	Name                string `json:"name"`
	Goal                string `json:"goal"`
	StartDate           string `json:"start_date"` // YYYY-MM-DD
	DurationWeeks       int    `json:"duration_weeks"`
	TrainingDaysPerWeek int    `json:"training_days_per_week"`
}

// SeasonData 赛季响应
type SeasonData struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Goal                string `json:"goal,omitempty"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
	DurationWeeks       int    `json:"duration_weeks"`
	TrainingDaysPerWeek int    `json:"training_days_per_week"`
	Status              string `json:"status"`
}
