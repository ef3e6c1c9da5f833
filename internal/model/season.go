package model

import "time"

// SeasonStatus 训练赛季状态
type SeasonStatus string

const (
	SeasonStatusActive    SeasonStatus = "active"
	SeasonStatusCompleted SeasonStatus = "completed"
	SeasonStatusAbandoned SeasonStatus = "abandoned"
)

// Season 训练赛季，引导完成后用户设定的训练目标周期
type Season struct {
	BaseModel
	UserID              int64        `gorm:"index;not null" json:"user_id"` // public_id
	Name                string       `gorm:"type:varchar(128);not null" json:"name"`
	Goal                string       `gorm:"type:text;not null;default:''" json:"goal"`
	StartDate           time.Time    `gorm:"type:date;not null" json:"start_date"`
	DurationWeeks       int          `gorm:"not null" json:"duration_weeks"`
	TrainingDaysPerWeek int          `gorm:"not null;default:3" json:"training_days_per_week"`
	Status              SeasonStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_seasons_status" json:"status"`
}

// TableName 指定表名
func (Season) TableName() string {
	return "seasons"
}

// EndDate 赛季结束日期，由开始日期和周数推导
func (s *Season) EndDate() time.Time {
	return s.StartDate.AddDate(0, 0, s.DurationWeeks*7)
}
