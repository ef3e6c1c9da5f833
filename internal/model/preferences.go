package model

// 单位制取值，前端以整组提交

const (
	UnitKilograms   = "kg"
	UnitPounds      = "lb"
	UnitKilometres  = "km"
	UnitMiles       = "mi"
	UnitCentimetres = "cm"
	UnitInches      = "in"
)

// ValidWeightUnit 体重与负重单位取值检查
func ValidWeightUnit(u string) bool {
	return u == UnitKilograms || u == UnitPounds
}

// ValidDistanceUnit 距离单位取值检查
func ValidDistanceUnit(u string) bool {
	return u == UnitKilometres || u == UnitMiles
}

// ValidLengthUnit 身体围度单位取值检查
func ValidLengthUnit(u string) bool {
	return u == UnitCentimetres || u == UnitInches
}

// UnitPreferences 用户的单位偏好，每个用户一行
type UnitPreferences struct {
	BaseModel
	UserID              int64  `gorm:"uniqueIndex;not null" json:"user_id"` // public_id
	BodyWeightUnit      string `gorm:"type:varchar(8);not null;default:'kg'" json:"body_weight_unit"`
	LoadUnit            string `gorm:"type:varchar(8);not null;default:'kg'" json:"load_unit"`
	DistanceUnit        string `gorm:"type:varchar(8);not null;default:'km'" json:"distance_unit"`
	BodyMeasurementUnit string `gorm:"type:varchar(8);not null;default:'cm'" json:"body_measurement_unit"`
}

// TableName 指定表名
func (UnitPreferences) TableName() string {
	return "unit_preferences"
}
