package model

// UserStatus 用户状态枚举
type UserStatus string

const (
	UserStatusOnboarding UserStatus = "onboarding" // 引导中，尚未完成全部步骤
	UserStatusActive     UserStatus = "active"     // 正常使用
)

// StatusToStringMap 状态到响应字符串的映射
var StatusToStringMap = map[UserStatus]string{
	UserStatusOnboarding: "onboarding",
	UserStatusActive:     "active",
}

// Sex 性别，封闭枚举
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// ValidSex 判断字符串是否为合法的性别取值
func ValidSex(s string) bool {
	switch Sex(s) {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

// User 用户模型，个人资料在引导过程中逐步填充

type User struct {
	BaseModel
	PublicID  int64      `gorm:"uniqueIndex;not null" json:"public_id"`
	DeviceID  string     `gorm:"uniqueIndex;type:varchar(128);not null" json:"device_id"`
	Username  *string    `gorm:"uniqueIndex;type:varchar(32)" json:"username"`
	FirstName *string    `gorm:"type:varchar(64)" json:"first_name,omitempty"` // 可选，空白则不写入
	Sex       *string    `gorm:"type:varchar(16)" json:"sex,omitempty"`
	BirthYear *int       `gorm:"type:int" json:"birth_year,omitempty"`
	Status    UserStatus `gorm:"type:varchar(16);not null;default:'onboarding';index:idx_users_status" json:"status"`
	Timezone  string     `gorm:"type:varchar(64);not null;default:'Australia/Sydney'" json:"timezone"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
