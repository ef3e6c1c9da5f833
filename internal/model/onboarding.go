package model

import (
	"fmt"
	"time"
)

// 内置步骤名，目录顺序即完成顺序
const (
	StepUsername        = "username"
	StepPersonalInfo    = "personal_info"
	StepUnitPreferences = "unit_preferences"
)

// OnboardingStep 表示引导流程中的一个步骤定义
type OnboardingStep struct {
	Name         string `json:"name"`
	Position     int    `json:"position"`      // 1-based，目录内严格递增
	ResumeTarget string `json:"resume_target"` // 前端恢复导航用的路由标识
}

// StepCatalog 引导步骤目录，进程启动时构造一次，只读。
// 步骤总数以目录长度为准，完成判定和下一步解析都从同一份目录推导。
type StepCatalog struct {
	steps  []OnboardingStep
	byName map[string]int // name -> steps 下标
}

// NewStepCatalog 构造目录并校验：名字唯一，Position 严格递增。
func NewStepCatalog(steps []OnboardingStep) (*StepCatalog, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("step catalog must not be empty")
	}

	byName := make(map[string]int, len(steps))
	lastPos := 0
	for i, step := range steps {
		if step.Name == "" {
			return nil, fmt.Errorf("step at index %d has empty name", i)
		}
		if _, exists := byName[step.Name]; exists {
			return nil, fmt.Errorf("duplicate step name %q", step.Name)
		}
		if step.Position <= lastPos {
			return nil, fmt.Errorf("step %q position %d is not increasing", step.Name, step.Position)
		}
		byName[step.Name] = i
		lastPos = step.Position
	}

	catalog := make([]OnboardingStep, len(steps))
	copy(catalog, steps)

	return &StepCatalog{steps: catalog, byName: byName}, nil
}

// DefaultStepCatalog 产品当前的引导步骤
func DefaultStepCatalog() *StepCatalog {
	catalog, err := NewStepCatalog([]OnboardingStep{
		{Name: StepUsername, Position: 1, ResumeTarget: "/onboarding/username"},
		{Name: StepPersonalInfo, Position: 2, ResumeTarget: "/onboarding/personal-info"},
		{Name: StepUnitPreferences, Position: 3, ResumeTarget: "/onboarding/unit-preferences"},
	})
	if err != nil {
		// 内置目录写错属于编程错误
		panic("invalid default step catalog: " + err.Error())
	}
	return catalog
}

// StepByName 按名字查找步骤，未知名字返回 false 而非错误，
// 旧版本目录写入的进度记录可能带着已下线的步骤名。
func (c *StepCatalog) StepByName(name string) (OnboardingStep, bool) {
	i, ok := c.byName[name]
	if !ok {
		return OnboardingStep{}, false
	}
	return c.steps[i], true
}

// StepNumber 返回步骤在目录中的序号（1-based），未知名字返回 false。
// Position 只保证递增不保证连续，序号一律按目录下标推导。
func (c *StepCatalog) StepNumber(name string) (int, bool) {
	i, ok := c.byName[name]
	if !ok {
		return 0, false
	}
	return i + 1, true
}

// NextStep 返回紧随其后的步骤；未知步骤或已是最后一步时返回 false。
func (c *StepCatalog) NextStep(name string) (OnboardingStep, bool) {
	i, ok := c.byName[name]
	if !ok || i+1 >= len(c.steps) {
		return OnboardingStep{}, false
	}
	return c.steps[i+1], true
}

// FirstStep 第一个步骤，作为兜底的恢复目标
func (c *StepCatalog) FirstStep() OnboardingStep {
	return c.steps[0]
}

// TotalSteps 目录长度，也是最后一步的序号
func (c *StepCatalog) TotalSteps() int {
	return len(c.steps)
}

// IsComplete 根据步骤序号判断引导是否完成
func (c *StepCatalog) IsComplete(stepNumber int) bool {
	return stepNumber >= len(c.steps)
}

// Steps 返回步骤定义的拷贝
func (c *StepCatalog) Steps() []OnboardingStep {
	out := make([]OnboardingStep, len(c.steps))
	copy(out, c.steps)
	return out
}

// OnboardingProgress 每个用户一行的引导进度记录，只记录最近完成的步骤。
// user_id 上有唯一约束，写入走 upsert，永远不会出现同一用户两行。
type OnboardingProgress struct {
	BaseModel
	UserID            int64     `gorm:"uniqueIndex;not null" json:"user_id"` // public_id
	CurrentStepName   string    `gorm:"type:varchar(64);not null" json:"current_step_name"`
	CurrentStepNumber int       `gorm:"not null" json:"current_step_number"`
	CompletedAt       time.Time `gorm:"not null" json:"completed_at"` // 最近一次步骤完成时间，每次 upsert 重写
}

// TableName 指定表名
func (OnboardingProgress) TableName() string {
	return "onboarding_progress"
}
