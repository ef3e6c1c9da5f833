package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStepCatalog_Validation(t *testing.T) {
	t.Run("empty catalog rejected", func(t *testing.T) {
		_, err := NewStepCatalog(nil)
		assert.Error(t, err)
	})

	t.Run("empty step name rejected", func(t *testing.T) {
		_, err := NewStepCatalog([]OnboardingStep{
			{Name: "", Position: 1},
		})
		assert.Error(t, err)
	})

	t.Run("duplicate step name rejected", func(t *testing.T) {
		_, err := NewStepCatalog([]OnboardingStep{
			{Name: "username", Position: 1},
			{Name: "username", Position: 2},
		})
		assert.Error(t, err)
	})

	t.Run("non increasing position rejected", func(t *testing.T) {
		_, err := NewStepCatalog([]OnboardingStep{
			{Name: "a", Position: 2},
			{Name: "b", Position: 2},
		})
		assert.Error(t, err)
	})

	t.Run("gapped positions accepted", func(t *testing.T) {
		catalog, err := NewStepCatalog([]OnboardingStep{
			{Name: "a", Position: 10},
			{Name: "b", Position: 20},
			{Name: "c", Position: 35},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, catalog.TotalSteps())
	})
}

func TestStepCatalog_StepNumber(t *testing.T) {
	// Position 不连续时序号仍按目录下标推导
	catalog, err := NewStepCatalog([]OnboardingStep{
		{Name: "a", Position: 5},
		{Name: "b", Position: 17},
		{Name: "c", Position: 40},
	})
	require.NoError(t, err)

	num, ok := catalog.StepNumber("a")
	assert.True(t, ok)
	assert.Equal(t, 1, num)

	num, ok = catalog.StepNumber("c")
	assert.True(t, ok)
	assert.Equal(t, 3, num)

	_, ok = catalog.StepNumber("unknown")
	assert.False(t, ok)
}

func TestStepCatalog_Lookup(t *testing.T) {
	catalog := DefaultStepCatalog()

	t.Run("step by name", func(t *testing.T) {
		step, ok := catalog.StepByName(StepPersonalInfo)
		require.True(t, ok)
		assert.Equal(t, StepPersonalInfo, step.Name)
		assert.NotEmpty(t, step.ResumeTarget)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, ok := catalog.StepByName("does_not_exist")
		assert.False(t, ok)
	})

	t.Run("next step follows catalog order", func(t *testing.T) {
		next, ok := catalog.NextStep(StepUsername)
		require.True(t, ok)
		assert.Equal(t, StepPersonalInfo, next.Name)
	})

	t.Run("last step has no next", func(t *testing.T) {
		_, ok := catalog.NextStep(StepUnitPreferences)
		assert.False(t, ok)
	})

	t.Run("first step", func(t *testing.T) {
		assert.Equal(t, StepUsername, catalog.FirstStep().Name)
	})
}

func TestStepCatalog_IsComplete(t *testing.T) {
	catalog := DefaultStepCatalog()
	total := catalog.TotalSteps()

	assert.False(t, catalog.IsComplete(0))
	assert.False(t, catalog.IsComplete(total-1))
	assert.True(t, catalog.IsComplete(total))
	// 旧目录更长时存下的序号可能超过当前总数，同样视为完成
	assert.True(t, catalog.IsComplete(total+2))
}

func TestStepCatalog_StepsReturnsCopy(t *testing.T) {
	catalog := DefaultStepCatalog()

	steps := catalog.Steps()
	steps[0].Name = "mutated"

	step, ok := catalog.StepByName(StepUsername)
	require.True(t, ok)
	assert.Equal(t, StepUsername, step.Name)
}
