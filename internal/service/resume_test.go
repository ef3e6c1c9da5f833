package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Seasons/internal/model"
	"Seasons/internal/model/dto"
	pkgerrors "Seasons/pkg/errors"
)

func newResumeFixture(t *testing.T) (*ResumeService, *fakeProgressStore) {
	t.Helper()
	progress := newFakeProgressStore()
	return NewResumeService(model.DefaultStepCatalog(), progress), progress
}

func seedProgress(progress *fakeProgressStore, userID int64, stepName string, stepNumber int) {
	progress.rows[userID] = &model.OnboardingProgress{
		UserID:            userID,
		CurrentStepName:   stepName,
		CurrentStepNumber: stepNumber,
	}
}

func TestResolveResume(t *testing.T) {
	ctx := context.Background()
	catalog := model.DefaultStepCatalog()

	t.Run("no record starts from first step", func(t *testing.T) {
		svc, _ := newResumeFixture(t)

		data, err := svc.ResolveResume(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, dto.ResumeStateResume, data.State)
		assert.Equal(t, catalog.FirstStep().ResumeTarget, data.ResumeTarget)
	})

	t.Run("resume moves forward, never repeats completed step", func(t *testing.T) {
		svc, progress := newResumeFixture(t)
		seedProgress(progress, 42, model.StepUsername, 1)

		data, err := svc.ResolveResume(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, dto.ResumeStateResume, data.State)

		next, ok := catalog.NextStep(model.StepUsername)
		require.True(t, ok)
		assert.Equal(t, next.ResumeTarget, data.ResumeTarget)
	})

	t.Run("last completed step means complete", func(t *testing.T) {
		svc, progress := newResumeFixture(t)
		seedProgress(progress, 42, model.StepUnitPreferences, catalog.TotalSteps())

		data, err := svc.ResolveResume(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, dto.ResumeStateComplete, data.State)
		assert.Empty(t, data.ResumeTarget)
	})

	t.Run("stored number ignored when name resolves", func(t *testing.T) {
		// 旧版本目录写下的序号不可信，按名字在当前目录里的位置重推
		svc, progress := newResumeFixture(t)
		seedProgress(progress, 42, model.StepUsername, 99)

		data, err := svc.ResolveResume(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, dto.ResumeStateResume, data.State)

		next, _ := catalog.NextStep(model.StepUsername)
		assert.Equal(t, next.ResumeTarget, data.ResumeTarget)
	})

	t.Run("unknown step name falls back to first step", func(t *testing.T) {
		svc, progress := newResumeFixture(t)
		seedProgress(progress, 42, "retired_step", 1)

		data, err := svc.ResolveResume(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, dto.ResumeStateResume, data.State)
		assert.Equal(t, catalog.FirstStep().ResumeTarget, data.ResumeTarget)
	})

	t.Run("unknown step name with terminal number counts as complete", func(t *testing.T) {
		svc, progress := newResumeFixture(t)
		seedProgress(progress, 42, "retired_step", catalog.TotalSteps())

		data, err := svc.ResolveResume(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, dto.ResumeStateComplete, data.State)
	})

	t.Run("store failure degrades to first step", func(t *testing.T) {
		// 恢复导航不能挡住登录
		svc, progress := newResumeFixture(t)
		progress.findErr = errors.New("connection refused")

		data, err := svc.ResolveResume(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, dto.ResumeStateResume, data.State)
		assert.Equal(t, catalog.FirstStep().ResumeTarget, data.ResumeTarget)
	})

	t.Run("malformed user id", func(t *testing.T) {
		svc, _ := newResumeFixture(t)

		_, err := svc.ResolveResume(ctx, "not-a-number")
		assert.ErrorIs(t, err, pkgerrors.InvalidUserID)
	})
}

func TestResolveForUser(t *testing.T) {
	ctx := context.Background()
	svc, progress := newResumeFixture(t)
	seedProgress(progress, 7, model.StepPersonalInfo, 2)

	data := svc.ResolveForUser(ctx, 7)
	require.NotNil(t, data)
	assert.Equal(t, dto.ResumeStateResume, data.State)

	next, _ := model.DefaultStepCatalog().NextStep(model.StepPersonalInfo)
	assert.Equal(t, next.ResumeTarget, data.ResumeTarget)
}
