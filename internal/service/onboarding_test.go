package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Seasons/internal/model"
	"Seasons/internal/model/dto"
	pkgerrors "Seasons/pkg/errors"
)

// ========== 内存版存储实现，单测专用 ==========

type fakeProfileStore struct {
	users       map[int64]*model.User // public_id -> user
	taken       map[string]bool       // 其他用户占用的用户名
	updateCalls int
	findErr     error
	availErr    error
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		users: make(map[int64]*model.User),
		taken: make(map[string]bool),
	}
}

func (f *fakeProfileStore) FindByPublicID(_ context.Context, publicID int64) (*model.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.users[publicID], nil
}

func (f *fakeProfileStore) UpdateByPublicID(_ context.Context, publicID int64, updates map[string]interface{}) error {
	f.updateCalls++
	user, ok := f.users[publicID]
	if !ok {
		return errors.New("user not found")
	}
	if v, ok := updates["username"]; ok {
		name := v.(string)
		user.Username = &name
	}
	if v, ok := updates["sex"]; ok {
		sex := v.(string)
		user.Sex = &sex
	}
	if v, ok := updates["birth_year"]; ok {
		year := v.(int)
		user.BirthYear = &year
	}
	if v, ok := updates["first_name"]; ok {
		name := v.(string)
		user.FirstName = &name
	}
	if v, ok := updates["status"]; ok {
		user.Status = model.UserStatus(v.(string))
	}
	return nil
}

func (f *fakeProfileStore) IsUsernameAvailable(_ context.Context, username string) (bool, error) {
	if f.availErr != nil {
		return false, f.availErr
	}
	return !f.taken[username], nil
}

type fakePreferencesStore struct {
	rows        map[int64]*model.UnitPreferences
	upsertCalls int
}

func newFakePreferencesStore() *fakePreferencesStore {
	return &fakePreferencesStore{rows: make(map[int64]*model.UnitPreferences)}
}

func (f *fakePreferencesStore) Upsert(_ context.Context, prefs *model.UnitPreferences) error {
	f.upsertCalls++
	f.rows[prefs.UserID] = prefs
	return nil
}

func (f *fakePreferencesStore) FindByUserID(_ context.Context, userID int64) (*model.UnitPreferences, error) {
	return f.rows[userID], nil
}

type fakeProgressStore struct {
	rows        map[int64]*model.OnboardingProgress
	upsertCalls int
	findErr     error
	upsertErr   error
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{rows: make(map[int64]*model.OnboardingProgress)}
}

func (f *fakeProgressStore) Upsert(_ context.Context, userID int64, stepName string, stepNumber int) (int64, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upsertCalls++
	existing, ok := f.rows[userID]
	if !ok {
		record := &model.OnboardingProgress{
			UserID:            userID,
			CurrentStepName:   stepName,
			CurrentStepNumber: stepNumber,
		}
		record.ID = userID // 单测里 ID 取值无所谓，稳定即可
		f.rows[userID] = record
		return record.ID, nil
	}
	// 覆盖写，行数不变
	existing.CurrentStepName = stepName
	existing.CurrentStepNumber = stepNumber
	return existing.ID, nil
}

func (f *fakeProgressStore) FindByUserID(_ context.Context, userID int64) (*model.OnboardingProgress, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.rows[userID], nil
}

func (f *fakeProgressStore) Delete(_ context.Context, userID int64) error {
	delete(f.rows, userID)
	return nil
}

// ========== 装配 ==========

type onboardingFixture struct {
	svc      *OnboardingService
	profiles *fakeProfileStore
	prefs    *fakePreferencesStore
	progress *fakeProgressStore
}

func newOnboardingFixture(t *testing.T) *onboardingFixture {
	t.Helper()
	profiles := newFakeProfileStore()
	prefs := newFakePreferencesStore()
	progress := newFakeProgressStore()
	svc := NewOnboardingService(model.DefaultStepCatalog(), profiles, prefs, progress, nil)
	return &onboardingFixture{svc: svc, profiles: profiles, prefs: prefs, progress: progress}
}

func (fx *onboardingFixture) addUser(publicID int64) *model.User {
	user := &model.User{
		PublicID: publicID,
		DeviceID: "device-test",
		Status:   model.UserStatusOnboarding,
	}
	fx.profiles.users[publicID] = user
	return user
}

func strPtr(s string) *string { return &s }

// ========== 用户名步骤 ==========

func TestCompleteUsernameStep(t *testing.T) {
	ctx := context.Background()

	t.Run("valid username recorded", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)

		result, msg, err := fx.svc.CompleteUsernameStep(ctx, "42", dto.CompleteUsernameRequest{Username: "lifter_01"})
		require.NoError(t, err)
		assert.Nil(t, msg)
		assert.Equal(t, model.StepUsername, result.StepName)
		assert.Equal(t, 1, result.StepNumber)
		assert.False(t, result.Completed)

		record := fx.progress.rows[42]
		require.NotNil(t, record)
		assert.Equal(t, model.StepUsername, record.CurrentStepName)
		assert.Equal(t, 1, record.CurrentStepNumber)
	})

	t.Run("username normalized before storing", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)

		_, _, err := fx.svc.CompleteUsernameStep(ctx, "42", dto.CompleteUsernameRequest{Username: "  Lifter_01  "})
		require.NoError(t, err)
		require.NotNil(t, fx.profiles.users[42].Username)
		assert.Equal(t, "lifter_01", *fx.profiles.users[42].Username)
	})

	t.Run("validation failure writes nothing", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)

		for _, bad := range []string{"", "ab", "1starts_with_digit", "has space", strings.Repeat("x", 31)} {
			_, _, err := fx.svc.CompleteUsernameStep(ctx, "42", dto.CompleteUsernameRequest{Username: bad})
			_, isViolation := pkgerrors.IsFieldViolation(err)
			assert.True(t, isViolation, "username %q should be rejected", bad)
		}

		assert.Zero(t, fx.profiles.updateCalls)
		assert.Zero(t, fx.progress.upsertCalls)
	})

	t.Run("taken username rejected without progress write", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)
		fx.profiles.taken["lifter_01"] = true

		_, _, err := fx.svc.CompleteUsernameStep(ctx, "42", dto.CompleteUsernameRequest{Username: "lifter_01"})
		assert.ErrorIs(t, err, pkgerrors.UsernameTaken)
		assert.Zero(t, fx.progress.upsertCalls)
	})

	t.Run("redoing own username skips availability check", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		user := fx.addUser(42)
		user.Username = strPtr("lifter_01")
		// 唯一索引角度自己的名字也算占用
		fx.profiles.taken["lifter_01"] = true

		_, _, err := fx.svc.CompleteUsernameStep(ctx, "42", dto.CompleteUsernameRequest{Username: "lifter_01"})
		assert.NoError(t, err)
		assert.Equal(t, 1, fx.progress.upsertCalls)
	})

	t.Run("unknown user", func(t *testing.T) {
		fx := newOnboardingFixture(t)

		_, _, err := fx.svc.CompleteUsernameStep(ctx, "99", dto.CompleteUsernameRequest{Username: "lifter_01"})
		assert.ErrorIs(t, err, pkgerrors.UserNotFound)
	})

	t.Run("malformed user id", func(t *testing.T) {
		fx := newOnboardingFixture(t)

		_, _, err := fx.svc.CompleteUsernameStep(ctx, "abc", dto.CompleteUsernameRequest{Username: "lifter_01"})
		assert.ErrorIs(t, err, pkgerrors.InvalidUserID)
	})
}

// ========== 个人资料步骤 ==========

func TestCompletePersonalInfoStep(t *testing.T) {
	ctx := context.Background()

	t.Run("valid submission", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)

		result, msg, err := fx.svc.CompletePersonalInfoStep(ctx, "42", dto.CompletePersonalInfoRequest{
			FirstName: strPtr("Sam"),
			Sex:       "female",
			BirthYear: 1990,
		})
		require.NoError(t, err)
		assert.Nil(t, msg)
		assert.Equal(t, 2, result.StepNumber)
		assert.False(t, result.Completed)

		user := fx.profiles.users[42]
		require.NotNil(t, user.Sex)
		assert.Equal(t, "female", *user.Sex)
		require.NotNil(t, user.BirthYear)
		assert.Equal(t, 1990, *user.BirthYear)
	})

	t.Run("first name optional", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)

		_, _, err := fx.svc.CompletePersonalInfoStep(ctx, "42", dto.CompletePersonalInfoRequest{
			Sex:       "male",
			BirthYear: 1985,
		})
		require.NoError(t, err)
		assert.Nil(t, fx.profiles.users[42].FirstName)
	})

	t.Run("invalid sex rejected before writes", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)

		_, _, err := fx.svc.CompletePersonalInfoStep(ctx, "42", dto.CompletePersonalInfoRequest{
			Sex:       "unknown",
			BirthYear: 1990,
		})
		violation, ok := pkgerrors.IsFieldViolation(err)
		require.True(t, ok)
		assert.Equal(t, "sex", violation.Field)
		assert.Zero(t, fx.profiles.updateCalls)
		assert.Zero(t, fx.progress.upsertCalls)
	})

	t.Run("blank first name omitted", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)

		_, _, err := fx.svc.CompletePersonalInfoStep(ctx, "42", dto.CompletePersonalInfoRequest{
			FirstName: strPtr("   "),
			Sex:       "female",
			BirthYear: 1990,
		})
		require.NoError(t, err)
		assert.Nil(t, fx.profiles.users[42].FirstName)
	})

	t.Run("birth year bounds", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)

		for _, year := range []int{1850, 1899, time.Now().Year() + 1} {
			_, _, err := fx.svc.CompletePersonalInfoStep(ctx, "42", dto.CompletePersonalInfoRequest{
				Sex:       "other",
				BirthYear: year,
			})
			violation, ok := pkgerrors.IsFieldViolation(err)
			require.True(t, ok, "year %d should be rejected", year)
			assert.Equal(t, "birth_year", violation.Field)
		}
	})
}

// ========== 单位偏好步骤（最后一步） ==========

func TestCompleteUnitPreferencesStep(t *testing.T) {
	ctx := context.Background()

	validPayload := dto.UnitPreferencesPayload{
		BodyWeightUnit:      "kg",
		LoadUnit:            "lb",
		DistanceUnit:        "km",
		BodyMeasurementUnit: "cm",
	}

	t.Run("final step marks onboarding complete", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)

		result, msg, err := fx.svc.CompleteUnitPreferencesStep(ctx, "42", validPayload)
		require.NoError(t, err)
		assert.True(t, result.Completed)
		assert.Equal(t, fx.svc.Catalog().TotalSteps(), result.StepNumber)

		// 完成事件交给 Handler 投递
		require.NotNil(t, msg)
		assert.Equal(t, int64(42), msg.UserID)
		assert.Equal(t, model.StepUnitPreferences, msg.FinalStep)
		assert.NotEmpty(t, msg.MessageID)
		assert.NotEmpty(t, msg.CompletedAt)

		prefs := fx.prefs.rows[42]
		require.NotNil(t, prefs)
		assert.Equal(t, "lb", prefs.LoadUnit)
	})

	t.Run("invalid unit rejected before writes", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)

		bad := validPayload
		bad.DistanceUnit = "furlong"
		_, _, err := fx.svc.CompleteUnitPreferencesStep(ctx, "42", bad)
		violation, ok := pkgerrors.IsFieldViolation(err)
		require.True(t, ok)
		assert.Equal(t, "distance_unit", violation.Field)
		assert.Zero(t, fx.prefs.upsertCalls)
		assert.Zero(t, fx.progress.upsertCalls)
	})

	t.Run("whole group validated, first violation wins", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)

		_, _, err := fx.svc.CompleteUnitPreferencesStep(ctx, "42", dto.UnitPreferencesPayload{})
		violation, ok := pkgerrors.IsFieldViolation(err)
		require.True(t, ok)
		assert.Equal(t, "body_weight_unit", violation.Field)
	})
}

// ========== 进度语义 ==========

func TestProgressSingleRowSemantics(t *testing.T) {
	ctx := context.Background()
	fx := newOnboardingFixture(t)
	fx.addUser(42)

	_, _, err := fx.svc.CompleteUsernameStep(ctx, "42", dto.CompleteUsernameRequest{Username: "lifter_01"})
	require.NoError(t, err)
	_, _, err = fx.svc.CompletePersonalInfoStep(ctx, "42", dto.CompletePersonalInfoRequest{Sex: "male", BirthYear: 1990})
	require.NoError(t, err)

	// 两次完成之后仍只有一行
	assert.Len(t, fx.progress.rows, 1)
	assert.Equal(t, model.StepPersonalInfo, fx.progress.rows[42].CurrentStepName)
	assert.Equal(t, 2, fx.progress.rows[42].CurrentStepNumber)
}

func TestRedoEarlierStepRewindsRecord(t *testing.T) {
	ctx := context.Background()
	fx := newOnboardingFixture(t)
	fx.addUser(42)

	_, _, err := fx.svc.CompletePersonalInfoStep(ctx, "42", dto.CompletePersonalInfoRequest{Sex: "male", BirthYear: 1990})
	require.NoError(t, err)
	require.Equal(t, 2, fx.progress.rows[42].CurrentStepNumber)

	// 回头重做第一步，进度记录跟着回写
	result, msg, err := fx.svc.CompleteUsernameStep(ctx, "42", dto.CompleteUsernameRequest{Username: "lifter_01"})
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.False(t, result.Completed)
	assert.Equal(t, model.StepUsername, fx.progress.rows[42].CurrentStepName)
	assert.Equal(t, 1, fx.progress.rows[42].CurrentStepNumber)
}

func TestGetProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("no record yet", func(t *testing.T) {
		fx := newOnboardingFixture(t)

		data, err := fx.svc.GetProgress(ctx, "42")
		require.NoError(t, err)
		assert.Empty(t, data.CurrentStepName)
		assert.Zero(t, data.CurrentStepNumber)
		assert.False(t, data.Completed)
		assert.Equal(t, fx.svc.Catalog().TotalSteps(), data.TotalSteps)
	})

	t.Run("after completing a step", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.addUser(42)

		_, _, err := fx.svc.CompleteUsernameStep(ctx, "42", dto.CompleteUsernameRequest{Username: "lifter_01"})
		require.NoError(t, err)

		data, err := fx.svc.GetProgress(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, model.StepUsername, data.CurrentStepName)
		assert.Equal(t, 1, data.CurrentStepNumber)
		assert.False(t, data.Completed)
	})
}

func TestHasCompletedOnboarding(t *testing.T) {
	ctx := context.Background()
	fx := newOnboardingFixture(t)
	fx.addUser(42)

	done, err := fx.svc.HasCompletedOnboarding(ctx, 42)
	require.NoError(t, err)
	assert.False(t, done)

	_, _, err = fx.svc.CompleteUnitPreferencesStep(ctx, "42", dto.UnitPreferencesPayload{
		BodyWeightUnit:      "kg",
		LoadUnit:            "kg",
		DistanceUnit:        "km",
		BodyMeasurementUnit: "cm",
	})
	require.NoError(t, err)

	done, err = fx.svc.HasCompletedOnboarding(ctx, 42)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestCheckUsernameAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("available", func(t *testing.T) {
		fx := newOnboardingFixture(t)

		data, err := fx.svc.CheckUsernameAvailability(ctx, "Lifter_01")
		require.NoError(t, err)
		assert.Equal(t, "lifter_01", data.Username)
		assert.True(t, data.Available)
	})

	t.Run("taken", func(t *testing.T) {
		fx := newOnboardingFixture(t)
		fx.profiles.taken["lifter_01"] = true

		data, err := fx.svc.CheckUsernameAvailability(ctx, "lifter_01")
		require.NoError(t, err)
		assert.False(t, data.Available)
	})

	t.Run("malformed name reported unavailable, not an error", func(t *testing.T) {
		fx := newOnboardingFixture(t)

		data, err := fx.svc.CheckUsernameAvailability(ctx, "x")
		require.NoError(t, err)
		assert.False(t, data.Available)
	})
}

func TestResetProgress(t *testing.T) {
	ctx := context.Background()
	fx := newOnboardingFixture(t)
	fx.addUser(42)

	_, _, err := fx.svc.CompleteUsernameStep(ctx, "42", dto.CompleteUsernameRequest{Username: "lifter_01"})
	require.NoError(t, err)

	require.NoError(t, fx.svc.ResetProgress(ctx, 42))
	assert.Empty(t, fx.progress.rows)

	// 幂等，重复清除不报错
	assert.NoError(t, fx.svc.ResetProgress(ctx, 42))
}
