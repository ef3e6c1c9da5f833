package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Seasons/internal/model"
	pkgerrors "Seasons/pkg/errors"
)

func TestGetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("profile with preferences", func(t *testing.T) {
		profiles := newFakeProfileStore()
		prefs := newFakePreferencesStore()
		svc := NewProfileService(profiles, prefs)

		profiles.users[42] = &model.User{
			PublicID:  42,
			DeviceID:  "device-test",
			Username:  strPtr("lifter_01"),
			FirstName: strPtr("Sam"),
			Status:    model.UserStatusActive,
		}
		prefs.rows[42] = &model.UnitPreferences{
			UserID:         42,
			BodyWeightUnit: "lb",
			LoadUnit:       "lb",
			DistanceUnit:   "mi",
		}

		data, err := svc.GetProfile(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, "42", data.ID)
		assert.Equal(t, "lifter_01", data.Username)
		assert.Equal(t, "Sam", data.FirstName)
		assert.Equal(t, "active", data.Status)
		require.NotNil(t, data.Units)
		assert.Equal(t, "mi", data.Units.DistanceUnit)
	})

	t.Run("profile without preferences", func(t *testing.T) {
		profiles := newFakeProfileStore()
		svc := NewProfileService(profiles, newFakePreferencesStore())
		profiles.users[42] = &model.User{PublicID: 42, DeviceID: "device-test", Status: model.UserStatusOnboarding}

		data, err := svc.GetProfile(ctx, "42")
		require.NoError(t, err)
		assert.Empty(t, data.Username)
		assert.Nil(t, data.Units)
		assert.Equal(t, "onboarding", data.Status)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := NewProfileService(newFakeProfileStore(), newFakePreferencesStore())

		_, err := svc.GetProfile(ctx, "42")
		assert.ErrorIs(t, err, pkgerrors.UserNotFound)
	})
}

func TestActivateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("onboarding user activated", func(t *testing.T) {
		profiles := newFakeProfileStore()
		svc := NewProfileService(profiles, newFakePreferencesStore())
		profiles.users[42] = &model.User{PublicID: 42, Status: model.UserStatusOnboarding}

		require.NoError(t, svc.ActivateUser(ctx, 42))
		assert.Equal(t, model.UserStatusActive, profiles.users[42].Status)
	})

	t.Run("already active is a no-op", func(t *testing.T) {
		profiles := newFakeProfileStore()
		svc := NewProfileService(profiles, newFakePreferencesStore())
		profiles.users[42] = &model.User{PublicID: 42, Status: model.UserStatusActive}

		require.NoError(t, svc.ActivateUser(ctx, 42))
		assert.Zero(t, profiles.updateCalls)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := NewProfileService(newFakeProfileStore(), newFakePreferencesStore())
		assert.ErrorIs(t, svc.ActivateUser(ctx, 99), pkgerrors.UserNotFound)
	})
}
