package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Seasons/internal/model"
	"Seasons/internal/model/dto"
	pkgerrors "Seasons/pkg/errors"
)

type fakeSeasonStore struct {
	seasons []*model.Season
	nextID  int64
}

func newFakeSeasonStore() *fakeSeasonStore {
	return &fakeSeasonStore{nextID: 1}
}

func (f *fakeSeasonStore) Create(_ context.Context, season *model.Season) error {
	season.ID = f.nextID
	f.nextID++
	f.seasons = append(f.seasons, season)
	return nil
}

func (f *fakeSeasonStore) FindActive(_ context.Context, userID int64) (*model.Season, error) {
	for _, s := range f.seasons {
		if s.UserID == userID && s.Status == model.SeasonStatusActive {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSeasonStore) FindByID(_ context.Context, userID, seasonID int64) (*model.Season, error) {
	for _, s := range f.seasons {
		if s.UserID == userID && s.ID == seasonID {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSeasonStore) ListByUserID(_ context.Context, userID int64, limit, offset int) ([]*model.Season, error) {
	var out []*model.Season
	for _, s := range f.seasons {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSeasonStore) HasOverlap(_ context.Context, userID int64, start, end time.Time) (bool, error) {
	for _, s := range f.seasons {
		if s.UserID != userID || s.Status != model.SeasonStatusActive {
			continue
		}
		sEnd := s.EndDate()
		if s.StartDate.Before(end) && sEnd.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSeasonStore) UpdateStatus(_ context.Context, userID, seasonID int64, status model.SeasonStatus) error {
	for _, s := range f.seasons {
		if s.UserID == userID && s.ID == seasonID {
			s.Status = status
			return nil
		}
	}
	return nil
}

func validSeasonRequest() dto.CreateSeasonRequest {
	return dto.CreateSeasonRequest{
		Name:                "Winter Strength Block",
		Goal:                "squat 180kg",
		StartDate:           "2026-09-01",
		DurationWeeks:       12,
		TrainingDaysPerWeek: 4,
	}
}

func TestValidateCreateSeason(t *testing.T) {
	svc := NewSeasonService(newFakeSeasonStore())

	t.Run("valid request", func(t *testing.T) {
		start, err := svc.ValidateCreateSeason(validSeasonRequest())
		require.NoError(t, err)
		assert.Equal(t, 2026, start.Year())
	})

	tests := []struct {
		name     string
		mutate   func(*dto.CreateSeasonRequest)
		badField string
	}{
		{"empty name", func(r *dto.CreateSeasonRequest) { r.Name = "   " }, "name"},
		{"malformed date", func(r *dto.CreateSeasonRequest) { r.StartDate = "01/09/2026" }, "start_date"},
		{"zero duration", func(r *dto.CreateSeasonRequest) { r.DurationWeeks = 0 }, "duration_weeks"},
		{"excessive duration", func(r *dto.CreateSeasonRequest) { r.DurationWeeks = 500 }, "duration_weeks"},
		{"zero training days", func(r *dto.CreateSeasonRequest) { r.TrainingDaysPerWeek = 0 }, "training_days_per_week"},
		{"eight training days", func(r *dto.CreateSeasonRequest) { r.TrainingDaysPerWeek = 8 }, "training_days_per_week"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSeasonRequest()
			tt.mutate(&req)

			_, err := svc.ValidateCreateSeason(req)
			violation, ok := pkgerrors.IsFieldViolation(err)
			require.True(t, ok)
			assert.Equal(t, tt.badField, violation.Field)
		})
	}
}

func TestCreateSeason(t *testing.T) {
	ctx := context.Background()

	t.Run("creates active season", func(t *testing.T) {
		store := newFakeSeasonStore()
		svc := NewSeasonService(store)

		data, err := svc.CreateSeason(ctx, "42", validSeasonRequest())
		require.NoError(t, err)
		assert.Equal(t, "Winter Strength Block", data.Name)
		assert.Equal(t, string(model.SeasonStatusActive), data.Status)
		assert.Equal(t, "2026-09-01", data.StartDate)
		assert.Len(t, store.seasons, 1)
	})

	t.Run("overlapping active season rejected", func(t *testing.T) {
		store := newFakeSeasonStore()
		svc := NewSeasonService(store)

		_, err := svc.CreateSeason(ctx, "42", validSeasonRequest())
		require.NoError(t, err)

		overlapping := validSeasonRequest()
		overlapping.StartDate = "2026-10-01" // 落在前一个赛季的 12 周区间内
		_, err = svc.CreateSeason(ctx, "42", overlapping)
		assert.ErrorIs(t, err, pkgerrors.SeasonOverlap)
	})

	t.Run("other users do not conflict", func(t *testing.T) {
		store := newFakeSeasonStore()
		svc := NewSeasonService(store)

		_, err := svc.CreateSeason(ctx, "42", validSeasonRequest())
		require.NoError(t, err)
		_, err = svc.CreateSeason(ctx, "43", validSeasonRequest())
		assert.NoError(t, err)
	})
}

func TestGetCurrentSeason(t *testing.T) {
	ctx := context.Background()
	store := newFakeSeasonStore()
	svc := NewSeasonService(store)

	_, err := svc.GetCurrentSeason(ctx, "42")
	assert.ErrorIs(t, err, pkgerrors.SeasonNotFound)

	_, err = svc.CreateSeason(ctx, "42", validSeasonRequest())
	require.NoError(t, err)

	data, err := svc.GetCurrentSeason(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Winter Strength Block", data.Name)
}

func TestEndSeason(t *testing.T) {
	ctx := context.Background()

	t.Run("complete", func(t *testing.T) {
		store := newFakeSeasonStore()
		svc := NewSeasonService(store)

		data, err := svc.CreateSeason(ctx, "42", validSeasonRequest())
		require.NoError(t, err)

		require.NoError(t, svc.EndSeason(ctx, "42", data.ID, false))
		assert.Equal(t, model.SeasonStatusCompleted, store.seasons[0].Status)
	})

	t.Run("abandon", func(t *testing.T) {
		store := newFakeSeasonStore()
		svc := NewSeasonService(store)

		data, err := svc.CreateSeason(ctx, "42", validSeasonRequest())
		require.NoError(t, err)

		require.NoError(t, svc.EndSeason(ctx, "42", data.ID, true))
		assert.Equal(t, model.SeasonStatusAbandoned, store.seasons[0].Status)
	})

	t.Run("unknown season", func(t *testing.T) {
		svc := NewSeasonService(newFakeSeasonStore())
		assert.ErrorIs(t, svc.EndSeason(ctx, "42", "999", false), pkgerrors.SeasonNotFound)
	})

	t.Run("non numeric id", func(t *testing.T) {
		svc := NewSeasonService(newFakeSeasonStore())
		_, ok := pkgerrors.IsFieldViolation(svc.EndSeason(ctx, "42", "abc", false))
		assert.True(t, ok)
	})

	t.Run("other user's season invisible", func(t *testing.T) {
		store := newFakeSeasonStore()
		svc := NewSeasonService(store)

		data, err := svc.CreateSeason(ctx, "42", validSeasonRequest())
		require.NoError(t, err)

		assert.ErrorIs(t, svc.EndSeason(ctx, "43", data.ID, false), pkgerrors.SeasonNotFound)
	})
}
