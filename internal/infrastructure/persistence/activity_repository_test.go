package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/activityhub/backend/internal/domain/checkin"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/activityhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormActivityRepository_SaveAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormActivityRepository(db)
	ctx := context.Background()

	organiser := uuid.New()
	staffA, staffB := uuid.New(), uuid.New()
	a := newTestActivity(t, activity.SiteVolunteer, organiser, "Beach cleanup", false)
	require.NoError(t, a.AssignStaff(activity.DefaultPolicies().For(activity.SiteVolunteer), []uuid.UUID{staffA, staffB}))
	require.NoError(t, repo.Save(ctx, a))

	found, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beach cleanup", found.Title)
	assert.Equal(t, activity.StatusInReview, found.Status)
	assert.Equal(t, activity.SiteVolunteer, found.Site)
	assert.Equal(t, organiser, found.OrganiserID)
	assert.ElementsMatch(t, []uuid.UUID{staffA, staffB}, found.StaffIDs)
	assert.True(t, found.StartTime.Equal(testBase))

	t.Run("replaces staff on save", func(t *testing.T) {
		require.NoError(t, found.AssignStaff(activity.DefaultPolicies().For(activity.SiteVolunteer), []uuid.UUID{staffB}))
		require.NoError(t, repo.Save(ctx, found))

		again, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{staffB}, again.StaffIDs)
	})

	t.Run("missing activity is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindByIDs skips unknown ids", func(t *testing.T) {
		list, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, a.ID, list[0].ID)

		empty, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestGormActivityRepository_SaveWithVersion(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormActivityRepository(db)
	ctx := context.Background()

	a := newTestActivity(t, activity.SiteEtogether, uuid.New(), "Picnic", false)
	require.NoError(t, repo.Save(ctx, a))

	first, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)

	expected := first.Version
	require.NoError(t, first.Update(activity.Details{
		Title:     "Picnic in the park",
		StartTime: testBase,
		EndTime:   testBase.Add(time.Hour),
	}))
	require.NoError(t, repo.SaveWithVersion(ctx, first, expected))

	require.NoError(t, second.Update(activity.Details{
		Title:     "Stale edit",
		StartTime: testBase,
		EndTime:   testBase.Add(time.Hour),
	}))
	err = repo.SaveWithVersion(ctx, second, expected)
	assert.ErrorIs(t, err, shared.ErrConflict)

	stored, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Picnic in the park", stored.Title)
	assert.Equal(t, expected+1, stored.Version)
}

func TestGormActivityRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormActivityRepository(db)
	records := NewGormCheckRecordRepository(db)
	registrations := NewGormRegistrationRepository(db)
	ctx := context.Background()

	a := newTestActivity(t, activity.SiteVolunteer, uuid.New(), "Food bank", false)
	require.NoError(t, a.AssignStaff(activity.DefaultPolicies().For(activity.SiteVolunteer), []uuid.UUID{uuid.New()}))
	require.NoError(t, repo.Save(ctx, a))

	user := uuid.New()
	reg, err := activity.NewRegistration(a.ID, user, "helper", "")
	require.NoError(t, err)
	require.NoError(t, registrations.Create(ctx, reg))
	rec, err := checkin.NewCheckRecord(a.ID, user, testBase, nil)
	require.NoError(t, err)
	require.NoError(t, records.Create(ctx, rec))

	require.NoError(t, repo.Delete(ctx, a.ID))

	_, err = repo.FindByID(ctx, a.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	for _, child := range []any{&models.CheckRecordModel{}, &models.RegistrationModel{}, &models.ActivityStaffModel{}} {
		var n int64
		require.NoError(t, db.Model(child).Where("activity_id = ?", a.ID).Count(&n).Error)
		assert.Zero(t, n)
	}

	assert.ErrorIs(t, repo.Delete(ctx, a.ID), shared.ErrNotFound)
}

func TestGormActivityRepository_FindAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormActivityRepository(db)
	ctx := context.Background()

	viewer, other, staff := uuid.New(), uuid.New(), uuid.New()

	published := newTestActivity(t, activity.SiteEtogether, other, "Board games", false)
	ownDraft := newTestActivity(t, activity.SiteEtogether, viewer, "My draft", true)
	otherDraft := newTestActivity(t, activity.SiteEtogether, other, "Hidden draft", true)
	staffed := newTestActivity(t, activity.SiteVolunteer, other, "Staffed review", false)
	require.NoError(t, staffed.AssignStaff(activity.DefaultPolicies().For(activity.SiteVolunteer), []uuid.UUID{staff}))
	classAct := newTestActivity(t, activity.SiteClass, other, "Cooking class", false)
	for _, a := range []*activity.Activity{published, ownDraft, otherDraft, staffed, classAct} {
		require.NoError(t, repo.Save(ctx, a))
	}

	ids := func(list []*activity.Activity) []uuid.UUID {
		out := make([]uuid.UUID, len(list))
		for i, a := range list {
			out[i] = a.ID
		}
		return out
	}

	t.Run("visibility for organiser", func(t *testing.T) {
		list, total, err := repo.FindAll(ctx, activity.Filter{VisibleTo: &viewer})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.ElementsMatch(t, []uuid.UUID{published.ID, ownDraft.ID, classAct.ID}, ids(list))
	})

	t.Run("visibility for staff", func(t *testing.T) {
		list, _, err := repo.FindAll(ctx, activity.Filter{VisibleTo: &staff})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{published.ID, staffed.ID, classAct.ID}, ids(list))
	})

	t.Run("site and status", func(t *testing.T) {
		site := activity.SiteEtogether
		status := activity.StatusDraft
		list, total, err := repo.FindAll(ctx, activity.Filter{Site: &site, Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.ElementsMatch(t, []uuid.UUID{ownDraft.ID, otherDraft.ID}, ids(list))
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		list, _, err := repo.FindAll(ctx, activity.Filter{Filter: shared.Filter{Search: "COOKING"}})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{classAct.ID}, ids(list))
	})

	t.Run("paginates and defaults page size", func(t *testing.T) {
		list, total, err := repo.FindAll(ctx, activity.Filter{Filter: shared.Filter{Page: 2, PageSize: 2, OrderBy: "title", OrderDir: "asc"}})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, list, 2)
		assert.Equal(t, "Hidden draft", list[0].Title)
		assert.Equal(t, "My draft", list[1].Title)

		all, _, err := repo.FindAll(ctx, activity.Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})
}
