package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/internal/repository"
	"github.com/teampulse/backend/pkg/testutil"
	"github.com/teampulse/backend/pkg/xcontext"
	"gorm.io/gorm"
)

func Test_sprintRepository_CreateIfNotExists(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	sprintRepo := repository.NewSprintRepository()

	first := &entity.Sprint{
		Base:         entity.Base{ID: uuid.NewString()},
		CommunityID:  testutil.Community1.ID,
		SprintNumber: 1,
		StartDate:    time.Now(),
		EndDate:      time.Now().AddDate(0, 0, 6),
		Status:       entity.SprintActive,
	}

	created, err := sprintRepo.CreateIfNotExists(ctx, first)
	require.NoError(t, err)
	require.True(t, created)

	// A concurrent creator loses the race and receives the winner's row.
	second := &entity.Sprint{
		Base:         entity.Base{ID: uuid.NewString()},
		CommunityID:  testutil.Community1.ID,
		SprintNumber: 1,
		StartDate:    time.Now(),
		EndDate:      time.Now().AddDate(0, 0, 6),
		Status:       entity.SprintActive,
	}

	created, err = sprintRepo.CreateIfNotExists(ctx, second)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)

	var count int64
	err = xcontext.DB(ctx).Model(&entity.Sprint{}).
		Where("community_id=?", testutil.Community1.ID).
		Count(&count).Error
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func Test_sprintRepository_MarkCompleted(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	sprintRepo := repository.NewSprintRepository()

	sprint := &entity.Sprint{
		Base:         entity.Base{ID: uuid.NewString()},
		CommunityID:  testutil.Community1.ID,
		SprintNumber: 1,
		StartDate:    time.Now().AddDate(0, 0, -7),
		EndDate:      time.Now().AddDate(0, 0, -1),
		Status:       entity.SprintActive,
	}

	_, err := sprintRepo.CreateIfNotExists(ctx, sprint)
	require.NoError(t, err)

	require.NoError(t, sprintRepo.MarkCompleted(ctx, sprint.ID))

	// A second completion observes the transition already happened.
	err = sprintRepo.MarkCompleted(ctx, sprint.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Completed sprints refuse new statistics.
	err = sprintRepo.UpdateSyncStats(ctx, sprint.ID, []string{"user1"}, 10, 5, time.Now())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_sprintRepository_GetLastSprintNumber(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	sprintRepo := repository.NewSprintRepository()

	last, err := sprintRepo.GetLastSprintNumber(ctx, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, 0, last)

	for i := 1; i <= 3; i++ {
		sprint := &entity.Sprint{
			Base:         entity.Base{ID: uuid.NewString()},
			CommunityID:  testutil.Community1.ID,
			SprintNumber: i,
			Status:       entity.SprintCompleted,
		}
		_, err := sprintRepo.CreateIfNotExists(ctx, sprint)
		require.NoError(t, err)
	}

	last, err = sprintRepo.GetLastSprintNumber(ctx, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, 3, last)
}

func Test_sprintRepository_GetCurrent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	sprintRepo := repository.NewSprintRepository()

	now := time.Now()
	expired := &entity.Sprint{
		Base:         entity.Base{ID: uuid.NewString()},
		CommunityID:  testutil.Community1.ID,
		SprintNumber: 1,
		StartDate:    now.AddDate(0, 0, -14),
		EndDate:      now.AddDate(0, 0, -8),
		Status:       entity.SprintActive,
	}
	_, err := sprintRepo.CreateIfNotExists(ctx, expired)
	require.NoError(t, err)

	// An active sprint whose window has passed is not current.
	_, err = sprintRepo.GetCurrent(ctx, testutil.Community1.ID, now)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	current := &entity.Sprint{
		Base:         entity.Base{ID: uuid.NewString()},
		CommunityID:  testutil.Community1.ID,
		SprintNumber: 2,
		StartDate:    now.AddDate(0, 0, -1),
		EndDate:      now.AddDate(0, 0, 5),
		Status:       entity.SprintActive,
	}
	_, err = sprintRepo.CreateIfNotExists(ctx, current)
	require.NoError(t, err)

	found, err := sprintRepo.GetCurrent(ctx, testutil.Community1.ID, now)
	require.NoError(t, err)
	require.Equal(t, current.ID, found.ID)

	// A completed sprint covering now is not current either.
	require.NoError(t, sprintRepo.MarkCompleted(ctx, current.ID))
	_, err = sprintRepo.GetCurrent(ctx, testutil.Community1.ID, now)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
