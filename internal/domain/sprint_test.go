package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/teampulse/backend/internal/common"
	"github.com/teampulse/backend/internal/domain/statistic"
	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/internal/model"
	"github.com/teampulse/backend/internal/repository"
	"github.com/teampulse/backend/pkg/errorx"
	"github.com/teampulse/backend/pkg/tasksource"
	"github.com/teampulse/backend/pkg/testutil"
	"github.com/teampulse/backend/pkg/xcontext"
)

func newTestSprintDomain(
	taskSource tasksource.IEndpoint, redisClient *testutil.MockRedisClient,
) *sprintDomain {
	if taskSource == nil {
		taskSource = &testutil.MockTaskSource{}
	}

	if redisClient == nil {
		redisClient = &testutil.MockRedisClient{}
	}

	memberRepo := repository.NewMemberRepository()
	userRepo := repository.NewUserRepository()

	return NewSprintDomain(
		repository.NewCommunityRepository(),
		repository.NewSprintRepository(),
		memberRepo,
		userRepo,
		taskSource,
		statistic.NewLeaderboard(redisClient),
		&testutil.MockNotifier{},
		common.NewCommunityRoleVerifier(memberRepo, userRepo),
	)
}

func Test_sprintDomain_GetOrCreateCurrentSprint(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestSprintDomain(nil, nil)

	sprint, err := domain.GetOrCreateCurrentSprint(ctx, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, 1, sprint.SprintNumber)
	require.Equal(t, entity.SprintActive, sprint.Status)
	require.Equal(t, time.Monday, sprint.StartDate.Weekday())
	require.Equal(t, time.Sunday, sprint.EndDate.Weekday())
	require.False(t, sprint.StartDate.After(time.Now()))
	require.False(t, sprint.EndDate.Before(time.Now()))

	// A second call returns the same sprint instead of creating another.
	again, err := domain.GetOrCreateCurrentSprint(ctx, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, sprint.ID, again.ID)

	var count int64
	err = xcontext.DB(ctx).Model(&entity.Sprint{}).
		Where("community_id=? AND status=?", testutil.Community1.ID, entity.SprintActive).
		Count(&count).Error
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func Test_sprintDomain_GetOrCreateCurrentSprint_invalidCommunity(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestSprintDomain(nil, nil)

	_, err := domain.GetOrCreateCurrentSprint(ctx, "")
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	_, err = domain.GetOrCreateCurrentSprint(ctx, "no-such-community")
	require.ErrorIs(t, err, errorx.Error{Code: errorx.NotFound})
}

func Test_sprintDomain_allocateRewards_once(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestSprintDomain(nil, nil)
	memberRepo := repository.NewMemberRepository()

	_, err := domain.GetOrCreateCurrentSprint(ctx, testutil.Community1.ID)
	require.NoError(t, err)

	// Members receive the default reward, the owner receives nothing.
	member2, err := memberRepo.Get(ctx, testutil.User2.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.EqualValues(t, 500, member2.RewardPoints)
	require.Equal(t, 1, member2.LastRewardedSprint)

	owner, err := memberRepo.Get(ctx, testutil.User1.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, owner.RewardPoints)

	// Re-running never credits the same sprint twice.
	_, err = domain.GetOrCreateCurrentSprint(ctx, testutil.Community1.ID)
	require.NoError(t, err)
	domain.CheckAndCreateSprints(ctx)

	member2, err = memberRepo.Get(ctx, testutil.User2.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.EqualValues(t, 500, member2.RewardPoints)
}

func expireActiveSprint(ctx context.Context, t *testing.T, communityID string) {
	t.Helper()
	err := xcontext.DB(ctx).Model(&entity.Sprint{}).
		Where("community_id=? AND status=?", communityID, entity.SprintActive).
		Updates(map[string]any{
			"start_date": time.Now().AddDate(0, 0, -14),
			"end_date":   time.Now().AddDate(0, 0, -8),
		}).Error
	require.NoError(t, err)
}

func Test_sprintDomain_RolloverSprints(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestSprintDomain(nil, nil)
	sprintRepo := repository.NewSprintRepository()
	memberRepo := repository.NewMemberRepository()

	first, err := domain.GetOrCreateCurrentSprint(ctx, testutil.Community1.ID)
	require.NoError(t, err)

	expireActiveSprint(ctx, t, testutil.Community1.ID)
	domain.RolloverSprints(ctx)

	// The expired sprint is completed and its successor is active with the
	// next number, no gaps.
	completed, err := sprintRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, entity.SprintCompleted, completed.Status)

	active, err := sprintRepo.GetActive(ctx, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, 2, active.SprintNumber)

	// The new sprint allocates rewards again.
	member2, err := memberRepo.Get(ctx, testutil.User2.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1000, member2.RewardPoints)
	require.Equal(t, 2, member2.LastRewardedSprint)

	// Re-running a rollover changes nothing.
	domain.RolloverSprints(ctx)
	stillActive, err := sprintRepo.GetActive(ctx, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, active.ID, stillActive.ID)

	member2, err = memberRepo.Get(ctx, testutil.User2.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1000, member2.RewardPoints)
}

func Test_sprintDomain_RolloverSprints_resetsSprintResults(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestSprintDomain(nil, nil)
	memberRepo := repository.NewMemberRepository()

	_, err := domain.GetOrCreateCurrentSprint(ctx, testutil.Community1.ID)
	require.NoError(t, err)

	err = memberRepo.UpdateSprintResult(
		ctx, testutil.User2.ID, testutil.Community1.ID,
		11, true, entity.Map{"completed": 4}, time.Now())
	require.NoError(t, err)

	expireActiveSprint(ctx, t, testutil.Community1.ID)
	domain.RolloverSprints(ctx)

	member2, err := memberRepo.Get(ctx, testutil.User2.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, 0, member2.SprintScore)
	require.False(t, member2.SprintEligible)
}

func activeWindowTaskSource(tasksByUser map[string][]tasksource.Task) *testutil.MockTaskSource {
	return &testutil.MockTaskSource{
		ListSprintsFunc: func(ctx context.Context) ([]tasksource.Sprint, error) {
			return []tasksource.Sprint{{
				ID:        "ext-sprint-1",
				StartDate: time.Now().AddDate(0, 0, -1),
				EndDate:   time.Now().AddDate(0, 0, 1),
			}}, nil
		},
		GetSprintTasksFunc: func(ctx context.Context, sprintID string) ([]tasksource.Task, error) {
			var tasks []tasksource.Task
			for _, userTasks := range tasksByUser {
				tasks = append(tasks, userTasks...)
			}
			return tasks, nil
		},
	}
}

func repeatTasks(externalUserID string, status tasksource.TaskStatus, n int) []tasksource.Task {
	tasks := make([]tasksource.Task, 0, n)
	for i := 0; i < n; i++ {
		tasks = append(tasks, tasksource.Task{ExternalUserID: externalUserID, Status: status})
	}
	return tasks
}

func Test_sprintDomain_SyncSprintData(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	// user1: 4 completed, 1 in progress. user2: 5 completed, 1 in progress,
	// 1 blocked.
	taskSource := activeWindowTaskSource(map[string][]tasksource.Task{
		"ext-user1": append(
			repeatTasks("ext-user1", tasksource.TaskCompleted, 4),
			repeatTasks("ext-user1", tasksource.TaskInProgress, 1)...),
		"ext-user2": append(append(
			repeatTasks("ext-user2", tasksource.TaskCompleted, 5),
			repeatTasks("ext-user2", tasksource.TaskInProgress, 1)...),
			repeatTasks("ext-user2", tasksource.TaskBlocked, 1)...),
	})

	scores := map[string]float64{}
	redisClient := &testutil.MockRedisClient{
		ZAddFunc: func(ctx context.Context, key string, z redis.Z) error {
			scores[z.Member.(string)] = z.Score
			return nil
		},
	}

	domain := newTestSprintDomain(taskSource, redisClient)
	memberRepo := repository.NewMemberRepository()
	sprintRepo := repository.NewSprintRepository()

	_, err := domain.GetOrCreateCurrentSprint(ctx, testutil.Community1.ID)
	require.NoError(t, err)

	require.NoError(t, domain.SyncSprintData(ctx, testutil.Community1.ID))

	member1, err := memberRepo.Get(ctx, testutil.User1.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, 9, member1.SprintScore)
	require.True(t, member1.SprintEligible)

	member2, err := memberRepo.Get(ctx, testutil.User2.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, 7, member2.SprintScore)
	require.False(t, member2.SprintEligible)

	// user3 has no task-source mapping, so it never scores.
	member3, err := memberRepo.Get(ctx, testutil.User3.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, 0, member3.SprintScore)
	require.False(t, member3.SprintEligible)

	sprint, err := sprintRepo.GetActive(ctx, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.User1.ID}, []string(sprint.EligibleUsers))
	require.Equal(t, 12, sprint.TotalTasks)
	require.Equal(t, 9, sprint.CompletedTasks)
	require.True(t, sprint.LastSyncedAt.Valid)

	require.Equal(t, float64(9), scores[testutil.User1.ID])
	require.Equal(t, float64(7), scores[testutil.User2.ID])
}

func Test_sprintDomain_SyncSprintData_sourceUnavailable(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	memberRepo := repository.NewMemberRepository()

	taskSource := activeWindowTaskSource(map[string][]tasksource.Task{
		"ext-user1": repeatTasks("ext-user1", tasksource.TaskCompleted, 4),
	})

	domain := newTestSprintDomain(taskSource, nil)
	_, err := domain.GetOrCreateCurrentSprint(ctx, testutil.Community1.ID)
	require.NoError(t, err)
	require.NoError(t, domain.SyncSprintData(ctx, testutil.Community1.ID))

	member1, err := memberRepo.Get(ctx, testutil.User1.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, 10, member1.SprintScore)

	// When the source goes down, the sync fails and the last-known scores
	// are kept.
	taskSource.ListSprintsFunc = func(ctx context.Context) ([]tasksource.Sprint, error) {
		return nil, errors.New("connection refused")
	}

	err = domain.SyncSprintData(ctx, testutil.Community1.ID)
	require.ErrorIs(t, err, errorx.Error{Code: errorx.ExternalSource})

	member1, err = memberRepo.Get(ctx, testutil.User1.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, 10, member1.SprintScore)
}

func Test_sprintDomain_GetLeaderboard_fallbackToDB(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	memberRepo := repository.NewMemberRepository()

	redisClient := &testutil.MockRedisClient{
		ZRevRangeWithScoresFunc: func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error) {
			return nil, errors.New("redis is down")
		},
	}

	domain := newTestSprintDomain(nil, redisClient)
	_, err := domain.GetOrCreateCurrentSprint(ctx, testutil.Community1.ID)
	require.NoError(t, err)

	err = memberRepo.UpdateSprintResult(
		ctx, testutil.User1.ID, testutil.Community1.ID, 11, true, entity.Map{}, time.Now())
	require.NoError(t, err)
	err = memberRepo.UpdateSprintResult(
		ctx, testutil.User2.ID, testutil.Community1.ID, 7, false, entity.Map{}, time.Now())
	require.NoError(t, err)

	resp, err := domain.GetLeaderboard(ctx, &model.GetLeaderboardRequest{
		CommunityHandle: testutil.Community1.Handle,
		Limit:           2,
	})
	require.NoError(t, err)
	require.Equal(t, []model.LeaderboardEntry{
		{UserID: testutil.User1.ID, Score: 11},
		{UserID: testutil.User2.ID, Score: 7},
	}, resp.Entries)
}

func Test_sprintDomain_GetSprints(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestSprintDomain(nil, nil)

	_, err := domain.GetOrCreateCurrentSprint(ctx, testutil.Community1.ID)
	require.NoError(t, err)

	expireActiveSprint(ctx, t, testutil.Community1.ID)
	domain.RolloverSprints(ctx)

	resp, err := domain.GetSprints(ctx, &model.GetSprintsRequest{
		CommunityHandle: testutil.Community1.Handle,
	})
	require.NoError(t, err)
	require.Len(t, resp.Sprints, 2)

	// Newest sprint first.
	require.Equal(t, 2, resp.Sprints[0].SprintNumber)
	require.Equal(t, string(entity.SprintActive), resp.Sprints[0].Status)
	require.Equal(t, 1, resp.Sprints[1].SprintNumber)
	require.Equal(t, string(entity.SprintCompleted), resp.Sprints[1].Status)

	_, err = domain.GetSprints(ctx, &model.GetSprintsRequest{
		CommunityHandle: testutil.Community1.Handle,
		Offset:          -1,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})
}
