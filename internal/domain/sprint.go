package domain

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	mathUtil "github.com/pkg/math"
	"github.com/teampulse/backend/internal/client"
	"github.com/teampulse/backend/internal/common"
	"github.com/teampulse/backend/internal/domain/eligibility"
	"github.com/teampulse/backend/internal/domain/statistic"
	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/internal/model"
	"github.com/teampulse/backend/internal/repository"
	"github.com/teampulse/backend/pkg/dateutil"
	"github.com/teampulse/backend/pkg/errorx"
	"github.com/teampulse/backend/pkg/tasksource"
	"github.com/teampulse/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type SprintDomain interface {
	GetCurrentSprint(context.Context, *model.GetCurrentSprintRequest) (*model.GetCurrentSprintResponse, error)
	GetSprints(context.Context, *model.GetSprintsRequest) (*model.GetSprintsResponse, error)
	GetLeaderboard(context.Context, *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
	Sync(context.Context, *model.SyncSprintRequest) (*model.SyncSprintResponse, error)

	// Scheduler entry points. They are idempotent and safe to re-run at any
	// cadence; outcomes are observable only through state reads.
	GetOrCreateCurrentSprint(ctx context.Context, communityID string) (*entity.Sprint, error)
	CheckAndCreateSprints(ctx context.Context)
	RolloverSprints(ctx context.Context)
	SyncSprintData(ctx context.Context, communityID string) error
}

type sprintDomain struct {
	communityRepo repository.CommunityRepository
	sprintRepo    repository.SprintRepository
	memberRepo    repository.MemberRepository
	userRepo      repository.UserRepository
	taskSource    tasksource.IEndpoint
	leaderboard   *statistic.Leaderboard
	notifier      client.Notifier
	roleVerifier  *common.CommunityRoleVerifier
}

func NewSprintDomain(
	communityRepo repository.CommunityRepository,
	sprintRepo repository.SprintRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	taskSource tasksource.IEndpoint,
	leaderboard *statistic.Leaderboard,
	notifier client.Notifier,
	roleVerifier *common.CommunityRoleVerifier,
) *sprintDomain {
	return &sprintDomain{
		communityRepo: communityRepo,
		sprintRepo:    sprintRepo,
		memberRepo:    memberRepo,
		userRepo:      userRepo,
		taskSource:    taskSource,
		leaderboard:   leaderboard,
		notifier:      notifier,
		roleVerifier:  roleVerifier,
	}
}

func (d *sprintDomain) GetCurrentSprint(
	ctx context.Context, req *model.GetCurrentSprintRequest,
) (*model.GetCurrentSprintResponse, error) {
	community, err := d.getCommunityByHandle(ctx, req.CommunityHandle)
	if err != nil {
		return nil, err
	}

	sprint, err := d.GetOrCreateCurrentSprint(ctx, community.ID)
	if err != nil {
		return nil, err
	}

	resp := model.GetCurrentSprintResponse(model.ConvertSprint(sprint))
	return &resp, nil
}

func (d *sprintDomain) GetSprints(
	ctx context.Context, req *model.GetSprintsRequest,
) (*model.GetSprintsResponse, error) {
	community, err := d.getCommunityByHandle(ctx, req.CommunityHandle)
	if err != nil {
		return nil, err
	}

	if req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow negative offset")
	}

	apiCfg := xcontext.Configs(ctx).ApiServer
	if req.Limit == 0 {
		req.Limit = apiCfg.DefaultLimit
	}

	if req.Limit < 0 {
		return nil, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if apiCfg.MaxLimit > 0 && req.Limit > apiCfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	sprints, err := d.sprintRepo.GetListByCommunityID(ctx, community.ID, req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get sprints: %v", err)
		return nil, errorx.Unknown
	}

	clientSprints := make([]model.Sprint, 0, len(sprints))
	for i := range sprints {
		clientSprints = append(clientSprints, model.ConvertSprint(&sprints[i]))
	}

	return &model.GetSprintsResponse{Sprints: clientSprints}, nil
}

func (d *sprintDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	community, err := d.getCommunityByHandle(ctx, req.CommunityHandle)
	if err != nil {
		return nil, err
	}

	if req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow negative offset")
	}

	apiCfg := xcontext.Configs(ctx).ApiServer
	if req.Limit == 0 {
		req.Limit = apiCfg.DefaultLimit
	}

	if req.Limit < 0 {
		return nil, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if apiCfg.MaxLimit > 0 && req.Limit > apiCfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	sprint, err := d.sprintRepo.GetActive(ctx, community.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found active sprint")
		}

		xcontext.Logger(ctx).Errorf("Cannot get active sprint: %v", err)
		return nil, errorx.Unknown
	}

	entries, err := d.leaderboard.GetTop(ctx, community.ID, sprint.SprintNumber, req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot read leaderboard cache, fall back to database: %v", err)
		entries, err = d.leaderboardFromDB(ctx, community.ID, req.Offset, req.Limit)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot build leaderboard from database: %v", err)
			return nil, errorx.Unknown
		}
	}

	clientEntries := make([]model.LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		clientEntries = append(clientEntries, model.LeaderboardEntry{
			UserID: entry.UserID,
			Score:  entry.Score,
		})
	}

	return &model.GetLeaderboardResponse{Entries: clientEntries}, nil
}

func (d *sprintDomain) leaderboardFromDB(
	ctx context.Context, communityID string, offset, limit int,
) ([]statistic.Entry, error) {
	members, err := d.memberRepo.GetListByCommunityID(ctx, repository.GetListMemberFilter{
		CommunityID: communityID,
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].SprintScore > members[j].SprintScore
	})

	begin := mathUtil.MinInt(offset, len(members))
	end := mathUtil.MinInt(offset+limit, len(members))

	entries := make([]statistic.Entry, 0, end-begin)
	for _, member := range members[begin:end] {
		entries = append(entries, statistic.Entry{
			UserID: member.UserID,
			Score:  int64(member.SprintScore),
		})
	}

	return entries, nil
}

func (d *sprintDomain) Sync(
	ctx context.Context, req *model.SyncSprintRequest,
) (*model.SyncSprintResponse, error) {
	community, err := d.getCommunityByHandle(ctx, req.CommunityHandle)
	if err != nil {
		return nil, err
	}

	if err := d.roleVerifier.Verify(ctx, community.ID, common.ManageGroup...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if err := d.SyncSprintData(ctx, community.ID); err != nil {
		return nil, err
	}

	return &model.SyncSprintResponse{}, nil
}

func (d *sprintDomain) GetOrCreateCurrentSprint(
	ctx context.Context, communityID string,
) (*entity.Sprint, error) {
	if communityID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty community id")
	}

	community, err := d.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found community")
		}

		xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
		return nil, errorx.Unknown
	}

	return d.ensureCurrentSprint(ctx, community)
}

// ensureCurrentSprint returns the sprint covering now, completing an expired
// active sprint and creating the successor if needed. Every step is guarded,
// so concurrent schedulers converge on the same sprint without duplicates or
// double credits.
func (d *sprintDomain) ensureCurrentSprint(
	ctx context.Context, community *entity.Community,
) (*entity.Sprint, error) {
	now := time.Now()

	current, err := d.sprintRepo.GetCurrent(ctx, community.ID, now)
	if err == nil {
		// The reward allocation is re-run on every pass. The
		// last_rewarded_sprint guard makes it a no-op for members already
		// credited, so a crash between creation and allocation heals here.
		d.allocateRewards(ctx, community, current.SprintNumber)
		return current, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get current sprint: %v", err)
		return nil, errorx.Unknown
	}

	// No sprint covers now, but an expired active one may remain. It is
	// completed before its successor is created, so there is never a second
	// active sprint.
	active, err := d.sprintRepo.GetActive(ctx, community.ID)
	if err == nil {
		if err := d.completeSprint(ctx, active); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get active sprint: %v", err)
		return nil, errorx.Unknown
	}

	lastNumber, err := d.sprintRepo.GetLastSprintNumber(ctx, community.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get last sprint number: %v", err)
		return nil, errorx.Unknown
	}

	sprint := &entity.Sprint{
		Base:         entity.Base{ID: uuid.NewString()},
		CommunityID:  community.ID,
		SprintNumber: lastNumber + 1,
		StartDate:    dateutil.BeginningOfWeek(now),
		EndDate:      dateutil.EndOfWeek(now),
		Status:       entity.SprintActive,
	}

	created, err := d.sprintRepo.CreateIfNotExists(ctx, sprint)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create sprint: %v", err)
		return nil, errorx.Unknown
	}

	d.allocateRewards(ctx, community, sprint.SprintNumber)

	if created {
		d.notifier.Notify(ctx, "sprint_started", map[string]any{
			"community_id":  community.ID,
			"sprint_number": sprint.SprintNumber,
		})
	}

	return sprint, nil
}

func (d *sprintDomain) completeSprint(ctx context.Context, sprint *entity.Sprint) error {
	err := d.sprintRepo.MarkCompleted(ctx, sprint.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Another scheduler completed it first. Converge silently.
			return nil
		}

		xcontext.Logger(ctx).Errorf("Cannot complete sprint %s: %v", sprint.ID, err)
		return errorx.Unknown
	}

	if err := d.memberRepo.ResetSprintResult(ctx, sprint.CommunityID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reset sprint results of %s: %v", sprint.CommunityID, err)
	}

	if err := d.leaderboard.Clear(ctx, sprint.CommunityID, sprint.SprintNumber); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot clear leaderboard of %s: %v", sprint.CommunityID, err)
	}

	d.notifier.Notify(ctx, "sprint_completed", map[string]any{
		"community_id":  sprint.CommunityID,
		"sprint_number": sprint.SprintNumber,
	})

	return nil
}

func (d *sprintDomain) allocateRewards(
	ctx context.Context, community *entity.Community, sprintNumber int,
) {
	points := community.RewardPointsPerSprint
	if points == 0 {
		points = xcontext.Configs(ctx).Sprint.RewardPointsPerSprint
	}

	rows, err := d.memberRepo.AllocateSprintReward(ctx, community.ID, sprintNumber, points)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot allocate sprint rewards of %s: %v", community.ID, err)
		return
	}

	if rows > 0 {
		xcontext.Logger(ctx).Infof(
			"Allocated %d points to %d members of %s for sprint %d",
			points, rows, community.ID, sprintNumber)
	}
}

func (d *sprintDomain) CheckAndCreateSprints(ctx context.Context) {
	communities, err := d.communityRepo.GetList(ctx, repository.GetListCommunityFilter{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get all communities: %v", err)
		return
	}

	for _, community := range communities {
		community := community
		if _, err := d.ensureCurrentSprint(ctx, &community); err != nil {
			xcontext.Logger(ctx).Errorf(
				"Cannot ensure current sprint of %s: %v", community.ID, err)
			continue
		}
	}
}

func (d *sprintDomain) RolloverSprints(ctx context.Context) {
	expired, err := d.sprintRepo.GetExpiredActive(ctx, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get expired sprints: %v", err)
		return
	}

	for _, sprint := range expired {
		sprint := sprint
		if err := d.completeSprint(ctx, &sprint); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot rollover sprint %s: %v", sprint.ID, err)
			continue
		}

		if _, err := d.GetOrCreateCurrentSprint(ctx, sprint.CommunityID); err != nil {
			xcontext.Logger(ctx).Errorf(
				"Cannot create successor sprint of %s: %v", sprint.CommunityID, err)
			continue
		}
	}
}

func (d *sprintDomain) SyncSprintData(ctx context.Context, communityID string) error {
	if communityID != "" {
		community, err := d.communityRepo.GetByID(ctx, communityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.NotFound, "Not found community")
			}

			xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
			return errorx.Unknown
		}

		return d.syncCommunity(ctx, community)
	}

	communities, err := d.communityRepo.GetList(ctx, repository.GetListCommunityFilter{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get all communities: %v", err)
		return errorx.Unknown
	}

	for _, community := range communities {
		community := community
		if err := d.syncCommunity(ctx, &community); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot sync sprint data of %s: %v", community.ID, err)
			continue
		}
	}

	return nil
}

func (d *sprintDomain) syncCommunity(ctx context.Context, community *entity.Community) error {
	sprint, err := d.sprintRepo.GetActive(ctx, community.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Debugf("No active sprint of %s, nothing to sync", community.ID)
			return nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get active sprint: %v", err)
		return errorx.Unknown
	}

	extSprint, err := d.matchExternalSprint(ctx, sprint)
	if err != nil {
		return err
	}

	tasks, err := d.taskSource.GetSprintTasks(ctx, extSprint.ID)
	if err != nil {
		// Keep the last-known scores of this community rather than fail the
		// whole batch.
		xcontext.Logger(ctx).Warnf("Cannot get tasks of sprint %s: %v", extSprint.ID, err)
		return errorx.New(errorx.ExternalSource, "Task source is unavailable")
	}

	tasksByExternalID := map[string][]tasksource.Task{}
	for _, task := range tasks {
		tasksByExternalID[task.ExternalUserID] = append(tasksByExternalID[task.ExternalUserID], task)
	}

	members, err := d.memberRepo.GetListByCommunityID(ctx, repository.GetListMemberFilter{
		CommunityID: community.ID,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get members: %v", err)
		return errorx.Unknown
	}

	userIDs := make([]string, 0, len(members))
	for _, member := range members {
		userIDs = append(userIDs, member.UserID)
	}

	users, err := d.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return errorx.Unknown
	}

	userMap := map[string]*entity.User{}
	for i := range users {
		userMap[users[i].ID] = &users[i]
	}

	threshold := community.EligibilityThreshold
	if threshold == 0 {
		threshold = xcontext.Configs(ctx).Sprint.EligibilityThreshold
	}

	now := time.Now()
	eligibleUsers := []string{}
	totalTasks := 0
	completedTasks := 0

	for _, member := range members {
		user, ok := userMap[member.UserID]
		if !ok {
			xcontext.Logger(ctx).Warnf("Cannot find user %s of member row", member.UserID)
			continue
		}

		// Users without a task-source mapping never score, the formula is
		// not consulted for them.
		result := eligibility.Result{}
		breakdown := eligibility.Breakdown{}
		if user.TaskSourceUserID.Valid {
			breakdown = eligibility.FromTasks(tasksByExternalID[user.TaskSourceUserID.String])
			result = eligibility.Score(breakdown, threshold)
		}

		err := d.memberRepo.UpdateSprintResult(
			ctx, member.UserID, community.ID,
			result.Score, result.Eligible, breakdown.ToMap(), now)
		if err != nil {
			xcontext.Logger(ctx).Warnf(
				"Cannot update sprint result of %s in %s: %v", member.UserID, community.ID, err)
			continue
		}

		err = d.leaderboard.SetScore(ctx, community.ID, sprint.SprintNumber, member.UserID, result.Score)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot update leaderboard of %s: %v", community.ID, err)
		}

		if result.Eligible {
			eligibleUsers = append(eligibleUsers, member.UserID)
		}

		totalTasks += breakdown.Total()
		completedTasks += breakdown.Completed
	}

	err = d.sprintRepo.UpdateSyncStats(ctx, sprint.ID, eligibleUsers, totalTasks, completedTasks, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The sprint rolled over while syncing. Its final snapshot wins.
			xcontext.Logger(ctx).Infof("Sprint %s completed during sync, statistics kept", sprint.ID)
			return nil
		}

		xcontext.Logger(ctx).Errorf("Cannot update sync stats: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *sprintDomain) matchExternalSprint(
	ctx context.Context, sprint *entity.Sprint,
) (*tasksource.Sprint, error) {
	extSprints, err := d.taskSource.ListSprints(ctx)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot list external sprints: %v", err)
		return nil, errorx.New(errorx.ExternalSource, "Task source is unavailable")
	}

	for i := range extSprints {
		ext := &extSprints[i]
		if ext.StartDate.Before(sprint.EndDate) && ext.EndDate.After(sprint.StartDate) {
			return ext, nil
		}
	}

	return nil, errorx.New(errorx.NotFound, "No external sprint overlaps the active window")
}

func (d *sprintDomain) getCommunityByHandle(
	ctx context.Context, handle string,
) (*entity.Community, error) {
	if handle == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty community handle")
	}

	community, err := d.communityRepo.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found community")
		}

		xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
		return nil, errorx.Unknown
	}

	return community, nil
}
