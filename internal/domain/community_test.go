package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/internal/model"
	"github.com/teampulse/backend/internal/repository"
	"github.com/teampulse/backend/pkg/errorx"
	"github.com/teampulse/backend/pkg/testutil"
	"github.com/teampulse/backend/pkg/xcontext"
)

func newTestCommunityDomain() *communityDomain {
	return NewCommunityDomain(
		repository.NewCommunityRepository(),
		repository.NewMemberRepository(),
		repository.NewUserRepository(),
		newTestSprintDomain(nil, nil),
		&testutil.MockNotifier{},
	)
}

func Test_communityDomain_Create(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestCommunityDomain()
	communityRepo := repository.NewCommunityRepository()
	memberRepo := repository.NewMemberRepository()
	sprintRepo := repository.NewSprintRepository()

	userCtx := xcontext.WithRequestUserID(ctx, testutil.User2.ID)
	resp, err := domain.Create(userCtx, &model.CreateCommunityRequest{
		DisplayName:           "Platform Team",
		Introduction:          "The team behind the platform",
		RewardPointsPerSprint: 300,
		EligibilityThreshold:  6,
	})
	require.NoError(t, err)
	require.Equal(t, "platform_team", resp.Handle)

	community, err := communityRepo.GetByHandle(ctx, resp.Handle)
	require.NoError(t, err)
	require.Equal(t, testutil.User2.ID, community.CreatedBy)
	require.EqualValues(t, 300, community.RewardPointsPerSprint)

	// The creator becomes the owner.
	owner, err := memberRepo.Get(ctx, testutil.User2.ID, community.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RoleOwner, owner.Role)

	// The first sprint is created eagerly.
	sprint, err := sprintRepo.GetActive(ctx, community.ID)
	require.NoError(t, err)
	require.Equal(t, 1, sprint.SprintNumber)

	// The owner receives no sprint reward.
	owner, err = memberRepo.Get(ctx, testutil.User2.ID, community.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, owner.RewardPoints)
}

func Test_communityDomain_Create_shortDisplayName(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestCommunityDomain()

	userCtx := xcontext.WithRequestUserID(ctx, testutil.User2.ID)
	_, err := domain.Create(userCtx, &model.CreateCommunityRequest{DisplayName: "ab"})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})
}

func Test_communityDomain_Join(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestCommunityDomain()
	communityRepo := repository.NewCommunityRepository()
	memberRepo := repository.NewMemberRepository()

	userCtx := xcontext.WithRequestUserID(ctx, testutil.Founder.ID)
	_, err := domain.Join(userCtx, &model.JoinCommunityRequest{
		CommunityHandle: testutil.Community1.Handle,
	})
	require.NoError(t, err)

	member, err := memberRepo.Get(ctx, testutil.Founder.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RoleMember, member.Role)
	require.NotEmpty(t, member.InviteCode)

	community, err := communityRepo.GetByID(ctx, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.Community1.Members+1, community.Members)

	// Joining twice is refused.
	_, err = domain.Join(userCtx, &model.JoinCommunityRequest{
		CommunityHandle: testutil.Community1.Handle,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.AlreadyExists})
}

func Test_communityDomain_GetMembers(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestCommunityDomain()

	resp, err := domain.GetMembers(ctx, &model.GetMembersRequest{
		CommunityHandle: testutil.Community1.Handle,
	})
	require.NoError(t, err)
	require.Len(t, resp.Members, 3)
	require.Equal(t, testutil.User1.Name, resp.Members[0].User.Name)
	require.Equal(t, entity.RoleOwner, entity.CommunityRole(resp.Members[0].Role))

	// Name search narrows the list.
	resp, err = domain.GetMembers(ctx, &model.GetMembersRequest{
		CommunityHandle: testutil.Community1.Handle,
		Q:               testutil.User3.Name,
	})
	require.NoError(t, err)
	require.Len(t, resp.Members, 1)
	require.Equal(t, testutil.User3.ID, resp.Members[0].UserID)
}
