package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teampulse/backend/internal/model"
	"github.com/teampulse/backend/internal/repository"
	"github.com/teampulse/backend/pkg/errorx"
	"github.com/teampulse/backend/pkg/testutil"
)

func newTestUserDomain() *userDomain {
	return NewUserDomain(
		repository.NewUserRepository(),
		repository.NewMemberRepository(),
		repository.NewCommunityRepository(),
	)
}

func Test_userDomain_GetMe(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	domain := newTestUserDomain()

	resp, err := domain.GetMe(ctx, &model.GetMeRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.User1.ID, resp.User.ID)
	require.True(t, resp.User.HasTaskLink)

	require.Len(t, resp.Members, 1)
	require.Equal(t, testutil.Community1.ID, resp.Members[0].CommunityID)
	require.Equal(t, testutil.Community1.Handle, resp.Members[0].Community.Handle)
	require.Equal(t, "owner", resp.Members[0].Role)
}

func Test_userDomain_GetMe_unknownUser(t *testing.T) {
	ctx := testutil.MockContextWithUserID("nobody")
	testutil.CreateFixtureDb(ctx)
	domain := newTestUserDomain()

	_, err := domain.GetMe(ctx, &model.GetMeRequest{})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.NotFound})
}
