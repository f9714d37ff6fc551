package testutil

import (
	"context"
	"database/sql"

	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/internal/repository"
)

var (
	Founder = entity.User{
		Base: entity.Base{ID: "founder"},
		Name: "founder",
		Role: entity.GlobalRoleFounder,
	}

	User1 = entity.User{
		Base:             entity.Base{ID: "user1"},
		Name:             "user1",
		Role:             entity.GlobalRoleEmployee,
		TaskSourceUserID: sql.NullString{Valid: true, String: "ext-user1"},
	}

	User2 = entity.User{
		Base:             entity.Base{ID: "user2"},
		Name:             "user2",
		Role:             entity.GlobalRoleEmployee,
		TaskSourceUserID: sql.NullString{Valid: true, String: "ext-user2"},
	}

	// User3 has no task-source mapping.
	User3 = entity.User{
		Base: entity.Base{ID: "user3"},
		Name: "user3",
		Role: entity.GlobalRoleEmployee,
	}

	Community1 = entity.Community{
		Base:        entity.Base{ID: "community1"},
		CreatedBy:   User1.ID,
		Handle:      "teampulse_dev",
		DisplayName: "TeamPulse Dev",
		Members:     3,
	}

	Member1 = entity.Member{
		UserID:      User1.ID,
		CommunityID: Community1.ID,
		Role:        entity.RoleOwner,
		InviteCode:  "invite-user1",
	}

	Member2 = entity.Member{
		UserID:      User2.ID,
		CommunityID: Community1.ID,
		Role:        entity.RoleMember,
		InviteCode:  "invite-user2",
	}

	Member3 = entity.Member{
		UserID:      User3.ID,
		CommunityID: Community1.ID,
		Role:        entity.RoleMember,
		InviteCode:  "invite-user3",
	}
)

// CreateFixtureDb inserts the sample users, community, and memberships into
// the database carried by ctx.
func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx)
	InsertCommunities(ctx)
	InsertMembers(ctx)
}

func InsertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()

	for _, user := range []entity.User{Founder, User1, User2, User3} {
		user := user
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}
	}
}

func InsertCommunities(ctx context.Context) {
	communityRepo := repository.NewCommunityRepository()

	community := Community1
	if err := communityRepo.Create(ctx, &community); err != nil {
		panic(err)
	}
}

func InsertMembers(ctx context.Context) {
	memberRepo := repository.NewMemberRepository()

	for _, member := range []entity.Member{Member1, Member2, Member3} {
		member := member
		if err := memberRepo.Create(ctx, &member); err != nil {
			panic(err)
		}
	}
}
