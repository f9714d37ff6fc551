package common

import (
	"context"
	"fmt"

	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/internal/repository"
	"github.com/teampulse/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
)

// ManageGroup are the membership roles allowed to review pending transfers
// and run administrative sync.
var ManageGroup = []entity.CommunityRole{entity.RoleOwner, entity.RoleAdmin}

// HasUnlimitedBalance reports whether a party is exempt from balance debits.
// This is a capability over roles, never a sentinel balance value.
func HasUnlimitedBalance(globalRole entity.GlobalRole, communityRole entity.CommunityRole) bool {
	return globalRole == entity.GlobalRoleFounder || communityRole == entity.RoleOwner
}

type CommunityRoleVerifier struct {
	memberRepo repository.MemberRepository
	userRepo   repository.UserRepository
}

func NewCommunityRoleVerifier(
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
) *CommunityRoleVerifier {
	return &CommunityRoleVerifier{
		memberRepo: memberRepo,
		userRepo:   userRepo,
	}
}

func (verifier *CommunityRoleVerifier) Verify(
	ctx context.Context, communityID string, requiredRoles ...entity.CommunityRole,
) error {
	userID := xcontext.RequestUserID(ctx)
	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	// Founders pass every community gate.
	if u.Role == entity.GlobalRoleFounder {
		return nil
	}

	member, err := verifier.memberRepo.Get(ctx, userID, communityID)
	if err != nil {
		return fmt.Errorf("user is not a member of this community")
	}

	if !slices.Contains(requiredRoles, member.Role) {
		return fmt.Errorf("user role does not have permission")
	}

	return nil
}
