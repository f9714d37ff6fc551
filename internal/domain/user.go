package domain

import (
	"context"
	"errors"

	"github.com/teampulse/backend/internal/model"
	"github.com/teampulse/backend/internal/repository"
	"github.com/teampulse/backend/pkg/errorx"
	"github.com/teampulse/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	GetMe(context.Context, *model.GetMeRequest) (*model.GetMeResponse, error)
}

type userDomain struct {
	userRepo      repository.UserRepository
	memberRepo    repository.MemberRepository
	communityRepo repository.CommunityRepository
}

func NewUserDomain(
	userRepo repository.UserRepository,
	memberRepo repository.MemberRepository,
	communityRepo repository.CommunityRepository,
) *userDomain {
	return &userDomain{
		userRepo:      userRepo,
		memberRepo:    memberRepo,
		communityRepo: communityRepo,
	}
}

func (d *userDomain) GetMe(
	ctx context.Context, req *model.GetMeRequest,
) (*model.GetMeResponse, error) {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	members, err := d.memberRepo.GetListByUserID(ctx, user.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get memberships: %v", err)
		return nil, errorx.Unknown
	}

	clientUser := model.ConvertUser(user)
	clientMembers := make([]model.Member, 0, len(members))
	for i := range members {
		community, err := d.communityRepo.GetByID(ctx, members[i].CommunityID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
			return nil, errorx.Unknown
		}

		clientMembers = append(clientMembers,
			model.ConvertMember(&members[i], clientUser, model.ConvertCommunity(community)))
	}

	return &model.GetMeResponse{User: clientUser, Members: clientMembers}, nil
}
