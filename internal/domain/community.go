package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/teampulse/backend/internal/client"
	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/internal/model"
	"github.com/teampulse/backend/internal/repository"
	"github.com/teampulse/backend/pkg/crypto"
	"github.com/teampulse/backend/pkg/errorx"
	"github.com/teampulse/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type CommunityDomain interface {
	Create(context.Context, *model.CreateCommunityRequest) (*model.CreateCommunityResponse, error)
	Join(context.Context, *model.JoinCommunityRequest) (*model.JoinCommunityResponse, error)
	GetMembers(context.Context, *model.GetMembersRequest) (*model.GetMembersResponse, error)
}

type communityDomain struct {
	communityRepo repository.CommunityRepository
	memberRepo    repository.MemberRepository
	userRepo      repository.UserRepository
	sprintDomain  SprintDomain
	notifier      client.Notifier
}

func NewCommunityDomain(
	communityRepo repository.CommunityRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	sprintDomain SprintDomain,
	notifier client.Notifier,
) *communityDomain {
	return &communityDomain{
		communityRepo: communityRepo,
		memberRepo:    memberRepo,
		userRepo:      userRepo,
		sprintDomain:  sprintDomain,
		notifier:      notifier,
	}
}

func (d *communityDomain) Create(
	ctx context.Context, req *model.CreateCommunityRequest,
) (*model.CreateCommunityResponse, error) {
	if err := checkCommunityDisplayName(req.DisplayName); err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)

	originHandle := generateCommunityHandle(req.DisplayName)
	handle := originHandle
	for {
		if checkCommunityHandle(ctx, handle) == nil {
			_, err := d.communityRepo.GetByHandle(ctx, handle)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}

			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot get community by handle: %v", err)
				return nil, errorx.Unknown
			}
		}

		// The handle existed or was invalid, retry with a random suffix
		// appended to the origin.
		handle = fmt.Sprintf("%s_%d", originHandle, crypto.RandIntn(1_000_000))
	}

	community := &entity.Community{
		Base:                  entity.Base{ID: uuid.NewString()},
		CreatedBy:             userID,
		Handle:                handle,
		DisplayName:           req.DisplayName,
		Introduction:          []byte(req.Introduction),
		Members:               1,
		RewardPointsPerSprint: req.RewardPointsPerSprint,
		EligibilityThreshold:  req.EligibilityThreshold,
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.communityRepo.Create(ctx, community); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create community: %v", err)
		return nil, errorx.Unknown
	}

	owner := &entity.Member{
		UserID:      userID,
		CommunityID: community.ID,
		Role:        entity.RoleOwner,
		InviteCode:  crypto.GenerateRandomAlphabet(9),
	}

	if err := d.memberRepo.Create(ctx, owner); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create community owner: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	// The first sprint is created eagerly so the community is usable right
	// away. The scheduler heals this if it fails.
	if _, err := d.sprintDomain.GetOrCreateCurrentSprint(ctx, community.ID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot create the first sprint of %s: %v", community.ID, err)
	}

	d.notifier.Notify(ctx, "community_created", map[string]any{
		"community_id": community.ID,
		"handle":       community.Handle,
	})

	return &model.CreateCommunityResponse{Handle: community.Handle}, nil
}

func (d *communityDomain) Join(
	ctx context.Context, req *model.JoinCommunityRequest,
) (*model.JoinCommunityResponse, error) {
	if req.CommunityHandle == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty community handle")
	}

	community, err := d.communityRepo.GetByHandle(ctx, req.CommunityHandle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found community")
		}

		xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
		return nil, errorx.Unknown
	}

	userID := xcontext.RequestUserID(ctx)
	_, err = d.memberRepo.Get(ctx, userID, community.ID)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "You already joined this community")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
		return nil, errorx.Unknown
	}

	member := &entity.Member{
		UserID:      userID,
		CommunityID: community.ID,
		Role:        entity.RoleMember,
		InviteCode:  crypto.GenerateRandomAlphabet(9),
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.memberRepo.Create(ctx, member); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create member: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.communityRepo.IncreaseMembers(ctx, community.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase members: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.notifier.Notify(ctx, "member_joined", map[string]any{
		"community_id": community.ID,
		"user_id":      userID,
	})

	return &model.JoinCommunityResponse{}, nil
}

func (d *communityDomain) GetMembers(
	ctx context.Context, req *model.GetMembersRequest,
) (*model.GetMembersResponse, error) {
	if req.CommunityHandle == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty community handle")
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

	community, err := d.communityRepo.GetByHandle(ctx, req.CommunityHandle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found community")
		}

		xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
		return nil, errorx.Unknown
	}

	members, err := d.memberRepo.GetListByCommunityID(ctx, repository.GetListMemberFilter{
		CommunityID: community.ID,
		Q:           req.Q,
		Offset:      req.Offset,
		Limit:       req.Limit,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get members: %v", err)
		return nil, errorx.Unknown
	}

	userIDs := make([]string, 0, len(members))
	for _, member := range members {
		userIDs = append(userIDs, member.UserID)
	}

	users, err := d.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	userMap := map[string]model.User{}
	for i := range users {
		userMap[users[i].ID] = model.ConvertUser(&users[i])
	}

	communityModel := model.ConvertCommunity(community)
	clientMembers := make([]model.Member, 0, len(members))
	for i := range members {
		clientMembers = append(clientMembers,
			model.ConvertMember(&members[i], userMap[members[i].UserID], communityModel))
	}

	return &model.GetMembersResponse{Members: clientMembers}, nil
}
