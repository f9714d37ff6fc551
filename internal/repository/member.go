package repository

import (
	"context"
	"errors"
	"time"

	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type GetListMemberFilter struct {
	CommunityID string
	Q           string
	Offset      int
	Limit       int
}

type MemberRepository interface {
	Get(ctx context.Context, userID, communityID string) (*entity.Member, error)
	GetListByCommunityID(ctx context.Context, filter GetListMemberFilter) ([]entity.Member, error)
	GetListByUserID(ctx context.Context, userID string) ([]entity.Member, error)
	Create(ctx context.Context, member *entity.Member) error

	// IncreasePoint and DecreasePoint adjust a community-scoped balance as a
	// single guarded update. DecreasePoint fails with gorm.ErrRecordNotFound
	// if the balance is insufficient. When isTransfer is set the
	// total_given/total_received counters move too.
	IncreasePoint(ctx context.Context, userID, communityID string, points uint64, isTransfer bool) error
	DecreasePoint(ctx context.Context, userID, communityID string, points uint64, isTransfer bool) error

	// IncreaseTotalGiven moves the total_given counter alone, for senders
	// whose balance is never debited.
	IncreaseTotalGiven(ctx context.Context, userID, communityID string, points uint64) error

	// AllocateSprintReward credits every non-owner member whose
	// last_rewarded_sprint is behind sprintNumber. Safe to re-run: rows
	// already rewarded for this sprint do not match the guard.
	AllocateSprintReward(ctx context.Context, communityID string, sprintNumber int, points uint64) (int64, error)

	UpdateSprintResult(ctx context.Context, userID, communityID string, score int, eligible bool, breakdown entity.Map, syncedAt time.Time) error
	ResetSprintResult(ctx context.Context, communityID string) error
}

type memberRepository struct{}

func NewMemberRepository() *memberRepository {
	return &memberRepository{}
}

func (r *memberRepository) Get(ctx context.Context, userID, communityID string) (*entity.Member, error) {
	var result entity.Member
	err := xcontext.DB(ctx).Where("user_id=? AND community_id=?", userID, communityID).Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *memberRepository) GetListByCommunityID(
	ctx context.Context, filter GetListMemberFilter,
) ([]entity.Member, error) {
	tx := xcontext.DB(ctx).Model(&entity.Member{}).
		Where("community_id=?", filter.CommunityID)

	if filter.Q != "" {
		tx = tx.Joins("join users on users.id=members.user_id").
			Where("users.name LIKE ?", filter.Q+"%")
	}

	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.Member
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *memberRepository) GetListByUserID(ctx context.Context, userID string) ([]entity.Member, error) {
	var result []entity.Member
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *memberRepository) Create(ctx context.Context, member *entity.Member) error {
	return xcontext.DB(ctx).Create(member).Error
}

func (r *memberRepository) IncreasePoint(
	ctx context.Context, userID, communityID string, points uint64, isTransfer bool,
) error {
	updateMap := map[string]any{
		"reward_points": gorm.Expr("reward_points+?", points),
	}

	if isTransfer {
		updateMap["total_received"] = gorm.Expr("total_received+?", points)
	}

	tx := xcontext.DB(ctx).
		Model(&entity.Member{}).
		Where("user_id=? AND community_id=?", userID, communityID).
		Updates(updateMap)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *memberRepository) DecreasePoint(
	ctx context.Context, userID, communityID string, points uint64, isTransfer bool,
) error {
	updateMap := map[string]any{
		"reward_points": gorm.Expr("reward_points-?", points),
	}

	if isTransfer {
		updateMap["total_given"] = gorm.Expr("total_given+?", points)
	}

	tx := xcontext.DB(ctx).
		Model(&entity.Member{}).
		Where("user_id=? AND community_id=? AND reward_points >= ?", userID, communityID, points).
		Updates(updateMap)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *memberRepository) IncreaseTotalGiven(
	ctx context.Context, userID, communityID string, points uint64,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Member{}).
		Where("user_id=? AND community_id=?", userID, communityID).
		Update("total_given", gorm.Expr("total_given+?", points))

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *memberRepository) AllocateSprintReward(
	ctx context.Context, communityID string, sprintNumber int, points uint64,
) (int64, error) {
	founders := xcontext.DB(ctx).
		Model(&entity.User{}).
		Select("id").
		Where("role=?", entity.GlobalRoleFounder)

	tx := xcontext.DB(ctx).
		Model(&entity.Member{}).
		Where("community_id=?", communityID).
		Where("role <> ?", entity.RoleOwner).
		Where("last_rewarded_sprint < ?", sprintNumber).
		Where("user_id NOT IN (?)", founders).
		Updates(map[string]any{
			"reward_points":        gorm.Expr("reward_points+?", points),
			"last_rewarded_sprint": sprintNumber,
		})

	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}

func (r *memberRepository) UpdateSprintResult(
	ctx context.Context, userID, communityID string,
	score int, eligible bool, breakdown entity.Map, syncedAt time.Time,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Member{}).
		Where("user_id=? AND community_id=?", userID, communityID).
		Updates(map[string]any{
			"sprint_score":    score,
			"sprint_eligible": eligible,
			"task_breakdown":  breakdown,
			"last_synced_at":  syncedAt,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *memberRepository) ResetSprintResult(ctx context.Context, communityID string) error {
	return xcontext.DB(ctx).
		Model(&entity.Member{}).
		Where("community_id=?", communityID).
		Updates(map[string]any{
			"sprint_score":    0,
			"sprint_eligible": false,
			"task_breakdown":  nil,
		}).Error
}
