package repository

import (
	"context"
	"errors"

	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type GetListCommunityFilter struct {
	Q      string
	Offset int
	Limit  int
}

type CommunityRepository interface {
	Create(ctx context.Context, community *entity.Community) error
	GetByID(ctx context.Context, id string) (*entity.Community, error)
	GetByHandle(ctx context.Context, handle string) (*entity.Community, error)
	GetList(ctx context.Context, filter GetListCommunityFilter) ([]entity.Community, error)
	IncreaseMembers(ctx context.Context, id string) error
}

type communityRepository struct{}

func NewCommunityRepository() *communityRepository {
	return &communityRepository{}
}

func (r *communityRepository) Create(ctx context.Context, community *entity.Community) error {
	return xcontext.DB(ctx).Create(community).Error
}

func (r *communityRepository) GetByID(ctx context.Context, id string) (*entity.Community, error) {
	var result entity.Community
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *communityRepository) GetByHandle(ctx context.Context, handle string) (*entity.Community, error) {
	var result entity.Community
	if err := xcontext.DB(ctx).Take(&result, "handle=?", handle).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *communityRepository) GetList(
	ctx context.Context, filter GetListCommunityFilter,
) ([]entity.Community, error) {
	tx := xcontext.DB(ctx).Model(&entity.Community{})
	if filter.Q != "" {
		tx = tx.Where("display_name LIKE ?", filter.Q+"%")
	}

	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.Community
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *communityRepository) IncreaseMembers(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Community{}).
		Where("id=?", id).
		Update("members", gorm.Expr("members+1"))

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
