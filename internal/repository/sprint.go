package repository

import (
	"context"
	"errors"
	"time"

	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SprintRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Sprint, error)
	GetActive(ctx context.Context, communityID string) (*entity.Sprint, error)
	GetCurrent(ctx context.Context, communityID string, now time.Time) (*entity.Sprint, error)
	GetLastSprintNumber(ctx context.Context, communityID string) (int, error)
	GetListByCommunityID(ctx context.Context, communityID string, offset, limit int) ([]entity.Sprint, error)
	GetExpiredActive(ctx context.Context, now time.Time) ([]entity.Sprint, error)

	// CreateIfNotExists inserts the sprint keyed on (community_id,
	// sprint_number). If another writer got there first, it reports false and
	// loads the winner's row into sprint. This is the create-if-absent
	// primitive concurrent schedulers converge on.
	CreateIfNotExists(ctx context.Context, sprint *entity.Sprint) (bool, error)

	// MarkCompleted transitions active -> completed. It returns
	// gorm.ErrRecordNotFound if the sprint was not active anymore, so a raced
	// rollover is detected instead of applied twice.
	MarkCompleted(ctx context.Context, id string) error

	UpdateSyncStats(ctx context.Context, id string, eligibleUsers []string, totalTasks, completedTasks int, syncedAt time.Time) error
}

type sprintRepository struct{}

func NewSprintRepository() *sprintRepository {
	return &sprintRepository{}
}

func (r *sprintRepository) GetByID(ctx context.Context, id string) (*entity.Sprint, error) {
	var result entity.Sprint
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *sprintRepository) GetActive(ctx context.Context, communityID string) (*entity.Sprint, error) {
	var result entity.Sprint
	err := xcontext.DB(ctx).
		Where("community_id=? AND status=?", communityID, entity.SprintActive).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *sprintRepository) GetCurrent(
	ctx context.Context, communityID string, now time.Time,
) (*entity.Sprint, error) {
	var result entity.Sprint
	err := xcontext.DB(ctx).
		Where("community_id=? AND status=?", communityID, entity.SprintActive).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *sprintRepository) GetLastSprintNumber(ctx context.Context, communityID string) (int, error) {
	var result struct {
		Number int
	}

	err := xcontext.DB(ctx).
		Model(&entity.Sprint{}).
		Select("COALESCE(MAX(sprint_number), 0) AS number").
		Where("community_id=?", communityID).
		Take(&result).Error
	if err != nil {
		return 0, err
	}

	return result.Number, nil
}

func (r *sprintRepository) GetListByCommunityID(
	ctx context.Context, communityID string, offset, limit int,
) ([]entity.Sprint, error) {
	tx := xcontext.DB(ctx).
		Where("community_id=?", communityID).
		Order("sprint_number DESC")

	if limit > 0 {
		tx = tx.Offset(offset).Limit(limit)
	}

	var result []entity.Sprint
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *sprintRepository) GetExpiredActive(ctx context.Context, now time.Time) ([]entity.Sprint, error) {
	var result []entity.Sprint
	err := xcontext.DB(ctx).
		Where("status=? AND end_date < ?", entity.SprintActive, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *sprintRepository) CreateIfNotExists(ctx context.Context, sprint *entity.Sprint) (bool, error) {
	tx := xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "community_id"}, {Name: "sprint_number"}},
			DoNothing: true,
		}).
		Create(sprint)

	if tx.Error != nil {
		return false, tx.Error
	}

	if tx.RowsAffected == 1 {
		return true, nil
	}

	// Lost the race. Replace the caller's copy with the row that won.
	err := xcontext.DB(ctx).
		Where("community_id=? AND sprint_number=?", sprint.CommunityID, sprint.SprintNumber).
		Take(sprint).Error
	if err != nil {
		return false, err
	}

	return false, nil
}

func (r *sprintRepository) MarkCompleted(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Sprint{}).
		Where("id=? AND status=?", id, entity.SprintActive).
		Update("status", entity.SprintCompleted)

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

func (r *sprintRepository) UpdateSyncStats(
	ctx context.Context, id string, eligibleUsers []string,
	totalTasks, completedTasks int, syncedAt time.Time,
) error {
	// Completed sprints keep their final snapshot, so only active sprints
	// accept new statistics.
	tx := xcontext.DB(ctx).
		Model(&entity.Sprint{}).
		Where("id=? AND status=?", id, entity.SprintActive).
		Updates(map[string]any{
			"eligible_users":  entity.Array[string](eligibleUsers),
			"total_tasks":     totalTasks,
			"completed_tasks": completedTasks,
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
