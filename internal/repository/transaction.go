package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	GetByUserID(ctx context.Context, userID string, status entity.TransactionStatus, offset, limit int) ([]entity.Transaction, error)
	GetPendingByCommunityID(ctx context.Context, communityID string) ([]entity.Transaction, error)

	// UpdateStatus transitions a transaction from one status to another as a
	// conditional update. It returns gorm.ErrRecordNotFound if the current
	// status did not match, which makes every transition exactly-once.
	UpdateStatus(ctx context.Context, id string, from, to entity.TransactionStatus, reviewerID string) error
}

type transactionRepository struct{}

func NewTransactionRepository() *transactionRepository {
	return &transactionRepository{}
}

func (r *transactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	return xcontext.DB(ctx).Create(transaction).Error
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var result entity.Transaction
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *transactionRepository) GetByUserID(
	ctx context.Context, userID string, status entity.TransactionStatus, offset, limit int,
) ([]entity.Transaction, error) {
	tx := xcontext.DB(ctx).
		Where("from_user_id=? OR to_user_id=?", userID, userID).
		Order("created_at DESC")

	if status != "" {
		tx = tx.Where("status=?", status)
	}

	if limit > 0 {
		tx = tx.Offset(offset).Limit(limit)
	}

	var result []entity.Transaction
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *transactionRepository) GetPendingByCommunityID(
	ctx context.Context, communityID string,
) ([]entity.Transaction, error) {
	var result []entity.Transaction
	err := xcontext.DB(ctx).
		Where("community_id=? AND status=?", communityID, entity.TransactionPending).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *transactionRepository) UpdateStatus(
	ctx context.Context, id string, from, to entity.TransactionStatus, reviewerID string,
) error {
	updateMap := map[string]any{"status": to}
	if reviewerID != "" {
		updateMap["reviewer_id"] = sql.NullString{Valid: true, String: reviewerID}
		updateMap["reviewed_at"] = sql.NullTime{Valid: true, Time: time.Now()}
	}

	tx := xcontext.DB(ctx).
		Model(&entity.Transaction{}).
		Where("id=? AND status=?", id, from).
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
