package domain

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/teampulse/backend/internal/common"
	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/internal/model"
	"github.com/teampulse/backend/internal/repository"
	"github.com/teampulse/backend/pkg/enum"
	"github.com/teampulse/backend/pkg/errorx"
	"github.com/teampulse/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type TransactionDomain interface {
	Send(context.Context, *model.SendTransactionRequest) (*model.SendTransactionResponse, error)
	Approve(context.Context, *model.ApproveTransactionRequest) (*model.ApproveTransactionResponse, error)
	Reject(context.Context, *model.RejectTransactionRequest) (*model.RejectTransactionResponse, error)
	GetMyTransactions(context.Context, *model.GetMyTransactionsRequest) (*model.GetMyTransactionsResponse, error)
	GetPendingTransactions(context.Context, *model.GetPendingTransactionsRequest) (*model.GetPendingTransactionsResponse, error)
}

type transactionDomain struct {
	transactionRepo repository.TransactionRepository
	memberRepo      repository.MemberRepository
	userRepo        repository.UserRepository
	communityRepo   repository.CommunityRepository
	roleVerifier    *common.CommunityRoleVerifier

	// senderLocks serializes transfers of the same sender within this
	// process. The guarded balance update in the repository is the real
	// correctness barrier, this only avoids burning transactions on
	// predictable conflicts.
	senderLocks *xsync.MapOf[string, *sync.Mutex]
}

func NewTransactionDomain(
	transactionRepo repository.TransactionRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	communityRepo repository.CommunityRepository,
	roleVerifier *common.CommunityRoleVerifier,
) *transactionDomain {
	return &transactionDomain{
		transactionRepo: transactionRepo,
		memberRepo:      memberRepo,
		userRepo:        userRepo,
		communityRepo:   communityRepo,
		roleVerifier:    roleVerifier,
		senderLocks:     xsync.NewMapOf[*sync.Mutex](),
	}
}

func (d *transactionDomain) lockSender(userID string) func() {
	mutex, _ := d.senderLocks.LoadOrStore(userID, &sync.Mutex{})
	mutex.Lock()
	return mutex.Unlock
}

func (d *transactionDomain) Send(
	ctx context.Context, req *model.SendTransactionRequest,
) (*model.SendTransactionResponse, error) {
	if req.CommunityHandle == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty community handle")
	}

	if req.Points == 0 {
		return nil, errorx.New(errorx.BadRequest, "Points must be positive")
	}

	fromUserID := xcontext.RequestUserID(ctx)
	if req.ToUserID == fromUserID {
		return nil, errorx.New(errorx.BadRequest, "Not allow transferring points to yourself")
	}

	community, err := d.communityRepo.GetByHandle(ctx, req.CommunityHandle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found community")
		}

		xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
		return nil, errorx.Unknown
	}

	fromUser, err := d.userRepo.GetByID(ctx, fromUserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get sender: %v", err)
		return nil, errorx.Unknown
	}

	fromMember, err := d.memberRepo.Get(ctx, fromUserID, community.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PermissionDenied, "You are not a member of this community")
		}

		xcontext.Logger(ctx).Errorf("Cannot get sender membership: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := d.memberRepo.Get(ctx, req.ToUserID, community.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Recipient is not a member of this community")
		}

		xcontext.Logger(ctx).Errorf("Cannot get recipient membership: %v", err)
		return nil, errorx.Unknown
	}

	unlimited := common.HasUnlimitedBalance(fromUser.Role, fromMember.Role)

	unlock := d.lockSender(fromUserID)
	defer unlock()

	if !unlimited && fromMember.RewardPoints < req.Points {
		// Re-read inside the lock, a concurrent transfer may have settled.
		fromMember, err = d.memberRepo.Get(ctx, fromUserID, community.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get sender membership: %v", err)
			return nil, errorx.Unknown
		}

		if fromMember.RewardPoints < req.Points {
			return nil, errorx.New(errorx.InsufficientBalance,
				"Balance of %d points is not enough for this transfer", fromMember.RewardPoints)
		}
	}

	transaction := &entity.Transaction{
		Base:        entity.Base{ID: uuid.NewString()},
		FromUserID:  fromUserID,
		ToUserID:    req.ToUserID,
		CommunityID: community.ID,
		Points:      req.Points,
		Message:     req.Message,
		Status:      entity.TransactionPending,
	}

	// Large transfers from limited senders wait for review. No balance moves
	// until a reviewer approves.
	approvalThreshold := xcontext.Configs(ctx).Sprint.ApprovalThreshold
	if !unlimited && req.Points > approvalThreshold {
		if err := d.transactionRepo.Create(ctx, transaction); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create transaction: %v", err)
			return nil, errorx.Unknown
		}

		return &model.SendTransactionResponse{
			ID:     transaction.ID,
			Status: string(entity.TransactionPending),
		}, nil
	}

	transaction.Status = entity.TransactionApproved

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.transactionRepo.Create(ctx, transaction); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create transaction: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.applyTransfer(ctx, transaction, unlimited); err != nil {
		return nil, err
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.SendTransactionResponse{
		ID:     transaction.ID,
		Status: string(entity.TransactionApproved),
	}, nil
}

// applyTransfer moves the points of an approved transfer. The debit is a
// conditional update, so an insufficient balance surfaces here even after
// the earlier check passed.
func (d *transactionDomain) applyTransfer(
	ctx context.Context, transaction *entity.Transaction, unlimitedSender bool,
) error {
	if unlimitedSender {
		// The balance is untouched, but the sender's total_given counter
		// still records the transfer.
		err := d.memberRepo.IncreaseTotalGiven(
			ctx, transaction.FromUserID, transaction.CommunityID, transaction.Points)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot increase sender total given: %v", err)
			return errorx.Unknown
		}
	} else {
		err := d.memberRepo.DecreasePoint(
			ctx, transaction.FromUserID, transaction.CommunityID, transaction.Points, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.InsufficientBalance,
					"Balance is not enough for this transfer")
			}

			xcontext.Logger(ctx).Errorf("Cannot decrease sender points: %v", err)
			return errorx.Unknown
		}
	}

	err := d.memberRepo.IncreasePoint(
		ctx, transaction.ToUserID, transaction.CommunityID, transaction.Points, true)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase recipient points: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *transactionDomain) Approve(
	ctx context.Context, req *model.ApproveTransactionRequest,
) (*model.ApproveTransactionResponse, error) {
	transaction, err := d.getPendingTransaction(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.roleVerifier.Verify(ctx, transaction.CommunityID, common.ManageGroup...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	reviewerID := xcontext.RequestUserID(ctx)

	unlock := d.lockSender(transaction.FromUserID)
	defer unlock()

	fromUser, err := d.userRepo.GetByID(ctx, transaction.FromUserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get sender: %v", err)
		return nil, errorx.Unknown
	}

	fromMember, err := d.memberRepo.Get(ctx, transaction.FromUserID, transaction.CommunityID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get sender membership: %v", err)
		return nil, errorx.Unknown
	}

	unlimited := common.HasUnlimitedBalance(fromUser.Role, fromMember.Role)

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	err = d.transactionRepo.UpdateStatus(
		txCtx, transaction.ID, entity.TransactionPending, entity.TransactionApproved, reviewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidState, "Transaction is already reviewed")
		}

		xcontext.Logger(ctx).Errorf("Cannot approve transaction: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.applyTransfer(txCtx, transaction, unlimited); err != nil {
		xcontext.WithRollbackDBTransaction(txCtx)

		// The guarded debit is the approval-time balance check. A transfer
		// that no longer fits is rejected rather than applied partially.
		if errors.Is(err, errorx.Error{Code: errorx.InsufficientBalance}) {
			return d.rejectInsufficient(ctx, transaction, reviewerID)
		}

		return nil, err
	}

	xcontext.WithCommitDBTransaction(txCtx)

	return &model.ApproveTransactionResponse{Status: string(entity.TransactionApproved)}, nil
}

// rejectInsufficient converts a pending transaction whose sender can no
// longer cover it into a rejection. This is an expected review outcome, not
// an error.
func (d *transactionDomain) rejectInsufficient(
	ctx context.Context, transaction *entity.Transaction, reviewerID string,
) (*model.ApproveTransactionResponse, error) {
	err := d.transactionRepo.UpdateStatus(
		ctx, transaction.ID, entity.TransactionPending, entity.TransactionRejected, reviewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidState, "Transaction is already reviewed")
		}

		xcontext.Logger(ctx).Errorf("Cannot reject transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ApproveTransactionResponse{Status: string(entity.TransactionRejected)}, nil
}

func (d *transactionDomain) Reject(
	ctx context.Context, req *model.RejectTransactionRequest,
) (*model.RejectTransactionResponse, error) {
	transaction, err := d.getPendingTransaction(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.roleVerifier.Verify(ctx, transaction.CommunityID, common.ManageGroup...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	err = d.transactionRepo.UpdateStatus(
		ctx, transaction.ID, entity.TransactionPending, entity.TransactionRejected,
		xcontext.RequestUserID(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidState, "Transaction is already reviewed")
		}

		xcontext.Logger(ctx).Errorf("Cannot reject transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RejectTransactionResponse{}, nil
}

func (d *transactionDomain) getPendingTransaction(
	ctx context.Context, id string,
) (*entity.Transaction, error) {
	if id == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty transaction id")
	}

	transaction, err := d.transactionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found transaction")
		}

		xcontext.Logger(ctx).Errorf("Cannot get transaction: %v", err)
		return nil, errorx.Unknown
	}

	if transaction.Status != entity.TransactionPending {
		return nil, errorx.New(errorx.InvalidState,
			"Only pending transactions can be reviewed, this one is %s", transaction.Status)
	}

	return transaction, nil
}

func (d *transactionDomain) GetMyTransactions(
	ctx context.Context, req *model.GetMyTransactionsRequest,
) (*model.GetMyTransactionsResponse, error) {
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

	var status entity.TransactionStatus
	if req.Status != "" {
		var err error
		status, err = enum.ToEnum[entity.TransactionStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status filter %s", req.Status)
		}
	}

	transactions, err := d.transactionRepo.GetByUserID(
		ctx, xcontext.RequestUserID(ctx), status, req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get transactions: %v", err)
		return nil, errorx.Unknown
	}

	clientTransactions := make([]model.Transaction, 0, len(transactions))
	for i := range transactions {
		clientTransactions = append(clientTransactions, model.ConvertTransaction(&transactions[i]))
	}

	return &model.GetMyTransactionsResponse{Transactions: clientTransactions}, nil
}

func (d *transactionDomain) GetPendingTransactions(
	ctx context.Context, req *model.GetPendingTransactionsRequest,
) (*model.GetPendingTransactionsResponse, error) {
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

	if err := d.roleVerifier.Verify(ctx, community.ID, common.ManageGroup...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	transactions, err := d.transactionRepo.GetPendingByCommunityID(ctx, community.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pending transactions: %v", err)
		return nil, errorx.Unknown
	}

	clientTransactions := make([]model.Transaction, 0, len(transactions))
	for i := range transactions {
		clientTransactions = append(clientTransactions, model.ConvertTransaction(&transactions[i]))
	}

	return &model.GetPendingTransactionsResponse{Transactions: clientTransactions}, nil
}
