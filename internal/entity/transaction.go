package entity

import (
	"database/sql"

	"github.com/teampulse/backend/pkg/enum"
)

type TransactionStatus string

var (
	TransactionPending  = enum.New(TransactionStatus("pending"))
	TransactionApproved = enum.New(TransactionStatus("approved"))
	TransactionRejected = enum.New(TransactionStatus("rejected"))
)

// Transaction is an append-mostly ledger entry. Once approved or rejected it
// is never mutated again, and it is never deleted.
type Transaction struct {
	Base

	FromUserID string
	FromUser   User `gorm:"foreignKey:FromUserID"`

	ToUserID string
	ToUser   User `gorm:"foreignKey:ToUserID"`

	CommunityID string    `gorm:"index"`
	Community   Community `gorm:"foreignKey:CommunityID"`

	Points  uint64
	Message string
	Status  TransactionStatus `gorm:"index"`

	ReviewerID sql.NullString
	ReviewedAt sql.NullTime
}
