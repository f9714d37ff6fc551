package entity

import (
	"database/sql"
	"time"

	"github.com/teampulse/backend/pkg/enum"
	"gorm.io/gorm"
)

type CommunityRole string

var (
	RoleOwner  = enum.New(CommunityRole("owner"))
	RoleAdmin  = enum.New(CommunityRole("admin"))
	RoleMember = enum.New(CommunityRole("member"))
)

type Member struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	CommunityID string    `gorm:"primaryKey"`
	Community   Community `gorm:"foreignKey:CommunityID"`

	Role CommunityRole

	// Community-scoped balances.
	RewardPoints    uint64
	ClaimablePoints uint64
	TotalGiven      uint64
	TotalReceived   uint64

	// LastRewardedSprint guards the per-sprint allocation so re-running a
	// rollover never credits the same sprint twice.
	LastRewardedSprint int

	// Per-sprint eligibility cache, reset at rollover.
	SprintScore    int
	SprintEligible bool
	TaskBreakdown  Map          `gorm:"type:text"`
	LastSyncedAt   sql.NullTime

	InviteCode string `gorm:"unique"`
}
