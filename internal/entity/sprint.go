package entity

import (
	"database/sql"
	"time"

	"github.com/teampulse/backend/pkg/enum"
)

type SprintStatus string

var (
	SprintPlanning  = enum.New(SprintStatus("planning"))
	SprintActive    = enum.New(SprintStatus("active"))
	SprintCompleted = enum.New(SprintStatus("completed"))
)

type Sprint struct {
	Base
	CommunityID string    `gorm:"uniqueIndex:idx_sprints_community_number"`
	Community   Community `gorm:"foreignKey:CommunityID"`

	// SprintNumber is strictly increasing from 1 within a community. The
	// composite unique index is what makes concurrent creation converge.
	SprintNumber int `gorm:"uniqueIndex:idx_sprints_community_number"`

	StartDate time.Time
	EndDate   time.Time
	Status    SprintStatus `gorm:"index"`

	EligibleUsers  Array[string] `gorm:"type:text"`
	TotalTasks     int
	CompletedTasks int
	LastSyncedAt   sql.NullTime
}
