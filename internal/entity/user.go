package entity

import (
	"database/sql"

	"github.com/teampulse/backend/pkg/enum"
)

type GlobalRole string

var (
	GlobalRoleFounder  = enum.New(GlobalRole("founder"))
	GlobalRoleEmployee = enum.New(GlobalRole("employee"))
)

type User struct {
	Base
	Name string `gorm:"unique"`
	Role GlobalRole

	// GlobalPoints is the fallback balance used outside of any community
	// scope.
	GlobalPoints uint64

	// TaskSourceUserID maps this user to the external task tracker. Users
	// without a mapping never become sprint-eligible.
	TaskSourceUserID sql.NullString `gorm:"index"`
}
