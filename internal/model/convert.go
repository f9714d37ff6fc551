package model

import (
	"time"

	"github.com/teampulse/backend/internal/entity"
)

func ConvertUser(user *entity.User) User {
	if user == nil {
		return User{}
	}

	return User{
		ID:           user.ID,
		Name:         user.Name,
		Role:         string(user.Role),
		GlobalPoints: user.GlobalPoints,
		HasTaskLink:  user.TaskSourceUserID.Valid,
	}
}

func ConvertCommunity(community *entity.Community) Community {
	if community == nil {
		return Community{}
	}

	return Community{
		ID:                    community.ID,
		CreatedAt:             community.CreatedAt.Format(time.RFC3339Nano),
		CreatedBy:             community.CreatedBy,
		Handle:                community.Handle,
		DisplayName:           community.DisplayName,
		Introduction:          string(community.Introduction),
		Members:               community.Members,
		RewardPointsPerSprint: community.RewardPointsPerSprint,
		EligibilityThreshold:  community.EligibilityThreshold,
	}
}

func ConvertMember(member *entity.Member, user User, community Community) Member {
	if member == nil {
		return Member{}
	}

	return Member{
		UserID:         member.UserID,
		CommunityID:    member.CommunityID,
		Role:           string(member.Role),
		RewardPoints:   member.RewardPoints,
		TotalGiven:     member.TotalGiven,
		TotalReceived:  member.TotalReceived,
		SprintScore:    member.SprintScore,
		SprintEligible: member.SprintEligible,
		InviteCode:     member.InviteCode,
		User:           user,
		Community:      community,
	}
}

func ConvertSprint(sprint *entity.Sprint) Sprint {
	if sprint == nil {
		return Sprint{}
	}

	lastSynced := ""
	if sprint.LastSyncedAt.Valid {
		lastSynced = sprint.LastSyncedAt.Time.Format(time.RFC3339Nano)
	}

	return Sprint{
		ID:             sprint.ID,
		CommunityID:    sprint.CommunityID,
		SprintNumber:   sprint.SprintNumber,
		StartDate:      sprint.StartDate.Format(time.RFC3339Nano),
		EndDate:        sprint.EndDate.Format(time.RFC3339Nano),
		Status:         string(sprint.Status),
		EligibleUsers:  sprint.EligibleUsers,
		TotalTasks:     sprint.TotalTasks,
		CompletedTasks: sprint.CompletedTasks,
		LastSyncedAt:   lastSynced,
	}
}

func ConvertTransaction(transaction *entity.Transaction) Transaction {
	if transaction == nil {
		return Transaction{}
	}

	return Transaction{
		ID:          transaction.ID,
		CreatedAt:   transaction.CreatedAt.Format(time.RFC3339Nano),
		FromUserID:  transaction.FromUserID,
		ToUserID:    transaction.ToUserID,
		CommunityID: transaction.CommunityID,
		Points:      transaction.Points,
		Message:     transaction.Message,
		Status:      string(transaction.Status),
	}
}
