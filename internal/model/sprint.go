package model

type Sprint struct {
	ID             string   `json:"id"`
	CommunityID    string   `json:"community_id"`
	SprintNumber   int      `json:"sprint_number"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	Status         string   `json:"status"`
	EligibleUsers  []string `json:"eligible_users"`
	TotalTasks     int      `json:"total_tasks"`
	CompletedTasks int      `json:"completed_tasks"`
	LastSyncedAt   string   `json:"last_synced_at"`
}

type GetCurrentSprintRequest struct {
	CommunityHandle string `json:"community_handle"`
}

type GetCurrentSprintResponse Sprint

type GetSprintsRequest struct {
	CommunityHandle string `json:"community_handle"`
	Offset          int    `json:"offset"`
	Limit           int    `json:"limit"`
}

type GetSprintsResponse struct {
	Sprints []Sprint `json:"sprints"`
}

type SyncSprintRequest struct {
	CommunityHandle string `json:"community_handle"`
}

type SyncSprintResponse struct{}

type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Score  int64  `json:"score"`
}

type GetLeaderboardRequest struct {
	CommunityHandle string `json:"community_handle"`
	Offset          int    `json:"offset"`
	Limit           int    `json:"limit"`
}

type GetLeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}
