package model

type Community struct {
	ID                    string `json:"id"`
	CreatedAt             string `json:"created_at"`
	CreatedBy             string `json:"created_by"`
	Handle                string `json:"handle"`
	DisplayName           string `json:"display_name"`
	Introduction          string `json:"introduction"`
	Members               int    `json:"members"`
	RewardPointsPerSprint uint64 `json:"reward_points_per_sprint"`
	EligibilityThreshold  int    `json:"eligibility_threshold"`
}

type Member struct {
	UserID         string    `json:"user_id"`
	CommunityID    string    `json:"community_id"`
	Role           string    `json:"role"`
	RewardPoints   uint64    `json:"reward_points"`
	TotalGiven     uint64    `json:"total_given"`
	TotalReceived  uint64    `json:"total_received"`
	SprintScore    int       `json:"sprint_score"`
	SprintEligible bool      `json:"sprint_eligible"`
	InviteCode     string    `json:"invite_code"`
	User           User      `json:"user"`
	Community      Community `json:"community"`
}

type CreateCommunityRequest struct {
	DisplayName           string `json:"display_name"`
	Introduction          string `json:"introduction"`
	RewardPointsPerSprint uint64 `json:"reward_points_per_sprint"`
	EligibilityThreshold  int    `json:"eligibility_threshold"`
}

type CreateCommunityResponse struct {
	Handle string `json:"handle"`
}

type JoinCommunityRequest struct {
	CommunityHandle string `json:"community_handle"`
}

type JoinCommunityResponse struct{}

type GetMembersRequest struct {
	CommunityHandle string `json:"community_handle"`
	Q               string `json:"q"`
	Offset          int    `json:"offset"`
	Limit           int    `json:"limit"`
}

type GetMembersResponse struct {
	Members []Member `json:"members"`
}
