package model

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	GlobalPoints uint64 `json:"global_points"`
	HasTaskLink  bool   `json:"has_task_link"`
}

type GetMeRequest struct{}

type GetMeResponse struct {
	User    User     `json:"user"`
	Members []Member `json:"members"`
}
