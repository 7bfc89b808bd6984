package team

type CreateTeamRequest struct {
	Name     string `json:"name" binding:"required"`
	LeaderID string `json:"leader_id" binding:"required,uuid"`
}

type UpdateTeamRequest struct {
	Name     string `json:"name" binding:"required"`
	LeaderID string `json:"leader_id" binding:"required,uuid"`
}

type MemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

type TeamResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	LeaderID string   `json:"leader_id"`
	Members  []string `json:"members,omitempty"`
}
