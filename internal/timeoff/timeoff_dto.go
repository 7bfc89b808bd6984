package timeoff

type CreateTimeOffRequest struct {
	Type        string `json:"type" binding:"required,oneof=PAID UNPAID SICK"`
	Description string `json:"description"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
}

type UpdateTimeOffRequest struct {
	Description string `json:"description"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
}

type VoteTimeOffRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

type TimeOffResponse struct {
	ID             string   `json:"id"`
	CreatorID      string   `json:"creator_id"`
	Type           string   `json:"type"`
	Description    string   `json:"description,omitempty"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	Duration       int      `json:"duration"`
	Status         string   `json:"status"`
	ApproverEmails []string `json:"approver_emails,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
}

type CancelPendingResponse struct {
	Cancelled int `json:"cancelled"`
}
