package user

type CreateUserRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"omitempty,oneof=admin member"`
}

type UpdateUserRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type UserResponse struct {
	ID                  string `json:"id"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Email               string `json:"email"`
	Role                string `json:"role"`
	IsWorking           bool   `json:"is_working"`
	InitialDaysSet      bool   `json:"initial_days_set"`
	RemainingPaidDays   int    `json:"remaining_paid_days"`
	RemainingUnpaidDays int    `json:"remaining_unpaid_days"`
	RemainingSickDays   int    `json:"remaining_sick_days"`
}

type DaysOffResponse struct {
	Paid   int `json:"paid"`
	Unpaid int `json:"unpaid"`
	Sick   int `json:"sick"`
}
