package holiday

type CreateHolidayRequest struct {
	Date string `json:"date" binding:"required"`
	Name string `json:"name"`
}

type HolidayResponse struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name,omitempty"`
}
