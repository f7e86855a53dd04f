package cart

type AddItemRequest struct {
	ExperienceID string `json:"experience_id" binding:"required,uuid"`
	Quantity     int    `json:"quantity" binding:"omitempty,min=1"`
	Date         string `json:"date" binding:"required,datetime=2006-01-02"`
	TimeSlot     string `json:"time_slot" binding:"max=40"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}
