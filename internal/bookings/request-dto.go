package bookings

type CreateBookingRequest struct {
	ExperienceID string `json:"experience_id" binding:"required,uuid"`
	Date         string `json:"date" binding:"required,datetime=2006-01-02"`
	TimeSlot     string `json:"time_slot" binding:"max=40"`
	Slots        int    `json:"slots" binding:"required,min=1,max=100"`
}
