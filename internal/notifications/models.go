package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingConfirmed EventType = "BOOKING_CONFIRMED"
	EventBookingCancelled EventType = "BOOKING_CANCELLED"
)

// BookingEvent is the message published on the booking topic for every
// lifecycle change a traveller should hear about.
type BookingEvent struct {
	Type            EventType `json:"type"`
	BookingID       uuid.UUID `json:"booking_id"`
	BookingRef      string    `json:"booking_ref"`
	UserID          uuid.UUID `json:"user_id"`
	ExperienceID    uuid.UUID `json:"experience_id"`
	ExperienceTitle string    `json:"experience_title"`
	Date            string    `json:"date"`
	TimeSlot        string    `json:"time_slot"`
	Slots           int       `json:"slots"`
	TotalPrice      float64   `json:"total_price"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ParseBookingEvent(data []byte) (*BookingEvent, error) {
	var e BookingEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// PartitionKey keeps every event of one booking on the same partition
func (e *BookingEvent) PartitionKey() string {
	return e.BookingID.String()
}
