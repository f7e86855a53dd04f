package bookings

import (
	"strings"
	"time"

	"wanderly/internal/experiences"
	"wanderly/internal/shared/apperrors"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// Availability is the seat count left per slot on one day
type Availability struct {
	ExperienceID uuid.UUID      `json:"experience_id"`
	Date         string         `json:"date"`
	Capacity     int            `json:"capacity"`
	Slots        map[string]int `json:"slots"`
}

// ParseDay reads a YYYY-MM-DD calendar day in server local time.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperrors.InvalidArgument("date is required")
	}
	day, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, apperrors.InvalidArgument("date must be formatted as YYYY-MM-DD")
	}
	return day, nil
}

// DayBounds returns the half-open local day [start, end) containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(time.Local)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 0, 1)
}

// Remaining computes the seats left on one day for each of the given slots.
// With no slots the whole day is a single bucket keyed by WholeDaySlot that
// every booking of the day draws from. Otherwise each slot only counts
// bookings carrying its exact label; bookings under labels that are no longer
// listed count nowhere. Cancelled bookings are ignored and results never go
// below zero.
func Remaining(capacity int, slots []string, booked []Booking) map[string]int {
	used := make(map[string]int, len(slots))
	total := 0
	for _, b := range booked {
		if !b.Status.CountsAgainstCapacity() {
			continue
		}
		used[b.TimeSlot] += b.Slots
		total += b.Slots
	}

	if len(slots) == 0 {
		return map[string]int{experiences.WholeDaySlot: max(0, capacity-total)}
	}

	remaining := make(map[string]int, len(slots))
	for _, slot := range slots {
		remaining[slot] = max(0, capacity-used[slot])
	}
	return remaining
}

// ResolveSlot maps the requested slot onto the label the booking is stored
// under.
func ResolveSlot(e *experiences.Experience, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if !e.HasTimeSlots() {
		if requested == "" || strings.EqualFold(requested, experiences.WholeDaySlot) {
			return experiences.WholeDaySlot, nil
		}
		return "", apperrors.InvalidArgument("this experience has no time slots")
	}
	if requested == "" {
		return "", apperrors.InvalidArgument("time_slot is required")
	}
	if !e.HasSlot(requested) {
		return "", apperrors.InvalidArgument("unknown time slot %q", requested)
	}
	return requested, nil
}
