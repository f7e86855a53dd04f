package bookings

import "wanderly/internal/payments/gateway"

// CreateBookingResponse carries the pending booking and the gateway order the
// client completes checkout against.
type CreateBookingResponse struct {
	Booking *Booking       `json:"booking"`
	Order   *gateway.Order `json:"order,omitempty"`
	KeyID   string         `json:"key_id,omitempty"`
}
