package payments

// VerifyPaymentRequest is what the app posts after the gateway checkout completes
type VerifyPaymentRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required,hexadecimal"`
}
