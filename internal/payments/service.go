package payments

import (
	"context"

	"wanderly/internal/bookings"
	"wanderly/internal/experiences"
	"wanderly/internal/notifications"
	"wanderly/internal/payments/gateway"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/config"
	"wanderly/internal/users"
	"wanderly/pkg/logger"
	"wanderly/pkg/metrics"

	"github.com/google/uuid"
)

// BookingStore is the slice of the booking repository payments need
type BookingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*bookings.Booking, error)
	Confirm(ctx context.Context, id uuid.UUID, paymentID string) (*bookings.Booking, error)
}

type ExperienceReader interface {
	Get(ctx context.Context, id uuid.UUID) (*experiences.Experience, error)
}

type Service interface {
	Verify(ctx context.Context, actor users.Actor, req VerifyPaymentRequest) (*bookings.Booking, error)
}

type service struct {
	bookings  BookingStore
	catalog   ExperienceReader
	publisher notifications.Publisher
	secret    string
	log       *logger.Logger
}

func NewService(store BookingStore, catalog ExperienceReader, publisher notifications.Publisher, cfg config.PaymentConfig) Service {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &service{
		bookings:  store,
		catalog:   catalog,
		publisher: publisher,
		secret:    cfg.KeySecret,
		log:       logger.GetDefault(),
	}
}

func (s *service) Verify(ctx context.Context, actor users.Actor, req VerifyPaymentRequest) (*bookings.Booking, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid booking_id")
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.ID {
		return nil, apperrors.Unauthorized("you can only pay for your own bookings")
	}
	if booking.IsPaid() {
		return booking, nil
	}
	if booking.PaymentOrderID == "" || booking.PaymentOrderID != req.OrderID {
		return nil, apperrors.InvalidArgument("order_id does not match this booking")
	}
	if booking.IsCancelled() {
		return nil, apperrors.Conflict("booking is cancelled")
	}

	if !gateway.VerifySignature(s.secret, req.OrderID, req.PaymentID, req.Signature) {
		if _, err := s.bookings.Update(ctx, bookingID, map[string]interface{}{
			"payment_status": string(bookings.PaymentFailed),
		}); err != nil {
			s.log.WarnContext(ctx, "failed to record payment failure", "booking_id", bookingID, "error", err)
		}
		metrics.PaymentVerifications.WithLabelValues("failed").Inc()
		s.log.LogPaymentFailed(ctx, bookingID.String(), req.OrderID, "signature mismatch")
		return nil, apperrors.InvalidArgument("payment verification failed")
	}

	// a cancel racing this request wins; Confirm leaves cancelled bookings alone
	confirmed, err := s.bookings.Confirm(ctx, bookingID, req.PaymentID)
	if err != nil {
		return nil, err
	}

	metrics.PaymentVerifications.WithLabelValues("verified").Inc()
	s.log.LogPaymentVerified(ctx, bookingID.String(), req.OrderID, req.PaymentID)

	title := ""
	if experience, err := s.catalog.Get(ctx, confirmed.ExperienceID); err == nil {
		title = experience.Title
	}
	if err := s.publisher.Publish(ctx, bookings.NewEvent(notifications.EventBookingConfirmed, confirmed, title)); err != nil {
		s.log.WarnContext(ctx, "failed to publish booking event", "type", notifications.EventBookingConfirmed, "booking_id", bookingID, "error", err)
	}
	return confirmed, nil
}
