package bookings

import (
	"context"
	"errors"
	"time"

	"wanderly/internal/experiences"
	"wanderly/internal/notifications"
	"wanderly/internal/payments/gateway"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/utils/response"
	"wanderly/internal/users"
	"wanderly/pkg/logger"
	"wanderly/pkg/metrics"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"github.com/shopspring/decimal"
)

// PageSize for booking history
const PageSize = 12

// ExperienceReader is the part of the catalog bookings depend on
type ExperienceReader interface {
	Get(ctx context.Context, id uuid.UUID) (*experiences.Experience, error)
}

type Service interface {
	Availability(ctx context.Context, experienceID uuid.UUID, date string) (*Availability, error)
	Create(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*CreateBookingResponse, error)
	Get(ctx context.Context, actor users.Actor, id uuid.UUID) (*Booking, error)
	ListMine(ctx context.Context, userID uuid.UUID, page int) (*response.Page[Booking], error)
	Cancel(ctx context.Context, actor users.Actor, id uuid.UUID) (*Booking, error)

	// HasQualifyingBooking backs review gating
	HasQualifyingBooking(ctx context.Context, userID, experienceID uuid.UUID) (bool, error)
}

type service struct {
	repo      Repository
	catalog   ExperienceReader
	gateway   gateway.Client
	publisher notifications.Publisher
	keyID     string
	now       func() time.Time
	log       *logger.Logger
}

func NewService(repo Repository, catalog ExperienceReader, payments gateway.Client, publisher notifications.Publisher, cfg config.PaymentConfig) Service {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &service{
		repo:      repo,
		catalog:   catalog,
		gateway:   payments,
		publisher: publisher,
		keyID:     cfg.KeyID,
		now:       time.Now,
		log:       logger.GetDefault(),
	}
}

func (s *service) Availability(ctx context.Context, experienceID uuid.UUID, date string) (*Availability, error) {
	day, err := ParseDay(date)
	if err != nil {
		return nil, err
	}

	experience, err := s.catalog.Get(ctx, experienceID)
	if err != nil {
		return nil, err
	}

	start, end := DayBounds(day)
	booked, err := s.repo.ListActiveForDay(ctx, experienceID, start, end)
	if err != nil {
		return nil, err
	}

	metrics.AvailabilityLookups.Inc()
	return &Availability{
		ExperienceID: experienceID,
		Date:         day.Format(DateLayout),
		Capacity:     experience.Capacity,
		Slots:        Remaining(experience.Capacity, experience.TimeSlots, booked),
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*CreateBookingResponse, error) {
	resp, err := s.create(ctx, userID, req)
	if err != nil {
		metrics.BookingsRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}
	metrics.BookingsCreated.Inc()
	return resp, nil
}

func (s *service) create(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*CreateBookingResponse, error) {
	experienceID, err := uuid.Parse(req.ExperienceID)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid experience_id")
	}
	if req.Slots < 1 {
		return nil, apperrors.InvalidArgument("slots must be at least 1")
	}

	day, err := ParseDay(req.Date)
	if err != nil {
		return nil, err
	}
	if today, _ := DayBounds(s.now()); day.Before(today) {
		return nil, apperrors.InvalidArgument("date is in the past")
	}

	experience, err := s.catalog.Get(ctx, experienceID)
	if err != nil {
		return nil, err
	}
	if !experience.IsBookable() {
		return nil, apperrors.Conflict("experience is not open for booking")
	}

	slot, err := ResolveSlot(experience, req.TimeSlot)
	if err != nil {
		return nil, err
	}

	total := decimal.NewFromFloat(experience.Price).Mul(decimal.NewFromInt(int64(req.Slots))).Round(2)
	booking := &Booking{
		ID:            uuid.New(),
		BookingRef:    newBookingRef(),
		UserID:        userID,
		ExperienceID:  experienceID,
		Date:          day,
		TimeSlot:      slot,
		Slots:         req.Slots,
		TotalPrice:    total.InexactFloat64(),
		Currency:      experience.Currency,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
	}

	if err := s.repo.CreateWithCapacityCheck(ctx, booking); err != nil {
		return nil, err
	}
	s.log.LogBookingCreated(ctx, booking.ID.String(), experienceID.String(), userID.String(), booking.Slots)

	resp := &CreateBookingResponse{Booking: booking}
	if !total.IsPositive() {
		// free listings have nothing to pay, so there is no order to verify
		confirmed, err := s.repo.Confirm(ctx, booking.ID, "")
		if err != nil {
			return nil, err
		}
		s.publish(ctx, notifications.EventBookingConfirmed, confirmed)
		resp.Booking = confirmed
		return resp, nil
	}

	order, err := s.gateway.CreateOrder(ctx, gateway.ToMinorUnits(total), booking.Currency, booking.BookingRef)
	if err != nil {
		// release the seats; nothing can be paid without an order
		s.release(ctx, booking.ID)
		return nil, err
	}

	updated, err := s.repo.Update(ctx, booking.ID, map[string]interface{}{"payment_order_id": order.ID})
	if err != nil {
		return nil, err
	}
	resp.Booking = updated
	resp.Order = order
	resp.KeyID = s.keyID
	return resp, nil
}

func (s *service) release(ctx context.Context, id uuid.UUID) {
	_, err := s.repo.Update(ctx, id, map[string]interface{}{
		"status":       string(StatusCancelled),
		"cancelled_at": s.now(),
	})
	if err != nil {
		s.log.ErrorContext(ctx, "failed to release booking after gateway failure", "booking_id", id, "error", err)
	}
}

func (s *service) Get(ctx context.Context, actor users.Actor, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(booking.UserID) {
		return nil, apperrors.Unauthorized("you can only view your own bookings")
	}
	return booking, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, page int) (*response.Page[Booking], error) {
	if page < 1 {
		page = 1
	}
	items, total, err := s.repo.ListByUser(ctx, userID, page, PageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Booking{}
	}
	return &response.Page[Booking]{
		Items:      items,
		Page:       page,
		PageSize:   PageSize,
		Total:      total,
		TotalPages: response.TotalPages(total, PageSize),
	}, nil
}

func (s *service) Cancel(ctx context.Context, actor users.Actor, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(booking.UserID) {
		return nil, apperrors.Unauthorized("you can only cancel your own bookings")
	}
	if booking.IsCancelled() {
		return nil, apperrors.Conflict("booking is already cancelled")
	}

	updates := map[string]interface{}{
		"status":       string(StatusCancelled),
		"cancelled_at": s.now(),
	}
	if booking.IsPaid() {
		// the refund itself is issued from the gateway dashboard
		updates["payment_status"] = string(PaymentRefunded)
	}

	cancelled, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	metrics.BookingsCancelled.Inc()
	s.log.LogBookingCancelled(ctx, id.String(), cancelled.ExperienceID.String(), cancelled.UserID.String())
	s.publish(ctx, notifications.EventBookingCancelled, cancelled)
	return cancelled, nil
}

func (s *service) HasQualifyingBooking(ctx context.Context, userID, experienceID uuid.UUID) (bool, error) {
	return s.repo.HasQualifying(ctx, userID, experienceID)
}

// publish is best effort: the booking change is already committed.
func (s *service) publish(ctx context.Context, eventType notifications.EventType, b *Booking) {
	title := ""
	if experience, err := s.catalog.Get(ctx, b.ExperienceID); err == nil {
		title = experience.Title
	}
	if err := s.publisher.Publish(ctx, NewEvent(eventType, b, title)); err != nil {
		s.log.WarnContext(ctx, "failed to publish booking event", "type", eventType, "booking_id", b.ID, "error", err)
	}
}

// NewEvent builds the lifecycle event for a booking
func NewEvent(eventType notifications.EventType, b *Booking, experienceTitle string) *notifications.BookingEvent {
	return &notifications.BookingEvent{
		Type:            eventType,
		BookingID:       b.ID,
		BookingRef:      b.BookingRef,
		UserID:          b.UserID,
		ExperienceID:    b.ExperienceID,
		ExperienceTitle: experienceTitle,
		Date:            b.DateString(),
		TimeSlot:        b.TimeSlot,
		Slots:           b.Slots,
		TotalPrice:      b.TotalPrice,
		Currency:        b.Currency,
		OccurredAt:      time.Now().UTC(),
	}
}

func newBookingRef() string {
	return "WND-" + shortuuid.New()[:10]
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrConflict):
		return "conflict"
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrUpstream):
		return "upstream"
	default:
		return "internal"
	}
}
