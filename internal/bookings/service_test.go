package bookings_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"wanderly/internal/bookings"
	"wanderly/internal/experiences"
	"wanderly/internal/notifications"
	"wanderly/internal/payments/gateway"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/utils/response"
	"wanderly/internal/users"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeCatalog struct {
	mu    sync.Mutex
	items map[uuid.UUID]*experiences.Experience
}

func (f *fakeCatalog) Get(_ context.Context, id uuid.UUID) (*experiences.Experience, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("experience not found")
	}
	cp := *e
	return &cp, nil
}

func (f *fakeCatalog) add(e experiences.Experience) *experiences.Experience {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.items == nil {
		f.items = map[uuid.UUID]*experiences.Experience{}
	}
	e.ID = uuid.New()
	f.items[e.ID] = &e
	return &e
}

// fakeRepo applies the same capacity rule as the SQL repository.
type fakeRepo struct {
	mu       sync.Mutex
	catalog  *fakeCatalog
	bookings map[uuid.UUID]*bookings.Booking
	seq      int
}

func newFakeRepo(catalog *fakeCatalog) *fakeRepo {
	return &fakeRepo{catalog: catalog, bookings: map[uuid.UUID]*bookings.Booking{}}
}

func (r *fakeRepo) CreateWithCapacityCheck(ctx context.Context, b *bookings.Booking) error {
	experience, err := r.catalog.Get(ctx, b.ExperienceID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	start, end := bookings.DayBounds(b.Date)
	var day []bookings.Booking
	for _, existing := range r.bookings {
		if existing.ExperienceID == b.ExperienceID && !existing.Date.Before(start) && existing.Date.Before(end) {
			day = append(day, *existing)
		}
	}
	left := bookings.Remaining(experience.Capacity, experience.TimeSlots, day)[b.TimeSlot]
	if b.Slots > left {
		return apperrors.Conflict("only %d seats left", left)
	}

	r.seq++
	b.CreatedAt = time.Date(2024, 1, 1, 0, r.seq, 0, 0, time.UTC)
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*bookings.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking not found")
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID, page, pageSize int) ([]bookings.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var mine []bookings.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			mine = append(mine, *b)
		}
	}
	total := int64(len(mine))
	start := response.Offset(page, pageSize)
	if start >= len(mine) {
		return nil, total, nil
	}
	return mine[start:min(len(mine), start+pageSize)], total, nil
}

func (r *fakeRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*bookings.Booking, error) {
	r.mu.Lock()
	b, ok := r.bookings[id]
	if !ok {
		r.mu.Unlock()
		return nil, apperrors.NotFound("booking not found")
	}
	for k, v := range updates {
		switch k {
		case "status":
			b.Status = bookings.Status(v.(string))
		case "payment_status":
			b.PaymentStatus = bookings.PaymentStatus(v.(string))
		case "payment_order_id":
			b.PaymentOrderID = v.(string)
		case "payment_id":
			b.PaymentID = v.(string)
		case "cancelled_at":
			at := v.(time.Time)
			b.CancelledAt = &at
		}
	}
	r.mu.Unlock()
	return r.GetByID(ctx, id)
}

func (r *fakeRepo) Confirm(ctx context.Context, id uuid.UUID, paymentID string) (*bookings.Booking, error) {
	r.mu.Lock()
	b, ok := r.bookings[id]
	if !ok {
		r.mu.Unlock()
		return nil, apperrors.NotFound("booking not found")
	}
	if b.IsCancelled() {
		r.mu.Unlock()
		return nil, apperrors.Conflict("booking is cancelled")
	}
	b.Status = bookings.StatusConfirmed
	b.PaymentStatus = bookings.PaymentPaid
	b.PaymentID = paymentID
	r.mu.Unlock()
	return r.GetByID(ctx, id)
}

func (r *fakeRepo) ListActiveForDay(_ context.Context, experienceID uuid.UUID, start, end time.Time) ([]bookings.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []bookings.Booking
	for _, b := range r.bookings {
		if b.ExperienceID == experienceID && !b.IsCancelled() && !b.Date.Before(start) && b.Date.Before(end) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) HasQualifying(_ context.Context, userID, experienceID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.UserID == userID && b.ExperienceID == experienceID && b.Status.QualifiesForReview() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CompletePast(_ context.Context, before time.Time, limit int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if n == int64(limit) {
			break
		}
		if b.Status == bookings.StatusConfirmed && b.Date.Before(before) {
			b.Status = bookings.StatusCompleted
			n++
		}
	}
	return n, nil
}

// insert stores a booking directly, bypassing the capacity check.
func (r *fakeRepo) insert(b bookings.Booking) bookings.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	r.bookings[b.ID] = &b
	return b
}

type fakeGateway struct {
	mu     sync.Mutex
	err    error
	orders []gateway.Order
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (*gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	order := gateway.Order{ID: "order_" + receipt, Amount: amountMinor, Currency: currency, Receipt: receipt}
	g.orders = append(g.orders, order)
	return &order, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notifications.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e *notifications.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type harness struct {
	catalog   *fakeCatalog
	repo      *fakeRepo
	gateway   *fakeGateway
	publisher *recordingPublisher
	svc       bookings.Service
}

func newHarness() *harness {
	h := &harness{
		catalog:   &fakeCatalog{},
		gateway:   &fakeGateway{},
		publisher: &recordingPublisher{},
	}
	h.repo = newFakeRepo(h.catalog)
	h.svc = bookings.NewService(h.repo, h.catalog, h.gateway, h.publisher, config.PaymentConfig{KeyID: "key_test"})
	return h
}

func bookable(capacity int, slots ...string) experiences.Experience {
	return experiences.Experience{
		Title:     "Harbour kayak tour",
		Price:     45.5,
		Currency:  "EUR",
		Capacity:  capacity,
		TimeSlots: datatypes.JSONSlice[string](slots),
		Status:    experiences.StatusApproved,
		IsActive:  true,
	}
}

func nextWeek() string {
	return time.Now().AddDate(0, 0, 7).Format(bookings.DateLayout)
}

func TestAvailabilityScenario(t *testing.T) {
	h := newHarness()
	e := h.catalog.add(bookable(20, "10:00 AM", "2:00 PM"))
	day, err := bookings.ParseDay("2024-06-01")
	require.NoError(t, err)

	for _, seats := range []int{5, 5, 8} {
		h.repo.insert(bookings.Booking{ExperienceID: e.ID, Date: day.Add(9 * time.Hour), TimeSlot: "10:00 AM", Slots: seats, Status: bookings.StatusConfirmed})
	}
	h.repo.insert(bookings.Booking{ExperienceID: e.ID, Date: day.AddDate(0, 0, 1), TimeSlot: "2:00 PM", Slots: 20, Status: bookings.StatusConfirmed})

	got, err := h.svc.Availability(context.Background(), e.ID, "2024-06-01")
	require.NoError(t, err)

	assert.Equal(t, 20, got.Capacity)
	assert.Equal(t, "2024-06-01", got.Date)
	assert.Equal(t, map[string]int{"10:00 AM": 2, "2:00 PM": 20}, got.Slots)
}

func TestAvailabilityErrors(t *testing.T) {
	h := newHarness()
	e := h.catalog.add(bookable(20))

	_, err := h.svc.Availability(context.Background(), e.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = h.svc.Availability(context.Background(), uuid.New(), "2024-06-01")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateBookingOpensGatewayOrder(t *testing.T) {
	h := newHarness()
	e := h.catalog.add(bookable(20, "10:00 AM"))
	user := uuid.New()

	resp, err := h.svc.Create(context.Background(), user, bookings.CreateBookingRequest{
		ExperienceID: e.ID.String(),
		Date:         nextWeek(),
		TimeSlot:     "10:00 AM",
		Slots:        3,
	})
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, user, b.UserID)
	assert.Equal(t, bookings.StatusPending, b.Status)
	assert.Equal(t, bookings.PaymentPending, b.PaymentStatus)
	assert.Equal(t, 136.5, b.TotalPrice)
	assert.Equal(t, "EUR", b.Currency)
	assert.Regexp(t, `^WND-`, b.BookingRef)

	require.NotNil(t, resp.Order)
	assert.EqualValues(t, 13650, resp.Order.Amount)
	assert.Equal(t, resp.Order.ID, b.PaymentOrderID)
	assert.Equal(t, "key_test", resp.KeyID)
}

func TestCreateFreeBookingConfirmsWithoutPayment(t *testing.T) {
	h := newHarness()
	free := bookable(10, "10:00 AM")
	free.Price = 0
	e := h.catalog.add(free)
	user := uuid.New()

	resp, err := h.svc.Create(context.Background(), user, bookings.CreateBookingRequest{
		ExperienceID: e.ID.String(),
		Date:         nextWeek(),
		TimeSlot:     "10:00 AM",
		Slots:        2,
	})
	require.NoError(t, err)

	assert.Nil(t, resp.Order)
	assert.Empty(t, h.gateway.orders)
	assert.Equal(t, bookings.StatusConfirmed, resp.Booking.Status)
	assert.Equal(t, bookings.PaymentPaid, resp.Booking.PaymentStatus)
	assert.Zero(t, resp.Booking.TotalPrice)

	require.Len(t, h.publisher.events, 1)
	assert.Equal(t, notifications.EventBookingConfirmed, h.publisher.events[0].Type)

	ok, err := h.svc.HasQualifyingBooking(context.Background(), user, e.ID)
	require.NoError(t, err)
	assert.True(t, ok, "a free booking qualifies its guest to review")
}

func TestCreateBookingRejectsOverCapacity(t *testing.T) {
	h := newHarness()
	e := h.catalog.add(bookable(10, "10:00 AM", "2:00 PM"))
	req := bookings.CreateBookingRequest{ExperienceID: e.ID.String(), Date: nextWeek(), TimeSlot: "10:00 AM", Slots: 6}

	_, err := h.svc.Create(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	_, err = h.svc.Create(context.Background(), uuid.New(), req)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	req.TimeSlot = "2:00 PM"
	_, err = h.svc.Create(context.Background(), uuid.New(), req)
	assert.NoError(t, err, "other slot is unaffected")
}

func TestCreateBookingValidation(t *testing.T) {
	h := newHarness()
	open := h.catalog.add(bookable(10, "10:00 AM"))
	pending := bookable(10)
	pending.Status = experiences.StatusPending
	closed := h.catalog.add(pending)

	cases := []struct {
		name string
		req  bookings.CreateBookingRequest
		kind error
	}{
		{"past date", bookings.CreateBookingRequest{ExperienceID: open.ID.String(), Date: "2020-01-01", TimeSlot: "10:00 AM", Slots: 1}, apperrors.ErrInvalidArgument},
		{"unknown slot", bookings.CreateBookingRequest{ExperienceID: open.ID.String(), Date: nextWeek(), TimeSlot: "4:00 PM", Slots: 1}, apperrors.ErrInvalidArgument},
		{"zero seats", bookings.CreateBookingRequest{ExperienceID: open.ID.String(), Date: nextWeek(), TimeSlot: "10:00 AM"}, apperrors.ErrInvalidArgument},
		{"unknown experience", bookings.CreateBookingRequest{ExperienceID: uuid.NewString(), Date: nextWeek(), Slots: 1}, apperrors.ErrNotFound},
		{"not approved", bookings.CreateBookingRequest{ExperienceID: closed.ID.String(), Date: nextWeek(), Slots: 1}, apperrors.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.Create(context.Background(), uuid.New(), tc.req)
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestCreateBookingReleasesSeatsWhenGatewayFails(t *testing.T) {
	h := newHarness()
	h.gateway.err = apperrors.Upstream("payment gateway unreachable", assert.AnError)
	e := h.catalog.add(bookable(4))
	user := uuid.New()

	_, err := h.svc.Create(context.Background(), user, bookings.CreateBookingRequest{ExperienceID: e.ID.String(), Date: nextWeek(), Slots: 4})
	assert.ErrorIs(t, err, apperrors.ErrUpstream)

	mine, err := h.svc.ListMine(context.Background(), user, 1)
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, bookings.StatusCancelled, mine.Items[0].Status)

	avail, err := h.svc.Availability(context.Background(), e.ID, nextWeek())
	require.NoError(t, err)
	assert.Equal(t, 4, avail.Slots[experiences.WholeDaySlot])
}

func TestCancelBooking(t *testing.T) {
	h := newHarness()
	e := h.catalog.add(bookable(10))
	owner := users.Actor{ID: uuid.New(), Role: users.RoleUser}
	stranger := users.Actor{ID: uuid.New(), Role: users.RoleUser}

	day, err := bookings.ParseDay(nextWeek())
	require.NoError(t, err)
	b := h.repo.insert(bookings.Booking{
		BookingRef: "WND-test", UserID: owner.ID, ExperienceID: e.ID, Date: day,
		TimeSlot: experiences.WholeDaySlot, Slots: 2, Status: bookings.StatusConfirmed, PaymentStatus: bookings.PaymentPaid,
	})

	_, err = h.svc.Cancel(context.Background(), stranger, b.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	cancelled, err := h.svc.Cancel(context.Background(), owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled, cancelled.Status)
	assert.Equal(t, bookings.PaymentRefunded, cancelled.PaymentStatus)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = h.svc.Cancel(context.Background(), owner, b.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	require.Len(t, h.publisher.events, 1)
	ev := h.publisher.events[0]
	assert.Equal(t, notifications.EventBookingCancelled, ev.Type)
	assert.Equal(t, "WND-test", ev.BookingRef)
	assert.Equal(t, "Harbour kayak tour", ev.ExperienceTitle)
	assert.Equal(t, nextWeek(), ev.Date)
}

func TestGetBookingOwnership(t *testing.T) {
	h := newHarness()
	owner := uuid.New()
	b := h.repo.insert(bookings.Booking{UserID: owner, Status: bookings.StatusPending})

	_, err := h.svc.Get(context.Background(), users.Actor{ID: uuid.New(), Role: users.RoleVendor}, b.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	got, err := h.svc.Get(context.Background(), users.Actor{ID: uuid.New(), Role: users.RoleAdmin}, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestHasQualifyingBooking(t *testing.T) {
	h := newHarness()
	user, experience := uuid.New(), uuid.New()
	h.repo.insert(bookings.Booking{UserID: user, ExperienceID: experience, Status: bookings.StatusPending})

	ok, err := h.svc.HasQualifyingBooking(context.Background(), user, experience)
	require.NoError(t, err)
	assert.False(t, ok)

	h.repo.insert(bookings.Booking{UserID: user, ExperienceID: experience, Status: bookings.StatusCompleted})
	ok, err = h.svc.HasQualifyingBooking(context.Background(), user, experience)
	require.NoError(t, err)
	assert.True(t, ok)
}
