package cart

import (
	"context"
	"time"

	"wanderly/internal/bookings"
	"wanderly/internal/experiences"
	"wanderly/internal/shared/apperrors"
	"wanderly/pkg/logger"

	"github.com/google/uuid"
)

type ExperienceReader interface {
	Get(ctx context.Context, id uuid.UUID) (*experiences.Experience, error)
}

type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*View, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) (*View, error)
}

type service struct {
	repo    Repository
	catalog ExperienceReader
	log     *logger.Logger
}

func NewService(repo Repository, catalog ExperienceReader) Service {
	return &service{
		repo:    repo,
		catalog: catalog,
		log:     logger.GetDefault(),
	}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Summarize(cart.Items), nil
}

// AddItem merges into an existing line for the same experience and calendar
// day, whatever its time slot. Otherwise a new line snapshots the current price.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*View, error) {
	experienceID, err := uuid.Parse(req.ExperienceID)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid experience_id")
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, apperrors.InvalidArgument("quantity must be at least 1")
	}
	day, err := bookings.ParseDay(req.Date)
	if err != nil {
		return nil, err
	}

	experience, err := s.catalog.Get(ctx, experienceID)
	if err != nil {
		return nil, err
	}
	if !experience.IsBookable() {
		return nil, apperrors.Conflict("experience is not available")
	}
	slot, err := bookings.ResolveSlot(experience, req.TimeSlot)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if existing := findSameDay(cart.Items, experienceID, day); existing != nil {
		err = s.repo.IncrementQuantity(ctx, cart.ID, existing.ID, quantity)
	} else {
		err = s.repo.AddItem(ctx, &CartItem{
			ID:           uuid.New(),
			CartID:       cart.ID,
			ExperienceID: experienceID,
			Date:         day,
			TimeSlot:     slot,
			Quantity:     quantity,
			PriceAtAdd:   experience.Price,
		})
	}
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, userID)
}

func findSameDay(items []CartItem, experienceID uuid.UUID, day time.Time) *CartItem {
	for i := range items {
		if items[i].ExperienceID != experienceID {
			continue
		}
		if start, _ := bookings.DayBounds(items[i].Date); start.Equal(day) {
			return &items[i]
		}
	}
	return nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, apperrors.InvalidArgument("quantity must be at least 1")
	}
	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.reload(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, err
	}
	return s.reload(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*View, error) {
	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return nil, err
	}
	s.log.DebugContext(ctx, "cart cleared", "user_id", userID, "items", len(cart.Items))
	return Summarize(nil), nil
}

func (s *service) reload(ctx context.Context, userID uuid.UUID) (*View, error) {
	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Summarize(cart.Items), nil
}
