package reviews

import (
	"context"
	"strings"

	"wanderly/internal/experiences"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/utils/response"
	"wanderly/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const PageSize = 12

// Catalog is the experience side of a review: existence and the derived rating
type Catalog interface {
	Get(ctx context.Context, id uuid.UUID) (*experiences.Experience, error)
	UpdateRating(ctx context.Context, id uuid.UUID, numReviews int64, average float64) error
}

// BookingChecker gates who may review
type BookingChecker interface {
	HasQualifyingBooking(ctx context.Context, userID, experienceID uuid.UUID) (bool, error)
}

type Service interface {
	Create(ctx context.Context, userID, experienceID uuid.UUID, req CreateReviewRequest) (*Review, error)
	List(ctx context.Context, experienceID uuid.UUID, page int) (*response.Page[Review], error)
}

type service struct {
	repo     Repository
	catalog  Catalog
	bookings BookingChecker
	log      *logger.Logger
}

func NewService(repo Repository, catalog Catalog, bookings BookingChecker) Service {
	return &service{
		repo:     repo,
		catalog:  catalog,
		bookings: bookings,
		log:      logger.GetDefault(),
	}
}

func (s *service) Create(ctx context.Context, userID, experienceID uuid.UUID, req CreateReviewRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.InvalidArgument("rating must be between 1 and 5")
	}
	if _, err := s.catalog.Get(ctx, experienceID); err != nil {
		return nil, err
	}

	eligible, err := s.bookings.HasQualifyingBooking(ctx, userID, experienceID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, apperrors.Conflict("only guests with a confirmed booking can review")
	}

	exists, err := s.repo.Exists(ctx, userID, experienceID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("you have already reviewed this experience")
	}

	review := &Review{
		ID:           uuid.New(),
		UserID:       userID,
		ExperienceID: experienceID,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	average, err := s.recompute(ctx, experienceID)
	if err != nil {
		// the review stands; the next one recomputes from scratch
		s.log.WarnContext(ctx, "failed to recompute rating", "experience_id", experienceID, "error", err)
	}
	s.log.LogReviewCreated(ctx, experienceID.String(), userID.String(), review.Rating, average)
	return review, nil
}

func (s *service) recompute(ctx context.Context, experienceID uuid.UUID) (float64, error) {
	stats, err := s.repo.Stats(ctx, experienceID)
	if err != nil {
		return 0, err
	}
	average := decimal.NewFromFloat(stats.Average).Round(2).InexactFloat64()
	if err := s.catalog.UpdateRating(ctx, experienceID, stats.Count, average); err != nil {
		return 0, err
	}
	return average, nil
}

func (s *service) List(ctx context.Context, experienceID uuid.UUID, page int) (*response.Page[Review], error) {
	if page < 1 {
		page = 1
	}
	items, total, err := s.repo.ListByExperience(ctx, experienceID, page, PageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Review{}
	}
	return &response.Page[Review]{
		Items:      items,
		Page:       page,
		PageSize:   PageSize,
		Total:      total,
		TotalPages: response.TotalPages(total, PageSize),
	}, nil
}
