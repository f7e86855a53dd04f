package experiences

import (
	"context"
	"strings"

	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/constants"
	"wanderly/internal/shared/utils/response"
	"wanderly/internal/users"
	"wanderly/pkg/cache"
	"wanderly/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Service interface {
	// vendor
	Create(ctx context.Context, vendorID uuid.UUID, req CreateExperienceRequest) (*Experience, error)
	Update(ctx context.Context, actor users.Actor, id uuid.UUID, req UpdateExperienceRequest) (*Experience, error)
	Delete(ctx context.Context, actor users.Actor, id uuid.UUID) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID, page int) (*response.Page[Experience], error)

	// admin
	AdminList(ctx context.Context, status Status, page int) (*response.Page[Experience], error)
	SetStatus(ctx context.Context, actor users.Actor, id uuid.UUID, status Status) (*Experience, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*Experience, error)

	// public
	GetPublic(ctx context.Context, id uuid.UUID) (*Experience, error)
	Search(ctx context.Context, q SearchQuery) (*response.Page[Experience], error)

	// Get returns a listing in any state, for other modules
	Get(ctx context.Context, id uuid.UUID) (*Experience, error)
	UpdateRating(ctx context.Context, id uuid.UUID, numReviews int64, average float64) error
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service) Service {
	if cacheService == nil {
		cacheService = cache.NewNop()
	}
	return &service{
		repo:  repo,
		cache: cacheService,
		log:   logger.GetDefault(),
	}
}

func (s *service) Create(ctx context.Context, vendorID uuid.UUID, req CreateExperienceRequest) (*Experience, error) {
	slots, err := cleanSlots(req.TimeSlots)
	if err != nil {
		return nil, err
	}

	experience := &Experience{
		VendorID:    vendorID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price,
		Currency:    currencyOrDefault(req.Currency),
		Duration:    strings.TrimSpace(req.Duration),
		Images:      datatypes.JSONSlice[string](req.Images),
		Location:    toLocation(req.Location),
		Capacity:    req.Capacity,
		TimeSlots:   slots,
		Status:      StatusPending,
		IsActive:    true,
	}
	if experience.Capacity == 0 {
		experience.Capacity = DefaultCapacity
	}
	if experience.Images == nil {
		experience.Images = datatypes.JSONSlice[string]{}
	}

	if err := s.repo.Create(ctx, experience); err != nil {
		return nil, err
	}
	return experience, nil
}

// Update applies a partial update. Content edits by a vendor send the listing
// back to moderation; admins keep the current status.
func (s *service) Update(ctx context.Context, actor users.Actor, id uuid.UUID, req UpdateExperienceRequest) (*Experience, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(current.VendorID) {
		return nil, apperrors.Unauthorized("you can only modify your own experiences")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Currency != nil {
		updates["currency"] = currencyOrDefault(*req.Currency)
	}
	if req.Duration != nil {
		updates["duration"] = strings.TrimSpace(*req.Duration)
	}
	if req.Images != nil {
		updates["images"] = datatypes.JSONSlice[string](req.Images)
	}
	if req.Location != nil {
		loc := toLocation(*req.Location)
		updates["location_city"] = loc.City
		updates["location_country"] = loc.Country
		updates["location_latitude"] = loc.Latitude
		updates["location_longitude"] = loc.Longitude
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}
	if req.TimeSlots != nil {
		slots, err := cleanSlots(req.TimeSlots)
		if err != nil {
			return nil, err
		}
		updates["time_slots"] = slots
	}

	if len(updates) == 0 {
		return current, nil
	}
	if !actor.IsAdmin() && current.Status != StatusPending {
		updates["status"] = string(StatusPending)
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actor users.Actor, id uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(current.VendorID) {
		return apperrors.Unauthorized("you can only delete your own experiences")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *service) ListByVendor(ctx context.Context, vendorID uuid.UUID, page int) (*response.Page[Experience], error) {
	page = clampPage(page)
	items, total, err := s.repo.ListByVendor(ctx, vendorID, page, PageSize)
	if err != nil {
		return nil, err
	}
	return newPage(items, page, total), nil
}

func (s *service) AdminList(ctx context.Context, status Status, page int) (*response.Page[Experience], error) {
	if status != "" && !status.IsValid() {
		return nil, apperrors.InvalidArgument("unknown status %q", status)
	}
	page = clampPage(page)
	items, total, err := s.repo.ListByStatus(ctx, status, page, PageSize)
	if err != nil {
		return nil, err
	}
	return newPage(items, page, total), nil
}

func (s *service) SetStatus(ctx context.Context, actor users.Actor, id uuid.UUID, status Status) (*Experience, error) {
	if !status.IsValid() {
		return nil, apperrors.InvalidArgument("unknown status %q", status)
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, map[string]interface{}{"status": string(status)})
	if err != nil {
		return nil, err
	}
	s.log.LogExperienceStatusChanged(ctx, id.String(), string(current.Status), string(status), actor.ID.String())
	s.invalidate(ctx, id)
	return updated, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Experience, error) {
	updated, err := s.repo.Update(ctx, id, map[string]interface{}{"is_active": active})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return updated, nil
}

// GetPublic hides listings that are not approved.
func (s *service) GetPublic(ctx context.Context, id uuid.UUID) (*Experience, error) {
	var experience Experience
	err := s.cache.GetOrSet(ctx, constants.BuildExperienceDetailKey(id.String()), constants.TTL_EXPERIENCE_DETAIL,
		func() (interface{}, error) {
			e, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if e.Status != StatusApproved {
				return nil, apperrors.NotFound("experience not found")
			}
			return e, nil
		}, &experience)
	if err != nil {
		return nil, err
	}
	return &experience, nil
}

func (s *service) Search(ctx context.Context, q SearchQuery) (*response.Page[Experience], error) {
	page := clampPage(q.Page)
	filter := NewFilter(q)

	var result response.Page[Experience]
	err := s.cache.GetOrSet(ctx, constants.BuildExperienceSearchKey(filter.Fingerprint(), page), constants.TTL_EXPERIENCE_SEARCH,
		func() (interface{}, error) {
			items, total, err := s.repo.Search(ctx, filter, page, PageSize)
			if err != nil {
				return nil, err
			}
			return newPage(items, page, total), nil
		}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Experience, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateRating(ctx context.Context, id uuid.UUID, numReviews int64, average float64) error {
	_, err := s.repo.Update(ctx, id, map[string]interface{}{
		"num_reviews":    numReviews,
		"average_rating": average,
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// invalidate drops the detail entry and every cached search page. Failures
// only leave stale entries until their TTL, so they are logged and ignored.
func (s *service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, constants.BuildExperienceDetailKey(id.String())); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate experience detail", "experience_id", id, "error", err)
	}
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EXPERIENCE_SEARCH); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate search pages", "error", err)
	}
}

func newPage(items []Experience, page int, total int64) *response.Page[Experience] {
	if items == nil {
		items = []Experience{}
	}
	return &response.Page[Experience]{
		Items:      items,
		Page:       page,
		PageSize:   PageSize,
		Total:      total,
		TotalPages: response.TotalPages(total, PageSize),
	}
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func currencyOrDefault(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

func toLocation(in LocationInput) Location {
	return Location{
		City:      strings.TrimSpace(in.City),
		Country:   strings.TrimSpace(in.Country),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
}

// cleanSlots trims labels and rejects duplicates and the reserved whole-day label, keeping the given order.
func cleanSlots(in []string) (datatypes.JSONSlice[string], error) {
	out := make(datatypes.JSONSlice[string], 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, slot := range in {
		slot = strings.TrimSpace(slot)
		if slot == "" {
			continue
		}
		if strings.EqualFold(slot, WholeDaySlot) {
			return nil, apperrors.InvalidArgument("time slot %q is reserved", slot)
		}
		if seen[slot] {
			return nil, apperrors.InvalidArgument("duplicate time slot %q", slot)
		}
		seen[slot] = true
		out = append(out, slot)
	}
	return out, nil
}
