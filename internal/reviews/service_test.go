package reviews_test

import (
	"context"
	"sync"
	"testing"

	"wanderly/internal/experiences"
	"wanderly/internal/reviews"
	"wanderly/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu      sync.Mutex
	reviews []reviews.Review
}

func (r *memRepo) Create(_ context.Context, review *reviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.UserID == review.UserID && existing.ExperienceID == review.ExperienceID {
			return apperrors.Conflict("you have already reviewed this experience")
		}
	}
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *memRepo) Exists(_ context.Context, userID, experienceID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.UserID == userID && existing.ExperienceID == experienceID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) ListByExperience(_ context.Context, experienceID uuid.UUID, _, _ int) ([]reviews.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []reviews.Review
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if r.reviews[i].ExperienceID == experienceID {
			out = append(out, r.reviews[i])
		}
	}
	return out, int64(len(out)), nil
}

func (r *memRepo) Stats(_ context.Context, experienceID uuid.UUID) (reviews.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats reviews.Stats
	sum := 0
	for _, review := range r.reviews {
		if review.ExperienceID == experienceID {
			stats.Count++
			sum += review.Rating
		}
	}
	if stats.Count > 0 {
		stats.Average = float64(sum) / float64(stats.Count)
	}
	return stats, nil
}

type catalog struct {
	mu      sync.Mutex
	known   map[uuid.UUID]bool
	ratings map[uuid.UUID]reviews.Stats
}

func (c *catalog) Get(_ context.Context, id uuid.UUID) (*experiences.Experience, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.known[id] {
		return nil, apperrors.NotFound("experience not found")
	}
	return &experiences.Experience{ID: id}, nil
}

func (c *catalog) UpdateRating(_ context.Context, id uuid.UUID, numReviews int64, average float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ratings[id] = reviews.Stats{Count: numReviews, Average: average}
	return nil
}

// guests maps user -> experiences they hold a confirmed booking for
type guests map[uuid.UUID]map[uuid.UUID]bool

func (g guests) HasQualifyingBooking(_ context.Context, userID, experienceID uuid.UUID) (bool, error) {
	return g[userID][experienceID], nil
}

func newCatalog(ids ...uuid.UUID) *catalog {
	c := &catalog{known: map[uuid.UUID]bool{}, ratings: map[uuid.UUID]reviews.Stats{}}
	for _, id := range ids {
		c.known[id] = true
	}
	return c
}

func TestReviewRequiresQualifyingBooking(t *testing.T) {
	experience := uuid.New()
	guest, stranger := uuid.New(), uuid.New()
	svc := reviews.NewService(&memRepo{}, newCatalog(experience), guests{guest: {experience: true}})

	_, err := svc.Create(context.Background(), stranger, experience, reviews.CreateReviewRequest{Rating: 5})
	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, "only guests with a confirmed booking can review", apperrors.Message(err))

	_, err = svc.Create(context.Background(), guest, experience, reviews.CreateReviewRequest{Rating: 5})
	assert.NoError(t, err)
}

func TestDuplicateReviewConflicts(t *testing.T) {
	experience := uuid.New()
	guest := uuid.New()
	svc := reviews.NewService(&memRepo{}, newCatalog(experience), guests{guest: {experience: true}})

	_, err := svc.Create(context.Background(), guest, experience, reviews.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), guest, experience, reviews.CreateReviewRequest{Rating: 2})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRatingIsRecomputedFromAllReviews(t *testing.T) {
	experience := uuid.New()
	cat := newCatalog(experience)
	g := guests{}
	svc := reviews.NewService(&memRepo{}, cat, g)

	for _, rating := range []int{5, 4, 4} {
		user := uuid.New()
		g[user] = map[uuid.UUID]bool{experience: true}
		_, err := svc.Create(context.Background(), user, experience, reviews.CreateReviewRequest{Rating: rating, Comment: "  lovely  "})
		require.NoError(t, err)
	}

	assert.Equal(t, reviews.Stats{Count: 3, Average: 4.33}, cat.ratings[experience])

	page, err := svc.List(context.Background(), experience, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, "lovely", page.Items[0].Comment)
	assert.Equal(t, 4, page.Items[0].Rating, "newest first")
}

func TestCreateReviewValidation(t *testing.T) {
	experience := uuid.New()
	guest := uuid.New()
	svc := reviews.NewService(&memRepo{}, newCatalog(experience), guests{guest: {experience: true}})

	for _, rating := range []int{0, 6} {
		_, err := svc.Create(context.Background(), guest, experience, reviews.CreateReviewRequest{Rating: rating})
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	}

	_, err := svc.Create(context.Background(), guest, uuid.New(), reviews.CreateReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
