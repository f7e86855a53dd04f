package wishlist_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"wanderly/internal/experiences"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/middleware"
	"wanderly/internal/wishlist"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu    sync.Mutex
	items []wishlist.Item
}

func (r *memRepo) List(_ context.Context, userID uuid.UUID) ([]wishlist.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []wishlist.Item
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *memRepo) Add(_ context.Context, item *wishlist.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.UserID == item.UserID && existing.ExperienceID == item.ExperienceID {
			return nil
		}
	}
	r.items = append(r.items, *item)
	return nil
}

func (r *memRepo) Remove(_ context.Context, userID, experienceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, item := range r.items {
		if item.UserID == userID && item.ExperienceID == experienceID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("experience is not in your wishlist")
}

type catalog map[uuid.UUID]bool

func (c catalog) Get(_ context.Context, id uuid.UUID) (*experiences.Experience, error) {
	if !c[id] {
		return nil, apperrors.NotFound("experience not found")
	}
	return &experiences.Experience{ID: id}, nil
}

func TestWishlistService(t *testing.T) {
	known := uuid.New()
	svc := wishlist.NewService(&memRepo{}, catalog{known: true})
	user := uuid.New()
	ctx := context.Background()

	items, err := svc.List(ctx, user)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	_, err = svc.Add(ctx, user, known)
	require.NoError(t, err)
	items, err = svc.Add(ctx, user, known)
	require.NoError(t, err)
	assert.Len(t, items, 1, "adding twice keeps one entry")

	_, err = svc.Add(ctx, user, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	items, err = svc.Remove(ctx, user, known)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.Remove(ctx, user, known)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWishlistRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	known := uuid.New()
	ctrl := wishlist.NewController(wishlist.NewService(&memRepo{}, catalog{known: true}))
	user := uuid.New()

	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, user.String()) })
	router.GET("/wishlist", ctrl.GetWishlist)
	router.POST("/wishlist/:experienceId", ctrl.AddToWishlist)
	router.DELETE("/wishlist/:experienceId", ctrl.RemoveFromWishlist)

	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/wishlist/not-a-uuid").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodPost, "/wishlist/"+uuid.NewString()).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/wishlist/"+known.String()).Code)

	w := do(http.MethodGet, "/wishlist")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []wishlist.Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, known, body.Data[0].ExperienceID)

	assert.Equal(t, http.StatusOK, do(http.MethodDelete, "/wishlist/"+known.String()).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/wishlist/"+known.String()).Code)
}
