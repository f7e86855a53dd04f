package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wanderly/internal/shared/config"
	"wanderly/internal/shared/middleware"
	"wanderly/internal/users"
	"wanderly/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func newRouter(cfg *config.Config, roles ...users.Role) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{middleware.JWTAuth(cfg)}
	if len(roles) > 0 {
		handlers = append(handlers, middleware.RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		id, role, ok := middleware.CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "role": role})
	})
	r.GET("/me", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret"}}
	userID := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"refresh token rejected", "Bearer " + signedToken(t, "test-secret", jwt.MapClaims{
			"user_id": userID.String(), "role": "USER", "type": "refresh", "exp": exp,
		}), http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signedToken(t, "other", jwt.MapClaims{
			"user_id": userID.String(), "role": "USER", "type": "access", "exp": exp,
		}), http.StatusUnauthorized},
		{"valid access token", "Bearer " + signedToken(t, "test-secret", jwt.MapClaims{
			"user_id": userID.String(), "role": "USER", "type": "access", "exp": exp,
		}), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			newRouter(cfg).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret"}}
	exp := time.Now().Add(time.Hour).Unix()

	tokenFor := func(role users.Role) string {
		return "Bearer " + signedToken(t, "test-secret", jwt.MapClaims{
			"user_id": uuid.NewString(), "role": string(role), "type": "access", "exp": exp,
		})
	}

	router := newRouter(cfg, users.RoleVendor, users.RoleAdmin)

	for role, want := range map[users.Role]int{
		users.RoleUser:   http.StatusForbidden,
		users.RoleVendor: http.StatusOK,
		users.RoleAdmin:  http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", tokenFor(role))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %s", role)
	}
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	r := gin.New()
	calls := 0
	r.POST("/bookings", middleware.Idempotency(nil, time.Hour), func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Equal(t, 2, calls)
}

func TestRequestLoggerTagsRequests(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.Options{Level: slog.LevelInfo, JSON: true})

	var seen string
	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	router.GET("/ping", func(c *gin.Context) {
		seen = logger.RequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(middleware.HeaderRequestID))
	assert.Contains(t, buf.String(), `"request_id":"`+seen+`"`)
	assert.Contains(t, buf.String(), `"route":"/ping"`)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.HeaderRequestID, "from-caller")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "from-caller", w.Header().Get(middleware.HeaderRequestID))
}
