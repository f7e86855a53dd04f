package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wanderly/internal/shared/constants"
	"wanderly/internal/shared/utils/response"
	"wanderly/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const IdempotencyHeader = "Idempotency-Key"

const idempotencyProcessing = "PROCESSING"

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Keys are scoped to the caller and route. Requests without the header pass through.
func Idempotency(client *redis.Client, ttl time.Duration) gin.HandlerFunc {
	log := logger.GetDefault()

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || client == nil {
			c.Next()
			return
		}

		userID := "anonymous"
		if id, _, ok := CurrentUser(c); ok {
			userID = id.String()
		}
		redisKey := constants.BuildIdempotencyKey(userID, c.Request.Method, c.FullPath(), key)
		ctx := c.Request.Context()

		val, err := client.Get(ctx, redisKey).Result()
		switch {
		case err == nil:
			if val == idempotencyProcessing {
				response.RespondJSON(c, "error", http.StatusConflict, "a request with this idempotency key is in progress", nil, nil)
				c.Abort()
				return
			}
			var stored storedResponse
			if jsonErr := json.Unmarshal([]byte(val), &stored); jsonErr == nil {
				c.Header("X-Idempotency-Hit", "true")
				c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
				c.Abort()
				return
			}
		case !errors.Is(err, redis.Nil):
			log.WarnContext(ctx, "idempotency lookup failed", "error", err)
			c.Next()
			return
		}

		acquired, err := client.SetNX(ctx, redisKey, idempotencyProcessing, constants.TTL_IDEMPOTENCY_LOCK).Result()
		if err != nil || !acquired {
			response.RespondJSON(c, "error", http.StatusConflict, "a request with this idempotency key is in progress", nil, nil)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status >= http.StatusInternalServerError {
			// let the client retry after a server-side failure
			client.Del(ctx, redisKey)
			return
		}

		body := rec.body.Bytes()
		if !json.Valid(body) {
			body = []byte("null")
		}
		payload, err := json.Marshal(storedResponse{Status: status, Body: body})
		if err == nil {
			err = client.Set(ctx, redisKey, payload, ttl).Err()
		}
		if err != nil {
			log.WarnContext(ctx, "idempotency store failed", "error", err)
		}
	}
}
