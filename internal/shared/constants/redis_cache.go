package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs for Wanderly.
// Pattern: wanderly:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // listing details
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // search pages
	TTL_DYNAMIC_QUICK      = 2 * time.Minute
)

const (
	CACHE_PREFIX = "wanderly"
)

// ================== EXPERIENCES MODULE ==================

const (
	CACHE_KEY_EXPERIENCE_DETAIL = CACHE_PREFIX + ":experiences:detail:uuid:" // + experience-id
	CACHE_KEY_EXPERIENCE_SEARCH = CACHE_PREFIX + ":experiences:search:"      // + filter fingerprint + :page:N
)

const (
	TTL_EXPERIENCE_DETAIL = TTL_SEMI_STATIC_MEDIUM
	TTL_EXPERIENCE_SEARCH = TTL_SEMI_STATIC_QUICK
)

// ================== IDEMPOTENCY ==================

const (
	CACHE_KEY_IDEMPOTENCY = CACHE_PREFIX + ":idempotency:" // + user-id + :method:path: + key

	// lock held while the first request with a key is in flight
	TTL_IDEMPOTENCY_LOCK = 10 * time.Second
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_EXPERIENCE_SEARCH = CACHE_KEY_EXPERIENCE_SEARCH + "*"
)

// ================== HELPER FUNCTIONS ==================

func BuildExperienceDetailKey(experienceID string) string {
	return CACHE_KEY_EXPERIENCE_DETAIL + experienceID
}

// BuildExperienceSearchKey -> "wanderly:experiences:search:<fingerprint>:page:2"
func BuildExperienceSearchKey(fingerprint string, page int) string {
	return CACHE_KEY_EXPERIENCE_SEARCH + fingerprint + ":page:" + fmt.Sprintf("%d", page)
}

func BuildIdempotencyKey(userID, method, path, key string) string {
	return CACHE_KEY_IDEMPOTENCY + userID + ":" + method + ":" + path + ":" + key
}
