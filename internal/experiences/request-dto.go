package experiences

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"wanderly/internal/shared/utils/response"
)

type LocationInput struct {
	City      string   `json:"city" binding:"required,max=120"`
	Country   string   `json:"country" binding:"required,max=120"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
}

type CreateExperienceRequest struct {
	Title       string        `json:"title" binding:"required,min=3,max=255"`
	Description string        `json:"description" binding:"max=5000"`
	Category    string        `json:"category" binding:"required,max=120"`
	Price       float64       `json:"price" binding:"min=0"`
	Currency    string        `json:"currency" binding:"omitempty,len=3"`
	Duration    string        `json:"duration" binding:"max=100"`
	Images      []string      `json:"images" binding:"omitempty,dive,url"`
	Location    LocationInput `json:"location" binding:"required"`
	Capacity    int           `json:"capacity" binding:"omitempty,min=1,max=10000"`
	TimeSlots   []string      `json:"time_slots" binding:"omitempty,dive,required,max=40"`
}

// UpdateExperienceRequest is a partial update; nil fields are left alone.
type UpdateExperienceRequest struct {
	Title       *string        `json:"title" binding:"omitempty,min=3,max=255"`
	Description *string        `json:"description" binding:"omitempty,max=5000"`
	Category    *string        `json:"category" binding:"omitempty,max=120"`
	Price       *float64       `json:"price" binding:"omitempty,min=0"`
	Currency    *string        `json:"currency" binding:"omitempty,len=3"`
	Duration    *string        `json:"duration" binding:"omitempty,max=100"`
	Images      []string       `json:"images" binding:"omitempty,dive,url"`
	Location    *LocationInput `json:"location"`
	Capacity    *int           `json:"capacity" binding:"omitempty,min=1,max=10000"`
	TimeSlots   []string       `json:"time_slots" binding:"omitempty,dive,required,max=40"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=pending approved rejected"`
}

type UpdateActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SearchQuery holds the public search inputs after coercion.
type SearchQuery struct {
	Keyword    string
	Categories []string
	MinPrice   *float64
	MaxPrice   *float64
	Durations  []DurationBucket
	Page       int
}

// ParseSearchQuery reads search inputs from query parameters. Repeated and
// comma-separated values are both accepted. Bad numbers drop the predicate
// and unknown duration buckets are ignored.
func ParseSearchQuery(v url.Values) SearchQuery {
	q := SearchQuery{
		Keyword:    strings.TrimSpace(v.Get("keyword")),
		Categories: splitMulti(v["category"]),
		MinPrice:   parsePrice(v.Get("min_price")),
		MaxPrice:   parsePrice(v.Get("max_price")),
		Page:       parsePage(v.Get("page")),
	}
	for _, raw := range splitMulti(v["duration"]) {
		if b, ok := ParseDurationBucket(raw); ok {
			q.Durations = append(q.Durations, b)
		}
	}
	return q
}

func splitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parsePage(s string) int {
	page, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 1
	}
	return response.ClampPage(page)
}
