package experiences_test

import (
	"net/url"
	"testing"

	"wanderly/internal/experiences"
	"wanderly/internal/shared/utils/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestDurationBuckets(t *testing.T) {
	cases := []struct {
		label string
		in    []experiences.DurationBucket
		out   []experiences.DurationBucket
	}{
		{"45 minutes", []experiences.DurationBucket{experiences.DurationUpToOneHour}, []experiences.DurationBucket{experiences.DurationOneToFourHours, experiences.DurationMultiDay}},
		{"30 min", []experiences.DurationBucket{experiences.DurationUpToOneHour}, nil},
		{"1 hour", []experiences.DurationBucket{experiences.DurationUpToOneHour}, []experiences.DurationBucket{experiences.DurationMultiDay}},
		{"90 minutes", []experiences.DurationBucket{experiences.DurationOneToFourHours}, []experiences.DurationBucket{experiences.DurationUpToOneHour, experiences.DurationFourHoursToDay}},
		{"2-3 hours", []experiences.DurationBucket{experiences.DurationOneToFourHours}, []experiences.DurationBucket{experiences.DurationMultiDay}},
		{"2 to 3 hours", []experiences.DurationBucket{experiences.DurationOneToFourHours}, nil},
		{"1.5 Hours", []experiences.DurationBucket{experiences.DurationOneToFourHours}, []experiences.DurationBucket{experiences.DurationUpToOneHour}},
		{" 3 hrs ", []experiences.DurationBucket{experiences.DurationOneToFourHours}, nil},
		{"6 hours", []experiences.DurationBucket{experiences.DurationFourHoursToDay}, []experiences.DurationBucket{experiences.DurationOneToFourHours}},
		{"Full Day", []experiences.DurationBucket{experiences.DurationFourHoursToDay}, []experiences.DurationBucket{experiences.DurationMultiDay}},
		{"half-day", []experiences.DurationBucket{experiences.DurationFourHoursToDay}, nil},
		{"1 day", []experiences.DurationBucket{experiences.DurationFourHoursToDay}, []experiences.DurationBucket{experiences.DurationMultiDay}},
		{"3 days", []experiences.DurationBucket{experiences.DurationMultiDay}, []experiences.DurationBucket{experiences.DurationFourHoursToDay}},
		{"3 days, 2 nights", []experiences.DurationBucket{experiences.DurationMultiDay}, nil},
		{"2 weeks", []experiences.DurationBucket{experiences.DurationMultiDay}, nil},
		{"Multi-day trek", []experiences.DurationBucket{experiences.DurationMultiDay}, []experiences.DurationBucket{experiences.DurationOneToFourHours}},
		{"flexible", nil, []experiences.DurationBucket{experiences.DurationUpToOneHour, experiences.DurationOneToFourHours, experiences.DurationFourHoursToDay, experiences.DurationMultiDay}},
	}

	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			for _, b := range tc.in {
				assert.True(t, b.Matches(tc.label), "%q should be in %s", tc.label, b)
			}
			for _, b := range tc.out {
				assert.False(t, b.Matches(tc.label), "%q should not be in %s", tc.label, b)
			}
		})
	}
}

func TestParseDurationBucket(t *testing.T) {
	b, ok := experiences.ParseDurationBucket("multi_day")
	require.True(t, ok)
	assert.Equal(t, experiences.DurationMultiDay, b)

	b, ok = experiences.ParseDurationBucket("Up to 1 hour")
	require.True(t, ok)
	assert.Equal(t, experiences.DurationUpToOneHour, b)

	_, ok = experiences.ParseDurationBucket("forever")
	assert.False(t, ok)
}

func TestParseSearchQuery(t *testing.T) {
	v := url.Values{
		"keyword":   {"  Dubai "},
		"category":  {"Adventure,food", "culture"},
		"min_price": {"50"},
		"max_price": {"abc"},
		"duration":  {"multi_day,unknown", "1 to 4 hours"},
		"page":      {"-2"},
	}

	q := experiences.ParseSearchQuery(v)

	assert.Equal(t, "Dubai", q.Keyword)
	assert.Equal(t, []string{"Adventure", "food", "culture"}, q.Categories)
	require.NotNil(t, q.MinPrice)
	assert.Equal(t, 50.0, *q.MinPrice)
	assert.Nil(t, q.MaxPrice, "non-numeric bound is dropped")
	assert.Equal(t, []experiences.DurationBucket{experiences.DurationMultiDay, experiences.DurationOneToFourHours}, q.Durations)
	assert.Equal(t, 1, q.Page)

	q = experiences.ParseSearchQuery(url.Values{"page": {"9223372036854775807"}})
	assert.Equal(t, response.MaxPage, q.Page)
}

func TestFilterIsConjunctionOfGroups(t *testing.T) {
	f := experiences.NewFilter(experiences.SearchQuery{
		Keyword:   "safari",
		Durations: []experiences.DurationBucket{experiences.DurationMultiDay},
	})

	both := approved("Masai Mara Safari", "3 days")
	keywordOnly := approved("Sunset safari drive", "2 hours")
	durationOnly := approved("Desert camping", "3 days")
	pendingBoth := approved("Safari lodge stay", "4 days")
	pendingBoth.Status = experiences.StatusPending

	assert.True(t, f.Match(&both))
	assert.False(t, f.Match(&keywordOnly))
	assert.False(t, f.Match(&durationOnly))
	assert.False(t, f.Match(&pendingBoth))
}

func TestFilterMatchesKeywordInLocation(t *testing.T) {
	f := experiences.NewFilter(experiences.SearchQuery{Keyword: "UAE"})

	e := approved("Dune bashing", "4 hours")
	e.Location.Country = "uae"
	assert.True(t, f.Match(&e))
}

func TestFilterPriceRangeIsInclusive(t *testing.T) {
	lo, hi := 50.0, 200.0
	f := experiences.NewFilter(experiences.SearchQuery{MinPrice: &lo, MaxPrice: &hi})

	for price, want := range map[float64]bool{49.99: false, 50: true, 120: true, 200: true, 200.01: false} {
		e := approved("Tour", "2 hours")
		e.Price = price
		assert.Equal(t, want, f.Match(&e), "price %v", price)
	}
}

func TestFilterFingerprintIsOrderInsensitive(t *testing.T) {
	a := experiences.NewFilter(experiences.SearchQuery{Categories: []string{"food", "Art"}})
	b := experiences.NewFilter(experiences.SearchQuery{Categories: []string{"art", "food", "food"}})
	c := experiences.NewFilter(experiences.SearchQuery{Categories: []string{"food"}})

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestFilterFingerprintSeparatesUserText(t *testing.T) {
	cases := []struct {
		name string
		a, b experiences.SearchQuery
	}{
		{
			"keyword mimicking another group",
			experiences.SearchQuery{Keyword: "food&cat=wine"},
			experiences.SearchQuery{Keyword: "food", Categories: []string{"wine"}},
		},
		{
			"category containing a comma",
			experiences.SearchQuery{Categories: []string{"food,wine"}},
			experiences.SearchQuery{Categories: []string{"food", "wine"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := experiences.NewFilter(tc.a)
			b := experiences.NewFilter(tc.b)
			assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
		})
	}
}

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=wanderly dbname=wanderly sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestFilterScopeSQL(t *testing.T) {
	db := dryRun(t)

	t.Run("keyword and duration groups are AND-ed", func(t *testing.T) {
		f := experiences.NewFilter(experiences.SearchQuery{
			Keyword:   "safari",
			Durations: []experiences.DurationBucket{experiences.DurationMultiDay},
		})
		stmt := db.Model(&experiences.Experience{}).Scopes(f.Scope).Find(&[]experiences.Experience{}).Statement
		sql := stmt.SQL.String()

		assert.Contains(t, sql, "status = $1")
		assert.Contains(t, sql, "(title ILIKE $2 OR description ILIKE $3 OR location_city ILIKE $4 OR location_country ILIKE $5)")
		assert.Contains(t, sql, ") AND TRIM(duration) ~* $6")
		require.Len(t, stmt.Vars, 6)
		assert.Equal(t, "approved", stmt.Vars[0])
		assert.Equal(t, "%safari%", stmt.Vars[1])
	})

	t.Run("multiple buckets form one OR group", func(t *testing.T) {
		f := experiences.NewFilter(experiences.SearchQuery{
			Keyword:   "dubai",
			Durations: []experiences.DurationBucket{experiences.DurationMultiDay, experiences.DurationUpToOneHour},
		})
		stmt := db.Model(&experiences.Experience{}).Scopes(f.Scope).Find(&[]experiences.Experience{}).Statement

		assert.Contains(t, stmt.SQL.String(), "AND (TRIM(duration) ~* $6 OR TRIM(duration) ~* $7)")
	})

	t.Run("categories and price", func(t *testing.T) {
		lo, hi := 50.0, 200.0
		f := experiences.NewFilter(experiences.SearchQuery{
			Categories: []string{"food", "art"},
			MinPrice:   &lo,
			MaxPrice:   &hi,
		})
		stmt := db.Model(&experiences.Experience{}).Scopes(f.Scope).Find(&[]experiences.Experience{}).Statement
		sql := stmt.SQL.String()

		assert.Contains(t, sql, "(category ILIKE $2 OR category ILIKE $3)")
		assert.Contains(t, sql, "price BETWEEN $4 AND $5")
		assert.Equal(t, []interface{}{"approved", "%art%", "%food%", 50.0, 200.0}, stmt.Vars)
	})

	t.Run("like wildcards in terms are escaped", func(t *testing.T) {
		f := experiences.NewFilter(experiences.SearchQuery{Keyword: `50%_off`})
		stmt := db.Model(&experiences.Experience{}).Scopes(f.Scope).Find(&[]experiences.Experience{}).Statement

		require.GreaterOrEqual(t, len(stmt.Vars), 2)
		assert.Equal(t, `%50\%\_off%`, stmt.Vars[1])
	})

	t.Run("empty query only filters on status", func(t *testing.T) {
		f := experiences.NewFilter(experiences.SearchQuery{})
		stmt := db.Model(&experiences.Experience{}).Scopes(f.Scope).Find(&[]experiences.Experience{}).Statement

		assert.Contains(t, stmt.SQL.String(), "WHERE status = $1")
		assert.Equal(t, []interface{}{"approved"}, stmt.Vars)
	})
}

func approved(title, duration string) experiences.Experience {
	return experiences.Experience{
		Title:    title,
		Duration: duration,
		Category: "Adventure",
		Price:    100,
		Status:   experiences.StatusApproved,
		IsActive: true,
		Location: experiences.Location{City: "Nairobi", Country: "Kenya"},
	}
}
