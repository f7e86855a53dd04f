package experiences

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DurationBucket is one of the fixed duration ranges offered by search.
type DurationBucket string

const (
	DurationUpToOneHour    DurationBucket = "up_to_1_hour"
	DurationOneToFourHours DurationBucket = "1_to_4_hours"
	DurationFourHoursToDay DurationBucket = "4_hours_to_1_day"
	DurationMultiDay       DurationBucket = "multi_day"
)

type bucketDef struct {
	label   string
	pattern string
	re      *regexp.Regexp
}

// Patterns are matched case-insensitively against the trimmed duration label.
// They stay within the syntax shared by Go regexp and postgres ARE so the SQL
// filter and Match agree.
var durationBuckets = map[DurationBucket]*bucketDef{
	DurationUpToOneHour: {
		label:   "Up to 1 hour",
		pattern: `^(([1-9]|[1-5][0-9]|60) ?(m|min|mins|minutes?)|1 ?(h|hr|hour))$`,
	},
	DurationOneToFourHours: {
		label: "1 to 4 hours",
		pattern: `^([1-4](\.[0-9]+)? ?(-|to) ?)?[1-4](\.[0-9]+)? ?(h|hrs?|hours?)$` +
			`|^(6[1-9]|[7-9][0-9]|1[0-9]{2}|2[0-3][0-9]|240) ?(m|mins?|minutes?)$`,
	},
	DurationFourHoursToDay: {
		label: "4 hours to 1 day",
		pattern: `^([4-9]|1[0-9]|2[0-4])(\.[0-9]+)? ?(h|hrs?|hours?)$` +
			`|^(full|half)[ -]?day$|^1 ?day$`,
	},
	DurationMultiDay: {
		label: "Multi-day",
		pattern: `^([2-9]|[1-9][0-9]+) ?days?([ ,/].*)?$` +
			`|^[1-9][0-9]* ?(nights?|weeks?)$|multi[ -]?day`,
	},
}

func init() {
	for _, def := range durationBuckets {
		def.re = regexp.MustCompile(`(?i)` + def.pattern)
	}
}

// ParseDurationBucket accepts a bucket id or its display label, ignoring case.
func ParseDurationBucket(s string) (DurationBucket, bool) {
	s = strings.TrimSpace(s)
	for id, def := range durationBuckets {
		if strings.EqualFold(s, string(id)) || strings.EqualFold(s, def.label) {
			return id, true
		}
	}
	return "", false
}

func (b DurationBucket) Label() string {
	if def, ok := durationBuckets[b]; ok {
		return def.label
	}
	return string(b)
}

// Matches reports whether a free-text duration label falls in the bucket.
func (b DurationBucket) Matches(duration string) bool {
	def, ok := durationBuckets[b]
	return ok && def.re.MatchString(strings.TrimSpace(duration))
}

// predicate is one AND-ed group of the search filter. The set is closed:
// only the types below implement it.
type predicate interface {
	expression() clause.Expression
	match(e *Experience) bool
	key() string
}

type statusIs struct{ status Status }

func (p statusIs) expression() clause.Expression {
	return clause.Expr{SQL: "status = ?", Vars: []interface{}{string(p.status)}}
}

func (p statusIs) match(e *Experience) bool { return e.Status == p.status }

func (p statusIs) key() string { return "status=" + string(p.status) }

// keywordGroup matches the term anywhere in title, description, city or country.
type keywordGroup struct{ term string }

var keywordColumns = []string{"title", "description", "location_city", "location_country"}

func (p keywordGroup) expression() clause.Expression {
	like := "%" + escapeLike(p.term) + "%"
	exprs := make([]clause.Expression, 0, len(keywordColumns))
	for _, col := range keywordColumns {
		exprs = append(exprs, clause.Expr{SQL: col + " ILIKE ?", Vars: []interface{}{like}})
	}
	return anyOf(exprs)
}

func (p keywordGroup) match(e *Experience) bool {
	return containsFold(e.Title, p.term) ||
		containsFold(e.Description, p.term) ||
		containsFold(e.Location.City, p.term) ||
		containsFold(e.Location.Country, p.term)
}

func (p keywordGroup) key() string { return "kw=" + strings.ToLower(p.term) }

type categoryGroup struct{ terms []string }

func (p categoryGroup) expression() clause.Expression {
	exprs := make([]clause.Expression, 0, len(p.terms))
	for _, t := range p.terms {
		exprs = append(exprs, clause.Expr{SQL: "category ILIKE ?", Vars: []interface{}{"%" + escapeLike(t) + "%"}})
	}
	return anyOf(exprs)
}

func (p categoryGroup) match(e *Experience) bool {
	for _, t := range p.terms {
		if containsFold(e.Category, t) {
			return true
		}
	}
	return false
}

func (p categoryGroup) key() string {
	quoted := make([]string, len(p.terms))
	for i, t := range p.terms {
		quoted[i] = strconv.Quote(strings.ToLower(t))
	}
	return "cat=" + strings.Join(quoted, ",")
}

// priceRange is inclusive on both ends; a nil bound is open.
type priceRange struct{ min, max *float64 }

func (p priceRange) expression() clause.Expression {
	switch {
	case p.min != nil && p.max != nil:
		return clause.Expr{SQL: "price BETWEEN ? AND ?", Vars: []interface{}{*p.min, *p.max}}
	case p.min != nil:
		return clause.Expr{SQL: "price >= ?", Vars: []interface{}{*p.min}}
	default:
		return clause.Expr{SQL: "price <= ?", Vars: []interface{}{*p.max}}
	}
}

func (p priceRange) match(e *Experience) bool {
	if p.min != nil && e.Price < *p.min {
		return false
	}
	if p.max != nil && e.Price > *p.max {
		return false
	}
	return true
}

func (p priceRange) key() string {
	k := "price="
	if p.min != nil {
		k += strconv.FormatFloat(*p.min, 'f', -1, 64)
	}
	k += ".."
	if p.max != nil {
		k += strconv.FormatFloat(*p.max, 'f', -1, 64)
	}
	return k
}

type durationGroup struct{ buckets []DurationBucket }

func (p durationGroup) expression() clause.Expression {
	exprs := make([]clause.Expression, 0, len(p.buckets))
	for _, b := range p.buckets {
		exprs = append(exprs, clause.Expr{SQL: "TRIM(duration) ~* ?", Vars: []interface{}{durationBuckets[b].pattern}})
	}
	return anyOf(exprs)
}

func (p durationGroup) match(e *Experience) bool {
	for _, b := range p.buckets {
		if b.Matches(e.Duration) {
			return true
		}
	}
	return false
}

func (p durationGroup) key() string {
	parts := make([]string, len(p.buckets))
	for i, b := range p.buckets {
		parts[i] = string(b)
	}
	return "dur=" + strings.Join(parts, ",")
}

// Filter is an AND of predicate groups. Build one with NewFilter.
type Filter struct {
	groups []predicate
}

// NewFilter composes the public search filter. Only approved listings are
// eligible; empty inputs add no group.
func NewFilter(q SearchQuery) Filter {
	f := Filter{groups: []predicate{statusIs{StatusApproved}}}

	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		f.groups = append(f.groups, keywordGroup{term: kw})
	}

	if terms := normalizeTerms(q.Categories); len(terms) > 0 {
		f.groups = append(f.groups, categoryGroup{terms: terms})
	}

	if q.MinPrice != nil || q.MaxPrice != nil {
		f.groups = append(f.groups, priceRange{min: q.MinPrice, max: q.MaxPrice})
	}

	if buckets := dedupeBuckets(q.Durations); len(buckets) > 0 {
		f.groups = append(f.groups, durationGroup{buckets: buckets})
	}

	return f
}

// Scope applies the filter to a gorm query as a single AND of groups.
func (f Filter) Scope(db *gorm.DB) *gorm.DB {
	exprs := make([]clause.Expression, 0, len(f.groups))
	for _, g := range f.groups {
		exprs = append(exprs, g.expression())
	}
	if len(exprs) == 1 {
		return db.Where(exprs[0])
	}
	return db.Where(clause.AndConditions{Exprs: exprs})
}

// Match evaluates the same filter against a single in-memory experience.
func (f Filter) Match(e *Experience) bool {
	for _, g := range f.groups {
		if !g.match(e) {
			return false
		}
	}
	return true
}

// Fingerprint is a stable short hash of the filter, used in cache keys.
func (f Filter) Fingerprint() string {
	keys := make([]string, len(f.groups))
	for i, g := range f.groups {
		keys[i] = g.key()
	}
	// keys hold raw user text, so they are JSON-encoded rather than joined
	// with a separator the text itself could contain
	encoded, _ := json.Marshal(keys)
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:8])
}

// anyOf ORs the expressions. A single expression is returned bare, since a
// one-element OrConditions is joined to its neighbours with OR by gorm.
func anyOf(exprs []clause.Expression) clause.Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return clause.OrConditions{Exprs: exprs}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func normalizeTerms(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func dedupeBuckets(in []DurationBucket) []DurationBucket {
	seen := make(map[DurationBucket]bool, len(in))
	out := make([]DurationBucket, 0, len(in))
	for _, b := range in {
		if _, known := durationBuckets[b]; !known || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
