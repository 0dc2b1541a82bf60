package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vendry-cloud/vendry/internal/domain"
	"github.com/vendry-cloud/vendry/internal/domain/geo"
	sortorder "github.com/vendry-cloud/vendry/internal/domain/search/sort"
)

// Search parameter limits.
const (
	// DefaultMaxRadiusKm bounds the worst-case candidate volume.
	DefaultMaxRadiusKm = 100.0
	DefaultMaxResults  = 20
	MaxMaxResults      = 200

	// DefaultCoordPrecision is the number of decimal places the query
	// center is rounded to when fingerprinting (~11m at 4 places).
	// Coarser rounding turns GPS jitter into cache hits.
	DefaultCoordPrecision = 4
)

// Query is a validated vendor proximity search.
type Query struct {
	center     geo.Point
	radiusKm   float64
	categories []string
	minRating  float64
	tags       []string
	sortBy     sortorder.Order
	maxResults int
}

// New validates and normalizes search parameters.
// Defaults: sortBy=distance, maxResults=20 (capped at 200).
// maxRadiusKm <= 0 falls back to DefaultMaxRadiusKm.
func New(
	center geo.Point, radiusKm float64,
	categories []string, minRating float64, tags []string,
	sortBy sortorder.Order, maxResults int,
	maxRadiusKm float64,
) (Query, error) {
	if maxRadiusKm <= 0 {
		maxRadiusKm = DefaultMaxRadiusKm
	}
	if math.IsNaN(radiusKm) || radiusKm <= 0 {
		return Query{}, fmt.Errorf("%w: radius must be positive", domain.ErrInvalidRadius)
	}
	if radiusKm > maxRadiusKm {
		return Query{}, fmt.Errorf("%w: radius %.1fkm exceeds maximum %.1fkm",
			domain.ErrInvalidRadius, radiusKm, maxRadiusKm)
	}
	if math.IsNaN(minRating) || minRating < 0 || minRating > 5 {
		return Query{}, fmt.Errorf("%w: min rating must be in [0, 5]", domain.ErrInvalidQuery)
	}
	if sortBy == "" {
		sortBy = sortorder.Distance
	}
	if !sortBy.IsValid() {
		return Query{}, fmt.Errorf("%w: unknown sort order %q", domain.ErrInvalidQuery, sortBy)
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > MaxMaxResults {
		maxResults = MaxMaxResults
	}

	return Query{
		center:     center,
		radiusKm:   radiusKm,
		categories: normalizeSet(categories),
		minRating:  minRating,
		tags:       normalizeSet(tags),
		sortBy:     sortBy,
		maxResults: maxResults,
	}, nil
}

// Center returns the search center.
func (q *Query) Center() geo.Point { return q.center }

// RadiusKm returns the search radius in kilometers.
func (q *Query) RadiusKm() float64 { return q.radiusKm }

// Categories returns the category filter (empty = no filter), sorted.
func (q *Query) Categories() []string { return q.categories }

// MinRating returns the minimum rating filter.
func (q *Query) MinRating() float64 { return q.minRating }

// Tags returns the tag filter (empty = no filter), sorted.
func (q *Query) Tags() []string { return q.tags }

// SortBy returns the result ordering.
func (q *Query) SortBy() sortorder.Order { return q.sortBy }

// MaxResults returns the result count cap after defaulting.
func (q *Query) MaxResults() int { return q.maxResults }

// Fingerprint returns a stable cache key covering every result-affecting
// field. The center is rounded to precision decimal places so that
// nearly-identical queries share an entry; precision <= 0 falls back to
// DefaultCoordPrecision.
func (q *Query) Fingerprint(precision int) string {
	if precision <= 0 {
		precision = DefaultCoordPrecision
	}

	var b strings.Builder
	b.WriteString(roundCoord(q.center.Lat(), precision))
	b.WriteByte('|')
	b.WriteString(roundCoord(q.center.Lng(), precision))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(q.radiusKm, 'f', 3, 64))
	b.WriteByte('|')
	writeSet(&b, q.categories)
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(q.minRating, 'f', 2, 64))
	b.WriteByte('|')
	writeSet(&b, q.tags)
	b.WriteByte('|')
	b.WriteString(string(q.sortBy))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(q.maxResults))

	h := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(h[:])
}

// writeSet serializes a string set with element count and per-element
// length prefixes. Plain separator joins would let values containing the
// separator collide with distinct sets, so two different filters could
// share a cache key.
func writeSet(b *strings.Builder, values []string) {
	b.WriteString(strconv.Itoa(len(values)))
	for _, v := range values {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
}

func roundCoord(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// normalizeSet dedupes and sorts so that filter order never changes the
// fingerprint or the ranking.
func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
