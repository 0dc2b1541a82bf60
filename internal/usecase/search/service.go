package search

import (
	"context"
	"fmt"
	"time"

	"github.com/vendry-cloud/vendry/internal/domain"
	"github.com/vendry-cloud/vendry/internal/domain/geo"
	"github.com/vendry-cloud/vendry/internal/domain/search/query"
	"github.com/vendry-cloud/vendry/internal/domain/search/result"
)

// DefaultFetchTimeout bounds a single candidate fetch against the store.
const DefaultFetchTimeout = 2 * time.Second

// Response is a complete answer to a proximity search.
type Response struct {
	Results []result.Ranked

	// Query is the effective query after defaulting and capping.
	Query query.Query

	// Cached reports whether the result set was served from the query
	// cache without touching the candidate source.
	Cached bool

	// Fetched is the number of bounding-box candidates the source
	// returned before exact filtering. Zero for cached responses.
	Fetched int

	// ComputedAt is when the result set was computed. For cached
	// responses this is the original compute time, not now.
	ComputedAt time.Time

	Elapsed time.Duration
}

// Service orchestrates vendor proximity search: cache lookup, two-phase
// spatial filtering (bounding-box pre-filter, exact haversine), ranking,
// and cache fill.
type Service struct {
	source CandidateSource
	cache  ResultCache // nil disables caching

	fetchTimeout   time.Duration
	coordPrecision int
}

// Option configures a search Service.
type Option func(*Service)

// WithCache enables result caching.
func WithCache(c ResultCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithFetchTimeout overrides the per-fetch store deadline.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithCoordPrecision overrides the fingerprint coordinate rounding.
func WithCoordPrecision(decimals int) Option {
	return func(s *Service) {
		if decimals > 0 {
			s.coordPrecision = decimals
		}
	}
}

// New creates a search service over the given candidate source.
func New(source CandidateSource, opts ...Option) *Service {
	s := &Service{
		source:         source,
		fetchTimeout:   DefaultFetchTimeout,
		coordPrecision: query.DefaultCoordPrecision,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search executes a validated query. Identical queries within the cache
// TTL return the cached result set; otherwise candidates are fetched for
// the query's bounding box, filtered by exact distance, ranked, and the
// result set is stored for subsequent requests.
func (s *Service) Search(ctx context.Context, q query.Query) (Response, error) {
	start := time.Now()
	fp := q.Fingerprint(s.coordPrecision)

	if s.cache != nil {
		if entry, ok := s.cache.Get(fp); ok {
			return Response{
				Results:    entry.Results,
				Query:      q,
				Cached:     true,
				ComputedAt: entry.ComputedAt,
				Elapsed:    time.Since(start),
			}, nil
		}
	}

	box, err := geo.BoundingBox(q.Center(), q.RadiusKm())
	if err != nil {
		return Response{}, fmt.Errorf("bounding box: %w", err)
	}

	fetchCtx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	candidates, err := s.source.FetchInBox(fetchCtx, box)
	if err != nil {
		return Response{}, fmt.Errorf("%w: fetch candidates: %w", domain.ErrSourceUnavailable, err)
	}

	ranked := rank(q, candidates)

	// A cancelled request must not poison the cache with a result set
	// that may have been computed from a partial fetch.
	if s.cache != nil && ctx.Err() == nil {
		s.cache.Put(fp, ranked)
	}

	return Response{
		Results:    ranked,
		Query:      q,
		Cached:     false,
		Fetched:    len(candidates),
		ComputedAt: start,
		Elapsed:    time.Since(start),
	}, nil
}
