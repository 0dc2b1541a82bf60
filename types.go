package vendry

import (
	"fmt"
	"time"

	"github.com/vendry-cloud/vendry/internal/domain"
	"github.com/vendry-cloud/vendry/internal/domain/geo"
	"github.com/vendry-cloud/vendry/internal/domain/search/query"
	sortorder "github.com/vendry-cloud/vendry/internal/domain/search/sort"
	domven "github.com/vendry-cloud/vendry/internal/domain/vendor"
	searchuc "github.com/vendry-cloud/vendry/internal/usecase/search"
	vendoruc "github.com/vendry-cloud/vendry/internal/usecase/vendor"
)

// Sort orders accepted by SearchParams.SortBy.
const (
	SortByDistance = "distance"
	SortByRating   = "rating"
	SortByMatch    = "match"
)

// Vendor is a public vendor record. UpdatedAt is set by the engine on
// writes and ignored on input.
type Vendor struct {
	ID          string
	Lat         float64
	Lng         float64
	Categories  []string
	Rating      float64
	ReviewCount int
	Tags        []string
	HourlyRate  float64
	Online      bool
	UpdatedAt   time.Time
}

// SearchParams describe a proximity search. Zero values take engine
// defaults: SortBy distance, MaxResults 20.
type SearchParams struct {
	Lat        float64
	Lng        float64
	RadiusKm   float64
	Categories []string
	MinRating  float64
	Tags       []string
	SortBy     string
	MaxResults int
}

// SearchHit is a single ranked search result.
type SearchHit struct {
	Vendor     Vendor
	DistanceKm float64
	MatchScore float64
}

// SearchResult is a complete answer to a proximity search. Query holds
// the effective parameters after defaulting and capping.
type SearchResult struct {
	Hits   []SearchHit
	Query  SearchParams
	Cached bool
	Took   time.Duration
}

func queryFromParams(p SearchParams, maxRadiusKm float64) (query.Query, error) {
	center, err := geo.NewPoint(p.Lat, p.Lng)
	if err != nil {
		return query.Query{}, fmt.Errorf("%w: lat=%g lng=%g", domain.ErrInvalidCoordinate, p.Lat, p.Lng)
	}

	return query.New(
		center, p.RadiusKm,
		p.Categories, p.MinRating, p.Tags,
		sortorder.Order(p.SortBy), p.MaxResults,
		maxRadiusKm,
	)
}

func paramsFromVendor(v Vendor) vendoruc.Params {
	return vendoruc.Params{
		Lat:         v.Lat,
		Lng:         v.Lng,
		Categories:  v.Categories,
		Rating:      v.Rating,
		ReviewCount: v.ReviewCount,
		Tags:        v.Tags,
		HourlyRate:  v.HourlyRate,
		Online:      v.Online,
	}
}

func vendorFromRecord(rec domven.Record) Vendor {
	loc := rec.Location()
	return Vendor{
		ID:          rec.ID(),
		Lat:         loc.Lat(),
		Lng:         loc.Lng(),
		Categories:  rec.Categories(),
		Rating:      rec.Rating(),
		ReviewCount: rec.ReviewCount(),
		Tags:        rec.Tags(),
		HourlyRate:  rec.HourlyRate(),
		Online:      rec.Online(),
		UpdatedAt:   rec.UpdatedAt(),
	}
}

func searchResultFromResponse(resp searchuc.Response) SearchResult {
	hits := make([]SearchHit, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		hits[i] = SearchHit{
			Vendor:     vendorFromRecord(r.Vendor()),
			DistanceKm: r.DistanceKm(),
			MatchScore: r.MatchScore(),
		}
	}
	center := resp.Query.Center()
	return SearchResult{
		Hits: hits,
		Query: SearchParams{
			Lat:        center.Lat(),
			Lng:        center.Lng(),
			RadiusKm:   resp.Query.RadiusKm(),
			Categories: resp.Query.Categories(),
			MinRating:  resp.Query.MinRating(),
			Tags:       resp.Query.Tags(),
			SortBy:     string(resp.Query.SortBy()),
			MaxResults: resp.Query.MaxResults(),
		},
		Cached: resp.Cached,
		Took:   resp.Elapsed,
	}
}
