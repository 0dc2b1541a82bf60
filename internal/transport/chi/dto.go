package chi

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

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type searchRequest struct {
	Lat               float64  `json:"lat"`
	Lng               float64  `json:"lng"`
	RadiusKm          float64  `json:"radiusKm"`
	ServiceCategories []string `json:"serviceCategories,omitempty"`
	MinRating         float64  `json:"minRating,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	SortBy            string   `json:"sortBy,omitempty"`
	MaxResults        int      `json:"maxResults,omitempty"`
}

type searchResponse struct {
	Vendors []searchVendor `json:"vendors"`

	// SearchParams echoes the effective query after defaulting and capping.
	SearchParams searchParams    `json:"searchParams"`
	Performance  performanceInfo `json:"performance"`
}

// searchVendor is a ranked hit: the vendor record flattened together
// with its per-query distance and score.
type searchVendor struct {
	ID                string    `json:"id"`
	Lat               float64   `json:"lat"`
	Lng               float64   `json:"lng"`
	ServiceCategories []string  `json:"serviceCategories"`
	Rating            float64   `json:"rating"`
	ReviewCount       int       `json:"reviewCount"`
	Tags              []string  `json:"tags,omitempty"`
	HourlyRate        float64   `json:"hourlyRate"`
	IsOnline          bool      `json:"isOnline"`
	LastUpdated       time.Time `json:"lastUpdated"`
	DistanceKm        float64   `json:"distanceKm"`
	MatchScore        float64   `json:"matchScore"`
}

type searchParams struct {
	Center            centerPoint `json:"center"`
	RadiusKm          float64     `json:"radiusKm"`
	ServiceCategories []string    `json:"serviceCategories,omitempty"`
	MinRating         float64     `json:"minRating,omitempty"`
	Tags              []string    `json:"tags,omitempty"`
	SortBy            string      `json:"sortBy"`
	MaxResults        int         `json:"maxResults"`
}

type centerPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type performanceInfo struct {
	Cached        bool    `json:"cached"`
	ComputeTimeMs float64 `json:"computeTimeMs"`
}

type vendorRequest struct {
	Lat               float64  `json:"lat"`
	Lng               float64  `json:"lng"`
	ServiceCategories []string `json:"serviceCategories"`
	Rating            float64  `json:"rating"`
	ReviewCount       int      `json:"reviewCount"`
	Tags              []string `json:"tags,omitempty"`
	HourlyRate        float64  `json:"hourlyRate"`
	IsOnline          bool     `json:"isOnline"`
}

type vendorResponse struct {
	ID                string    `json:"id"`
	Lat               float64   `json:"lat"`
	Lng               float64   `json:"lng"`
	ServiceCategories []string  `json:"serviceCategories"`
	Rating            float64   `json:"rating"`
	ReviewCount       int       `json:"reviewCount"`
	Tags              []string  `json:"tags,omitempty"`
	HourlyRate        float64   `json:"hourlyRate"`
	IsOnline          bool      `json:"isOnline"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

type countResponse struct {
	Count int `json:"count"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (r vendorRequest) toParams() vendoruc.Params {
	return vendoruc.Params{
		Lat:         r.Lat,
		Lng:         r.Lng,
		Categories:  r.ServiceCategories,
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
		Tags:        r.Tags,
		HourlyRate:  r.HourlyRate,
		Online:      r.IsOnline,
	}
}

func queryFromRequest(req searchRequest, maxRadiusKm float64) (query.Query, error) {
	center, err := geo.NewPoint(req.Lat, req.Lng)
	if err != nil {
		return query.Query{}, fmt.Errorf("%w: lat=%g lng=%g", domain.ErrInvalidCoordinate, req.Lat, req.Lng)
	}

	return query.New(
		center, req.RadiusKm,
		req.ServiceCategories, req.MinRating, req.Tags,
		sortorder.Order(req.SortBy), req.MaxResults,
		maxRadiusKm,
	)
}

func vendorToResponse(rec domven.Record) vendorResponse {
	loc := rec.Location()
	return vendorResponse{
		ID:                rec.ID(),
		Lat:               loc.Lat(),
		Lng:               loc.Lng(),
		ServiceCategories: rec.Categories(),
		Rating:            rec.Rating(),
		ReviewCount:       rec.ReviewCount(),
		Tags:              rec.Tags(),
		HourlyRate:        rec.HourlyRate(),
		IsOnline:          rec.Online(),
		LastUpdated:       rec.UpdatedAt(),
	}
}

func searchResponseFromResult(resp searchuc.Response) searchResponse {
	vendors := make([]searchVendor, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		rec := r.Vendor()
		loc := rec.Location()
		vendors[i] = searchVendor{
			ID:                rec.ID(),
			Lat:               loc.Lat(),
			Lng:               loc.Lng(),
			ServiceCategories: rec.Categories(),
			Rating:            rec.Rating(),
			ReviewCount:       rec.ReviewCount(),
			Tags:              rec.Tags(),
			HourlyRate:        rec.HourlyRate(),
			IsOnline:          rec.Online(),
			LastUpdated:       rec.UpdatedAt(),
			DistanceKm:        r.DistanceKm(),
			MatchScore:        r.MatchScore(),
		}
	}

	center := resp.Query.Center()
	return searchResponse{
		Vendors: vendors,
		SearchParams: searchParams{
			Center:            centerPoint{Lat: center.Lat(), Lng: center.Lng()},
			RadiusKm:          resp.Query.RadiusKm(),
			ServiceCategories: resp.Query.Categories(),
			MinRating:         resp.Query.MinRating(),
			Tags:              resp.Query.Tags(),
			SortBy:            string(resp.Query.SortBy()),
			MaxResults:        resp.Query.MaxResults(),
		},
		Performance: performanceInfo{
			Cached:        resp.Cached,
			ComputeTimeMs: float64(resp.Elapsed.Microseconds()) / 1000,
		},
	}
}
