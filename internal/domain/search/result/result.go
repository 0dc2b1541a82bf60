package result

import "github.com/vendry-cloud/vendry/internal/domain/vendor"

// Ranked is a single search hit with its derived scores.
type Ranked struct {
	vendor     vendor.Record
	distanceKm float64
	matchScore float64
}

// New creates a ranked result.
func New(v vendor.Record, distanceKm, matchScore float64) Ranked {
	return Ranked{vendor: v, distanceKm: distanceKm, matchScore: matchScore}
}

// Vendor returns the underlying vendor record.
func (r *Ranked) Vendor() vendor.Record { return r.vendor }

// DistanceKm returns the exact haversine distance from the query center.
func (r *Ranked) DistanceKm() float64 { return r.distanceKm }

// MatchScore returns the blended relevance score in [0, 100].
func (r *Ranked) MatchScore() float64 { return r.matchScore }
