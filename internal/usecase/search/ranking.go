package search

import (
	"sort"

	"github.com/vendry-cloud/vendry/internal/domain/geo"
	"github.com/vendry-cloud/vendry/internal/domain/search/query"
	"github.com/vendry-cloud/vendry/internal/domain/search/result"
	sortorder "github.com/vendry-cloud/vendry/internal/domain/search/sort"
	"github.com/vendry-cloud/vendry/internal/domain/vendor"
)

// Match score blend weights. Must sum to 1.
const (
	weightProximity = 0.5
	weightRating    = 0.3
	weightTags      = 0.2
)

// rank applies the exact-distance and attribute filters to the bounding-box
// candidates, scores the survivors, sorts them, and truncates to the
// query's result cap. Ordering is fully deterministic: ties on the primary
// key fall back to vendor ID ascending.
func rank(q query.Query, candidates []vendor.Record) []result.Ranked {
	hits := make([]result.Ranked, 0, len(candidates))

	for _, v := range candidates {
		d := geo.HaversineKm(q.Center(), v.Location())
		if d > q.RadiusKm() {
			continue
		}
		if v.Rating() < q.MinRating() {
			continue
		}
		if !v.HasAnyCategory(q.Categories()) {
			continue
		}
		if !v.HasAnyTag(q.Tags()) {
			continue
		}
		hits = append(hits, result.New(v, d, matchScore(q, v, d)))
	}

	sortHits(hits, q.SortBy())

	if len(hits) > q.MaxResults() {
		hits = hits[:q.MaxResults()]
	}
	return hits
}

// matchScore blends normalized proximity, rating, and tag overlap into
// a score in [0, 100]. A vendor at the query center with a 5.0 rating
// and every requested tag scores 100.
func matchScore(q query.Query, v vendor.Record, distanceKm float64) float64 {
	proximity := 1 - distanceKm/q.RadiusKm()
	if proximity < 0 {
		proximity = 0
	}

	rating := v.Rating() / vendor.MaxRating

	tagOverlap := 0.0
	if n := len(q.Tags()); n > 0 {
		tagOverlap = float64(v.MatchedTags(q.Tags())) / float64(n)
	}

	return 100 * (weightProximity*proximity + weightRating*rating + weightTags*tagOverlap)
}

func sortHits(hits []result.Ranked, order sortorder.Order) {
	sort.Slice(hits, func(i, j int) bool {
		a, b := &hits[i], &hits[j]
		av, bv := a.Vendor(), b.Vendor()
		switch order {
		case sortorder.Rating:
			if av.Rating() != bv.Rating() {
				return av.Rating() > bv.Rating()
			}
		case sortorder.Match:
			if a.MatchScore() != b.MatchScore() {
				return a.MatchScore() > b.MatchScore()
			}
		default: // sortorder.Distance
			if a.DistanceKm() != b.DistanceKm() {
				return a.DistanceKm() < b.DistanceKm()
			}
		}
		return av.ID() < bv.ID()
	})
}
