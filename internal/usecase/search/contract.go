package search

import (
	"context"

	"github.com/vendry-cloud/vendry/internal/cache"
	"github.com/vendry-cloud/vendry/internal/domain/geo"
	"github.com/vendry-cloud/vendry/internal/domain/search/result"
	"github.com/vendry-cloud/vendry/internal/domain/vendor"
)

// CandidateSource fetches the vendors inside a bounding box. It may
// over-return (anything inside the box) but must never miss a vendor
// whose true distance is within the radius that produced the box.
type CandidateSource interface {
	FetchInBox(ctx context.Context, box geo.Box) ([]vendor.Record, error)
}

// ResultCache stores complete ranked result sets by query fingerprint.
// Implemented by cache.QueryCache.
type ResultCache interface {
	Get(fingerprint string) (cache.Entry, bool)
	Put(fingerprint string, results []result.Ranked)
}
