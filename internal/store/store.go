package store

import (
	"context"
	"time"

	"github.com/vendry-cloud/vendry/internal/domain/geo"
	"github.com/vendry-cloud/vendry/internal/domain/vendor"
)

// Store is the vendor store facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces (ISP).
type Store interface {
	Pinger
	VendorWriter
	VendorReader
	CandidateSource
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// VendorWriter mutates vendor records.
type VendorWriter interface {
	Upsert(ctx context.Context, rec vendor.Record) error
	Delete(ctx context.Context, id string) error
}

// VendorReader reads individual vendor records.
type VendorReader interface {
	Get(ctx context.Context, id string) (vendor.Record, error)
	Count(ctx context.Context) (int, error)
}

// CandidateSource returns every stored vendor whose location falls within
// the bounding box. It may return candidates outside the true radius (the
// ranking phase discards them) but must never drop one inside it. Result
// ordering is unspecified.
//
// This is the seam for swapping the linear scan for a geohash or R-tree
// index without touching ranking or caching.
type CandidateSource interface {
	FetchInBox(ctx context.Context, box geo.Box) ([]vendor.Record, error)
}
