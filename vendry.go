// Package vendry is an embeddable geographic vendor search engine:
// two-phase spatial filtering (bounding-box pre-filter, exact haversine),
// multi-factor ranking, and an in-process query cache, backed by an
// in-memory store or Redis GEO.
package vendry

import (
	"context"
	"fmt"
	"time"

	"github.com/vendry-cloud/vendry/internal/cache"
	"github.com/vendry-cloud/vendry/internal/domain"
	"github.com/vendry-cloud/vendry/internal/store"
	storeMemory "github.com/vendry-cloud/vendry/internal/store/memory"
	storeRedis "github.com/vendry-cloud/vendry/internal/store/redis"
	searchuc "github.com/vendry-cloud/vendry/internal/usecase/search"
	vendoruc "github.com/vendry-cloud/vendry/internal/usecase/vendor"
)

const defaultReadinessTimeout = 10 * time.Second

// Sentinel errors surfaced by the SDK.
var (
	ErrInvalidCoordinate = domain.ErrInvalidCoordinate
	ErrInvalidRadius     = domain.ErrInvalidRadius
	ErrInvalidQuery      = domain.ErrInvalidQuery
	ErrInvalidVendor     = domain.ErrInvalidVendor
	ErrVendorNotFound    = domain.ErrVendorNotFound
	ErrSourceUnavailable = domain.ErrSourceUnavailable
)

// Client is the vendry SDK entry point.
type Client struct {
	store       store.Store
	searchSvc   *searchuc.Service
	vendorSvc   *vendoruc.Service
	maxRadiusKm float64
}

// New creates a vendry Client. Without options it runs on the in-memory
// store with caching enabled; use WithRedis to connect to Redis.
func New(opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o(cfg)
	}

	st, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.driver != "memory" {
		ctx := context.Background()
		if err := st.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			st.Close()
			return nil, fmt.Errorf("vendry: store not ready: %w", err)
		}
	}

	return wireClient(st, cfg), nil
}

func createStore(cfg *clientConfig) (store.Store, error) {
	switch cfg.driver {
	case "memory":
		return storeMemory.NewStore(), nil
	case "redis":
		s, err := storeRedis.NewStore(storeRedis.Config{
			Addrs:     cfg.addrs,
			Username:  cfg.username,
			Password:  cfg.password,
			DB:        cfg.db,
			KeyPrefix: cfg.keyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("vendry: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("vendry: unknown driver %q", cfg.driver)
	}
}

func wireClient(st store.Store, cfg *clientConfig) *Client {
	searchOpts := []searchuc.Option{
		searchuc.WithFetchTimeout(cfg.fetchTimeout),
		searchuc.WithCoordPrecision(cfg.coordPrecision),
	}

	var qc *cache.QueryCache
	if cfg.cacheEnabled {
		qc = cache.New(cfg.cacheTTL, cfg.cacheCapacity, nil)
		searchOpts = append(searchOpts, searchuc.WithCache(qc))
	}

	searchSvc := searchuc.New(st, searchOpts...)

	var inval vendoruc.CacheInvalidator
	if qc != nil {
		inval = qc
	}
	vendorSvc := vendoruc.New(st, inval)

	return &Client{
		store:       st,
		searchSvc:   searchSvc,
		vendorSvc:   vendorSvc,
		maxRadiusKm: cfg.maxRadiusKm,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search executes a vendor proximity search.
func (c *Client) Search(ctx context.Context, params SearchParams) (SearchResult, error) {
	q, err := queryFromParams(params, c.maxRadiusKm)
	if err != nil {
		return SearchResult{}, err
	}

	resp, err := c.searchSvc.Search(ctx, q)
	if err != nil {
		return SearchResult{}, err
	}
	return searchResultFromResponse(resp), nil
}

// Vendors returns the vendor management service.
func (c *Client) Vendors() *VendorService {
	return &VendorService{svc: c.vendorSvc}
}

// VendorService manages vendor records through the SDK.
type VendorService struct {
	svc *vendoruc.Service
}

// Create stores a new vendor under a generated ID and returns it.
func (s *VendorService) Create(ctx context.Context, v Vendor) (Vendor, error) {
	rec, err := s.svc.Create(ctx, paramsFromVendor(v))
	if err != nil {
		return Vendor{}, err
	}
	return vendorFromRecord(rec), nil
}

// Put stores a vendor under the given ID, replacing any existing record.
func (s *VendorService) Put(ctx context.Context, id string, v Vendor) (Vendor, error) {
	rec, err := s.svc.Put(ctx, id, paramsFromVendor(v))
	if err != nil {
		return Vendor{}, err
	}
	return vendorFromRecord(rec), nil
}

// Get returns the vendor record for the ID.
func (s *VendorService) Get(ctx context.Context, id string) (Vendor, error) {
	rec, err := s.svc.Get(ctx, id)
	if err != nil {
		return Vendor{}, err
	}
	return vendorFromRecord(rec), nil
}

// Delete removes the vendor record.
func (s *VendorService) Delete(ctx context.Context, id string) error {
	return s.svc.Delete(ctx, id)
}

// Count returns the number of stored vendors.
func (s *VendorService) Count(ctx context.Context) (int, error) {
	return s.svc.Count(ctx)
}
