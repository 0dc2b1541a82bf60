package vendry

import (
	"context"
	"errors"
	"testing"
)

func newMemoryClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(append([]Option{WithMemory()}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestClient_UpsertAndSearch(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	// ~5 km north of the search center.
	if _, err := c.Vendors().Put(ctx, "v1", Vendor{
		Lat: 37.8199, Lng: -122.4194,
		Categories: []string{"plumbing"},
		Rating:     4.6,
		Tags:       []string{"licensed"},
		HourlyRate: 95,
		Online:     true,
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	res, err := c.Search(ctx, SearchParams{
		Lat: 37.7749, Lng: -122.4194, RadiusKm: 10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(res.Hits) != 1 {
		t.Fatalf("want 1 hit, got %d", len(res.Hits))
	}
	if res.Hits[0].Vendor.ID != "v1" {
		t.Errorf("want v1, got %s", res.Hits[0].Vendor.ID)
	}
	if res.Hits[0].DistanceKm < 4.5 || res.Hits[0].DistanceKm > 5.5 {
		t.Errorf("want ~5km, got %f", res.Hits[0].DistanceKm)
	}
	if res.Cached {
		t.Error("first search must not be cached")
	}
	if res.Query.SortBy != SortByDistance || res.Query.MaxResults != 20 {
		t.Errorf("want defaulted query echoed, got %+v", res.Query)
	}

	again, err := c.Search(ctx, SearchParams{
		Lat: 37.7749, Lng: -122.4194, RadiusKm: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !again.Cached {
		t.Error("second identical search must be cached")
	}
}

func TestClient_WithoutCache(t *testing.T) {
	c := newMemoryClient(t, WithoutCache())
	ctx := context.Background()

	params := SearchParams{Lat: 0, Lng: 0, RadiusKm: 10}
	for i := 0; i < 2; i++ {
		res, err := c.Search(ctx, params)
		if err != nil {
			t.Fatal(err)
		}
		if res.Cached {
			t.Errorf("search %d: caching disabled but Cached=true", i)
		}
	}
}

func TestClient_CreateGeneratesID(t *testing.T) {
	c := newMemoryClient(t)

	v, err := c.Vendors().Create(context.Background(), Vendor{
		Lat: 0, Lng: 0, Categories: []string{"tutoring"}, Rating: 4,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.ID == "" {
		t.Fatal("want generated ID")
	}

	got, err := c.Vendors().Get(context.Background(), v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Categories[0] != "tutoring" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestClient_DeleteAndNotFound(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	if _, err := c.Vendors().Put(ctx, "v1", Vendor{
		Lat: 0, Lng: 0, Categories: []string{"x"},
	}); err != nil {
		t.Fatal(err)
	}

	if err := c.Vendors().Delete(ctx, "v1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := c.Vendors().Get(ctx, "v1"); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("want ErrVendorNotFound, got %v", err)
	}
	if err := c.Vendors().Delete(ctx, "v1"); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("want ErrVendorNotFound on double delete, got %v", err)
	}
}

func TestClient_Count(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if _, err := c.Vendors().Put(ctx, id, Vendor{
			Lat: 0, Lng: 0, Categories: []string{"x"},
		}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Vendors().Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("want 2, got %d", n)
	}
}

func TestClient_InvalidSearchParams(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	if _, err := c.Search(ctx, SearchParams{Lat: 91, Lng: 0, RadiusKm: 10}); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("want ErrInvalidCoordinate, got %v", err)
	}
	if _, err := c.Search(ctx, SearchParams{Lat: 0, Lng: 0, RadiusKm: -1}); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("want ErrInvalidRadius, got %v", err)
	}
	if _, err := c.Search(ctx, SearchParams{Lat: 0, Lng: 0, RadiusKm: 10, SortBy: "price"}); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("want ErrInvalidQuery, got %v", err)
	}
}

func TestClient_MaxRadiusOption(t *testing.T) {
	c := newMemoryClient(t, WithMaxRadiusKm(20))

	_, err := c.Search(context.Background(), SearchParams{Lat: 0, Lng: 0, RadiusKm: 50})
	if !errors.Is(err, ErrInvalidRadius) {
		t.Fatalf("radius above the configured cap must fail, got %v", err)
	}
}

func TestClient_WriteInvalidatesCache(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	params := SearchParams{Lat: 0, Lng: 0, RadiusKm: 10}
	if _, err := c.Search(ctx, params); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Vendors().Put(ctx, "v1", Vendor{
		Lat: 0.01, Lng: 0, Categories: []string{"x"},
	}); err != nil {
		t.Fatal(err)
	}

	res, err := c.Search(ctx, params)
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached {
		t.Error("vendor write must invalidate cached searches")
	}
	if len(res.Hits) != 1 {
		t.Errorf("want the new vendor in results, got %d hits", len(res.Hits))
	}
}
