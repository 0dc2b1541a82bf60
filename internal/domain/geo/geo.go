package geo

import (
	"math"

	"github.com/vendry-cloud/vendry/internal/domain"
)

// EarthRadiusKm is the mean radius of Earth used for Haversine distance.
const EarthRadiusKm = 6371.0

// KmPerDegreeLat is the approximate north-south span of one degree of latitude.
const KmPerDegreeLat = 111.32

// maxLngDelta is the sentinel longitude half-span used when cos(lat)
// approaches zero near the poles. It disables the longitude pre-filter
// instead of dividing by a near-zero value.
const maxLngDelta = 180.0

// Point is an immutable latitude/longitude pair in degrees.
type Point struct {
	lat float64
	lng float64
}

// NewPoint validates coordinates and creates a Point.
func NewPoint(lat, lng float64) (Point, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return Point{}, domain.ErrInvalidCoordinate
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) || lng < -180 || lng > 180 {
		return Point{}, domain.ErrInvalidCoordinate
	}
	return Point{lat: lat, lng: lng}, nil
}

// Lat returns the latitude in degrees.
func (p Point) Lat() float64 { return p.lat }

// Lng returns the longitude in degrees.
func (p Point) Lng() float64 { return p.lng }

// Box is an axis-aligned lat/lng rectangle used as a cheap pre-filter
// before exact distance computation.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains reports whether the point falls inside the box (inclusive).
func (b Box) Contains(p Point) bool {
	return p.lat >= b.MinLat && p.lat <= b.MaxLat &&
		p.lng >= b.MinLng && p.lng <= b.MaxLng
}

// BoundingBox computes a rectangular over-approximation of the circle of
// radiusKm around center. The box may include points outside the circle
// but never excludes a point inside it. Latitude bounds are clamped to
// [-90, 90]; longitude bounds widen to the full range near the poles.
func BoundingBox(center Point, radiusKm float64) (Box, error) {
	if math.IsNaN(radiusKm) || radiusKm <= 0 {
		return Box{}, domain.ErrInvalidRadius
	}

	// boxPad widens the box by 1% to absorb the error of the flat
	// degrees-per-km conversion against true great-circle distance. The
	// box is a pre-filter: too wide costs extra candidates, too narrow
	// drops vendors inside the radius.
	const boxPad = 1.01

	latDelta := radiusKm / KmPerDegreeLat * boxPad

	// Meridians converge toward the poles, so the longitude span needed
	// is widest at the box edge farthest from the equator.
	edgeLat := math.Max(math.Abs(center.lat-latDelta), math.Abs(center.lat+latDelta))
	if edgeLat > 90 {
		edgeLat = 90
	}
	cosLat := math.Cos(edgeLat * math.Pi / 180)
	lngDelta := maxLngDelta
	if cosLat > 1e-6 {
		lngDelta = radiusKm / (KmPerDegreeLat * cosLat) * boxPad
		if lngDelta > maxLngDelta {
			lngDelta = maxLngDelta
		}
	}

	b := Box{
		MinLat: center.lat - latDelta,
		MaxLat: center.lat + latDelta,
		MinLng: center.lng - lngDelta,
		MaxLng: center.lng + lngDelta,
	}

	// A circle reaching past a pole or across the antimeridian cannot be
	// bounded by a lat/lng rectangle on the longitude axis. Widening to
	// the full range keeps the no-false-negative contract; the exact
	// distance phase discards the extra candidates.
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLng < -180 || b.MaxLng > 180 {
		b.MinLng, b.MaxLng = -180, 180
	}
	if b.MinLat < -90 {
		b.MinLat = -90
	}
	if b.MaxLat > 90 {
		b.MaxLat = 90
	}
	return b, nil
}

// HaversineKm returns the great-circle distance in kilometers between two
// points. Symmetric, zero for identical points.
func HaversineKm(a, b Point) float64 {
	lat1 := a.lat * math.Pi / 180
	lat2 := b.lat * math.Pi / 180
	dLat := (b.lat - a.lat) * math.Pi / 180
	dLng := (b.lng - a.lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}
