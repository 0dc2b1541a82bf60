package redis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vendry-cloud/vendry/internal/domain/geo"
	"github.com/vendry-cloud/vendry/internal/domain/vendor"
)

// Hash field names for vendor records.
const (
	fieldLat        = "lat"
	fieldLng        = "lng"
	fieldCategories = "categories"
	fieldRating     = "rating"
	fieldReviews    = "reviews"
	fieldTags       = "tags"
	fieldRate       = "rate"
	fieldOnline     = "online"
	fieldUpdated    = "updated_ms"
)

const listSep = ","

// vendorToFields flattens a record into ordered hash field/value pairs.
func vendorToFields(rec vendor.Record) [][2]string {
	online := "0"
	if rec.Online() {
		online = "1"
	}
	return [][2]string{
		{fieldLat, strconv.FormatFloat(rec.Location().Lat(), 'f', -1, 64)},
		{fieldLng, strconv.FormatFloat(rec.Location().Lng(), 'f', -1, 64)},
		{fieldCategories, strings.Join(rec.Categories(), listSep)},
		{fieldRating, strconv.FormatFloat(rec.Rating(), 'f', -1, 64)},
		{fieldReviews, strconv.Itoa(rec.ReviewCount())},
		{fieldTags, strings.Join(rec.Tags(), listSep)},
		{fieldRate, strconv.FormatFloat(rec.HourlyRate(), 'f', -1, 64)},
		{fieldOnline, online},
		{fieldUpdated, strconv.FormatInt(rec.UpdatedAt().UnixMilli(), 10)},
	}
}

// vendorFromFields rehydrates a record from hash fields.
func vendorFromFields(id string, m map[string]string) (vendor.Record, error) {
	lat, err := strconv.ParseFloat(m[fieldLat], 64)
	if err != nil {
		return vendor.Record{}, fmt.Errorf("parse lat: %w", err)
	}
	lng, err := strconv.ParseFloat(m[fieldLng], 64)
	if err != nil {
		return vendor.Record{}, fmt.Errorf("parse lng: %w", err)
	}
	loc, err := geo.NewPoint(lat, lng)
	if err != nil {
		return vendor.Record{}, fmt.Errorf("stored coordinates: %w", err)
	}

	rating, err := strconv.ParseFloat(m[fieldRating], 64)
	if err != nil {
		return vendor.Record{}, fmt.Errorf("parse rating: %w", err)
	}
	reviews, err := strconv.Atoi(m[fieldReviews])
	if err != nil {
		return vendor.Record{}, fmt.Errorf("parse reviews: %w", err)
	}
	rate, err := strconv.ParseFloat(m[fieldRate], 64)
	if err != nil {
		return vendor.Record{}, fmt.Errorf("parse rate: %w", err)
	}
	updatedMs, err := strconv.ParseInt(m[fieldUpdated], 10, 64)
	if err != nil {
		return vendor.Record{}, fmt.Errorf("parse updated_ms: %w", err)
	}

	return vendor.Reconstruct(
		id, loc,
		splitList(m[fieldCategories]),
		rating, reviews,
		splitList(m[fieldTags]),
		rate,
		m[fieldOnline] == "1",
		time.UnixMilli(updatedMs).UTC(),
	), nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSep)
}
