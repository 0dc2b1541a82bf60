package domain

import "errors"

var (
	// ErrInvalidCoordinate signals a latitude/longitude out of range or non-finite.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidRadius signals a non-positive or oversized search radius.
	ErrInvalidRadius = errors.New("invalid radius")
	// ErrInvalidQuery signals a malformed search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidVendor signals a malformed vendor record.
	ErrInvalidVendor = errors.New("invalid vendor")
	// ErrVendorNotFound signals a missing vendor.
	ErrVendorNotFound = errors.New("vendor not found")

	// ErrSourceUnavailable signals that the vendor store failed or timed out.
	// A failed fetch is never collapsed into an empty result set.
	ErrSourceUnavailable = errors.New("vendor source unavailable")
)
