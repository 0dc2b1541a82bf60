package store

import "errors"

// ErrNotFound signals a missing vendor key.
var ErrNotFound = errors.New("store: vendor not found")

// Op constants map to Redis command names for error context.
const (
	OpGeoAdd    = "GEOADD"
	OpGeoSearch = "GEOSEARCH"
	OpHSet      = "HSET"
	OpHGetAll   = "HGETALL"
	OpDel       = "DEL"
	OpZRem      = "ZREM"
	OpZCard     = "ZCARD"
	OpExists    = "EXISTS"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
