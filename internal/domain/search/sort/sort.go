package sort

// Order is the result ordering strategy.
type Order string

// Sort order constants.
const (
	// Distance orders results nearest-first.
	Distance Order = "distance"
	// Rating orders results highest-rated-first.
	Rating Order = "rating"
	// Match orders results by descending blended match score.
	Match Order = "match"
)

// IsValid checks if the order is one of the supported values.
func (o Order) IsValid() bool {
	return o == Distance || o == Rating || o == Match
}
