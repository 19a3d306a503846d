package sortkey

import "fmt"

// Key orders a page of nearby results.
type Key string

// Sort key constants.
const (
	// Distance sorts ascending by distance from the search center.
	Distance Key = "distance"
	// Rating sorts descending by upstream rating.
	Rating Key = "rating"
	// Newest sorts descending by record creation time.
	Newest Key = "newest"
)

// IsValid checks if the key is one of the supported values.
func (k Key) IsValid() bool {
	return k == Distance || k == Rating || k == Newest
}

// Parse returns the key for s, defaulting to Distance when s is empty.
func Parse(s string) (Key, error) {
	if s == "" {
		return Distance, nil
	}
	k := Key(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid sortBy: %q (want distance, rating or newest)", s)
	}
	return k, nil
}
