package place

// DefaultCategory is the sentinel for places with no known type tag.
const DefaultCategory = "other"

// categoryTable maps provider type tags to platform categories.
// Order is priority: the first row whose tag is present wins.
var categoryTable = []struct {
	tag      string
	category string
}{
	{"cafe", "cafe"},
	{"bakery", "bakery"},
	{"bar", "bar"},
	{"night_club", "nightlife"},
	{"restaurant", "restaurant"},
	{"meal_takeaway", "restaurant"},
	{"meal_delivery", "restaurant"},
	{"lodging", "hotel"},
	{"museum", "culture"},
	{"art_gallery", "culture"},
	{"library", "culture"},
	{"movie_theater", "entertainment"},
	{"amusement_park", "entertainment"},
	{"bowling_alley", "entertainment"},
	{"park", "outdoors"},
	{"campground", "outdoors"},
	{"zoo", "outdoors"},
	{"gym", "fitness"},
	{"spa", "wellness"},
	{"beauty_salon", "wellness"},
	{"shopping_mall", "shopping"},
	{"clothing_store", "shopping"},
	{"book_store", "shopping"},
	{"store", "shopping"},
	{"supermarket", "grocery"},
	{"grocery_or_supermarket", "grocery"},
	{"tourist_attraction", "attraction"},
	{"food", "food"},
}

// CategoryFor returns the platform category for a provider type list.
func CategoryFor(types []string) string {
	if len(types) == 0 {
		return DefaultCategory
	}
	present := make(map[string]struct{}, len(types))
	for _, t := range types {
		present[t] = struct{}{}
	}
	for _, row := range categoryTable {
		if _, ok := present[row.tag]; ok {
			return row.category
		}
	}
	return DefaultCategory
}

// isSentinelCategory reports whether c carries no curated value.
func isSentinelCategory(c string) bool {
	return c == "" || c == DefaultCategory
}
