// Package place models cached place records and the refresh merge policy.
//
// A Record is split by ownership: Upstream fields belong to the external
// place details provider and are replaced on every refresh, Platform fields
// belong to this system and survive refreshes, Sync tracks cache state.
package place

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/placecache/internal/domain/geo"
)

// MaxIDLength bounds provider place ids accepted at the boundary.
const MaxIDLength = 512

// Record is the canonical cached representation of a physical place.
type Record struct {
	ID       string         `json:"id" bson:"_id"`
	Upstream UpstreamFields `json:"upstream" bson:"upstream"`
	Platform PlatformFields `json:"platform" bson:"platform"`
	Sync     SyncMeta       `json:"sync" bson:"sync"`
}

// UpstreamFields are owned by the place details provider.
type UpstreamFields struct {
	Name             string        `json:"name" bson:"name"`
	FormattedAddress string        `json:"formattedAddress" bson:"formattedAddress"`
	Location         geo.Point     `json:"location" bson:"location"`
	Rating           float64       `json:"rating" bson:"rating"`
	RatingCount      int           `json:"ratingCount" bson:"ratingCount"`
	PriceLevel       int           `json:"priceLevel" bson:"priceLevel"`
	Types            []string      `json:"types" bson:"types"`
	Phone            string        `json:"phone,omitempty" bson:"phone,omitempty"`
	Website          string        `json:"website,omitempty" bson:"website,omitempty"`
	OpeningHours     *OpeningHours `json:"openingHours,omitempty" bson:"openingHours,omitempty"`
	Photos           []Photo       `json:"photos,omitempty" bson:"photos,omitempty"`
	BusinessStatus   string        `json:"businessStatus,omitempty" bson:"businessStatus,omitempty"`
}

// OpeningHours is the provider's weekly schedule.
type OpeningHours struct {
	OpenNow     bool     `json:"openNow" bson:"openNow"`
	WeekdayText []string `json:"weekdayText,omitempty" bson:"weekdayText,omitempty"`
	Periods     []Period `json:"periods,omitempty" bson:"periods,omitempty"`
}

// Period is one opening interval. Close is nil for places open 24 hours.
type Period struct {
	Open  DayTime  `json:"open" bson:"open"`
	Close *DayTime `json:"close,omitempty" bson:"close,omitempty"`
}

// DayTime is a weekday (0 = Sunday) and a local HHMM time.
type DayTime struct {
	Day  int    `json:"day" bson:"day"`
	Time string `json:"time" bson:"time"`
}

// Photo is a provider photo reference; the image itself is never stored.
type Photo struct {
	Reference    string   `json:"reference" bson:"reference"`
	Width        int      `json:"width" bson:"width"`
	Height       int      `json:"height" bson:"height"`
	Attributions []string `json:"attributions,omitempty" bson:"attributions,omitempty"`
}

// PlatformFields are owned by this system and never replaced by a refresh.
type PlatformFields struct {
	CreatedBy      string    `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	PlatformRating float64   `json:"platformRating" bson:"platformRating"`
	ReviewCount    int       `json:"reviewCount" bson:"reviewCount"`
	Category       string    `json:"category" bson:"category"`
	SearchKeywords []string  `json:"searchKeywords" bson:"searchKeywords"`
	ListCount      int       `json:"listCount" bson:"listCount"`
	ViewCount      int64     `json:"viewCount" bson:"viewCount"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// SyncMeta tracks cache freshness and soft deletion.
type SyncMeta struct {
	LastSyncedAt time.Time `json:"lastSyncedAt" bson:"lastSyncedAt"`
	Language     string    `json:"language" bson:"language"`
	IsActive     bool      `json:"isActive" bson:"isActive"`
}

// Payload is a normalized upstream place details response.
type Payload struct {
	ID        string
	Upstream  UpstreamFields
	FetchedAt time.Time
	Language  string
}

// IsFresh reports whether r was synced less than staleAfter before now.
func (r *Record) IsFresh(now time.Time, staleAfter time.Duration) bool {
	if r == nil || r.Sync.LastSyncedAt.IsZero() {
		return false
	}
	return now.Sub(r.Sync.LastSyncedAt) < staleAfter
}

// HasLocation reports whether upstream supplied coordinates. The zero point
// stands for a missing geometry.
func (r *Record) HasLocation() bool { return !r.Upstream.Location.IsZero() }

// Indexed reports whether the record belongs in the geo index.
func (r *Record) Indexed() bool { return r.Sync.IsActive && r.HasLocation() }

// GeoEntry returns the derived geo index entry.
func (r *Record) GeoEntry() geo.Entry {
	return geo.Entry{PlaceID: r.ID, Point: r.Upstream.Location}
}

// HasAnyType reports whether the record carries at least one of tags.
func (r *Record) HasAnyType(tags []string) bool {
	for _, want := range tags {
		for _, have := range r.Upstream.Types {
			if strings.EqualFold(want, have) {
				return true
			}
		}
	}
	return false
}

// ValidateID checks a provider place id.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("placeId is required")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("placeId too long (max %d chars)", MaxIDLength)
	}
	if strings.ContainsAny(id, " \t\r\n/") {
		return fmt.Errorf("placeId contains invalid characters")
	}
	return nil
}
