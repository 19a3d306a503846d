package gplaces

import (
	"github.com/kailas-cloud/placecache/internal/domain/geo"
	"github.com/kailas-cloud/placecache/internal/domain/place"
)

type detailsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Result       detailsResult `json:"result"`
}

type detailsResult struct {
	PlaceID          string `json:"place_id"`
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location *latLng `json:"location"`
	} `json:"geometry"`
	Rating           float64       `json:"rating"`
	UserRatingsTotal int           `json:"user_ratings_total"`
	PriceLevel       int           `json:"price_level"`
	Types            []string      `json:"types"`
	Phone            string        `json:"formatted_phone_number"`
	Website          string        `json:"website"`
	OpeningHours     *openingHours `json:"opening_hours"`
	Photos           []photo       `json:"photos"`
	BusinessStatus   string        `json:"business_status"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type openingHours struct {
	OpenNow     bool     `json:"open_now"`
	WeekdayText []string `json:"weekday_text"`
	Periods     []struct {
		Open  dayTime  `json:"open"`
		Close *dayTime `json:"close"`
	} `json:"periods"`
}

type dayTime struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

type photo struct {
	Reference        string   `json:"photo_reference"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	HTMLAttributions []string `json:"html_attributions"`
}

func (r detailsResult) toUpstream() place.UpstreamFields {
	u := place.UpstreamFields{
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Rating:           r.Rating,
		RatingCount:      r.UserRatingsTotal,
		PriceLevel:       r.PriceLevel,
		Types:            r.Types,
		Phone:            r.Phone,
		Website:          r.Website,
		BusinessStatus:   r.BusinessStatus,
	}
	// No geometry leaves the zero point, which the record treats as unknown.
	if l := r.Geometry.Location; l != nil {
		u.Location = geo.Point{Lat: l.Lat, Lng: l.Lng}
	}
	if r.OpeningHours != nil {
		oh := &place.OpeningHours{
			OpenNow:     r.OpeningHours.OpenNow,
			WeekdayText: r.OpeningHours.WeekdayText,
		}
		for _, p := range r.OpeningHours.Periods {
			period := place.Period{Open: place.DayTime{Day: p.Open.Day, Time: p.Open.Time}}
			if p.Close != nil {
				period.Close = &place.DayTime{Day: p.Close.Day, Time: p.Close.Time}
			}
			oh.Periods = append(oh.Periods, period)
		}
		u.OpeningHours = oh
	}
	for _, p := range r.Photos {
		u.Photos = append(u.Photos, place.Photo{
			Reference:    p.Reference,
			Width:        p.Width,
			Height:       p.Height,
			Attributions: p.HTMLAttributions,
		})
	}
	return u
}
