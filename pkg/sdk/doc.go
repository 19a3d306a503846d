// Package placecache is a Go client for the placecache HTTP API.
//
//	client, _ := placecache.New("http://localhost:8080",
//	    placecache.WithToken(os.Getenv("PLACECACHE_TOKEN")),
//	)
//	res, _ := client.Resolve(ctx, placecache.ResolveRequest{PlaceID: "ChIJ..."})
//	page, _ := client.Nearby(ctx, placecache.NearbyRequest{
//	    Center:   &placecache.Point{Lat: -23.55, Lng: -46.63},
//	    RadiusKm: 2,
//	    Filters:  &placecache.NearbyFilters{Category: "cafe"},
//	})
//
// Errors returned by the service unwrap to the exported sentinels; use errors.Is.
package placecache
