package domain

import "sort"

// GeoPoint is one sized map point: every incident of a category reported at
// exactly the same coordinates.
type GeoPoint struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Category string  `json:"category"`
	Count    int     `json:"count"`
}

type geoKey struct {
	lat, lon float64
	category string
}

// AggregateGeo groups incidents with valid coordinates by exact
// (lat, lon, category). An empty allow-list keeps every category.
// Output is sorted by latitude, longitude, then category.
func AggregateGeo(t *Table, categories []string) []GeoPoint {
	allowed := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		allowed[c] = struct{}{}
	}

	counts := make(map[geoKey]int)
	t.Each(func(in Incident) {
		if !HasValidCoordinates(in.Geo) {
			return
		}
		if len(allowed) > 0 {
			if _, ok := allowed[in.Category]; !ok {
				return
			}
		}
		counts[geoKey{lat: in.Geo.Lat, lon: in.Geo.Lon, category: in.Category}]++
	})

	out := make([]GeoPoint, 0, len(counts))
	for k, n := range counts {
		out = append(out, GeoPoint{Lat: k.lat, Lon: k.lon, Category: k.category, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Lat != b.Lat {
			return a.Lat < b.Lat
		}
		if a.Lon != b.Lon {
			return a.Lon < b.Lon
		}
		return a.Category < b.Category
	})
	return out
}
