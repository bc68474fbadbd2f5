package domain

import "fmt"

// areaLocations are display coordinates for LAPD divisions, used to place the
// predictor's map marker. They are approximate station locations, not centroids.
var areaLocations = map[string]Geo{
	"Central":         {Lat: 34.0425, Lon: -118.2468},
	"Hollenbeck":      {Lat: 34.0505, Lon: -118.2117},
	"Southwest":       {Lat: 34.0166, Lon: -118.2971},
	"Rampart":         {Lat: 34.0533, Lon: -118.2760},
	"Hollywood":       {Lat: 34.1019, Lon: -118.3286},
	"Wilshire":        {Lat: 34.0595, Lon: -118.3085},
	"West LA":         {Lat: 34.0443, Lon: -118.4426},
	"Van Nuys":        {Lat: 34.1867, Lon: -118.4483},
	"Pacific":         {Lat: 33.9931, Lon: -118.4415},
	"Northeast":       {Lat: 34.1066, Lon: -118.2150},
	"Newton":          {Lat: 34.0106, Lon: -118.2585},
	"Harbor":          {Lat: 33.7903, Lon: -118.2861},
	"77th Street":     {Lat: 33.9454, Lon: -118.2734},
	"Foothill":        {Lat: 34.2727, Lon: -118.4182},
	"Devonshire":      {Lat: 34.2573, Lon: -118.5250},
	"Southeast":       {Lat: 33.9534, Lon: -118.2452},
	"Mission":         {Lat: 34.2723, Lon: -118.4380},
	"Olympic":         {Lat: 34.0496, Lon: -118.2998},
	"Topanga":         {Lat: 34.2279, Lon: -118.6055},
	"North Hollywood": {Lat: 34.1870, Lon: -118.3863},
	"N Hollywood":     {Lat: 34.1867, Lon: -118.3893},
	"Valley Traffic":  {Lat: 34.2333, Lon: -118.4630},
	"South Traffic":   {Lat: 33.9720, Lon: -118.2895},
	"West Traffic":    {Lat: 34.0452, Lon: -118.4447},
	"Central Traffic": {Lat: 34.0407, Lon: -118.2534},
}

// CityCenter is the default map center for Los Angeles.
var CityCenter = Geo{Lat: 34.0522, Lon: -118.2437}

// AreaLocation looks up the display coordinates of an area.
func AreaLocation(area string) (Geo, bool) {
	g, ok := areaLocations[area]
	return g, ok
}

// AreaLocationWarning returns the user-facing warning for an area with no
// display coordinates, or "" when the area can be placed on the map.
func AreaLocationWarning(area string) string {
	if _, ok := areaLocations[area]; ok {
		return ""
	}
	return fmt.Sprintf("coordinates unavailable for area %q", area)
}
