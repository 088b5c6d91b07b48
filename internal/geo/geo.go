package geo

import (
	"fmt"
	"math"
)

// HaversineMiles returns the great-circle distance between two points in
// statute miles.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 3959.0 // earth radius, miles
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// DistanceLabel formats miles for display: feet under a tenth of a mile,
// otherwise one decimal of miles.
func DistanceLabel(miles float64) string {
	if miles < 0.1 {
		return fmt.Sprintf("%d ft away", int(math.Round(miles*5280/10)*10))
	}
	return fmt.Sprintf("%.1f mi away", miles)
}
