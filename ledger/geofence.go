package ledger

import (
	"math"

	"cashup-backend/models"
)

const (
	earthRadiusMeters   = 6371000
	defaultRadiusMeters = 1500
)

// Haversine returns the great-circle surface distance in meters between two
// WGS84 coordinates.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dPhi := toRad(lat2 - lat1)
	dLambda := toRad(lng2 - lng1)
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// InsideFestival reports whether a participant location is acceptable for the
// festival. A festival without a center accepts every location; with a center,
// a missing or non-finite location fails closed. The boundary is inclusive.
func InsideFestival(festival *models.Festival, lat, lng *float64) bool {
	if festival.CenterLat == nil || festival.CenterLng == nil {
		return true
	}
	if lat == nil || lng == nil {
		return false
	}
	if math.IsNaN(*lat) || math.IsNaN(*lng) || math.IsInf(*lat, 0) || math.IsInf(*lng, 0) {
		return false
	}
	radius := defaultRadiusMeters
	if festival.RadiusMeters != nil {
		radius = *festival.RadiusMeters
	}
	dist := Haversine(*lat, *lng, *festival.CenterLat, *festival.CenterLng)
	return dist <= float64(radius)
}
