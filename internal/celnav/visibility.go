package celnav

import "math"

// Visibility describes how a body moves relative to the horizon over a day
// at a given latitude.
type Visibility int

const (
	RisesAndSets Visibility = iota
	AlwaysAboveHorizon
	AlwaysBelowHorizon
)

// String returns a short description.
func (v Visibility) String() string {
	switch v {
	case AlwaysAboveHorizon:
		return "always above horizon"
	case AlwaysBelowHorizon:
		return "always below horizon"
	default:
		return "rises and sets"
	}
}

// VisibilityAt classifies a body of declination dec seen from latitude lat.
// A body whose polar distance is smaller than the latitude never sets when it
// is in the same hemisphere and never rises when it is contrary. Refraction
// and dip are ignored.
func VisibilityAt(lat, dec float64) Visibility {
	if math.Abs(lat)+math.Abs(dec) <= 90 || lat == 0 || dec == 0 {
		return RisesAndSets
	}
	if (lat > 0) == (dec > 0) {
		return AlwaysAboveHorizon
	}
	return AlwaysBelowHorizon
}
