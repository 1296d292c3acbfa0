package celnav

import "math"

// LOPHalfLength is the distance in nautical miles drawn either side of the
// intercept point.
const LOPHalfLength = 10.0

// NauticalMilesToKm converts nautical miles to kilometers.
func NauticalMilesToKm(nm float64) float64 {
	return nm * 1.852
}

// ComputeIntercept returns the intercept between the observed and the
// calculated altitude. The line lies towards the body when Hc < Ho.
func ComputeIntercept(ho, hc float64) Intercept {
	dir := Away
	if hc < ho {
		dir = Towards
	}
	return Intercept{
		Distance:  RoundHalfUp(math.Abs(ho-hc)*60.0, 2),
		Direction: dir,
	}
}

// Destination returns the point reached from p travelling distanceNm
// nautical miles along an initial great-circle bearing in degrees. The
// Earth is a sphere of the equatorial radius; longitude is not re-wrapped.
func Destination(p Position, bearing, distanceNm float64) Position {
	lat := Radians(p.Lat)
	lon := Radians(p.Lon)
	brg := Radians(bearing)
	delta := NauticalMilesToKm(distanceNm) / EquatorialRadiusEarth

	destLat := math.Asin(clampUnit(math.Sin(lat)*math.Cos(delta) + math.Cos(lat)*math.Sin(delta)*math.Cos(brg)))
	deltaLon := math.Atan2(math.Sin(brg)*math.Sin(delta)*math.Cos(lat), math.Cos(delta)-math.Sin(lat)*math.Sin(destLat))

	return Position{
		Lat: Degrees(destLat),
		Lon: Degrees(lon + deltaLon),
	}
}

// ComputeLineOfPosition derives the plotted segment for a sight: the
// intercept point is laid off from the assumed position on the reciprocal of
// Zn, and the line runs perpendicular to it for LOPHalfLength each side.
func ComputeLineOfPosition(assumed Position, zn, intercept float64) LineOfPosition {
	correctedZn := AddWrapped(zn, 180.0)

	ip := Destination(assumed, correctedZn, intercept)
	left := Destination(ip, AddWrapped(correctedZn, 270.0), LOPHalfLength)
	right := Destination(ip, AddWrapped(correctedZn, 90.0), LOPHalfLength)

	return LineOfPosition{
		Assumed:   assumed,
		Intercept: ip,
		Left:      left,
		Right:     right,
	}
}
