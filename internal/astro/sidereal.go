// Package astro provides the sidereal-time math used to turn an apparent
// right ascension into a Greenwich Hour Angle.
package astro

import (
	"math"
	"time"
)

// GreenwichHourAngle returns the GHA in degrees of a body with the given
// apparent right ascension at time t: GAST minus RA, wrapped into [0, 360).
func GreenwichHourAngle(raDeg float64, t time.Time) float64 {
	return NormalizeDegrees(GreenwichApparentSiderealTime(t) - raDeg)
}

// GreenwichApparentSiderealTime returns GAST in degrees: GMST corrected by
// the equation of the equinoxes.
func GreenwichApparentSiderealTime(t time.Time) float64 {
	return NormalizeDegrees(GreenwichMeanSiderealTime(t) + EquationOfEquinoxes(t))
}

// EquationOfEquinoxes returns the nutation in right ascension in degrees,
// using the low-precision nutation series (good to about 0.5").
func EquationOfEquinoxes(t time.Time) float64 {
	T := (JulianDate(t) - 2451545.0) / 36525.0

	omega := degToRad(125.04452 - 1934.136261*T)
	sunL := degToRad(280.4665 + 36000.7698*T)
	moonL := degToRad(218.3165 + 481267.8813*T)

	// arcseconds
	dPsi := -17.20*math.Sin(omega) - 1.32*math.Sin(2*sunL) - 0.23*math.Sin(2*moonL) + 0.21*math.Sin(2*omega)
	dEps := 9.20*math.Cos(omega) + 0.57*math.Cos(2*sunL) + 0.10*math.Cos(2*moonL) - 0.09*math.Cos(2*omega)

	meanObliquity := 23.0 + 26.0/60 + (21.448-46.8150*T-0.00059*T*T+0.001813*T*T*T)/3600
	obliquity := degToRad(meanObliquity + dEps/3600)

	return dPsi * math.Cos(obliquity) / 3600
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// GreenwichMeanSiderealTime calculates GMST in degrees for a given UTC time.
// Uses the IAU 1982 formula based on Julian Date.
func GreenwichMeanSiderealTime(t time.Time) float64 {
	jd := JulianDate(t)

	// Julian centuries since J2000.0
	T := (jd - 2451545.0) / 36525.0

	gmst := 280.46061837 +
		360.98564736629*(jd-2451545.0) +
		0.000387933*T*T -
		T*T*T/38710000.0

	return NormalizeDegrees(gmst)
}

// JulianDate calculates the Julian Date for a given time.
func JulianDate(t time.Time) float64 {
	t = t.UTC()

	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())

	h := float64(t.Hour())
	min := float64(t.Minute())
	sec := float64(t.Second())
	ns := float64(t.Nanosecond())

	dayFrac := (h + min/60 + sec/3600 + ns/3600e9) / 24.0

	// January/February count as months 13/14 of the previous year
	if m <= 2 {
		y--
		m += 12
	}

	// Gregorian calendar correction
	A := math.Floor(y / 100)
	B := 2 - A + math.Floor(A/4)

	return math.Floor(365.25*(y+4716)) +
		math.Floor(30.6001*(m+1)) +
		d + dayFrac + B - 1524.5
}

// NormalizeDegrees wraps an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// math.Mod of a tiny negative value can round back up to 360
	if deg >= 360 {
		deg = 0
	}
	return deg
}
