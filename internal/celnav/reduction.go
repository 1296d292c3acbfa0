package celnav

import "math"

// LocalHourAngle returns the LHA in degrees [0, 360) for a body's GHA and
// the observer's longitude. West longitude is subtracted from GHA, east
// longitude added.
func LocalHourAngle(gha, lon float64) float64 {
	var lha float64
	if lon < 0 {
		lha = gha - (lon * West)
	} else {
		lha = gha + (lon * East)
	}

	if lha < 0 {
		lha += 360.0
	} else if lha >= 360.0 {
		lha -= 360.0
	}
	return lha
}

// CalculateSightReduction computes Hc, Z and Zn for a declination, assumed
// latitude and local hour angle, all in degrees.
//
// A south latitude is worked as a positive angle when the declination is
// nonzero: a same-hemisphere declination becomes positive and a contrary one
// negative. With zero declination a south latitude is left as is. Zn is
// derived from the unnormalized latitude and LHA.
func CalculateSightReduction(dec, lat, lha float64) (hc, z, zn float64) {
	decRads := Radians(dec)
	latRads := Radians(lat)
	lhaRads := Radians(lha)

	if latRads < 0 && decRads != 0 {
		decRads, latRads = -decRads, -latRads
	}

	sinHc := math.Sin(latRads)*math.Sin(decRads) + math.Cos(latRads)*math.Cos(decRads)*math.Cos(lhaRads)
	hcRads := math.Asin(clampUnit(sinHc))
	hc = Degrees(hcRads)

	num := math.Sin(decRads) - math.Sin(hcRads)*math.Sin(latRads)
	den := math.Cos(hcRads) * math.Cos(latRads)
	if math.Abs(den) < 1e-12 {
		// Observer at the pole or body at the zenith: azimuth is degenerate.
		if num >= 0 {
			z = 0
		} else {
			z = 180
		}
	} else {
		z = Degrees(math.Acos(clampUnit(num / den)))
	}

	if lat >= 0 {
		if lha >= 180.0 {
			zn = z
		} else {
			zn = 360.0 - z
		}
	} else {
		if lha >= 180.0 {
			zn = 180.0 - z
		} else {
			zn = 180.0 + z
		}
	}

	if zn >= 360.0 {
		zn -= 360.0
	}
	if zn < 0 {
		zn += 360.0
	}
	return hc, z, zn
}

// ReduceSight computes LHA, Hc, Z and Zn for an observation from an assumed
// position.
func ReduceSight(obs Observation, pos Position) Reduction {
	lha := LocalHourAngle(obs.GHA, pos.Lon)
	hc, z, zn := CalculateSightReduction(obs.Dec, pos.Lat, lha)
	return Reduction{
		LHA: lha,
		Hc:  hc,
		Z:   z,
		Zn:  zn,
	}
}
