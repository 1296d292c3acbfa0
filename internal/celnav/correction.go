package celnav

import "math"

// Dip returns the dip of the horizon in minutes for a height of eye in feet.
func Dip(eyeHeightFt int) float64 {
	if eyeHeightFt < 0 {
		eyeHeightFt = 0
	}
	return RoundHalfUp(0.97*math.Sqrt(float64(eyeHeightFt)), 1) * -1
}

// Refraction returns the refraction correction in minutes for an apparent
// altitude in degrees. Below -4.4° the formula passes its pole and the
// correction is 0.
func Refraction(ha float64) float64 {
	if ha <= -4.4 {
		return 0
	}
	refraction := 1.0 / math.Tan(Radians(ha+(7.31/(ha+4.4))))
	r := RoundHalfUp(refraction, 1) * -1
	if r > 0 || math.IsNaN(r) {
		return 0
	}
	return r
}

// SemiDiameter returns the semi-diameter correction in minutes. It is
// positive for a lower limb sight, negative for an upper limb sight and zero
// for a center sight or a point-source body.
func SemiDiameter(distance, equatorialRadius float64, limb Limb) float64 {
	if limb == LimbCenter || equatorialRadius <= 0 || distance <= 0 {
		return 0
	}

	sd := Degrees(math.Asin(clampUnit(equatorialRadius / distance)))
	sdMinutes := RoundHalfUp(sd*60, 1)

	if limb == LimbUpper {
		sdMinutes *= -1.0
	}
	return sdMinutes
}

// HorizontalParallax returns the parallax in altitude in minutes for a body
// at distance km seen at apparent altitude ha. For the Moon the horizontal
// parallax is reduced for the Earth's oblateness at latitude lat.
func HorizontalParallax(ha, distance, lat float64, isMoon bool) float64 {
	if distance <= 0 {
		return 0
	}

	hp := math.Asin(clampUnit(EquatorialRadiusEarth / distance))

	if isMoon {
		s := math.Sin(Radians(lat))
		hp -= hp * s * s / 298.3
	}

	// Parallax in altitude
	hp *= math.Cos(Radians(ha))
	return RoundHalfUp(Degrees(hp)*60, 1)
}

// CorrectSextantReading applies index correction, dip, refraction,
// semi-diameter and parallax to a sextant reading, in that order.
// It returns ErrInsufficientData when the observation or the assumed
// position is missing.
func CorrectSextantReading(reading SextantReading, obs *Observation, pos *Position) (Corrections, error) {
	if obs == nil || pos == nil {
		return Corrections{}, ErrInsufficientData
	}

	dip := Dip(reading.EyeHeightFt)
	ha := reading.Hs + (reading.IC+dip)/60.0

	refraction := Refraction(ha)
	ha += refraction / 60.0

	sd := SemiDiameter(obs.Distance, obs.EquatorialRadius, reading.Limb)
	hp := HorizontalParallax(ha, obs.Distance, pos.Lat, obs.IsMoon())

	return Corrections{
		Dip:        dip,
		Refraction: refraction,
		SD:         sd,
		HP:         hp,
		Ho:         ha + (sd+hp)/60.0,
	}, nil
}
