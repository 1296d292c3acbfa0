package celnav

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInsufficientData is returned when the assumed position or the body's
// geographic position is not yet known. No partial result accompanies it.
var ErrInsufficientData = errors.New("insufficient data to reduce sight")

// Earth and body radii in kilometers.
const (
	EquatorialRadiusEarth = 6378.0
	EquatorialRadiusMoon  = 1738.1
	EquatorialRadiusSun   = 695700.0
)

// Limb identifies which part of the body's disc was brought to the horizon.
type Limb int

const (
	LimbCenter Limb = iota
	LimbLower
	LimbUpper
)

// String returns the limb name.
func (l Limb) String() string {
	switch l {
	case LimbCenter:
		return "center"
	case LimbLower:
		return "lower"
	case LimbUpper:
		return "upper"
	default:
		return "unknown"
	}
}

// ParseLimb parses a limb name; unknown names map to LimbCenter.
func ParseLimb(s string) Limb {
	switch strings.ToLower(s) {
	case "lower", "ll", "l":
		return LimbLower
	case "upper", "ul", "u":
		return LimbUpper
	default:
		return LimbCenter
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Limb) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Limb) UnmarshalText(b []byte) error {
	switch s := strings.ToLower(string(b)); s {
	case "center", "":
		*l = LimbCenter
	case "lower", "upper", "ll", "ul", "l", "u":
		*l = ParseLimb(s)
	default:
		return fmt.Errorf("unknown limb %q", s)
	}
	return nil
}

// Direction tells whether the line of position lies towards or away from
// the body, measured from the assumed position.
type Direction int

const (
	Towards Direction = iota
	Away
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Away {
		return "away"
	}
	return "towards"
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	switch s := strings.ToLower(string(b)); s {
	case "towards", "toward":
		*d = Towards
	case "away":
		*d = Away
	default:
		return fmt.Errorf("unknown direction %q", s)
	}
	return nil
}

// Observation is the body's geographic position at the time of the sight.
type Observation struct {
	Body             string  // Body name, e.g. "Sun", "Moon", "Vega"
	UTC              string  // Time of sight as reported by the lookup
	GHA              float64 // Greenwich Hour Angle, degrees 0-360
	Dec              float64 // Declination, degrees (north positive)
	Distance         float64 // Distance from Earth, km
	EquatorialRadius float64 // Body radius in km; 0 for stars and planets
}

// IsMoon reports whether the observed body is the Moon.
func (o Observation) IsMoon() bool {
	return strings.EqualFold(o.Body, "Moon")
}

// SextantReading is the raw observation taken with the sextant.
type SextantReading struct {
	Hs          float64 // Sextant altitude, degrees
	IC          float64 // Index correction, minutes (negative when "on" the arc)
	EyeHeightFt int     // Height of eye above sea level, feet
	Limb        Limb
}

// Position is a point on the Earth in degrees, north and east positive.
type Position struct {
	Lat float64
	Lon float64
}

// Corrections holds the altitude corrections (minutes of arc) and the
// resulting observed altitude.
type Corrections struct {
	Dip        float64 // always <= 0
	Refraction float64 // always <= 0
	SD         float64 // semi-diameter, signed by limb
	HP         float64 // parallax in altitude, >= 0
	Ho         float64 // observed altitude, degrees
}

// Reduction is the calculated altitude and azimuth for an assumed position.
type Reduction struct {
	LHA float64 // Local Hour Angle, degrees 0-360
	Hc  float64 // Calculated altitude, degrees
	Z   float64 // Azimuth angle, degrees 0-180
	Zn  float64 // True azimuth, degrees 0-360
}

// Intercept is the distance between observed and calculated altitude circles.
type Intercept struct {
	Distance  float64 // nautical miles, rounded to 2 decimals
	Direction Direction
}

// LineOfPosition is the plottable segment derived from one sight.
type LineOfPosition struct {
	Assumed   Position
	Intercept Position
	Left      Position
	Right     Position
}
