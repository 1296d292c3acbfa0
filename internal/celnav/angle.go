// Package celnav implements celestial sight reduction: sextant altitude
// corrections, calculated altitude and azimuth for an assumed position,
// and the geometry of the resulting line of position.
//
// Every function is pure. Angles are degrees throughout; radians only
// exist inside the trigonometry.
package celnav

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Hemisphere signs.
const (
	North = 1
	South = -1
	East  = 1
	West  = -1
)

// Angle builds a signed angle in degrees from degrees, minutes of arc and sign.
func Angle(degrees int, minutes float64, sign int) float64 {
	return (float64(degrees) + minutes/60.0) * float64(sign)
}

// Decompose splits an angle into whole degrees, minutes rounded half-up to
// precision decimals, and a sign of +1 or -1.
func Decompose(angle float64, precision int) (degrees int, minutes float64, sign int) {
	sign = 1
	if angle < 0 {
		sign = -1
	}
	unsigned := angle * float64(sign)
	degrees = int(math.Floor(unsigned))
	minutes = RoundHalfUp((unsigned-float64(degrees))*60, precision)

	// 59.996' at two decimals rounds to 60.00'
	if minutes >= 60 {
		degrees++
		minutes = 0
	}
	return degrees, minutes, sign
}

// RoundHalfUp rounds v to precision decimal places, halves away from zero,
// on the shortest decimal representation of v. NaN and infinities are
// returned unchanged.
func RoundHalfUp(v float64, precision int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(int32(precision)).InexactFloat64()
}

// AddWrapped adds two angles and wraps a sum of 360 or more back by one turn.
// It expects a in [0, 360) and b in [0, 360); negative sums are not normalized.
func AddWrapped(a, b float64) float64 {
	sum := a + b
	if sum >= 360.0 {
		return sum - 360.0
	}
	return sum
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// clampUnit limits an inverse-trig argument to [-1, 1].
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// FormatDM renders an angle as degrees and decimal minutes with a hemisphere
// prefix, e.g. "N19°00.0'". pos is used for non-negative angles, neg otherwise;
// both may be empty, in which case a minus sign marks negative angles.
func FormatDM(angle float64, pos, neg string, precision int) string {
	deg, min, sign := Decompose(angle, precision)
	prefix := pos
	if sign < 0 {
		prefix = neg
		if neg == "" {
			prefix = "-"
		}
	}
	width := 2
	if precision > 0 {
		width = precision + 3
	}
	return fmt.Sprintf("%s%d°%0*.*f'", prefix, deg, width, precision, min)
}

// ParseDM parses an angle written as degrees and minutes, with an optional
// hemisphere letter or sign. Accepted forms include "43 40.0", "N19 00.0",
// "156 00.0 W", "S23°24.12'", "-23.402" and "23.402".
func ParseDM(s string) (float64, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, fmt.Errorf("empty angle")
	}

	sign := 1.0
	upper := strings.ToUpper(text)
	switch {
	case strings.HasPrefix(upper, "N"), strings.HasPrefix(upper, "E"):
		text = text[1:]
	case strings.HasPrefix(upper, "S"), strings.HasPrefix(upper, "W"):
		sign = -1
		text = text[1:]
	case strings.HasSuffix(upper, "N"), strings.HasSuffix(upper, "E"):
		text = text[:len(text)-1]
	case strings.HasSuffix(upper, "S"), strings.HasSuffix(upper, "W"):
		sign = -1
		text = text[:len(text)-1]
	}

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "-") {
		sign = -sign
		text = text[1:]
	} else if strings.HasPrefix(text, "+") {
		text = text[1:]
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '°' || r == '\'' || r == '′'
	})

	switch len(fields) {
	case 1:
		deg, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, fmt.Errorf("parse degrees %q: %w", fields[0], err)
		}
		return sign * deg, nil
	case 2:
		deg, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, fmt.Errorf("parse degrees %q: %w", fields[0], err)
		}
		min, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, fmt.Errorf("parse minutes %q: %w", fields[1], err)
		}
		if deg < 0 || min < 0 || min >= 60 {
			return 0, fmt.Errorf("angle out of range: %q", s)
		}
		return Angle(deg, min, int(sign)), nil
	default:
		return 0, fmt.Errorf("invalid angle: %q", s)
	}
}
