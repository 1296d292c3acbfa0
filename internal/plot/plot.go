// Package plot assembles lines of position from saved sights, estimates a
// fix and renders the result as GeoJSON or an ASCII sketch.
package plot

import (
	"math"

	"github.com/litescript/ls-sights/internal/celnav"
	"github.com/litescript/ls-sights/internal/sight"
)

// nmPerDegree is one degree of arc on the sphere used by celnav.Destination.
var nmPerDegree = celnav.EquatorialRadiusEarth * math.Pi / 180 / celnav.NauticalMilesToKm(1)

// SightLine pairs a saved sight with its recomputed line of position.
type SightLine struct {
	Sight sight.Sight
	LOP   celnav.LineOfPosition
}

// Plot is the set of lines drawn for the active sights.
type Plot struct {
	Assumed *celnav.Position
	Fix     *celnav.Position
	Lines   []SightLine
}

// New builds a plot from the active sights. The assumed position is taken
// from the caller when given, else from the first line. A fix is estimated
// when two or more lines cross.
func New(sights []sight.Sight, assumed *celnav.Position) Plot {
	var p Plot
	for _, s := range sight.Active(sights) {
		p.Lines = append(p.Lines, SightLine{
			Sight: s,
			LOP:   s.LineOfPosition(),
		})
	}

	switch {
	case assumed != nil:
		a := *assumed
		p.Assumed = &a
	case len(p.Lines) > 0:
		a := p.Lines[0].LOP.Assumed
		p.Assumed = &a
	}

	if fix, ok := EstimateFix(p.Lines); ok {
		p.Fix = &fix
	}
	return p
}

// SetFix overrides the estimated fix with a position chosen by the user.
func (p *Plot) SetFix(pos celnav.Position) {
	p.Fix = &pos
}

// EstimateFix returns the least-squares intersection of the lines in a
// tangent plane centered on their intercept points. It reports false for
// fewer than two lines or when they cross at less than about a degree.
func EstimateFix(lines []SightLine) (celnav.Position, bool) {
	if len(lines) < 2 {
		return celnav.Position{}, false
	}

	origin := centroid(lines)
	proj := newProjection(origin)

	// Normal equations for sum((n.x - n.p)^2).
	var a11, a12, a22, b1, b2 float64
	for _, l := range lines {
		px, py := proj.toPlane(l.LOP.Intercept)
		rx, ry := proj.toPlane(l.LOP.Right)
		dx, dy := rx-px, ry-py
		norm := math.Hypot(dx, dy)
		if norm == 0 {
			continue
		}
		nx, ny := -dy/norm, dx/norm
		c := nx*px + ny*py

		a11 += nx * nx
		a12 += nx * ny
		a22 += ny * ny
		b1 += nx * c
		b2 += ny * c
	}

	det := a11*a22 - a12*a12
	trace := a11 + a22
	if trace == 0 || det/(trace*trace) < 1e-4 {
		return celnav.Position{}, false
	}

	x := (b1*a22 - b2*a12) / det
	y := (a11*b2 - a12*b1) / det
	return proj.fromPlane(x, y), true
}

func centroid(lines []SightLine) celnav.Position {
	ref := lines[0].LOP.Intercept.Lon
	var lat, lon float64
	for _, l := range lines {
		lat += l.LOP.Intercept.Lat
		lon += ref + wrapLon(l.LOP.Intercept.Lon-ref)
	}
	n := float64(len(lines))
	return celnav.Position{Lat: lat / n, Lon: lon / n}
}

// projection is an equirectangular tangent plane in nautical miles, x east
// and y north of the origin.
type projection struct {
	origin celnav.Position
	cosLat float64
}

func newProjection(origin celnav.Position) projection {
	c := math.Cos(celnav.Radians(origin.Lat))
	if c < 1e-6 {
		c = 1e-6
	}
	return projection{origin: origin, cosLat: c}
}

func (p projection) toPlane(pos celnav.Position) (x, y float64) {
	x = wrapLon(pos.Lon-p.origin.Lon) * p.cosLat * nmPerDegree
	y = (pos.Lat - p.origin.Lat) * nmPerDegree
	return x, y
}

func (p projection) fromPlane(x, y float64) celnav.Position {
	return celnav.Position{
		Lat: p.origin.Lat + y/nmPerDegree,
		Lon: p.origin.Lon + x/(p.cosLat*nmPerDegree),
	}
}

// wrapLon maps a longitude difference into [-180, 180).
func wrapLon(d float64) float64 {
	d = math.Mod(d+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}
