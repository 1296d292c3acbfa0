// Package sight holds saved sight records and their persistence.
package sight

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/litescript/ls-sights/internal/celnav"
)

// ErrNotFound is returned for unknown sight IDs.
var ErrNotFound = errors.New("sight not found")

// Sight is a reduced sight with every input and derived value.
type Sight struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"active"`

	// Sextant inputs
	Hs          float64     `json:"hs"`
	IC          float64     `json:"ic"`
	EyeHeightFt int         `json:"eye_height_ft"`
	Limb        celnav.Limb `json:"limb"`

	// Geographic position of the body
	Body             string  `json:"body"`
	UTC              string  `json:"utc"`
	GHA              float64 `json:"gha"`
	Dec              float64 `json:"dec"`
	Distance         float64 `json:"distance"`
	EquatorialRadius float64 `json:"equatorial_radius"`

	// Assumed position
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Derived
	Dip        float64          `json:"dip"`
	Refraction float64          `json:"refraction"`
	SD         float64          `json:"sd"`
	HP         float64          `json:"hp"`
	Ho         float64          `json:"ho"`
	LHA        float64          `json:"lha"`
	Hc         float64          `json:"hc"`
	Zn         float64          `json:"zn"`
	Intercept  float64          `json:"intercept"`
	Direction  celnav.Direction `json:"direction"`
}

// New builds an active sight from a complete worksheet and its result.
func New(ws celnav.Worksheet, r celnav.Result, now time.Time) (Sight, error) {
	if !ws.Computable() {
		return Sight{}, celnav.ErrInsufficientData
	}

	obs, pos := *ws.Observation, *ws.Position
	return Sight{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC(),
		Active:    true,

		Hs:          ws.Reading.Hs,
		IC:          ws.Reading.IC,
		EyeHeightFt: ws.Reading.EyeHeightFt,
		Limb:        ws.Reading.Limb,

		Body:             obs.Body,
		UTC:              obs.UTC,
		GHA:              obs.GHA,
		Dec:              obs.Dec,
		Distance:         obs.Distance,
		EquatorialRadius: obs.EquatorialRadius,

		Lat: pos.Lat,
		Lon: pos.Lon,

		Dip:        r.Corrections.Dip,
		Refraction: r.Corrections.Refraction,
		SD:         r.Corrections.SD,
		HP:         r.Corrections.HP,
		Ho:         r.Corrections.Ho,
		LHA:        r.Reduction.LHA,
		Hc:         r.Reduction.Hc,
		Zn:         r.Reduction.Zn,
		Intercept:  r.Intercept.Distance,
		Direction:  r.Intercept.Direction,
	}, nil
}

// Position returns the assumed position the sight was reduced from.
func (s Sight) Position() celnav.Position {
	return celnav.Position{Lat: s.Lat, Lon: s.Lon}
}

// Worksheet rebuilds the inputs of the sight.
func (s Sight) Worksheet() celnav.Worksheet {
	pos := s.Position()
	return celnav.Worksheet{
		Reading: celnav.SextantReading{
			Hs:          s.Hs,
			IC:          s.IC,
			EyeHeightFt: s.EyeHeightFt,
			Limb:        s.Limb,
		},
		Observation: &celnav.Observation{
			Body:             s.Body,
			UTC:              s.UTC,
			GHA:              s.GHA,
			Dec:              s.Dec,
			Distance:         s.Distance,
			EquatorialRadius: s.EquatorialRadius,
		},
		Position: &pos,
	}
}

// LineOfPosition recomputes the plottable segment from the stored Zn and
// intercept.
func (s Sight) LineOfPosition() celnav.LineOfPosition {
	return celnav.ComputeLineOfPosition(s.Position(), s.Zn, s.Intercept)
}

// Active filters sights down to the active ones, preserving order.
func Active(sights []Sight) []Sight {
	var out []Sight
	for _, s := range sights {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}
