// Package geopos looks up the geographic position (GHA, declination and
// distance) of a celestial body at the time of a sight.
package geopos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-sights/internal/celnav"
)

// ErrLookupFailed wraps every provider failure.
var ErrLookupFailed = errors.New("could not look up geographic position")

// GeoPosition is a body's geographic position as served by a lookup backend.
type GeoPosition struct {
	UTC      string  `json:"utc"`
	Body     string  `json:"body"`
	GHA      float64 `json:"GHA"`
	Dec      float64 `json:"dec"`
	Distance float64 `json:"distance"` // km
}

// Provider defines the interface for geographic position sources.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Lookup returns the position of body at time t. Errors wrap ErrLookupFailed.
	Lookup(ctx context.Context, body string, t time.Time) (GeoPosition, error)
}

// Observation converts a looked-up position into the reduction input,
// filling in the equatorial radius from the body catalog.
func Observation(gp GeoPosition) celnav.Observation {
	var radius float64
	if b, ok := LookupBody(gp.Body); ok {
		radius = b.EquatorialRadiusKm
	}
	return celnav.Observation{
		Body:             gp.Body,
		UTC:              gp.UTC,
		GHA:              gp.GHA,
		Dec:              gp.Dec,
		Distance:         gp.Distance,
		EquatorialRadius: radius,
	}
}

// Mode represents which lookup source to use.
type Mode int

const (
	ModeService  Mode = iota // Use the geographic-position web service
	ModeHorizons             // Use JPL Horizons
	ModeAuto                 // Try the service, fall back to Horizons
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeService:
		return "service"
	case ModeHorizons:
		return "horizons"
	case ModeAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string.
func ParseMode(s string) Mode {
	switch s {
	case "service":
		return ModeService
	case "horizons":
		return ModeHorizons
	case "auto":
		return ModeAuto
	default:
		return ModeAuto
	}
}

// ForMode builds the provider for a mode. In auto mode the service is only
// tried when serviceURL is set.
func ForMode(mode Mode, serviceURL string) Provider {
	switch mode {
	case ModeService:
		if serviceURL == "" {
			return NewServiceProvider()
		}
		return NewServiceProvider(WithURL(serviceURL))
	case ModeHorizons:
		return NewHorizonsProvider()
	default:
		if serviceURL == "" {
			return NewAutoProvider(NewHorizonsProvider())
		}
		return NewAutoProvider(NewServiceProvider(WithURL(serviceURL)), NewHorizonsProvider())
	}
}

// TimeLayout is the canonical way a sight time is written.
const TimeLayout = "2006-01-02 15:04:05"

var timeLayouts = []string{
	TimeLayout,
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// ParseUTC parses a sight time. Times without a zone are UTC.
func ParseUTC(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, want %s", s, TimeLayout)
}
