package state

import (
	"github.com/litescript/ls-sights/internal/celnav"
	"github.com/litescript/ls-sights/internal/geopos"
)

// GPEntry is a geographic position typed in by hand, one value at a time.
// It only reaches the reduction once it is complete.
type GPEntry struct {
	GHA      float64
	Dec      float64
	Distance float64 // km

	HasGHA      bool
	HasDec      bool
	HasDistance bool
}

// Missing lists the values still needed for a sight of body. The distance is
// only required where the Sun or Moon corrections depend on it.
func (e GPEntry) Missing(body string) []string {
	var missing []string
	if !e.HasGHA {
		missing = append(missing, "GHA")
	}
	if !e.HasDec {
		missing = append(missing, "declination")
	}
	if !e.HasDistance && geopos.NeedsDistance(body) {
		missing = append(missing, "distance")
	}
	return missing
}

// Complete reports whether the entry can be reduced for body.
func (e GPEntry) Complete(body string) bool {
	return len(e.Missing(body)) == 0
}

func (e GPEntry) started() bool {
	return e.HasGHA || e.HasDec || e.HasDistance
}

func entryFrom(obs celnav.Observation) GPEntry {
	return GPEntry{
		GHA:         obs.GHA,
		Dec:         obs.Dec,
		Distance:    obs.Distance,
		HasGHA:      true,
		HasDec:      true,
		HasDistance: obs.Distance > 0,
	}
}
