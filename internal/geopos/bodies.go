package geopos

import (
	"strings"

	"github.com/litescript/ls-sights/internal/celnav"
)

// Kind classifies a body for correction purposes.
type Kind int

const (
	KindSun Kind = iota
	KindMoon
	KindPlanet
	KindStar
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSun:
		return "sun"
	case KindMoon:
		return "moon"
	case KindPlanet:
		return "planet"
	case KindStar:
		return "star"
	default:
		return "unknown"
	}
}

// Body describes an observable body.
type Body struct {
	Name               string
	Kind               Kind
	NAIFID             int     // NAIF SPICE ID; 0 for stars
	EquatorialRadiusKm float64 // Only the Sun and Moon get a semi-diameter correction
}

// Bodies is the catalog of navigational bodies, Sun, Moon and planets
// first, then the navigational stars.
var Bodies = []Body{
	{Name: "Sun", Kind: KindSun, NAIFID: 10, EquatorialRadiusKm: celnav.EquatorialRadiusSun},
	{Name: "Moon", Kind: KindMoon, NAIFID: 301, EquatorialRadiusKm: celnav.EquatorialRadiusMoon},
	{Name: "Venus", Kind: KindPlanet, NAIFID: 299},
	{Name: "Mars", Kind: KindPlanet, NAIFID: 499},
	{Name: "Jupiter", Kind: KindPlanet, NAIFID: 599},
	{Name: "Saturn", Kind: KindPlanet, NAIFID: 699},

	{Name: "Acamar", Kind: KindStar},
	{Name: "Achernar", Kind: KindStar},
	{Name: "Acrux", Kind: KindStar},
	{Name: "Adhara", Kind: KindStar},
	{Name: "Aldebaran", Kind: KindStar},
	{Name: "Alioth", Kind: KindStar},
	{Name: "Alkaid", Kind: KindStar},
	{Name: "Al Na'ir", Kind: KindStar},
	{Name: "Alnilam", Kind: KindStar},
	{Name: "Alphard", Kind: KindStar},
	{Name: "Alphecca", Kind: KindStar},
	{Name: "Alpheratz", Kind: KindStar},
	{Name: "Altair", Kind: KindStar},
	{Name: "Ankaa", Kind: KindStar},
	{Name: "Antares", Kind: KindStar},
	{Name: "Arcturus", Kind: KindStar},
	{Name: "Atria", Kind: KindStar},
	{Name: "Avior", Kind: KindStar},
	{Name: "Bellatrix", Kind: KindStar},
	{Name: "Betelgeuse", Kind: KindStar},
	{Name: "Canopus", Kind: KindStar},
	{Name: "Capella", Kind: KindStar},
	{Name: "Deneb", Kind: KindStar},
	{Name: "Denebola", Kind: KindStar},
	{Name: "Diphda", Kind: KindStar},
	{Name: "Dubhe", Kind: KindStar},
	{Name: "Elnath", Kind: KindStar},
	{Name: "Eltanin", Kind: KindStar},
	{Name: "Enif", Kind: KindStar},
	{Name: "Fomalhaut", Kind: KindStar},
	{Name: "Gacrux", Kind: KindStar},
	{Name: "Gienah", Kind: KindStar},
	{Name: "Hadar", Kind: KindStar},
	{Name: "Hamal", Kind: KindStar},
	{Name: "Kaus Australis", Kind: KindStar},
	{Name: "Kochab", Kind: KindStar},
	{Name: "Markab", Kind: KindStar},
	{Name: "Menkar", Kind: KindStar},
	{Name: "Menkent", Kind: KindStar},
	{Name: "Miaplacidus", Kind: KindStar},
	{Name: "Mirfak", Kind: KindStar},
	{Name: "Nunki", Kind: KindStar},
	{Name: "Peacock", Kind: KindStar},
	{Name: "Polaris", Kind: KindStar},
	{Name: "Pollux", Kind: KindStar},
	{Name: "Procyon", Kind: KindStar},
	{Name: "Rasalhague", Kind: KindStar},
	{Name: "Regulus", Kind: KindStar},
	{Name: "Rigel", Kind: KindStar},
	{Name: "Rigil Kentaurus", Kind: KindStar},
	{Name: "Sabik", Kind: KindStar},
	{Name: "Schedar", Kind: KindStar},
	{Name: "Shaula", Kind: KindStar},
	{Name: "Sirius", Kind: KindStar},
	{Name: "Spica", Kind: KindStar},
	{Name: "Suhail", Kind: KindStar},
	{Name: "Vega", Kind: KindStar},
	{Name: "Zubenelgenubi", Kind: KindStar},
}

// BodiesByName maps lowercase body names to catalog entries.
var BodiesByName = func() map[string]Body {
	m := make(map[string]Body, len(Bodies))
	for _, b := range Bodies {
		m[normalize(b.Name)] = b
	}
	return m
}()

// LookupBody returns the catalog entry for a body name (case-insensitive).
func LookupBody(name string) (Body, bool) {
	b, ok := BodiesByName[normalize(name)]
	return b, ok
}

// IsMoon reports whether name refers to the Moon.
func IsMoon(name string) bool {
	b, ok := LookupBody(name)
	return ok && b.Kind == KindMoon
}

// NeedsDistance reports whether reducing a sight of the named body depends
// on its distance: the semi-diameter and parallax of the Sun and Moon.
func NeedsDistance(name string) bool {
	b, ok := LookupBody(name)
	return ok && (b.Kind == KindSun || b.Kind == KindMoon)
}

// BodyNames returns the catalog names in display order.
func BodyNames() []string {
	names := make([]string, len(Bodies))
	for i, b := range Bodies {
		names[i] = b.Name
	}
	return names
}

// normalize converts a body name to its lookup key.
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
