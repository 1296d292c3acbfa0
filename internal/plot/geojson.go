package plot

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/litescript/ls-sights/internal/celnav"
)

// Feature kinds, stored in the "kind" property.
const (
	KindLOP       = "lop"
	KindIntercept = "intercept"
	KindAssumed   = "assumed"
	KindFix       = "fix"
)

func point(p celnav.Position) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// FeatureCollection returns the plot as GeoJSON features: one LineString per
// line of position plus Points for the intercepts, assumed position and fix.
func (p Plot) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i, l := range p.Lines {
		line := geojson.NewFeature(orb.LineString{
			point(l.LOP.Left),
			point(l.LOP.Intercept),
			point(l.LOP.Right),
		})
		line.ID = l.Sight.ID
		line.Properties["kind"] = KindLOP
		line.Properties["index"] = i + 1
		line.Properties["body"] = l.Sight.Body
		line.Properties["utc"] = l.Sight.UTC
		line.Properties["zn"] = l.Sight.Zn
		line.Properties["intercept_nm"] = l.Sight.Intercept
		line.Properties["direction"] = l.Sight.Direction.String()
		fc.Append(line)

		ip := geojson.NewFeature(point(l.LOP.Intercept))
		ip.Properties["kind"] = KindIntercept
		ip.Properties["index"] = i + 1
		ip.Properties["body"] = l.Sight.Body
		fc.Append(ip)
	}

	if p.Assumed != nil {
		f := geojson.NewFeature(point(*p.Assumed))
		f.Properties["kind"] = KindAssumed
		f.Properties["label"] = celnav.FormatDM(p.Assumed.Lat, "N", "S", 1) + " " + celnav.FormatDM(p.Assumed.Lon, "E", "W", 1)
		fc.Append(f)
	}

	if p.Fix != nil {
		f := geojson.NewFeature(point(*p.Fix))
		f.Properties["kind"] = KindFix
		f.Properties["label"] = celnav.FormatDM(p.Fix.Lat, "N", "S", 1) + " " + celnav.FormatDM(p.Fix.Lon, "E", "W", 1)
		fc.Append(f)
	}

	return fc
}

// GeoJSON returns the plot encoded as a GeoJSON FeatureCollection.
func (p Plot) GeoJSON() ([]byte, error) {
	data, err := p.FeatureCollection().MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}

// WriteGeoJSON writes the plot as GeoJSON to w.
func (p Plot) WriteGeoJSON(w io.Writer) error {
	data, err := p.GeoJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
