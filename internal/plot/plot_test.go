package plot

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"

	"github.com/litescript/ls-sights/internal/celnav"
	"github.com/litescript/ls-sights/internal/sight"
)

var assumed = celnav.Position{Lat: 30, Lon: -40}

func testSight(id string, zn, intercept float64, active bool) sight.Sight {
	return sight.Sight{
		ID:        id,
		Active:    active,
		Body:      "Body " + id,
		Lat:       assumed.Lat,
		Lon:       assumed.Lon,
		Zn:        zn,
		Intercept: intercept,
		Direction: celnav.Towards,
	}
}

// crossingSights lay off one line 6 nm north (running east-west) and one
// 4 nm east (running north-south) of the assumed position.
func crossingSights() []sight.Sight {
	return []sight.Sight{
		testSight("a", 180, 6, true),
		testSight("b", 270, 4, true),
	}
}

func TestNew(t *testing.T) {
	sights := append(crossingSights(), testSight("c", 45, 2, false))
	p := New(sights, nil)

	if len(p.Lines) != 2 {
		t.Fatalf("Lines = %d, want 2 (inactive sight skipped)", len(p.Lines))
	}
	if p.Lines[0].Sight.ID != "a" || p.Lines[1].Sight.ID != "b" {
		t.Errorf("line order = %s, %s", p.Lines[0].Sight.ID, p.Lines[1].Sight.ID)
	}
	if p.Assumed == nil || *p.Assumed != assumed {
		t.Errorf("Assumed = %+v, want %+v", p.Assumed, assumed)
	}
	if p.Fix == nil {
		t.Fatal("Fix should be estimated from two crossing lines")
	}

	want := p.Lines[0].Sight.LineOfPosition()
	if p.Lines[0].LOP != want {
		t.Errorf("LOP = %+v, want %+v", p.Lines[0].LOP, want)
	}
}

func TestNew_ExplicitAssumed(t *testing.T) {
	other := celnav.Position{Lat: 31, Lon: -41}
	p := New(crossingSights(), &other)
	if *p.Assumed != other {
		t.Errorf("Assumed = %+v, want %+v", p.Assumed, other)
	}

	other.Lat = 0
	if p.Assumed.Lat != 31 {
		t.Error("Plot should keep its own copy of the assumed position")
	}
}

func TestNew_NoActiveSights(t *testing.T) {
	p := New([]sight.Sight{testSight("a", 0, 1, false)}, nil)
	if len(p.Lines) != 0 || p.Assumed != nil || p.Fix != nil {
		t.Errorf("expected empty plot, got %+v", p)
	}
}

func TestEstimateFix(t *testing.T) {
	tests := []struct {
		name   string
		sights []sight.Sight
		want   celnav.Position
		wantOK bool
	}{
		{
			name: "crossing at assumed position",
			sights: []sight.Sight{
				testSight("a", 0, 0, true),
				testSight("b", 90, 0, true),
			},
			want:   assumed,
			wantOK: true,
		},
		{
			name:   "offset crossing",
			sights: crossingSights(),
			want: celnav.Position{
				Lat: assumed.Lat + 6/nmPerDegree,
				Lon: assumed.Lon + 4/(math.Cos(celnav.Radians(assumed.Lat))*nmPerDegree),
			},
			wantOK: true,
		},
		{
			name: "parallel lines",
			sights: []sight.Sight{
				testSight("a", 0, 0, true),
				testSight("b", 180, 5, true),
			},
			wantOK: false,
		},
		{
			name:   "single line",
			sights: []sight.Sight{testSight("a", 0, 3, true)},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.sights, nil)
			got, ok := EstimateFix(p.Lines)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if math.Abs(got.Lat-tt.want.Lat) > 1e-3 || math.Abs(got.Lon-tt.want.Lon) > 1e-3 {
				t.Errorf("EstimateFix() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEstimateFix_AcrossDateLine(t *testing.T) {
	near := func(id string, zn float64, lon float64) sight.Sight {
		s := testSight(id, zn, 0, true)
		s.Lon = lon
		return s
	}
	p := New([]sight.Sight{near("a", 0, 179.99), near("b", 90, -179.99)}, nil)

	fix, ok := EstimateFix(p.Lines)
	if !ok {
		t.Fatal("expected a fix")
	}
	if d := math.Abs(wrapLon(fix.Lon - 179.99)); d > 0.05 {
		t.Errorf("fix longitude %v is far from the date line", fix.Lon)
	}
}

func TestPlot_SetFix(t *testing.T) {
	p := New(crossingSights(), nil)
	manual := celnav.Position{Lat: 30.5, Lon: -40.5}
	p.SetFix(manual)
	if *p.Fix != manual {
		t.Errorf("Fix = %+v, want %+v", p.Fix, manual)
	}
}

func TestWrapLon(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{190, -170},
		{-190, 170},
		{359.98, -0.02},
		{180, -180},
	}
	for _, tt := range tests {
		if got := wrapLon(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("wrapLon(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPlot_GeoJSON(t *testing.T) {
	p := New(crossingSights(), nil)

	data, err := p.GeoJSON()
	if err != nil {
		t.Fatalf("GeoJSON() error: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("UnmarshalFeatureCollection() error: %v", err)
	}

	counts := map[string]int{}
	for _, f := range fc.Features {
		kind, _ := f.Properties["kind"].(string)
		counts[kind]++

		switch kind {
		case KindLOP:
			if f.Geometry.GeoJSONType() != "LineString" {
				t.Errorf("LOP geometry = %s", f.Geometry.GeoJSONType())
			}
		case KindIntercept, KindAssumed, KindFix:
			if f.Geometry.GeoJSONType() != "Point" {
				t.Errorf("%s geometry = %s", kind, f.Geometry.GeoJSONType())
			}
		}
	}

	want := map[string]int{KindLOP: 2, KindIntercept: 2, KindAssumed: 1, KindFix: 1}
	for k, n := range want {
		if counts[k] != n {
			t.Errorf("%s features = %d, want %d", k, counts[k], n)
		}
	}

	var buf bytes.Buffer
	if err := p.WriteGeoJSON(&buf); err != nil {
		t.Fatalf("WriteGeoJSON() error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Error("WriteGeoJSON output differs from GeoJSON()")
	}
}

func TestPlot_GeoJSONLonLatOrder(t *testing.T) {
	p := New([]sight.Sight{testSight("a", 0, 0, true)}, nil)
	fc := p.FeatureCollection()

	for _, f := range fc.Features {
		if f.Properties["kind"] != KindAssumed {
			continue
		}
		data, err := f.MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON() error: %v", err)
		}
		if !strings.Contains(string(data), "[-40,30]") {
			t.Errorf("assumed point should be [lon,lat], got %s", data)
		}
		return
	}
	t.Fatal("no assumed feature")
}

func TestPlot_RenderASCII(t *testing.T) {
	p := New(crossingSights(), nil)
	out := p.RenderASCII(40, 15)

	rows := strings.Split(out, "\n")
	if len(rows) != 15 {
		t.Fatalf("rows = %d, want 15", len(rows))
	}
	for i, r := range rows {
		if n := len([]rune(r)); n > 40 {
			t.Errorf("row %d has %d columns, want <= 40", i, n)
		}
	}
	for _, sym := range []string{"1", "2", "+", "X", "o"} {
		if !strings.Contains(out, sym) {
			t.Errorf("plot missing %q:\n%s", sym, out)
		}
	}
}

func TestPlot_RenderASCIIEmpty(t *testing.T) {
	if got := (Plot{}).RenderASCII(40, 10); got != "No active sights to plot" {
		t.Errorf("RenderASCII() = %q", got)
	}
}
