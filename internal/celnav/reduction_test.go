package celnav

import (
	"math"
	"testing"
)

func TestLocalHourAngle(t *testing.T) {
	tests := []struct {
		name string
		gha  float64
		lon  float64
		want float64
	}{
		{"west wraps below zero", Angle(135, 49.1, North), Angle(156, 0, West), 339.8183333333},
		{"west", 300, -100, 200},
		{"east", 100, 50, 150},
		{"east wraps past 360", 350, 20, 10},
		{"greenwich", 42, 0, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LocalHourAngle(tt.gha, tt.lon)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("LocalHourAngle(%v, %v) = %v, want %v", tt.gha, tt.lon, got, tt.want)
			}
			if got < 0 || got >= 360 {
				t.Errorf("LHA out of range: %v", got)
			}
		})
	}
}

func TestCalculateSightReduction(t *testing.T) {
	tests := []struct {
		name           string
		dec, lat, lha  float64
		wantHc, wantZn float64
		tolHc, tolZn   float64
	}{
		{
			name:   "contrary name, north latitude",
			dec:    Angle(23, 24.12, South),
			lat:    Angle(19, 0, North),
			lha:    339.8183333333,
			wantHc: Angle(43, 14.87, North),
			wantZn: Angle(154, 14.1, North),
			tolHc:  0.001,
			tolZn:  0.001,
		},
		{
			name:   "same name, north latitude, body west",
			dec:    Angle(8, 48.87, North),
			lat:    Angle(44, 36, North),
			lha:    304.6865,
			wantHc: 30.531591950,
			wantZn: 109.375416923,
			tolHc:  1e-6,
			tolZn:  1e-6,
		},
		{
			name:   "zero declination, south latitude",
			dec:    0,
			lat:    -30,
			lha:    60,
			wantHc: 25.658906273,
			wantZn: 253.897886248,
			tolHc:  1e-6,
			tolZn:  1e-6,
		},
		{
			name:   "zero declination, north latitude",
			dec:    0,
			lat:    30,
			lha:    60,
			wantHc: 25.658906273,
			wantZn: 253.897886248,
			tolHc:  1e-6,
			tolZn:  1e-6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc, z, zn := CalculateSightReduction(tt.dec, tt.lat, tt.lha)
			if math.Abs(hc-tt.wantHc) > tt.tolHc {
				t.Errorf("Hc = %v, want %v", hc, tt.wantHc)
			}
			if math.Abs(zn-tt.wantZn) > tt.tolZn {
				t.Errorf("Zn = %v, want %v", zn, tt.wantZn)
			}
			if z < 0 || z > 180 {
				t.Errorf("Z out of range: %v", z)
			}
		})
	}
}

func TestCalculateSightReduction_LHA180(t *testing.T) {
	// LHA exactly 180 takes the ">= 180" branch for both hemispheres.
	_, z, zn := CalculateSightReduction(10, 30, 180)
	if math.Abs(z) > 1e-6 || math.Abs(zn) > 1e-6 {
		t.Errorf("north: Z = %v, Zn = %v, want 0, 0", z, zn)
	}

	_, z, zn = CalculateSightReduction(10, -30, 180)
	if math.Abs(z) > 1e-6 || math.Abs(zn-180) > 1e-6 {
		t.Errorf("south: Z = %v, Zn = %v, want 0, 180", z, zn)
	}

	// Repeated calls never flap between branches.
	for i := 0; i < 100; i++ {
		_, _, again := CalculateSightReduction(10, -30, 180)
		if again != zn {
			t.Fatalf("Zn changed between calls: %v != %v", again, zn)
		}
	}
}

func TestCalculateSightReduction_Degenerate(t *testing.T) {
	tests := []struct {
		name          string
		dec, lat, lha float64
	}{
		{"all zero", 0, 0, 0},
		{"body at zenith", 19, 19, 0},
		{"north pole", 20, 90, 45},
		{"south pole", 20, -90, 200},
		{"equator, LHA 90", 0, 0, 90},
		{"equator, LHA 270", 0, 0, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc, z, zn := CalculateSightReduction(tt.dec, tt.lat, tt.lha)
			for _, v := range []float64{hc, z, zn} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("got non-finite result: Hc=%v Z=%v Zn=%v", hc, z, zn)
				}
			}
			if hc < -90 || hc > 90 {
				t.Errorf("Hc out of range: %v", hc)
			}
			if zn < 0 || zn >= 360 {
				t.Errorf("Zn out of range: %v", zn)
			}
		})
	}

	hc, _, zn := CalculateSightReduction(0, 0, 0)
	if math.Abs(hc-90) > 1e-9 || zn != 0 {
		t.Errorf("zenith: Hc = %v, Zn = %v, want 90, 0", hc, zn)
	}
}

func TestReduceSight(t *testing.T) {
	obs := Observation{
		Body: "Sun",
		GHA:  Angle(135, 49.1, North),
		Dec:  Angle(23, 24.12, South),
	}
	pos := Position{Lat: Angle(19, 0, North), Lon: Angle(156, 0, West)}

	got := ReduceSight(obs, pos)

	if math.Abs(got.LHA-339.8183333333) > 1e-6 {
		t.Errorf("LHA = %v", got.LHA)
	}
	if math.Abs(got.Hc-Angle(43, 14.87, North)) > 0.001 {
		t.Errorf("Hc = %v", got.Hc)
	}
	if math.Abs(got.Zn-Angle(154, 14.1, North)) > 0.001 {
		t.Errorf("Zn = %v", got.Zn)
	}
	if math.Abs(got.Z-got.Zn) > 1e-9 {
		t.Errorf("north latitude with LHA >= 180 should give Zn = Z, got Z=%v Zn=%v", got.Z, got.Zn)
	}
}
