package celnav

import "testing"

func TestVisibilityAt(t *testing.T) {
	tests := []struct {
		name     string
		lat, dec float64
		want     Visibility
	}{
		{"polaris from the north", 45, Angle(89, 21, North), AlwaysAboveHorizon},
		{"polaris from the south", -10, Angle(89, 21, North), AlwaysBelowHorizon},
		{"acrux from the south", -40, Angle(63, 13, South), AlwaysAboveHorizon},
		{"acrux from the north", 40, Angle(63, 13, South), AlwaysBelowHorizon},
		{"midnight sun", 70, 23.4, AlwaysAboveHorizon},
		{"polar night", 70, -23.4, AlwaysBelowHorizon},
		{"sun at mid latitude", 44.6, -23.4, RisesAndSets},
		{"equator", 0, 60, RisesAndSets},
		{"zero declination at the pole", 90, 0, RisesAndSets},
		{"exactly on the limit", 60, 30, RisesAndSets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VisibilityAt(tt.lat, tt.dec); got != tt.want {
				t.Errorf("VisibilityAt(%v, %v) = %v, want %v", tt.lat, tt.dec, got, tt.want)
			}
		})
	}
}
