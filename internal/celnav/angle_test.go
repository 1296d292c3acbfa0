package celnav

import (
	"math"
	"testing"
)

func TestAngle(t *testing.T) {
	tests := []struct {
		name    string
		degrees int
		minutes float64
		sign    int
		want    float64
	}{
		{"north latitude", 19, 0.0, North, 19.0},
		{"west longitude", 156, 30.0, West, -156.5},
		{"south declination", 23, 24.12, South, -23.402},
		{"zero", 0, 0, North, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Angle(tt.degrees, tt.minutes, tt.sign)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Angle(%d, %v, %d) = %v, want %v", tt.degrees, tt.minutes, tt.sign, got, tt.want)
			}
		})
	}
}

func TestDecompose_RoundTrip(t *testing.T) {
	for _, sign := range []int{North, South} {
		for deg := 0; deg < 360; deg += 7 {
			for min := 0.0; min < 60; min += 3.37 {
				want := RoundHalfUp(min, 2)
				if want >= 60 {
					continue
				}
				d, m, s := Decompose(Angle(deg, min, sign), 2)
				wantSign := sign
				if deg == 0 && want == 0 {
					wantSign = 1
				}
				if d != deg || math.Abs(m-want) > 1e-9 || s != wantSign {
					t.Fatalf("Decompose(Angle(%d, %v, %d)) = (%d, %v, %d)", deg, min, sign, d, m, s)
				}
			}
		}
	}
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name      string
		angle     float64
		precision int
		wantDeg   int
		wantMin   float64
		wantSign  int
	}{
		{"positive", 43.33, 1, 43, 19.8, 1},
		{"negative", -23.402, 2, 23, 24.12, -1},
		{"carry to next degree", 10.99999, 2, 11, 0, 1},
		{"zero", 0, 2, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, m, s := Decompose(tt.angle, tt.precision)
			if d != tt.wantDeg || math.Abs(m-tt.wantMin) > 1e-9 || s != tt.wantSign {
				t.Errorf("Decompose(%v) = (%d, %v, %d), want (%d, %v, %d)",
					tt.angle, d, m, s, tt.wantDeg, tt.wantMin, tt.wantSign)
			}
			if m < 0 || m >= 60 {
				t.Errorf("minutes out of range: %v", m)
			}
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		v         float64
		precision int
		want      float64
	}{
		{2.675, 2, 2.68}, // binary float rounding would give 2.67
		{-1.25, 1, -1.3},
		{0.05, 1, 0.1},
		{3.0674, 1, 3.1},
		{4.925, 2, 4.93},
		{16.149, 1, 16.1},
	}

	for _, tt := range tests {
		got := RoundHalfUp(tt.v, tt.precision)
		if got != tt.want {
			t.Errorf("RoundHalfUp(%v, %d) = %v, want %v", tt.v, tt.precision, got, tt.want)
		}
	}

	if !math.IsNaN(RoundHalfUp(math.NaN(), 1)) {
		t.Error("RoundHalfUp(NaN) should stay NaN")
	}
	if !math.IsInf(RoundHalfUp(math.Inf(1), 1), 1) {
		t.Error("RoundHalfUp(+Inf) should stay +Inf")
	}
}

func TestAddWrapped(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{154.2, 180, 334.2},
		{334.2, 90, 64.2},
		{180, 180, 0},
		{0, 0, 0},
		{359.9, 0.1, 0},
	}

	for _, tt := range tests {
		got := AddWrapped(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AddWrapped(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	for a := 0.0; a < 360; a += 11.3 {
		for b := 0.0; b < 360; b += 13.7 {
			got := AddWrapped(a, b)
			if got < 0 || got >= 360 {
				t.Fatalf("AddWrapped(%v, %v) = %v, out of [0, 360)", a, b, got)
			}
		}
	}
}

func TestAddWrapped_NegativeSumNotNormalized(t *testing.T) {
	if got := AddWrapped(10, -30); got != -20 {
		t.Errorf("AddWrapped(10, -30) = %v, want -20", got)
	}
}

func TestFormatDM(t *testing.T) {
	tests := []struct {
		angle     float64
		pos, neg  string
		precision int
		want      string
	}{
		{19.0, "N", "S", 1, "N19°00.0'"},
		{-156.0, "E", "W", 1, "W156°00.0'"},
		{-23.402, "N", "S", 2, "S23°24.12'"},
		{43.33, "", "", 1, "43°19.8'"},
		{-0.5, "", "", 1, "-0°30.0'"},
	}

	for _, tt := range tests {
		got := FormatDM(tt.angle, tt.pos, tt.neg, tt.precision)
		if got != tt.want {
			t.Errorf("FormatDM(%v) = %q, want %q", tt.angle, got, tt.want)
		}
	}
}

func TestParseDM(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{input: "43 40.0", want: Angle(43, 40, North)},
		{input: "N19 00.0", want: 19},
		{input: "W156 00.0", want: -156},
		{input: "156 30 W", want: -156.5},
		{input: "S23°24.12'", want: -23.402},
		{input: "-23.402", want: -23.402},
		{input: "135.818", want: 135.818},
		{input: "-5 30", want: -5.5},
		{input: "", wantErr: true},
		{input: "12 75", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "1 2 3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDM(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDM(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDM(%q) unexpected error: %v", tt.input, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseDM(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
