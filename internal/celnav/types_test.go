package celnav

import (
	"encoding/json"
	"testing"
)

func TestParseLimb(t *testing.T) {
	tests := []struct {
		in   string
		want Limb
	}{
		{"lower", LimbLower},
		{"LL", LimbLower},
		{"upper", LimbUpper},
		{"u", LimbUpper},
		{"center", LimbCenter},
		{"", LimbCenter},
		{"sideways", LimbCenter},
	}

	for _, tt := range tests {
		if got := ParseLimb(tt.in); got != tt.want {
			t.Errorf("ParseLimb(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLimbText(t *testing.T) {
	for _, l := range []Limb{LimbCenter, LimbLower, LimbUpper} {
		b, err := l.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Limb
		if err := back.UnmarshalText(b); err != nil || back != l {
			t.Errorf("limb %v did not survive text encoding: %v, %v", l, back, err)
		}
	}

	var l Limb
	if err := l.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("expected error for unknown limb")
	}
}

func TestDirectionJSON(t *testing.T) {
	b, err := json.Marshal(struct{ D Direction }{Away})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"D":"away"}` {
		t.Errorf("json = %s", b)
	}

	var v struct{ D Direction }
	if err := json.Unmarshal([]byte(`{"D":"towards"}`), &v); err != nil || v.D != Towards {
		t.Errorf("unmarshal = %v, %v", v.D, err)
	}
	if err := json.Unmarshal([]byte(`{"D":"sideways"}`), &v); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestObservation_IsMoon(t *testing.T) {
	for name, want := range map[string]bool{"Moon": true, "moon": true, "MOON": true, "Sun": false, "": false} {
		if got := (Observation{Body: name}).IsMoon(); got != want {
			t.Errorf("IsMoon(%q) = %v, want %v", name, got, want)
		}
	}
}
