package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/litescript/ls-sights/internal/celnav"
	"github.com/litescript/ls-sights/internal/geopos"
)

type fakeProvider struct {
	err error
}

func (f fakeProvider) Name() string { return "fake" }

func (f fakeProvider) Lookup(ctx context.Context, body string, t time.Time) (geopos.GeoPosition, error) {
	if f.err != nil {
		return geopos.GeoPosition{}, f.err
	}
	return geopos.GeoPosition{Body: body, GHA: 1}, nil
}

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	return c, reg
}

func TestInstrumentProvider(t *testing.T) {
	c, _ := newTestCollector(t)

	ok := c.InstrumentProvider(fakeProvider{})
	bad := c.InstrumentProvider(fakeProvider{err: geopos.ErrLookupFailed})

	if ok.Name() != "fake" {
		t.Errorf("wrapped Name() = %q", ok.Name())
	}
	if gp, err := ok.Lookup(context.Background(), "Sun", time.Now()); err != nil || gp.Body != "Sun" {
		t.Fatalf("Lookup() = %+v, %v", gp, err)
	}
	ok.Lookup(context.Background(), "Moon", time.Now())
	if _, err := bad.Lookup(context.Background(), "Sun", time.Now()); !errors.Is(err, geopos.ErrLookupFailed) {
		t.Fatalf("error not passed through: %v", err)
	}

	if got := testutil.ToFloat64(c.Lookups.WithLabelValues("fake", "ok")); got != 2 {
		t.Errorf("lookups ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Lookups.WithLabelValues("fake", "error")); got != 1 {
		t.Errorf("lookups error = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(c.LookupDuration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestRecordReduction(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordReduction(nil)
	c.RecordReduction(nil)
	c.RecordReduction(celnav.ErrInsufficientData)
	c.RecordReduction(fmt.Errorf("wrapped: %w", celnav.ErrInsufficientData))
	c.RecordReduction(errors.New("other"))

	tests := []struct {
		outcome string
		want    float64
	}{
		{OutcomeOK, 2},
		{OutcomeInsufficient, 2},
		{OutcomeError, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(c.Reductions.WithLabelValues(tt.outcome)); got != tt.want {
			t.Errorf("reductions{outcome=%q} = %v, want %v", tt.outcome, got, tt.want)
		}
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.RecordReduction(nil)
	c.SetSightCounts(3, 1)

	p := fakeProvider{}
	if got := c.InstrumentProvider(p); got != geopos.Provider(p) {
		t.Error("nil collector should return the provider unchanged")
	}
	if c.Handler() == nil {
		t.Error("nil collector should still return a handler")
	}
}

func TestNewCollector_Reregister(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}
	if first.Lookups != second.Lookups {
		t.Error("re-registration should reuse the existing collector")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c, _ := newTestCollector(t)
	c.SetSightCounts(3, 2)
	c.RecordReduction(nil)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		"ls_sights_saved_sights 3",
		"ls_sights_active_sights 2",
		`ls_sights_reductions_total{outcome="ok"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
