package geopos

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubProvider struct {
	name  string
	gp    GeoPosition
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Lookup(ctx context.Context, body string, t time.Time) (GeoPosition, error) {
	s.calls++
	if s.err != nil {
		return GeoPosition{}, s.err
	}
	return s.gp, nil
}

func TestAutoProvider_FallsBack(t *testing.T) {
	first := &stubProvider{name: "service", err: errors.New("connection refused")}
	second := &stubProvider{name: "horizons", gp: GeoPosition{Body: "Sun", GHA: 42}}

	a := NewAutoProvider(first, second)
	gp, err := a.Lookup(context.Background(), "Sun", time.Now())
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if gp.GHA != 42 {
		t.Errorf("GHA = %v, want 42", gp.GHA)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d, %d; want 1, 1", first.calls, second.calls)
	}
}

func TestAutoProvider_StopsAtFirstSuccess(t *testing.T) {
	first := &stubProvider{name: "service", gp: GeoPosition{Body: "Sun", GHA: 1}}
	second := &stubProvider{name: "horizons", gp: GeoPosition{Body: "Sun", GHA: 2}}

	gp, err := NewAutoProvider(first, second).Lookup(context.Background(), "Sun", time.Now())
	if err != nil || gp.GHA != 1 {
		t.Fatalf("Lookup() = %+v, %v", gp, err)
	}
	if second.calls != 0 {
		t.Error("second provider should not be called")
	}
}

func TestAutoProvider_AllFail(t *testing.T) {
	cause := errors.New("offline")
	a := NewAutoProvider(
		&stubProvider{name: "service", err: cause},
		&stubProvider{name: "horizons", err: errors.New("unavailable")},
	)

	_, err := a.Lookup(context.Background(), "Sun", time.Now())
	if !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("err = %v, want ErrLookupFailed", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("err = %v, should wrap the individual failures", err)
	}
}

func TestAutoProvider_Empty(t *testing.T) {
	if _, err := NewAutoProvider().Lookup(context.Background(), "Sun", time.Now()); !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("err = %v, want ErrLookupFailed", err)
	}
}

func TestAutoProvider_CanceledContext(t *testing.T) {
	p := &stubProvider{name: "service", gp: GeoPosition{Body: "Sun"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAutoProvider(p).Lookup(ctx, "Sun", time.Now())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if p.calls != 0 {
		t.Error("provider called after cancellation")
	}
}
