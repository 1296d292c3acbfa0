package geopos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// AutoProvider tries each provider in order and returns the first success.
type AutoProvider struct {
	providers []Provider
}

// NewAutoProvider creates a fallback chain.
func NewAutoProvider(providers ...Provider) *AutoProvider {
	return &AutoProvider{providers: providers}
}

// Name implements Provider.
func (a *AutoProvider) Name() string {
	names := make([]string, len(a.providers))
	for i, p := range a.providers {
		names[i] = p.Name()
	}
	return "auto(" + strings.Join(names, ",") + ")"
}

// Providers returns the chain in lookup order.
func (a *AutoProvider) Providers() []Provider {
	return a.providers
}

// Lookup implements Provider. Every failure is joined into the returned error.
func (a *AutoProvider) Lookup(ctx context.Context, body string, t time.Time) (GeoPosition, error) {
	if len(a.providers) == 0 {
		return GeoPosition{}, fmt.Errorf("%w: no providers configured", ErrLookupFailed)
	}

	var errs []error
	for _, p := range a.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		gp, err := p.Lookup(ctx, body, t)
		if err == nil {
			return gp, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}

	return GeoPosition{}, fmt.Errorf("%w: %w", ErrLookupFailed, errors.Join(errs...))
}
