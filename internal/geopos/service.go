package geopos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultServiceURL is where a locally run geographic-position service listens.
	DefaultServiceURL = "http://localhost:8080"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second
)

// ServiceProvider queries a geographic-position web service:
//
//	GET <base>/?body=<name>&utc=<unix seconds>
//
// which answers with a GeoPosition JSON document.
type ServiceProvider struct {
	client  *http.Client
	url     string
	timeout time.Duration
}

// ServiceOption configures a ServiceProvider.
type ServiceOption func(*ServiceProvider)

// WithURL sets the service base URL.
func WithURL(url string) ServiceOption {
	return func(p *ServiceProvider) {
		p.url = url
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) ServiceOption {
	return func(p *ServiceProvider) {
		p.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ServiceOption {
	return func(p *ServiceProvider) {
		p.client = client
	}
}

// NewServiceProvider creates a new service client.
func NewServiceProvider(opts ...ServiceOption) *ServiceProvider {
	p := &ServiceProvider{
		url:     DefaultServiceURL,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		p.client = &http.Client{
			Timeout: p.timeout,
		}
	}

	return p
}

// Name implements Provider.
func (p *ServiceProvider) Name() string {
	return "service"
}

// URL returns the configured base URL.
func (p *ServiceProvider) URL() string {
	return p.url
}

// Lookup implements Provider.
func (p *ServiceProvider) Lookup(ctx context.Context, body string, t time.Time) (GeoPosition, error) {
	raw, err := p.fetchRaw(ctx, body, t)
	if err != nil {
		return GeoPosition{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	var gp GeoPosition
	if err := json.Unmarshal(raw, &gp); err != nil {
		return GeoPosition{}, fmt.Errorf("%w: decode response: %w", ErrLookupFailed, err)
	}
	if err := validate(gp); err != nil {
		return GeoPosition{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	if gp.Body == "" {
		gp.Body = body
	}

	return gp, nil
}

func (p *ServiceProvider) fetchRaw(ctx context.Context, body string, t time.Time) ([]byte, error) {
	params := url.Values{}
	params.Set("body", body)
	params.Set("utc", formatUnixSeconds(t))

	reqURL := strings.TrimRight(p.url, "/") + "/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch position: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return raw, nil
}

// formatUnixSeconds renders t as fractional Unix seconds with millisecond
// resolution, e.g. "1671742800.25".
func formatUnixSeconds(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMilli())/1000, 'f', -1, 64)
}

// validate rejects positions the reduction cannot use.
func validate(gp GeoPosition) error {
	if gp.GHA < 0 || gp.GHA >= 360 {
		return fmt.Errorf("GHA out of range: %v", gp.GHA)
	}
	if gp.Dec < -90 || gp.Dec > 90 {
		return fmt.Errorf("declination out of range: %v", gp.Dec)
	}
	if gp.Distance < 0 {
		return fmt.Errorf("negative distance: %v", gp.Distance)
	}
	return nil
}
