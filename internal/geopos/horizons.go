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
	"sync"
	"time"

	"github.com/litescript/ls-sights/internal/astro"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// HorizonsCacheTTL is how long a looked-up position is reused.
	HorizonsCacheTTL = 5 * time.Minute

	// AstronomicalUnitKm converts Horizons ranges to kilometers.
	AstronomicalUnitKm = 149597870.7
)

// HorizonsProvider queries JPL Horizons for geocentric apparent RA/Dec and
// range, and converts RA to a Greenwich Hour Angle. Only catalog bodies with
// a NAIF ID (Sun, Moon, planets) are available.
type HorizonsProvider struct {
	client *http.Client
	url    string

	mu    sync.RWMutex
	cache map[cacheKey]*cachedPosition
	now   func() time.Time
}

type cacheKey struct {
	naifID int
	unix   int64
}

type cachedPosition struct {
	pos       GeoPosition
	fetchedAt time.Time
}

// HorizonsOption configures a HorizonsProvider.
type HorizonsOption func(*HorizonsProvider)

// WithHorizonsURL overrides the Horizons API endpoint.
func WithHorizonsURL(u string) HorizonsOption {
	return func(p *HorizonsProvider) {
		p.url = u
	}
}

// WithHorizonsClient sets a custom HTTP client.
func WithHorizonsClient(c *http.Client) HorizonsOption {
	return func(p *HorizonsProvider) {
		p.client = c
	}
}

// NewHorizonsProvider creates a new Horizons API client.
func NewHorizonsProvider(opts ...HorizonsOption) *HorizonsProvider {
	p := &HorizonsProvider{
		url:   HorizonsAPIURL,
		cache: make(map[cacheKey]*cachedPosition),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: DefaultTimeout}
	}
	return p
}

// Name implements Provider.
func (p *HorizonsProvider) Name() string {
	return "horizons"
}

// Available returns true if Horizons can supply a position for the body.
func (p *HorizonsProvider) Available(body string) bool {
	b, ok := LookupBody(body)
	return ok && b.NAIFID != 0
}

// Lookup implements Provider.
// Returns a cached position if the same body and second were looked up recently.
func (p *HorizonsProvider) Lookup(ctx context.Context, body string, t time.Time) (GeoPosition, error) {
	b, ok := LookupBody(body)
	if !ok || b.NAIFID == 0 {
		return GeoPosition{}, fmt.Errorf("%w: %q is not available from horizons", ErrLookupFailed, body)
	}

	t = t.UTC().Truncate(time.Second)
	key := cacheKey{naifID: b.NAIFID, unix: t.Unix()}

	p.mu.RLock()
	cached, ok := p.cache[key]
	p.mu.RUnlock()

	if ok && p.now().Sub(cached.fetchedAt) < HorizonsCacheTTL {
		return cached.pos, nil
	}

	eq, err := p.queryHorizons(ctx, b.NAIFID, t)
	if err != nil {
		return GeoPosition{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	gp := GeoPosition{
		UTC:      t.Format("2006/01/02 15:04:05"),
		Body:     b.Name,
		GHA:      astro.GreenwichHourAngle(eq.raDeg, t),
		Dec:      eq.decDeg,
		Distance: eq.deltaAU * AstronomicalUnitKm,
	}

	p.mu.Lock()
	p.evictExpired()
	p.cache[key] = &cachedPosition{pos: gp, fetchedAt: p.now()}
	p.mu.Unlock()

	return gp, nil
}

// InvalidateCache clears all cached positions.
func (p *HorizonsProvider) InvalidateCache() {
	p.mu.Lock()
	p.cache = make(map[cacheKey]*cachedPosition)
	p.mu.Unlock()
}

// evictExpired drops stale entries. Caller holds p.mu.
func (p *HorizonsProvider) evictExpired() {
	now := p.now()
	for k, c := range p.cache {
		if now.Sub(c.fetchedAt) >= HorizonsCacheTTL {
			delete(p.cache, k)
		}
	}
}

// equatorial is one parsed row of the observer table.
type equatorial struct {
	time    time.Time
	raDeg   float64
	decDeg  float64
	deltaAU float64
}

// queryHorizons makes a request to the Horizons API.
func (p *HorizonsProvider) queryHorizons(ctx context.Context, naifID int, t time.Time) (equatorial, error) {
	// Values must be quoted with single quotes
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%d'", naifID))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "OBSERVER")
	params.Set("CENTER", "'500@399'") // geocentric
	params.Set("START_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(t)))
	params.Set("STOP_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(t.Add(time.Minute))))
	params.Set("STEP_SIZE", "'1 m'")
	params.Set("QUANTITIES", "'2,20'") // 2=apparent RA/Dec, 20=range
	params.Set("ANGLE_FORMAT", "DEG")
	params.Set("TIME_DIGITS", "SECONDS")
	params.Set("CSV_FORMAT", "NO")

	reqURL := p.url + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return equatorial{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return equatorial{}, fmt.Errorf("horizons request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return equatorial{}, fmt.Errorf("horizons returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return equatorial{}, fmt.Errorf("failed to read response: %w", err)
	}

	rows, err := parseHorizonsResponse(body)
	if err != nil {
		return equatorial{}, err
	}
	if len(rows) == 0 {
		return equatorial{}, fmt.Errorf("no data returned for target %d", naifID)
	}

	return rows[0], nil
}

// horizonsResponse represents the JSON API response.
type horizonsResponse struct {
	Signature struct {
		Version string `json:"version"`
		Source  string `json:"source"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

// parseHorizonsResponse parses the Horizons JSON response.
func parseHorizonsResponse(body []byte) ([]equatorial, error) {
	var resp horizonsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("horizons error: %s", strings.TrimSpace(resp.Error))
	}

	// The ephemeris data is in resp.Result as a text blob
	return parseEphemerisTable(resp.Result)
}

// parseEphemerisTable extracts rows from the Horizons text output.
func parseEphemerisTable(result string) ([]equatorial, error) {
	var rows []equatorial

	// Data section lies between $$SOE and $$EOE markers
	soeIdx := strings.Index(result, "$$SOE")
	eoeIdx := strings.Index(result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return nil, fmt.Errorf("could not find ephemeris data markers")
	}

	dataSection := result[soeIdx+5 : eoeIdx]
	for _, line := range strings.Split(dataSection, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		row, err := parseEphemerisLine(line)
		if err != nil {
			continue // Skip unparseable lines
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// parseEphemerisLine parses a single observer-table line.
// Format for QUANTITIES='2,20' with ANGLE_FORMAT=DEG:
//
//	2022-Dec-22 21:00:00 *   270.889451 -23.433614 0.98398957621013  -0.0010112
//
// Fields: date, time, optional flags, RA, Dec, delta (AU), deldot (km/s).
func parseEphemerisLine(line string) (equatorial, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return equatorial{}, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	t, err := parseHorizonsDateTime(fields[0] + " " + fields[1])
	if err != nil {
		return equatorial{}, err
	}

	// Skip flag fields (like *, m, Cm, Nm, Am), take the first three numbers
	var nums []float64
	for i := 2; i < len(fields) && len(nums) < 3; i++ {
		val, err := strconv.ParseFloat(fields[i], 64)
		if err == nil {
			nums = append(nums, val)
		}
	}

	if len(nums) < 3 {
		return equatorial{}, fmt.Errorf("could not find RA/Dec/range values")
	}

	return equatorial{
		time:    t,
		raDeg:   nums[0],
		decDeg:  nums[1],
		deltaAU: nums[2],
	}, nil
}

// parseHorizonsDateTime parses Horizons date format like "2025-Dec-05 00:00:00".
func parseHorizonsDateTime(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-Jan-02 15:04:05",
		"2006-Jan-02 15:04:05.000",
		"2006-Jan-02 15:04",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// formatHorizonsTime formats a time for Horizons API.
func formatHorizonsTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
