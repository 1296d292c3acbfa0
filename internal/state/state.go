// Package state provides thread-safe state management for the sight worksheet.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/litescript/ls-sights/internal/celnav"
	"github.com/litescript/ls-sights/internal/geopos"
	"github.com/litescript/ls-sights/internal/logging"
	"github.com/litescript/ls-sights/internal/metrics"
	"github.com/litescript/ls-sights/internal/prefs"
	"github.com/litescript/ls-sights/internal/sight"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventLookup       EventType = "LOOKUP"
	EventLookupFailed EventType = "LOOKUP_FAILED"
	EventSightSaved   EventType = "SIGHT_SAVED"
	EventSightDeleted EventType = "SIGHT_DELETED"
	EventSightsClear  EventType = "SIGHTS_CLEARED"
	EventSightLoaded  EventType = "SIGHT_LOADED"
	EventSightUpdated EventType = "SIGHT_UPDATED"
)

// ErrNoSightLoaded is returned by UpdateSight when no saved sight is open.
var ErrNoSightLoaded = errors.New("no saved sight is open")

// Event is one entry in the activity log.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Body      string    `json:"body,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Manager owns the worksheet inputs and re-runs the reduction on every
// change. All methods are safe for concurrent use.
type Manager struct {
	mu sync.RWMutex

	// Inputs
	body        string
	reading     celnav.SextantReading
	lat, lon    float64
	hasLat      bool
	hasLon      bool
	observation *celnav.Observation
	entry       GPEntry
	sightTime   time.Time

	// ID of the saved sight opened with LoadSight
	editingID string

	// Derived
	result    celnav.Result
	reduceErr error

	// Lookup status
	lastLookup     time.Time
	lastError      error
	lookupDuration time.Duration

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	sights  sight.Store
	prefs   *prefs.File
	metrics *metrics.Collector
	log     *logging.Logger
	now     func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents int

	// Sights defaults to an in-memory store.
	Sights sight.Store
	// Prefs is optional; when set, initial values are loaded from it and
	// IC, eye height and assumed position are written back on change.
	Prefs   *prefs.File
	Metrics *metrics.Collector
	Logger  *logging.Logger
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents: 50,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	m := &Manager{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		sights:    cfg.Sights,
		prefs:     cfg.Prefs,
		metrics:   cfg.Metrics,
		log:       cfg.Logger,
		now:       time.Now,
	}
	if m.sights == nil {
		m.sights = sight.NewMemoryStore()
	}
	if m.log == nil {
		m.log = logging.Discard()
	}

	if m.prefs != nil {
		p, err := m.prefs.Load()
		if err != nil {
			m.log.Warn("load preferences", "path", m.prefs.Path(), "err", err)
		}
		m.reading.IC = p.IC
		m.reading.EyeHeightFt = p.EyeHeightFt
		if pos := p.AssumedPosition(); pos != nil {
			m.lat, m.lon = pos.Lat, pos.Lon
			m.hasLat, m.hasLon = true, true
		}
	}

	m.reduce()
	m.updateSightGauges()
	return m
}

// worksheet builds the pipeline input. Caller holds m.mu.
func (m *Manager) worksheet() celnav.Worksheet {
	ws := celnav.Worksheet{Reading: m.reading}
	if m.observation != nil {
		obs := *m.observation
		ws.Observation = &obs
	}
	if m.hasLat && m.hasLon {
		ws.Position = &celnav.Position{Lat: m.lat, Lon: m.lon}
	}
	return ws
}

// reduce re-runs the pipeline. Caller holds m.mu (or is the constructor).
func (m *Manager) reduce() {
	m.result, m.reduceErr = celnav.Reduce(m.worksheet())
	m.metrics.RecordReduction(m.reduceErr)
}

// SetBody selects the observed body. Any fetched position belongs to the
// previous body and is cleared.
func (m *Manager) SetBody(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == m.body {
		return
	}
	m.body = name
	m.observation = nil
	m.entry = GPEntry{}
	m.reduce()
}

// SetSightTime sets the time of the sight. Positions entered by hand are
// labeled with it.
func (m *Manager) SetSightTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sightTime = t.UTC()
}

// SetHs sets the sextant altitude in degrees.
func (m *Manager) SetHs(hs float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reading.Hs = hs
	m.reduce()
}

// SetIC sets the index correction in minutes and remembers it.
func (m *Manager) SetIC(ic float64) {
	m.mu.Lock()
	m.reading.IC = ic
	m.reduce()
	m.mu.Unlock()

	m.savePrefs(func(p *prefs.Prefs) { p.IC = ic })
}

// SetEyeHeight sets the height of eye in feet and remembers it.
func (m *Manager) SetEyeHeight(ft int) {
	m.mu.Lock()
	m.reading.EyeHeightFt = ft
	m.reduce()
	m.mu.Unlock()

	m.savePrefs(func(p *prefs.Prefs) { p.EyeHeightFt = ft })
}

// SetLimb sets the observed limb.
func (m *Manager) SetLimb(limb celnav.Limb) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reading.Limb = limb
	m.reduce()
}

// SetLat sets the assumed latitude.
func (m *Manager) SetLat(lat float64) {
	m.mu.Lock()
	m.lat, m.hasLat = lat, true
	m.reduce()
	pos, complete := m.assumedPosition()
	m.mu.Unlock()

	if complete {
		m.savePrefs(func(p *prefs.Prefs) { p.SetAssumedPosition(pos) })
	}
}

// SetLon sets the assumed longitude (east positive).
func (m *Manager) SetLon(lon float64) {
	m.mu.Lock()
	m.lon, m.hasLon = lon, true
	m.reduce()
	pos, complete := m.assumedPosition()
	m.mu.Unlock()

	if complete {
		m.savePrefs(func(p *prefs.Prefs) { p.SetAssumedPosition(pos) })
	}
}

// SetAssumedPosition sets both coordinates at once.
func (m *Manager) SetAssumedPosition(pos celnav.Position) {
	m.mu.Lock()
	m.lat, m.lon = pos.Lat, pos.Lon
	m.hasLat, m.hasLon = true, true
	m.reduce()
	m.mu.Unlock()

	m.savePrefs(func(p *prefs.Prefs) { p.SetAssumedPosition(pos) })
}

// assumedPosition returns the position if both coordinates are set. Caller
// holds m.mu.
func (m *Manager) assumedPosition() (celnav.Position, bool) {
	return celnav.Position{Lat: m.lat, Lon: m.lon}, m.hasLat && m.hasLon
}

// SetGeoPosition applies a complete geographic position. The body name
// follows the position.
func (m *Manager) SetGeoPosition(gp geopos.GeoPosition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyGeoPosition(gp)
	m.reduce()
}

// applyGeoPosition replaces the observation and the hand entry. Caller holds
// m.mu.
func (m *Manager) applyGeoPosition(gp geopos.GeoPosition) {
	obs := geopos.Observation(gp)
	if gp.Body != "" {
		m.body = gp.Body
	} else {
		obs.Body = m.body
	}
	m.observation = &obs
	m.entry = entryFrom(obs)
}

// SetGHA enters the body's Greenwich Hour Angle by hand.
func (m *Manager) SetGHA(gha float64) {
	m.updateEntry(func(e *GPEntry) { e.GHA, e.HasGHA = gha, true })
}

// SetDec enters the body's declination by hand.
func (m *Manager) SetDec(dec float64) {
	m.updateEntry(func(e *GPEntry) { e.Dec, e.HasDec = dec, true })
}

// SetDistance enters the body's distance in km by hand.
func (m *Manager) SetDistance(km float64) {
	m.updateEntry(func(e *GPEntry) { e.Distance, e.HasDistance = km, true })
}

func (m *Manager) updateEntry(fn func(*GPEntry)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.entry)
	m.applyEntry()
	m.reduce()
}

// applyEntry builds the observation from the hand entry, or clears it while
// the entry is incomplete. Caller holds m.mu.
func (m *Manager) applyEntry() {
	if m.body == "" || !m.entry.Complete(m.body) {
		m.observation = nil
		return
	}

	var utc string
	if !m.sightTime.IsZero() {
		utc = m.sightTime.Format(geopos.TimeLayout)
	}
	obs := geopos.Observation(geopos.GeoPosition{
		UTC:      utc,
		Body:     m.body,
		GHA:      m.entry.GHA,
		Dec:      m.entry.Dec,
		Distance: m.entry.Distance,
	})
	m.observation = &obs
}

// LookupGeoPosition fetches the position of the current body at time t and
// applies it. A failure leaves the worksheet untouched and is recorded as
// LastError.
func (m *Manager) LookupGeoPosition(ctx context.Context, p geopos.Provider, t time.Time) error {
	m.mu.RLock()
	body := m.body
	m.mu.RUnlock()

	if body == "" {
		err := fmt.Errorf("%w: no body selected", geopos.ErrLookupFailed)
		m.recordLookup(body, 0, err)
		return err
	}

	start := time.Now()
	gp, err := p.Lookup(ctx, body, t)
	elapsed := time.Since(start)

	if err != nil {
		m.log.Warn("lookup failed", "body", body, "provider", p.Name(), "err", err)
		m.recordLookup(body, elapsed, err)
		return err
	}

	m.log.Info("lookup complete", "body", gp.Body, "provider", p.Name(),
		"gha", gp.GHA, "dec", gp.Dec, "duration", elapsed)

	m.mu.Lock()
	defer m.mu.Unlock()
	// Ignore the answer if the user switched bodies while it was in flight.
	if m.body != body {
		return nil
	}
	m.applyGeoPosition(gp)
	m.reduce()
	m.recordLookupLocked(gp.Body, elapsed, nil)
	return nil
}

func (m *Manager) recordLookup(body string, d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordLookupLocked(body, d, err)
}

// recordLookupLocked notes a lookup outcome. Caller holds m.mu.
func (m *Manager) recordLookupLocked(body string, d time.Duration, err error) {
	m.lastLookup = m.now()
	m.lookupDuration = d
	m.lastError = err

	e := Event{Type: EventLookup, Timestamp: m.lastLookup, Body: body}
	if err != nil {
		e.Type = EventLookupFailed
		e.Detail = err.Error()
	}
	m.addEvent(e)
}

// SaveSight stores the current worksheet as a new active sight.
func (m *Manager) SaveSight() (sight.Sight, error) {
	m.mu.Lock()
	ws, result, rerr := m.worksheet(), m.result, m.reduceErr
	m.mu.Unlock()

	if rerr != nil {
		return sight.Sight{}, rerr
	}

	s, err := sight.New(ws, result, m.now())
	if err != nil {
		return sight.Sight{}, err
	}
	if err := m.sights.Save(s); err != nil {
		return sight.Sight{}, fmt.Errorf("save sight: %w", err)
	}

	m.log.Info("sight saved", "id", s.ID, "body", s.Body, "intercept", s.Intercept, "zn", s.Zn)

	m.mu.Lock()
	m.addEvent(Event{Type: EventSightSaved, Timestamp: m.now(), Body: s.Body, Detail: s.ID})
	m.mu.Unlock()
	m.updateSightGauges()

	return s, nil
}

// LoadSight fills the worksheet from a saved sight so it can be corrected
// and written back with UpdateSight. Preferences are left alone.
func (m *Manager) LoadSight(id string) (sight.Sight, error) {
	s, err := m.sights.Get(id)
	if err != nil {
		return sight.Sight{}, err
	}
	ws := s.Worksheet()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.body = s.Body
	m.reading = ws.Reading
	m.lat, m.lon = s.Lat, s.Lon
	m.hasLat, m.hasLon = true, true
	m.observation = ws.Observation
	m.entry = entryFrom(*ws.Observation)
	if t, err := geopos.ParseUTC(s.UTC); err == nil {
		m.sightTime = t
	}
	m.editingID = s.ID
	m.reduce()
	m.addEvent(Event{Type: EventSightLoaded, Timestamp: m.now(), Body: s.Body, Detail: s.ID})
	return s, nil
}

// UpdateSight writes the worksheet back over the sight opened with
// LoadSight, keeping its ID, creation time and plot flag.
func (m *Manager) UpdateSight() (sight.Sight, error) {
	m.mu.Lock()
	id, ws, result, rerr := m.editingID, m.worksheet(), m.result, m.reduceErr
	m.mu.Unlock()

	if id == "" {
		return sight.Sight{}, ErrNoSightLoaded
	}
	if rerr != nil {
		return sight.Sight{}, rerr
	}
	orig, err := m.sights.Get(id)
	if err != nil {
		return sight.Sight{}, err
	}

	s, err := sight.New(ws, result, orig.CreatedAt)
	if err != nil {
		return sight.Sight{}, err
	}
	s.ID, s.Active = orig.ID, orig.Active
	if err := m.sights.Save(s); err != nil {
		return sight.Sight{}, fmt.Errorf("update sight: %w", err)
	}

	m.log.Info("sight updated", "id", s.ID, "body", s.Body, "intercept", s.Intercept, "zn", s.Zn)

	m.mu.Lock()
	m.addEvent(Event{Type: EventSightUpdated, Timestamp: m.now(), Body: s.Body, Detail: s.ID})
	m.mu.Unlock()
	m.updateSightGauges()

	return s, nil
}

// CloseSight detaches the worksheet from the sight opened with LoadSight.
// The inputs stay, so the next SaveSight stores a new sight.
func (m *Manager) CloseSight() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editingID = ""
}

// Sights returns all saved sights, oldest first.
func (m *Manager) Sights() ([]sight.Sight, error) {
	return m.sights.List()
}

// SetSightActive marks a saved sight as plotted or not.
func (m *Manager) SetSightActive(id string, active bool) error {
	if err := m.sights.SetActive(id, active); err != nil {
		return err
	}
	m.updateSightGauges()
	return nil
}

// DeleteSight removes a saved sight.
func (m *Manager) DeleteSight(id string) error {
	s, err := m.sights.Get(id)
	if err != nil {
		return err
	}
	if err := m.sights.Delete(id); err != nil {
		return err
	}

	m.mu.Lock()
	if m.editingID == id {
		m.editingID = ""
	}
	m.addEvent(Event{Type: EventSightDeleted, Timestamp: m.now(), Body: s.Body, Detail: id})
	m.mu.Unlock()
	m.updateSightGauges()
	return nil
}

// ClearSights deletes every saved sight and forgets the assumed position.
func (m *Manager) ClearSights() error {
	if err := m.sights.DeleteAll(); err != nil {
		return err
	}

	m.mu.Lock()
	m.hasLat, m.hasLon = false, false
	m.lat, m.lon = 0, 0
	m.editingID = ""
	m.reduce()
	m.addEvent(Event{Type: EventSightsClear, Timestamp: m.now()})
	m.mu.Unlock()

	m.savePrefs(func(p *prefs.Prefs) { p.ClearAssumedPosition() })
	m.updateSightGauges()
	return nil
}

func (m *Manager) updateSightGauges() {
	list, err := m.sights.List()
	if err != nil {
		m.log.Warn("list sights", "err", err)
		return
	}
	m.metrics.SetSightCounts(len(list), len(sight.Active(list)))
}

func (m *Manager) savePrefs(fn func(*prefs.Prefs)) {
	if m.prefs == nil {
		return
	}
	if err := m.prefs.Update(fn); err != nil {
		m.log.Warn("save preferences", "path", m.prefs.Path(), "err", err)
	}
}

// addEvent adds an event to the ring buffer. Caller holds m.mu.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Body        string
	Reading     celnav.SextantReading
	Lat, Lon    float64
	HasLat      bool
	HasLon      bool
	Observation *celnav.Observation
	Entry       GPEntry
	SightTime   time.Time
	EditingID   string

	Result     celnav.Result
	Computable bool
	Missing    []string

	LastLookup     time.Time
	LastError      error
	LookupDuration time.Duration
	Events         []Event
}

// Position returns the assumed position, or nil unless both coordinates
// are set.
func (s Snapshot) Position() *celnav.Position {
	if !s.HasLat || !s.HasLon {
		return nil
	}
	return &celnav.Position{Lat: s.Lat, Lon: s.Lon}
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var obs *celnav.Observation
	if m.observation != nil {
		o := *m.observation
		obs = &o
	}

	return Snapshot{
		Body:           m.body,
		Reading:        m.reading,
		Lat:            m.lat,
		Lon:            m.lon,
		HasLat:         m.hasLat,
		HasLon:         m.hasLon,
		Observation:    obs,
		Entry:          m.entry,
		SightTime:      m.sightTime,
		EditingID:      m.editingID,
		Result:         m.result,
		Computable:     m.reduceErr == nil,
		Missing:        m.missing(),
		LastLookup:     m.lastLookup,
		LastError:      m.lastError,
		LookupDuration: m.lookupDuration,
		Events:         m.getEventsOrdered(),
	}
}

// missing lists what the worksheet still needs. Caller holds m.mu.
func (m *Manager) missing() []string {
	var out []string
	if m.body == "" {
		out = append(out, "body")
	}
	if m.observation == nil {
		if m.entry.started() {
			out = append(out, m.entry.Missing(m.body)...)
		} else {
			out = append(out, "geographic position")
		}
	}
	if !m.hasLat || !m.hasLon {
		out = append(out, "assumed position")
	}
	return out
}

// Worksheet returns a copy of the current pipeline input.
func (m *Manager) Worksheet() celnav.Worksheet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.worksheet()
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	n = max(n, 0)
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}
