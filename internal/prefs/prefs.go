// Package prefs persists user preferences (index correction, height of eye,
// assumed position and lookup provider) as a YAML file.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/litescript/ls-sights/internal/celnav"
)

// FileName is the preferences file name inside the config directory.
const FileName = "prefs.yaml"

// Prefs holds the values remembered between sessions.
type Prefs struct {
	IC          float64  `yaml:"index_correction"` // minutes
	EyeHeightFt int      `yaml:"eye_height_ft"`
	AssumedLat  *float64 `yaml:"assumed_lat,omitempty"`
	AssumedLon  *float64 `yaml:"assumed_lon,omitempty"`
	Provider    string   `yaml:"provider,omitempty"`
	ServiceURL  string   `yaml:"service_url,omitempty"`
}

// Default returns the preferences used when no file exists.
func Default() Prefs {
	return Prefs{Provider: "auto"}
}

// AssumedPosition returns the stored assumed position, or nil unless both
// coordinates are set.
func (p Prefs) AssumedPosition() *celnav.Position {
	if p.AssumedLat == nil || p.AssumedLon == nil {
		return nil
	}
	return &celnav.Position{Lat: *p.AssumedLat, Lon: *p.AssumedLon}
}

// SetAssumedPosition stores both coordinates.
func (p *Prefs) SetAssumedPosition(pos celnav.Position) {
	lat, lon := pos.Lat, pos.Lon
	p.AssumedLat = &lat
	p.AssumedLon = &lon
}

// ClearAssumedPosition forgets the assumed position.
func (p *Prefs) ClearAssumedPosition() {
	p.AssumedLat = nil
	p.AssumedLon = nil
}

// File reads and writes a preferences file.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a File for the given path.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultDir returns the per-user config directory for the application.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "ls-sights"), nil
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Load reads the preferences. A missing file yields Default().
func (f *File) Load() (Prefs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) load() (Prefs, error) {
	p := Default()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read prefs: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("parse prefs %s: %w", f.path, err)
	}
	return p, nil
}

// Save writes the preferences, replacing the file atomically.
func (f *File) Save(p Prefs) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(p)
}

func (f *File) save(p Prefs) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	return writeFileAtomic(f.path, data)
}

// Update loads the preferences, applies fn and saves the result.
func (f *File) Update(fn func(*Prefs)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.load()
	if err != nil {
		return err
	}
	fn(&p)
	return f.save(p)
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
