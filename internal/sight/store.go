package sight

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileName is the sights file name inside the config directory.
const FileName = "sights.json"

// Store persists sights.
type Store interface {
	// List returns all sights, oldest first.
	List() ([]Sight, error)
	Get(id string) (Sight, error)
	// Save inserts or replaces a sight by ID.
	Save(s Sight) error
	Delete(id string) error
	DeleteAll() error
	SetActive(id string, active bool) error
}

// MemoryStore keeps sights in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	sights map[string]Sight
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sights: make(map[string]Sight)}
}

// List implements Store.
func (m *MemoryStore) List() ([]Sight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sorted(m.sights), nil
}

// Get implements Store.
func (m *MemoryStore) Get(id string) (Sight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sights[id]
	if !ok {
		return Sight{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Save implements Store.
func (m *MemoryStore) Save(s Sight) error {
	return m.apply(func(set map[string]Sight) error { return saveIn(set, s) })
}

// Delete implements Store.
func (m *MemoryStore) Delete(id string) error {
	return m.apply(func(set map[string]Sight) error { return deleteIn(set, id) })
}

// DeleteAll implements Store.
func (m *MemoryStore) DeleteAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sights = make(map[string]Sight)
	return nil
}

// SetActive implements Store.
func (m *MemoryStore) SetActive(id string, active bool) error {
	return m.apply(func(set map[string]Sight) error { return setActiveIn(set, id, active) })
}

func (m *MemoryStore) apply(fn func(map[string]Sight) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.sights)
}

// snapshot returns a copy of the set that can be changed without touching m.
func (m *MemoryStore) snapshot() map[string]Sight {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Sight, len(m.sights))
	for id, s := range m.sights {
		out[id] = s
	}
	return out
}

func (m *MemoryStore) replace(set map[string]Sight) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sights = set
}

func sorted(set map[string]Sight) []Sight {
	out := make([]Sight, 0, len(set))
	for _, s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func saveIn(set map[string]Sight, s Sight) error {
	if s.ID == "" {
		return errors.New("sight has no ID")
	}
	set[s.ID] = s
	return nil
}

func deleteIn(set map[string]Sight, id string) error {
	if _, ok := set[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(set, id)
	return nil
}

func setActiveIn(set map[string]Sight, id string, active bool) error {
	s, ok := set[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.Active = active
	set[id] = s
	return nil
}

// fileFormat is the on-disk document.
type fileFormat struct {
	Version int     `json:"version"`
	Sights  []Sight `json:"sights"`
}

const fileVersion = 1

// FileStore keeps sights in memory and rewrites a JSON file after every
// change. A change only becomes visible once the file has been written.
type FileStore struct {
	mem  *MemoryStore
	path string

	// serializes mutations
	writeMu sync.Mutex
}

// OpenFileStore loads the store at path. A missing file is an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	st := &FileStore{mem: NewMemoryStore(), path: path}
	if err := st.load(); err != nil {
		return nil, err
	}
	return st, nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) load() error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read sights: %w", err)
	}

	var doc fileFormat
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse sights %s: %w", f.path, err)
	}
	for _, s := range doc.Sights {
		if err := f.mem.Save(s); err != nil {
			return fmt.Errorf("load sight: %w", err)
		}
	}
	return nil
}

// mutate applies fn to a copy of the sights, writes the copy and only then
// makes it current.
func (f *FileStore) mutate(fn func(map[string]Sight) error) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	next := f.mem.snapshot()
	if err := fn(next); err != nil {
		return err
	}
	if err := f.write(sorted(next)); err != nil {
		return err
	}
	f.mem.replace(next)
	return nil
}

// write replaces the file atomically.
func (f *FileStore) write(sights []Sight) error {
	data, err := json.MarshalIndent(fileFormat{Version: fileVersion, Sights: sights}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sights: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sights-*.tmp")
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
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// List implements Store.
func (f *FileStore) List() ([]Sight, error) {
	return f.mem.List()
}

// Get implements Store.
func (f *FileStore) Get(id string) (Sight, error) {
	return f.mem.Get(id)
}

// Save implements Store.
func (f *FileStore) Save(s Sight) error {
	return f.mutate(func(set map[string]Sight) error { return saveIn(set, s) })
}

// Delete implements Store.
func (f *FileStore) Delete(id string) error {
	return f.mutate(func(set map[string]Sight) error { return deleteIn(set, id) })
}

// DeleteAll implements Store.
func (f *FileStore) DeleteAll() error {
	return f.mutate(func(set map[string]Sight) error {
		clear(set)
		return nil
	})
}

// SetActive implements Store.
func (f *FileStore) SetActive(id string, active bool) error {
	return f.mutate(func(set map[string]Sight) error { return setActiveIn(set, id, active) })
}
