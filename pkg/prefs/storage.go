// Package prefs persists display preferences across invocations. The
// backend is a key/value store of JSON strings; when it is unavailable the
// store degrades to in-memory state without surfacing errors, so rendering
// never depends on working persistence.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/otherjamesbrown/tracka-cli/pkg/logging"
)

// Storage is the key/value backend. Values are JSON-encoded strings.
type Storage interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool)
	// Set stores a value under the key.
	Set(key, value string) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error
}

// MemoryStorage is the in-process fallback backend.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage returns an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get returns the stored value and whether the key exists.
func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Set stores a value under the key.
func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete removes the key.
func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileStorage keeps all keys in one JSON file, read and rewritten per
// mutation. Preference writes are rare enough that the whole-file rewrite
// is not worth optimizing.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage returns a backend persisting to the given file. The file
// is created on first write.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) load() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading preference file: %w", err)
	}

	if err := json.Unmarshal(data, &values); err != nil {
		// A corrupt file starts over empty rather than blocking every
		// future write.
		return make(map[string]string), nil
	}
	return values, nil
}

func (f *FileStorage) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preference file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("creating preference directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("writing preference file: %w", err)
	}
	return nil
}

// Get returns the stored value and whether the key exists.
func (f *FileStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

// Set stores a value under the key.
func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

// Delete removes the key.
func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

const probeKey = "storage.probe"

// Store wraps a backend with a one-time availability probe. An
// unavailable backend is replaced by in-memory state for the rest of the
// process; the failure is logged at debug level and never returned.
type Store struct {
	storage Storage
	log     logging.Logger

	probeOnce sync.Once
	active    Storage
}

// NewStore wraps the backend. Passing a nil logger disables logging.
func NewStore(storage Storage, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{storage: storage, log: log}
}

// backend probes the configured backend on first use by writing and
// deleting a sentinel key, caching the outcome.
func (s *Store) backend() Storage {
	s.probeOnce.Do(func() {
		if err := s.storage.Set(probeKey, "1"); err != nil {
			s.log.Debug("preference storage unavailable, using in-memory state", logging.Err(err))
			s.active = NewMemoryStorage()
			return
		}
		if err := s.storage.Delete(probeKey); err != nil {
			s.log.Debug("preference storage unavailable, using in-memory state", logging.Err(err))
			s.active = NewMemoryStorage()
			return
		}
		s.active = s.storage
	})
	return s.active
}
