// Package persist keeps the named session records that survive power cycles:
// button orientation, LED enable, voice prompt language and multipoint.
//
// Records are cached in a concurrent map so status readers never contend with
// the dispatch loop, and written through to a YAML file when one is set.
package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/device"
	"gopkg.in/yaml.v3"
)

// Record keys
const (
	KeyButtonOrientation = "button-orientation"
	KeyLEDEnabled        = "led-enabled"
	KeyTTSLanguage       = "tts-language"
	KeyMultipointEnabled = "multipoint-enabled"
)

var (
	ErrUnknownKey = errors.New("unknown persisted key")
	ErrWrongType  = errors.New("wrong value type for persisted key")
)

type kind int

const (
	kindBool kind = iota
	kindInt
)

var schema = map[string]kind{
	KeyButtonOrientation: kindBool,
	KeyLEDEnabled:        kindBool,
	KeyTTSLanguage:       kindInt,
	KeyMultipointEnabled: kindBool,
}

// Keys returns the known record keys in name order.
func Keys() []string {
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store holds the persisted records.
type Store struct {
	path   string
	cache  *hashmap.Map[string, any]
	mu     sync.Mutex // serializes file writes
	writes int
	logger *logrus.Logger
}

// NewMemory creates a store that never touches the filesystem.
func NewMemory(logger *logrus.Logger) *Store {
	return &Store{cache: hashmap.New[string, any](), logger: logger}
}

// Open loads the store at path. A missing file is an empty store; unknown or
// ill-typed entries are logged and skipped.
func Open(path string, logger *logrus.Logger) (*Store, error) {
	s := NewMemory(logger)
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading persisted records: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing persisted records %s: %w", path, err)
	}
	for k, v := range raw {
		if err := check(k, v); err != nil {
			logger.WithField("key", k).WithError(err).Warn("Skipping persisted record")
			continue
		}
		s.cache.Set(k, v)
	}
	logger.WithFields(logrus.Fields{
		"path":    path,
		"records": s.cache.Len(),
	}).Debug("Persisted records loaded")
	return s, nil
}

func check(key string, value any) error {
	k, ok := schema[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	switch k {
	case kindBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: %s wants bool, got %T", ErrWrongType, key, value)
		}
	case kindInt:
		if _, ok := value.(int); !ok {
			return fmt.Errorf("%w: %s wants int, got %T", ErrWrongType, key, value)
		}
	}
	return nil
}

// Persist stores one record and writes the file through.
func (s *Store) Persist(key string, value any) error {
	if err := check(key, value); err != nil {
		return err
	}
	s.cache.Set(key, value)
	s.logger.WithFields(logrus.Fields{
		"key":   key,
		"value": value,
	}).Debug("Record persisted")

	if s.path == "" {
		return nil
	}
	return s.save()
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal persisted records: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create persist directory: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write persist temp file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("failed to rename persist file: %w", err)
	}
	s.writes++
	return nil
}

// Get returns a record.
func (s *Store) Get(key string) (any, bool) {
	return s.cache.Get(key)
}

// Bool returns a boolean record.
func (s *Store) Bool(key string) (bool, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Int returns an integer record.
func (s *Store) Int(key string) (int, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

// Snapshot copies every record.
func (s *Store) Snapshot() map[string]any {
	out := make(map[string]any, s.cache.Len())
	s.cache.Range(func(k string, v any) bool {
		out[k] = v
		return true
	})
	return out
}

// Writes counts file writes.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Apply restores the records into a boot-time device record. Records absent
// from the store leave the configured defaults in place.
func (s *Store) Apply(dev *device.DeviceState) {
	if v, ok := s.Bool(KeyButtonOrientation); ok {
		dev.Flags.VolumeOrientationInverted = v
	}
	if v, ok := s.Bool(KeyLEDEnabled); ok {
		dev.Flags.LEDsEnabled = v
	}
	if v, ok := s.Int(KeyTTSLanguage); ok {
		if v >= 0 && v < dev.TTSLanguages {
			dev.TTSLanguage = v
		} else {
			s.logger.WithField("language", v).Warn("Persisted language out of range, ignored")
		}
	}
	if v, ok := s.Bool(KeyMultipointEnabled); ok {
		dev.Flags.MultipointEnabled = v
	}
}
