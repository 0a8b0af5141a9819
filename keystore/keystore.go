// Package keystore persists provider credentials and the default provider
// in a single JSON document.
//
// Keys are stored base64 encoded. This is an encoding, not encryption: the
// file must be treated as holding plaintext secrets and is written with
// owner-only permissions.
package keystore

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/xostack/docsum/provider"
)

const (
	dirPerm  = 0700
	filePerm = 0600

	maskedKey = "***"

	fileName      = "config.json"
	windowsAppDir = "DocumentSummarizer"
	unixAppDir    = ".document_summarizer"
)

// ErrEmptyProvider is returned by mutations called with a blank identifier.
var ErrEmptyProvider = errors.New("provider identifier is empty")

// ProviderEntry is one row of ListProviders. It never carries the raw key.
type ProviderEntry struct {
	Name          string `json:"name" yaml:"name"`
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	IsDefault     bool   `json:"is_default" yaml:"is_default"`
	APIKeyPreview string `json:"api_key_preview" yaml:"api_key_preview"`
	Model         string `json:"model,omitempty" yaml:"model,omitempty"`
}

// Store is the credential store. Each mutation rewrites the whole file.
// A Store is safe for use by multiple goroutines; separate processes
// writing the same file still race and the last writer wins.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger
	doc    document
}

// DefaultPath returns the platform credential file location:
// %LOCALAPPDATA%\DocumentSummarizer\config.json on Windows and
// ~/.document_summarizer/config.json elsewhere.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user home directory: %w", err)
	}
	if runtime.GOOS == "windows" {
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = home
		}
		return filepath.Join(base, windowsAppDir, fileName), nil
	}
	return filepath.Join(home, unixAppDir, fileName), nil
}

// Open loads the store at path. A missing, unreadable or corrupt file
// yields an empty store; the problem is logged and never returned.
// A nil logger discards log output.
func Open(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Store{path: path, logger: logger, doc: newDocument()}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Printf("keystore: cannot read %s, starting empty: %v", path, err)
		}
		return s
	}

	doc, err := parseDocument(data)
	if err != nil {
		logger.Printf("keystore: %s is corrupt, starting empty: %v", path, err)
		return s
	}
	s.doc = doc
	return s
}

// OpenDefault opens the store at DefaultPath.
func OpenDefault(logger *log.Logger) (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path, logger), nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// AddProvider stores or replaces the key for id. The provider becomes the
// default when setDefault is true or when no default exists yet. An empty
// model leaves the provider on its default model.
func (s *Store) AddProvider(id, apiKey, model string, setDefault bool) error {
	id = provider.NormalizeID(id)
	if id == "" {
		return ErrEmptyProvider
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.clone()
	next.put(id, record{
		APIKey:  EncodeKey(apiKey),
		Enabled: true,
		Model:   model,
		hasKey:  true,
	})
	if setDefault || next.defaultProvider == "" {
		next.defaultProvider = id
	}
	return s.commit(next)
}

// RemoveProvider deletes id. When it was the default, the first remaining
// provider takes its place, or the default is cleared if none remain.
// Removing an unknown provider does nothing.
func (s *Store) RemoveProvider(id string) error {
	id = provider.NormalizeID(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.doc.has(id) {
		return nil
	}
	next := s.doc.clone()
	next.remove(id)

	if next.defaultProvider == id {
		next.defaultProvider = ""
		if len(next.order) > 0 {
			next.defaultProvider = next.order[0]
		}
	}
	return s.commit(next)
}

// APIKey returns the decoded key for id, or for the default provider when
// id is empty. The boolean is false when there is no such record or the
// stored value cannot be decoded.
func (s *Store) APIKey(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.lookup(id)
	if !ok || !r.hasKey {
		return "", false
	}
	key, err := DecodeKey(r.APIKey)
	if err != nil {
		s.logger.Printf("keystore: stored key is not valid base64: %v", err)
		return "", false
	}
	return key, true
}

// Model returns the model selected for id, or for the default provider
// when id is empty. The boolean is false when no model was selected.
func (s *Store) Model(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.lookup(id)
	if !ok || r.Model == "" {
		return "", false
	}
	return r.Model, true
}

// DefaultProvider returns the default provider id.
func (s *Store) DefaultProvider() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.doc.defaultProvider, s.doc.defaultProvider != ""
}

// SetDefaultProvider makes id the default. It is a no-op, returning
// false, when id has no stored record.
func (s *Store) SetDefaultProvider(id string) (bool, error) {
	id = provider.NormalizeID(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.doc.has(id) {
		return false, nil
	}
	next := s.doc.clone()
	next.defaultProvider = id
	if err := s.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

// ListProviders returns the stored providers in insertion order.
func (s *Store) ListProviders() []ProviderEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ProviderEntry, 0, len(s.doc.order))
	for _, id := range s.doc.order {
		r := s.doc.providers[id]
		out = append(out, ProviderEntry{
			Name:          id,
			Enabled:       r.Enabled,
			IsDefault:     id == s.doc.defaultProvider,
			APIKeyPreview: keyPreview(r.APIKey),
			Model:         r.Model,
		})
	}
	return out
}

// HasAnyProvider reports whether at least one provider is stored.
func (s *Store) HasAnyProvider() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.doc.order) > 0
}

// ValidateProvider reports whether id has a record carrying a non-empty key.
// A record stored with an empty key is listed but not valid.
func (s *Store) ValidateProvider(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.doc.providers[provider.NormalizeID(id)]
	return ok && r.hasKey && r.APIKey != ""
}

func (s *Store) lookup(id string) (record, bool) {
	id = provider.NormalizeID(id)
	if id == "" {
		id = s.doc.defaultProvider
	}
	if id == "" {
		return record{}, false
	}
	r, ok := s.doc.providers[id]
	return r, ok
}

// commit persists next and only then makes it the in-memory document, so a
// failed write leaves the store as it was. Must be called with s.mu held.
func (s *Store) commit(next document) error {
	if err := s.save(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// save writes doc to a temporary file next to the target and renames it
// into place.
func (s *Store) save(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create credential directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+fileName+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary credential file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(filePerm); err != nil && runtime.GOOS != "windows" {
		tmp.Close()
		return fmt.Errorf("failed to restrict credential file permissions: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close credential file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace credential file %s: %w", s.path, err)
	}
	return nil
}

// EncodeKey applies the storage encoding (standard base64).
func EncodeKey(key string) string {
	return base64.StdEncoding.EncodeToString([]byte(key))
}

// DecodeKey reverses EncodeKey.
func DecodeKey(encoded string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// keyPreview shows the first 8 and last 4 characters of keys longer than
// 12 characters and only the first 4 of keys longer than 4. Shorter and
// undecodable keys are masked entirely so a preview never holds a whole key.
func keyPreview(encoded string) string {
	key, err := DecodeKey(encoded)
	if err != nil {
		return maskedKey
	}
	r := []rune(key)
	switch {
	case len(r) > 12:
		return string(r[:8]) + "..." + string(r[len(r)-4:])
	case len(r) > 4:
		return string(r[:4]) + "..."
	default:
		return maskedKey
	}
}
