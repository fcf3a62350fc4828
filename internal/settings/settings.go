package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sophie-analyst/config"
	"sophie-analyst/observability"
)

const settingsFile = "settings.enc"

// Settings are the user overrides persisted between runs
type Settings struct {
	GraphQLEndpoints []string  `json:"graphql_endpoints,omitempty"`
	APIToken         string    `json:"api_token,omitempty"`
	UseMock          *bool     `json:"use_mock,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Store keeps Settings encrypted on disk
type Store struct {
	mu       sync.RWMutex
	filePath string
	settings Settings
	crypto   *Crypto
}

// NewStore opens the settings file in dataDir (default ~/.sophie). A missing
// file gives empty settings; an unreadable one is logged and ignored.
func NewStore(dataDir, passphrase string) (*Store, error) {
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".sophie")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	store := &Store{
		filePath: filepath.Join(dataDir, settingsFile),
		crypto:   NewCrypto(passphrase),
	}

	if err := store.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		observability.Warn("failed to load settings, using defaults", "path", store.filePath, "error", err)
	}
	return store, nil
}

// Path is the encrypted settings file
func (s *Store) Path() string {
	return s.filePath
}

// Load re-reads the settings file
func (s *Store) Load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	decrypted, err := s.crypto.Decrypt(data)
	if err != nil {
		return fmt.Errorf("failed to decrypt settings: %w", err)
	}

	var loaded Settings
	if err := json.Unmarshal(decrypted, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	s.mu.Lock()
	s.settings = loaded
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the current settings
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.settings
	out.GraphQLEndpoints = append([]string(nil), s.settings.GraphQLEndpoints...)
	return out
}

// Save replaces the settings and writes them to disk
func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(settings)
}

func (s *Store) saveLocked(settings Settings) error {
	settings.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	encrypted, err := s.crypto.Encrypt(data)
	if err != nil {
		return fmt.Errorf("failed to encrypt settings: %w", err)
	}

	if err := os.WriteFile(s.filePath, encrypted, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	s.settings = settings
	return nil
}

// Update applies fn to a copy of the settings and saves the result
func (s *Store) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	next.GraphQLEndpoints = append([]string(nil), s.settings.GraphQLEndpoints...)
	fn(&next)
	return s.saveLocked(next)
}

// Reset clears every override
func (s *Store) Reset() error {
	return s.Save(Settings{})
}

// MaskedToken shows only the last four characters of the API token
func (s *Store) MaskedToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return MaskToken(s.settings.APIToken)
}

// Apply overrides cfg with any stored endpoints, token and mock flag
func (s *Store) Apply(cfg *config.Config) {
	current := s.Get()
	if len(current.GraphQLEndpoints) > 0 {
		cfg.GraphQL.Endpoints = current.GraphQLEndpoints
	}
	if current.APIToken != "" {
		cfg.GraphQL.APIToken = current.APIToken
	}
	if current.UseMock != nil {
		cfg.GraphQL.UseMock = *current.UseMock
	}
}

// MaskToken hides all but the last four characters of a token
func MaskToken(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
