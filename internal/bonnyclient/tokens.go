package bonnyclient

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"
)

// Tokens is the on-disk token payload.
type Tokens struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	Expiry       float64 `json:"expiry"`
}

// TokenStore persists tokens to a JSON file. All access goes through the
// store so the client never caches credentials on its own.
type TokenStore struct {
	mu     sync.RWMutex
	path   string
	tokens Tokens
}

// NewTokenStore loads any previously saved tokens. A missing or corrupt
// file is treated as "not authenticated", not an error.
func NewTokenStore(path string) *TokenStore {
	store := &TokenStore{path: path}
	data, err := os.ReadFile(path)
	if err == nil {
		var tokens Tokens
		if json.Unmarshal(data, &tokens) == nil {
			store.tokens = tokens
		}
	}
	return store
}

// Get returns the current tokens.
func (s *TokenStore) Get() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// Set stores and persists new tokens.
func (s *TokenStore) Set(tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
	data, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes tokens from memory and disk.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Authenticated reports whether an access token is present.
func (s *TokenStore) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.AccessToken != ""
}

// Expired reports whether the access token expires within the safety margin.
func (s *TokenStore) Expired(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens.Expiry == 0 {
		return false
	}
	return float64(now.Unix()) > s.tokens.Expiry-60
}
