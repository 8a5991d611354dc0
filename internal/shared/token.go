package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// TokenStore persists an [oauth2.Token] as JSON on disk.
//
// It also implements [oauth2.TokenSource] over the stored token so refreshed tokens
// can be written back with [TokenStore.Save].
type TokenStore struct {
	path string
	mu   sync.Mutex
}

// NewTokenStore creates a store for the token file at path. A leading "~" is expanded.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: ExpandPath(path)}
}

// Path returns the resolved token file path.
func (s *TokenStore) Path() string { return s.path }

// Load reads the token. A missing file yields [ErrNoToken].
func (s *TokenStore) Load() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if token.AccessToken == "" {
		return nil, ErrNoToken
	}
	return &token, nil
}

// Save writes the token with owner-only permissions.
func (s *TokenStore) Save(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Delete removes the token file. Deleting a missing token is not an error.
func (s *TokenStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// Token implements [oauth2.TokenSource].
func (s *TokenStore) Token() (*oauth2.Token, error) {
	return s.Load()
}

// PersistingTokenSource wraps src and saves every token that differs from the last one seen.
//
// Refreshed tokens survive process restarts this way.
type PersistingTokenSource struct {
	src   oauth2.TokenSource
	store *TokenStore
	mu    sync.Mutex
	last  string
}

// NewPersistingTokenSource wraps src so refreshed tokens are written to store.
func NewPersistingTokenSource(src oauth2.TokenSource, store *TokenStore, current *oauth2.Token) *PersistingTokenSource {
	p := &PersistingTokenSource{src: src, store: store}
	if current != nil {
		p.last = current.AccessToken
	}
	return p
}

// Token implements [oauth2.TokenSource].
func (p *PersistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if err := p.store.Save(token); err != nil {
			return nil, err
		}
	}
	return token, nil
}
