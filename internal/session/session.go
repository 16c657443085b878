// Package session holds the client-side record of the authenticated user.
// The user object and its access token are stored redundantly: the token is
// duplicated under legacy keys older releases read directly, and the user
// object embeds its own copy. Reads resolve the precedence in one place.
package session

import (
	"encoding/json"
	"fmt"

	"lotmarket/internal/auctionerrors"
	"lotmarket/internal/models"
	"lotmarket/internal/storage"
	"lotmarket/utils"
)

const (
	userKey   = "lm_user"
	apiKeyKey = "lm_api_key"
)

// legacy token keys, in lookup priority order
var tokenKeys = []string{"lm_token", "accessToken", "token"}

// Store reads and writes session state through an injected KeyValue
type Store struct {
	kv storage.KeyValue
}

// NewStore creates a session store over the given storage backend
func NewStore(kv storage.KeyValue) *Store {
	return &Store{kv: kv}
}

// CurrentUser returns the stored user object. It reports absence and
// corruption as distinct errors so callers can choose to log or reset;
// both mean "not logged in".
func (s *Store) CurrentUser() (*models.User, error) {
	raw, ok, err := s.kv.Get(userKey)
	if err != nil || !ok || raw == "" {
		return nil, auctionerrors.ErrNoSession
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", auctionerrors.ErrCorruptSession, err)
	}
	if user.Name == "" {
		return nil, fmt.Errorf("%w: missing profile name", auctionerrors.ErrCorruptSession)
	}
	return &user, nil
}

// AuthToken returns a usable bearer token. Priority:
//  1. accessToken embedded in the stored user object
//  2. the first non-empty legacy token key
//
// Returns "" when no token is found. Storage failures degrade to "".
func (s *Store) AuthToken() string {
	user, err := s.CurrentUser()
	if err == nil && user.AccessToken != "" {
		return user.AccessToken
	}

	for _, key := range tokenKeys {
		if value, ok, err := s.kv.Get(key); err == nil && ok && value != "" {
			return value
		}
	}
	return ""
}

// Authenticated reports whether a usable session is present: a stored user
// with a name and a non-empty token.
func (s *Store) Authenticated() bool {
	user, err := s.CurrentUser()
	return err == nil && user.Name != "" && s.AuthToken() != ""
}

// Save persists the user object and duplicates its access token under the
// legacy keys older releases read. Writes are not transactional across
// keys; a partial write leaves the legacy keys stale until the next login.
func (s *Store) Save(user *models.User) error {
	if user == nil {
		return fmt.Errorf("session: %w: nil user", auctionerrors.ErrInvalidInput)
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	if err := s.kv.Set(userKey, string(raw)); err != nil {
		return fmt.Errorf("session: save user: %w", err)
	}

	if user.AccessToken != "" {
		for _, key := range []string{"lm_token", "accessToken"} {
			if err := s.kv.Set(key, user.AccessToken); err != nil {
				utils.Warn("session: failed to mirror token", map[string]any{"key": key, "error": err.Error()})
			}
		}
	}
	return nil
}

// Clear removes the user object and every known token key. The cached API
// key is left in place: it is account-independent and stays valid.
func (s *Store) Clear() error {
	if err := s.kv.Delete(userKey); err != nil {
		return fmt.Errorf("session: clear user: %w", err)
	}
	for _, key := range tokenKeys {
		if err := s.kv.Delete(key); err != nil {
			return fmt.Errorf("session: clear token %s: %w", key, err)
		}
	}
	return nil
}

// APIKey returns the cached provisioned API key, or "" if none is stored
func (s *Store) APIKey() string {
	value, ok, err := s.kv.Get(apiKeyKey)
	if err != nil || !ok {
		return ""
	}
	return value
}

// SaveAPIKey caches a provisioned API key for later requests
func (s *Store) SaveAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("session: %w: empty API key", auctionerrors.ErrInvalidInput)
	}
	if err := s.kv.Set(apiKeyKey, key); err != nil {
		return fmt.Errorf("session: save API key: %w", err)
	}
	return nil
}
