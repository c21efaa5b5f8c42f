package services

import (
	"fmt"
	"sync"
	"time"

	"pgrkam-assistant/utils"
	"pgrkam-assistant/work-flows/storage"

	"github.com/golang-jwt/jwt/v5"
)

// AuthState holds the bearer token for the logged-in user. It satisfies
// client.TokenSource, so every outbound request picks up changes at once.
type AuthState struct {
	mu       sync.RWMutex
	store    storage.Store
	token    string
	onLogout []func()
	now      func() time.Time
}

// NewAuthState restores a persisted token. A token whose JWT exp claim is
// already in the past is discarded.
func NewAuthState(store storage.Store) *AuthState {
	a := &AuthState{
		store: store,
		now:   time.Now,
	}

	token, ok, err := store.Get(storage.KeyToken)
	if err != nil {
		utils.Warn("could not read saved token", "error", err.Error())
		return a
	}
	if !ok || token == "" {
		return a
	}

	if exp, ok := TokenExpiry(token); ok && !exp.After(a.now()) {
		utils.Info("saved token expired", "expired_at", exp.Format(time.RFC3339))
		if err := store.Delete(storage.KeyToken); err != nil {
			utils.Warn("could not remove expired token", "error", err.Error())
		}
		return a
	}

	a.token = token
	return a
}

func (a *AuthState) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *AuthState) IsAuthenticated() bool {
	return a.Token() != ""
}

// SetToken persists token. An empty token is the same as Clear.
func (a *AuthState) SetToken(token string) error {
	if token == "" {
		return a.Clear()
	}

	if err := a.store.Set(storage.KeyToken, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
	return nil
}

// Clear forgets the token and runs the logout hooks, which send protected
// views back to the login prompt.
func (a *AuthState) Clear() error {
	a.mu.Lock()
	hadToken := a.token != ""
	a.token = ""
	hooks := append([]func(){}, a.onLogout...)
	a.mu.Unlock()

	err := a.store.Delete(storage.KeyToken)
	if err != nil {
		err = fmt.Errorf("failed to remove token: %w", err)
	}

	if hadToken {
		for _, fn := range hooks {
			fn()
		}
	}
	return err
}

func (a *AuthState) OnLogout(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onLogout = append(a.onLogout, fn)
}

// TokenExpiry reads the exp claim without verifying the signature; the client
// cannot verify it and only needs to know whether to bother sending it.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
