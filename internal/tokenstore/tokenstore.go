// Package tokenstore persists the access/refresh token pair and decodes token expiry.
package tokenstore

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Storage keys of the persisted pair.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// Pair is the persisted session artifact.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Empty reports whether neither token is present.
func (p Pair) Empty() bool { return p.AccessToken == "" && p.RefreshToken == "" }

// Store holds the token pair. Implementations never touch the network.
type Store interface {
	// Load returns the stored pair; a missing pair is not an error.
	Load() (Pair, error)
	// Save persists both tokens.
	Save(accessToken, refreshToken string) error
	// Clear removes both tokens.
	Clear() error
	// AccessToken returns the current access token or "".
	AccessToken() string
}

// IsExpired reports whether the token's exp claim is at or before now.
// The signature is not verified. Undecodable tokens count as expired; tokens
// without exp never expire.
func IsExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// EmailClaim returns the "email" claim of an unverified token, or "".
func EmailClaim(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	pair Pair
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load() (Pair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair, nil
}

func (m *Memory) Save(accessToken, refreshToken string) error {
	m.mu.Lock()
	m.pair = Pair{AccessToken: accessToken, RefreshToken: refreshToken}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	m.pair = Pair{}
	m.mu.Unlock()
	return nil
}

func (m *Memory) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair.AccessToken
}
