package core

import (
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-mati/auth"
)

type AuthState string

const (
	AuthStateNoToken          AuthState = "no_token"
	AuthStateAuthenticating   AuthState = "authenticating"
	AuthStateAuthenticated    AuthState = "authenticated"
	AuthStateReauthenticating AuthState = "reauthenticating"
	AuthStateError            AuthState = "error"
)

type Credentials struct {
	ClientID     string
	ClientSecret string
}

// CredentialManager owns the client credentials and the single active bearer
// token. The mutex only protects memory; concurrent exchanges are allowed and
// the last one to complete wins.
type CredentialManager struct {
	mu            sync.RWMutex
	basic         string
	webhookSecret string
	host          string
	token         *auth.BearerToken
	state         AuthState
	renewBefore   time.Duration
	defaultTTL    time.Duration
	now           Clock
}

func NewCredentialManager(now Clock) *CredentialManager {
	if now == nil {
		now = defaultClock
	}
	return &CredentialManager{
		host:  DefaultHost,
		state: AuthStateNoToken,
		now:   now,
	}
}

// Initialize replaces all credential state, including any active token. It
// never performs I/O.
func (m *CredentialManager) Initialize(creds Credentials, webhookSecret string, host string, token TokenConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.basic = auth.BasicAuthorization(creds.ClientID, creds.ClientSecret)
	m.webhookSecret = webhookSecret
	m.host = Config{Host: host}.resolvedHost()
	m.renewBefore = token.RenewBefore
	m.defaultTTL = token.DefaultTTL
	m.token = nil
	m.state = AuthStateNoToken
}

func (m *CredentialManager) BasicHeader() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.basic
}

func (m *CredentialManager) Host() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.host
}

func (m *CredentialManager) WebhookSecret() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if strings.TrimSpace(m.webhookSecret) == "" {
		return "", false
	}
	return m.webhookSecret, true
}

func (m *CredentialManager) State() AuthState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// ActiveToken returns the current token when it can still be attached to a
// request.
func (m *CredentialManager) ActiveToken() (auth.BearerToken, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == nil || !m.token.Valid(m.now(), m.renewBefore) {
		return auth.BearerToken{}, false
	}
	return *m.token, true
}

// Invalidate retires accessToken after the server rejected it. A token that
// was already replaced by a concurrent exchange is left alone.
func (m *CredentialManager) Invalidate(accessToken string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != nil && m.token.AccessToken == accessToken {
		m.token = nil
	}
	m.state = AuthStateReauthenticating
}

func (m *CredentialManager) beginExchange() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != AuthStateReauthenticating {
		m.state = AuthStateAuthenticating
	}
}

func (m *CredentialManager) completeExchange(resp auth.TokenResponse) auth.BearerToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := auth.NewBearerToken(resp, m.now(), m.defaultTTL)
	m.token = &token
	m.state = AuthStateAuthenticated
	return token
}

func (m *CredentialManager) failExchange() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = AuthStateError
}
