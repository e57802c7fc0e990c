package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	GrantTypeClientCredentials = "client_credentials"
	FormContentType            = "application/x-www-form-urlencoded"
)

// ClientCredentialsGrant is the form body posted to the token endpoint.
func ClientCredentialsGrant() url.Values {
	return url.Values{"grant_type": []string{GrantTypeClientCredentials}}
}

type TokenResponse struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	Raw         map[string]any
}

// DecodeTokenResponse reads the token endpoint payload. Only access_token is
// required; everything else the server sends is kept in Raw.
func DecodeTokenResponse(body []byte) (TokenResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return TokenResponse{}, fmt.Errorf("auth: token response body is empty")
	}
	raw := map[string]any{}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return TokenResponse{}, fmt.Errorf("auth: decode token response: %w", err)
	}
	accessToken := readString(raw, "access_token", "accessToken")
	if accessToken == "" {
		return TokenResponse{}, fmt.Errorf("auth: token response access_token is required")
	}
	resp := TokenResponse{
		AccessToken: accessToken,
		TokenType:   firstNonEmpty(readString(raw, "token_type", "tokenType"), "bearer"),
		Raw:         cloneValues(raw),
	}
	if seconds := readSeconds(raw, "expires_in", "expiresIn"); seconds > 0 {
		resp.ExpiresIn = time.Duration(seconds) * time.Second
	}
	return resp, nil
}

type BearerToken struct {
	AccessToken string
	TokenType   string
	IssuedAt    time.Time
	ExpiresAt   *time.Time
}

// NewBearerToken derives the token lifetime from the exchange response. When
// the server omits expires_in, defaultTTL is used; a non-positive defaultTTL
// leaves the token without an expiry so only a 401 retires it.
func NewBearerToken(resp TokenResponse, issuedAt time.Time, defaultTTL time.Duration) BearerToken {
	token := BearerToken{
		AccessToken: strings.TrimSpace(resp.AccessToken),
		TokenType:   firstNonEmpty(resp.TokenType, "bearer"),
		IssuedAt:    issuedAt.UTC(),
	}
	ttl := resp.ExpiresIn
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if ttl > 0 {
		expiresAt := token.IssuedAt.Add(ttl)
		token.ExpiresAt = &expiresAt
	}
	return token
}

func (t BearerToken) Header() string {
	return BearerAuthorization(t.AccessToken)
}

// Valid reports whether the token can still be attached to a request at now,
// leaving renewBefore of headroom before the expiry.
func (t BearerToken) Valid(now time.Time, renewBefore time.Duration) bool {
	if strings.TrimSpace(t.AccessToken) == "" {
		return false
	}
	if t.ExpiresAt == nil {
		return true
	}
	if renewBefore < 0 {
		renewBefore = 0
	}
	return t.ExpiresAt.After(now.UTC().Add(renewBefore))
}
