package auth

import (
	"encoding/base64"
	"strings"
)

const (
	SchemeBasic  = "Basic"
	SchemeBearer = "Bearer"
)

// BasicAuthorization returns the Authorization header value for the client
// credentials exchange: "Basic base64(clientID:clientSecret)".
func BasicAuthorization(clientID string, clientSecret string) string {
	raw := strings.TrimSpace(clientID) + ":" + strings.TrimSpace(clientSecret)
	return SchemeBasic + " " + base64.StdEncoding.EncodeToString([]byte(raw))
}

func BearerAuthorization(accessToken string) string {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return ""
	}
	return SchemeBearer + " " + token
}
