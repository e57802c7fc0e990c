package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSignature returns hex(HMAC-SHA256(secret, body)).
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature is exactly the lowercase hex
// digest of body. The value is compared as received, in constant time.
func VerifySignature(secret string, signature string, body []byte) bool {
	if signature == "" {
		return false
	}
	expected := ComputeSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ValidateSignature checks a webhook signature against the exact bytes the
// server signed. A mismatch is reported as false, never as an error.
func (s *Service) ValidateSignature(signature string, rawBody []byte) (bool, error) {
	if s == nil || s.credentials == nil {
		return false, newConfigError("core: service is not initialized", nil)
	}
	secret, ok := s.credentials.WebhookSecret()
	if !ok {
		return false, newConfigError("core: webhook secret is not configured", nil)
	}
	return VerifySignature(secret, signature, rawBody), nil
}
