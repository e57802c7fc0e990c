package webhooks

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-mati/core"
)

var (
	ErrSignatureRequired = errors.New("webhooks: signature header is required")
	ErrSignatureMismatch = errors.New("webhooks: signature verification failed")
	ErrSecretRequired    = errors.New("webhooks: signature secret is required")
)

type Verifier interface {
	Verify(ctx context.Context, headers http.Header, body []byte) error
}

// SignatureValidator is satisfied by *core.Service.
type SignatureValidator interface {
	ValidateSignature(signature string, rawBody []byte) (bool, error)
}

// HeaderHMACVerifier checks a hex HMAC-SHA256 digest of the body carried in
// Header.
type HeaderHMACVerifier struct {
	Header string
	Secret string
}

func NewHMACVerifier(secret string) HeaderHMACVerifier {
	return HeaderHMACVerifier{Header: core.HeaderSignature, Secret: secret}
}

func (v HeaderHMACVerifier) Verify(_ context.Context, headers http.Header, body []byte) error {
	signature := headerValue(headers, v.header())
	if signature == "" {
		return ErrSignatureRequired
	}
	if strings.TrimSpace(v.Secret) == "" {
		return ErrSecretRequired
	}
	if !core.VerifySignature(v.Secret, signature, body) {
		return ErrSignatureMismatch
	}
	return nil
}

func (v HeaderHMACVerifier) header() string {
	if strings.TrimSpace(v.Header) == "" {
		return core.HeaderSignature
	}
	return v.Header
}

// ServiceVerifier delegates to a client configured with a webhook secret.
type ServiceVerifier struct {
	Validator SignatureValidator
	Header    string
}

func NewServiceVerifier(validator SignatureValidator) ServiceVerifier {
	return ServiceVerifier{Validator: validator, Header: core.HeaderSignature}
}

func (v ServiceVerifier) Verify(_ context.Context, headers http.Header, body []byte) error {
	if v.Validator == nil {
		return ErrSecretRequired
	}
	header := v.Header
	if strings.TrimSpace(header) == "" {
		header = core.HeaderSignature
	}
	signature := headerValue(headers, header)
	if signature == "" {
		return ErrSignatureRequired
	}
	ok, err := v.Validator.ValidateSignature(signature, body)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSignatureMismatch
	}
	return nil
}

func headerValue(headers http.Header, key string) string {
	if len(headers) == 0 {
		return ""
	}
	if value := strings.TrimSpace(headers.Get(key)); value != "" {
		return value
	}
	for existing, values := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) && len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
	}
	return ""
}

var (
	_ Verifier = HeaderHMACVerifier{}
	_ Verifier = ServiceVerifier{}
)
