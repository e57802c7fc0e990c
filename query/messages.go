package query

import (
	"net/url"
	"strings"
)

const (
	TypeRetrieveVerification = "mati.query.verification.retrieve"
	TypeFetchVerification    = "mati.query.verification.fetch"
	TypeFetchResource        = "mati.query.resource.fetch"
	TypeValidateSignature    = "mati.query.webhook.validate_signature"
)

type RetrieveVerificationMessage struct {
	VerificationID string
}

func (RetrieveVerificationMessage) Type() string { return TypeRetrieveVerification }

func (m RetrieveVerificationMessage) Validate() error {
	if strings.TrimSpace(m.VerificationID) == "" {
		return queryValidationError("verification_id", "verification id is required")
	}
	return nil
}

type FetchVerificationMessage struct {
	ResourceURL string
}

func (FetchVerificationMessage) Type() string { return TypeFetchVerification }

func (m FetchVerificationMessage) Validate() error {
	return validateResourceURL(m.ResourceURL)
}

type FetchResourceMessage struct {
	ResourceURL string
}

func (FetchResourceMessage) Type() string { return TypeFetchResource }

func (m FetchResourceMessage) Validate() error {
	return validateResourceURL(m.ResourceURL)
}

type ValidateSignatureMessage struct {
	Signature string
	RawBody   []byte
}

func (ValidateSignatureMessage) Type() string { return TypeValidateSignature }

func (m ValidateSignatureMessage) Validate() error {
	if len(m.RawBody) == 0 {
		return queryValidationError("raw_body", "raw body is required")
	}
	return nil
}

func validateResourceURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return queryValidationError("resource_url", "resource url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return queryValidationError("resource_url", "resource url must be absolute")
	}
	return nil
}
