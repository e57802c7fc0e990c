package query

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-mati/core"
)

type VerificationReader interface {
	RetrieveVerification(ctx context.Context, verificationID string) (core.Verification, error)
	FetchVerification(ctx context.Context, resourceURL string) (core.Verification, error)
	FetchResource(ctx context.Context, resourceURL string) (json.RawMessage, error)
}

type SignatureValidator interface {
	ValidateSignature(signature string, rawBody []byte) (bool, error)
}

type RetrieveVerificationQuery struct {
	reader VerificationReader
}

func NewRetrieveVerificationQuery(reader VerificationReader) *RetrieveVerificationQuery {
	return &RetrieveVerificationQuery{reader: reader}
}

func (q *RetrieveVerificationQuery) Query(ctx context.Context, msg RetrieveVerificationMessage) (core.Verification, error) {
	if q == nil || q.reader == nil {
		return core.Verification{}, queryDependencyError("query: verification reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.Verification{}, err
	}
	return q.reader.RetrieveVerification(ctx, msg.VerificationID)
}

type FetchVerificationQuery struct {
	reader VerificationReader
}

func NewFetchVerificationQuery(reader VerificationReader) *FetchVerificationQuery {
	return &FetchVerificationQuery{reader: reader}
}

func (q *FetchVerificationQuery) Query(ctx context.Context, msg FetchVerificationMessage) (core.Verification, error) {
	if q == nil || q.reader == nil {
		return core.Verification{}, queryDependencyError("query: verification reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.Verification{}, err
	}
	return q.reader.FetchVerification(ctx, msg.ResourceURL)
}

type FetchResourceQuery struct {
	reader VerificationReader
}

func NewFetchResourceQuery(reader VerificationReader) *FetchResourceQuery {
	return &FetchResourceQuery{reader: reader}
}

func (q *FetchResourceQuery) Query(ctx context.Context, msg FetchResourceMessage) (json.RawMessage, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: resource reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.reader.FetchResource(ctx, msg.ResourceURL)
}

type ValidateSignatureQuery struct {
	validator SignatureValidator
}

func NewValidateSignatureQuery(validator SignatureValidator) *ValidateSignatureQuery {
	return &ValidateSignatureQuery{validator: validator}
}

func (q *ValidateSignatureQuery) Query(_ context.Context, msg ValidateSignatureMessage) (bool, error) {
	if q == nil || q.validator == nil {
		return false, queryDependencyError("query: signature validator is required")
	}
	if err := msg.Validate(); err != nil {
		return false, err
	}
	return q.validator.ValidateSignature(msg.Signature, msg.RawBody)
}
