package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const verificationsPath = "v2/verifications"

// RetrieveVerification fetches a verification by id.
func (s *Service) RetrieveVerification(ctx context.Context, verificationID string) (verification Verification, err error) {
	startedAt := time.Now()
	verificationID = strings.TrimSpace(verificationID)
	fields := map[string]any{"verification_id": verificationID}
	defer func() {
		s.observeOperation(ctx, startedAt, "verification.retrieve", err, fields)
	}()

	if verificationID == "" {
		return Verification{}, newBadInputError("core: verification id is required", fields)
	}
	res, err := s.Call(ctx, Request{
		Path:   verificationsPath + "/" + url.PathEscape(verificationID),
		Method: http.MethodGet,
	}, AuthModeBearer)
	if err != nil {
		return Verification{}, err
	}
	fields["call_id"] = res.CallID
	return decodeVerificationResponse(res)
}

// FetchResource loads an absolute resource URL, such as the one delivered in
// a webhook, with bearer auth.
func (s *Service) FetchResource(ctx context.Context, resourceURL string) (raw json.RawMessage, err error) {
	startedAt := time.Now()
	resourceURL = strings.TrimSpace(resourceURL)
	fields := map[string]any{"resource": resourceURL}
	defer func() {
		s.observeOperation(ctx, startedAt, "resource.fetch", err, fields)
	}()

	res, err := s.fetch(ctx, resourceURL)
	if err != nil {
		return nil, err
	}
	fields["call_id"] = res.CallID
	if !json.Valid(res.Body) {
		return nil, newDecodeError(nil, "core: resource body is not valid json", map[string]any{"call_id": res.CallID})
	}
	return json.RawMessage(res.Body), nil
}

// FetchVerification loads a verification from its absolute resource URL.
func (s *Service) FetchVerification(ctx context.Context, resourceURL string) (verification Verification, err error) {
	startedAt := time.Now()
	resourceURL = strings.TrimSpace(resourceURL)
	fields := map[string]any{"resource": resourceURL}
	defer func() {
		if verification.ID != "" {
			fields["verification_id"] = verification.ID
		}
		s.observeOperation(ctx, startedAt, "verification.fetch", err, fields)
	}()

	res, err := s.fetch(ctx, resourceURL)
	if err != nil {
		return Verification{}, err
	}
	fields["call_id"] = res.CallID
	return decodeVerificationResponse(res)
}

func (s *Service) fetch(ctx context.Context, resourceURL string) (Response, error) {
	parsed, err := url.Parse(resourceURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Response{}, newBadInputError("core: resource url must be absolute", map[string]any{"resource": resourceURL})
	}
	return s.Call(ctx, Request{URL: resourceURL, Method: http.MethodGet}, AuthModeBearer)
}

func decodeVerificationResponse(res Response) (Verification, error) {
	verification, err := DecodeVerification(res.Body)
	if err != nil {
		return Verification{}, newDecodeError(err, "core: decode verification response", map[string]any{"call_id": res.CallID})
	}
	return verification, nil
}
