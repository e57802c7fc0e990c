package core

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerUserAgent     = "User-Agent"
	headerRequestID     = "X-Request-Id"
)

// Call performs one logical API call. A bearer call rejected with 401 on its
// first attempt retires the token, authenticates again and is replayed once,
// unless that token was itself minted for this call. Any other non-2xx status
// becomes an HTTP error. Transport failures are returned as produced by the
// adapter.
func (s *Service) Call(ctx context.Context, req Request, mode AuthMode) (res Response, err error) {
	if s == nil || s.transport == nil {
		return Response{}, newConfigError("core: service is not initialized", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now()
	callID := s.newCallID()
	method := normalizeMethod(req.Method, req.Body)
	fields := map[string]any{
		"call_id":   callID,
		"method":    method,
		"auth_mode": string(mode),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "request", err, fields)
	}()

	normalized, ok := mode.normalize()
	if !ok {
		return Response{}, newBadInputError("core: unsupported auth mode", fields)
	}
	fields["auth_mode"] = string(normalized)

	target, err := s.resolveURL(req)
	if err != nil {
		return Response{}, err
	}
	fields["url"] = target

	body, err := encodeRequestBody(req.Body)
	if err != nil {
		return Response{}, newBadInputError(err.Error(), fields)
	}

	cfg := s.Config()
	reauthenticated := false
	for attempt := 1; ; attempt++ {
		resolved, authErr := s.authorizationHeader(ctx, normalized)
		if authErr != nil {
			return Response{}, authErr
		}
		if resolved.minted {
			reauthenticated = true
		}

		transportRes, doErr := s.transport.Do(ctx, TransportRequest{
			Method:               method,
			URL:                  target,
			Headers:              buildHeaders(req.Headers, body.ContentType, resolved.header, cfg.UserAgent, callID),
			Body:                 body.Payload,
			Metadata:             map[string]any{"call_id": callID, "attempt": attempt},
			Timeout:              cfg.Transport.Timeout,
			MaxResponseBodyBytes: cfg.Transport.MaxResponseBytes,
		})
		if doErr != nil {
			return Response{}, doErr
		}
		fields["status_code"] = transportRes.StatusCode

		if isSuccessStatus(transportRes.StatusCode) {
			return Response{
				StatusCode: transportRes.StatusCode,
				Headers:    transportRes.Headers,
				Body:       transportRes.Body,
				CallID:     callID,
			}, nil
		}

		if transportRes.StatusCode == http.StatusUnauthorized && normalized == AuthModeBearer && !reauthenticated {
			reauthenticated = true
			fields["reauthenticated"] = true
			s.logDebug(ctx, "bearer token rejected, authenticating again", map[string]any{
				"call_id": callID,
				"url":     target,
			})
			s.credentials.Invalidate(resolved.accessToken)
			s.recordCounter(ctx, "mati.auth.reauthenticate.total", 1, map[string]string{"method": method})
			if _, _, authErr := s.authenticate(ctx); authErr != nil {
				return Response{}, authErr
			}
			continue
		}
		if transportRes.StatusCode == http.StatusUnauthorized && resolved.minted {
			s.logWarn(ctx, "bearer token rejected right after exchange", map[string]any{
				"call_id": callID,
				"url":     target,
			})
		}

		return Response{}, newHTTPError(&ResponseError{
			StatusCode: transportRes.StatusCode,
			Body:       transportRes.Body,
			Headers:    transportRes.Headers,
			Method:     method,
			URL:        target,
		}, map[string]any{"call_id": callID})
	}
}

func (s *Service) resolveURL(req Request) (string, error) {
	if explicit := strings.TrimSpace(req.URL); explicit != "" {
		return explicit, nil
	}
	path := strings.TrimLeft(strings.TrimSpace(req.Path), "/")
	if path == "" {
		return "", newBadInputError("core: request path or url is required", nil)
	}
	return s.credentials.Host() + "/" + path, nil
}

func buildHeaders(extra map[string]string, contentType string, authorization string, userAgent string, callID string) map[string]string {
	headers := map[string]string{
		headerAccept:    "application/json",
		headerRequestID: callID,
	}
	if strings.TrimSpace(userAgent) != "" {
		headers[headerUserAgent] = userAgent
	}
	if contentType != "" {
		headers[headerContentType] = contentType
	}
	for key, value := range extra {
		headers[key] = value
	}
	if authorization != "" {
		headers[headerAuthorization] = authorization
	}
	return headers
}
