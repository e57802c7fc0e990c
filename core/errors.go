package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorConfig   = "MATI_CONFIG_ERROR"
	ErrorAuth     = "MATI_AUTH_ERROR"
	ErrorHTTP     = "MATI_HTTP_ERROR"
	ErrorDecode   = "MATI_DECODE_ERROR"
	ErrorBadInput = "MATI_BAD_INPUT"
	ErrorInternal = "MATI_INTERNAL_ERROR"
	// ErrorTransport marks failures to complete an exchange at all. Adapters
	// report it; the dispatcher passes it through untouched.
	ErrorTransport = "MATI_TRANSPORT_ERROR"
)

// ResponseError carries the raw response of a non-2xx call. It is the source
// of every MATI_HTTP_ERROR envelope and can be extracted with errors.As.
type ResponseError struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
	Method     string
	URL        string
}

func (e *ResponseError) Error() string {
	if e == nil {
		return "core: response error"
	}
	body := strings.TrimSpace(string(e.Body))
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	if body == "" {
		return fmt.Sprintf("core: %s %s returned status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("core: %s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, body)
}

func newConfigError(message string, metadata map[string]any) error {
	return newError(message, goerrors.CategoryBadInput, http.StatusBadRequest, ErrorConfig, nil, metadata)
}

func wrapConfigError(source error, metadata map[string]any) error {
	if source == nil {
		return nil
	}
	if hasTextCode(source, ErrorConfig) {
		return source
	}
	return newError("core: invalid configuration", goerrors.CategoryBadInput, http.StatusBadRequest, ErrorConfig, source, metadata)
}

func newBadInputError(message string, metadata map[string]any) error {
	return newError(message, goerrors.CategoryBadInput, http.StatusBadRequest, ErrorBadInput, nil, metadata)
}

// newAuthError keeps the failed exchange as its source instead of using
// goerrors.Wrap, which would clone a rich source and lose the auth category.
func newAuthError(source error, metadata map[string]any) error {
	return newError("core: oauth client credentials exchange failed", goerrors.CategoryAuth, http.StatusUnauthorized, ErrorAuth, source, metadata)
}

func newHTTPError(res *ResponseError, metadata map[string]any) error {
	meta := map[string]any{
		"status_code": res.StatusCode,
		"method":      res.Method,
		"url":         res.URL,
	}
	for key, value := range metadata {
		meta[key] = value
	}
	return newError(
		fmt.Sprintf("core: request failed with status %d", res.StatusCode),
		httpStatusCategory(res.StatusCode),
		res.StatusCode,
		ErrorHTTP,
		res,
		meta,
	)
}

func newDecodeError(source error, message string, metadata map[string]any) error {
	return newError(message, goerrors.CategoryExternal, http.StatusBadGateway, ErrorDecode, source, metadata)
}

func newError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	source error,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	err.Source = source
	if callID, ok := metadata["call_id"].(string); ok && callID != "" {
		err.WithRequestID(callID)
	}
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func httpStatusCategory(status int) goerrors.Category {
	switch {
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case status == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case status == http.StatusConflict:
		return goerrors.CategoryConflict
	case status == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case status >= 400 && status < 500:
		return goerrors.CategoryBadInput
	default:
		return goerrors.CategoryExternal
	}
}

// hasTextCode walks the whole unwrap chain so an auth error that wraps an
// HTTP error answers for both codes.
func hasTextCode(err error, textCode string) bool {
	for err != nil {
		if rich, ok := err.(*goerrors.Error); ok && rich.TextCode == textCode {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

func IsConfigError(err error) bool { return hasTextCode(err, ErrorConfig) }

func IsAuthError(err error) bool { return hasTextCode(err, ErrorAuth) }

func IsHTTPError(err error) bool { return hasTextCode(err, ErrorHTTP) }

func IsDecodeError(err error) bool { return hasTextCode(err, ErrorDecode) }

func IsBadInputError(err error) bool { return hasTextCode(err, ErrorBadInput) }

func IsTransportError(err error) bool { return hasTextCode(err, ErrorTransport) }

// HTTPStatusCode returns the status of the first non-2xx response found in
// the error chain.
func HTTPStatusCode(err error) (int, bool) {
	var res *ResponseError
	if errors.As(err, &res) && res != nil {
		return res.StatusCode, true
	}
	return 0, false
}

func AsResponseError(err error) (*ResponseError, bool) {
	var res *ResponseError
	if errors.As(err, &res) && res != nil {
		return res, true
	}
	return nil, false
}
