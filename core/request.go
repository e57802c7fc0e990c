package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

type AuthMode string

const (
	AuthModeBearer AuthMode = "bearer"
	AuthModeBasic  AuthMode = "basic"
	AuthModeNone   AuthMode = "none"
)

func (m AuthMode) normalize() (AuthMode, bool) {
	switch AuthMode(strings.ToLower(strings.TrimSpace(string(m)))) {
	case "", AuthModeBearer:
		return AuthModeBearer, true
	case AuthModeBasic:
		return AuthModeBasic, true
	case AuthModeNone:
		return AuthModeNone, true
	default:
		return m, false
	}
}

// Request describes one logical API call. URL, when set, wins over Path.
type Request struct {
	Path    string
	URL     string
	Method  string
	Headers map[string]string
	Body    RequestBody
}

type RequestBody interface {
	Encode() (EncodedBody, error)
}

type EncodedBody struct {
	ContentType string
	Payload     []byte
}

type JSONBody struct {
	Value any
}

func (b JSONBody) Encode() (EncodedBody, error) {
	payload, err := json.Marshal(b.Value)
	if err != nil {
		return EncodedBody{}, fmt.Errorf("core: encode json body: %w", err)
	}
	return EncodedBody{ContentType: "application/json", Payload: payload}, nil
}

type FormBody struct {
	Values url.Values
}

func (b FormBody) Encode() (EncodedBody, error) {
	return EncodedBody{
		ContentType: "application/x-www-form-urlencoded",
		Payload:     []byte(b.Values.Encode()),
	}, nil
}

type MultipartField struct {
	Name  string
	Value string
}

type MultipartFile struct {
	FieldName string
	FileName  string
	Content   io.Reader
}

// MultipartBody writes fields first, then files, each in slice order.
type MultipartBody struct {
	Fields []MultipartField
	Files  []MultipartFile
}

// Encode buffers the whole payload: the 401 replay must resend identical
// bytes, which a one-shot reader cannot provide.
func (b MultipartBody) Encode() (EncodedBody, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, field := range b.Fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return EncodedBody{}, fmt.Errorf("core: write multipart field %q: %w", field.Name, err)
		}
	}
	for _, file := range b.Files {
		if file.Content == nil {
			return EncodedBody{}, fmt.Errorf("core: multipart file %q has no content", file.FieldName)
		}
		part, err := writer.CreateFormFile(file.FieldName, file.FileName)
		if err != nil {
			return EncodedBody{}, fmt.Errorf("core: create multipart file %q: %w", file.FieldName, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return EncodedBody{}, fmt.Errorf("core: copy multipart file %q: %w", file.FieldName, err)
		}
	}
	if err := writer.Close(); err != nil {
		return EncodedBody{}, fmt.Errorf("core: close multipart body: %w", err)
	}
	return EncodedBody{ContentType: writer.FormDataContentType(), Payload: buf.Bytes()}, nil
}

type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	CallID     string
}

// Decode unmarshals the body into target, reporting failures as decode
// errors.
func (r Response) Decode(target any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return newDecodeError(nil, "core: response body is empty", map[string]any{"call_id": r.CallID})
	}
	if err := json.Unmarshal(r.Body, target); err != nil {
		return newDecodeError(err, "core: decode response body", map[string]any{"call_id": r.CallID})
	}
	return nil
}

func encodeRequestBody(body RequestBody) (EncodedBody, error) {
	if body == nil {
		return EncodedBody{}, nil
	}
	return body.Encode()
}

func normalizeMethod(method string, body RequestBody) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method != "" {
		return method
	}
	if body != nil {
		return http.MethodPost
	}
	return http.MethodGet
}

func isSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
