package webhooks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-mati/core"
)

const (
	testBody      = `{"eventName":"verification_completed","metadata":{"email":"john@gmail.com"},"resource":"https://api.getmati.com/api/v1/verifications/db8d24783"}`
	testSignature = "0c5ed2cad914fd2a1571b47bb087953af574a353ff9d96f8603f8c0d7955340c"
)

func deliver(t *testing.T, handler http.Handler, method string, signature string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/webhooks/mati", strings.NewReader(body))
	if signature != "" {
		req.Header.Set("x-signature", signature)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHeaderHMACVerifier(t *testing.T) {
	verifier := NewHMACVerifier("webhookSecret")
	headers := http.Header{}
	headers.Set("X-Signature", testSignature)
	if err := verifier.Verify(context.Background(), headers, []byte(testBody)); err != nil {
		t.Fatalf("expected valid signature: %v", err)
	}

	headers.Set("X-Signature", strings.Repeat("0", 64))
	if err := verifier.Verify(context.Background(), headers, []byte(testBody)); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := verifier.Verify(context.Background(), http.Header{}, []byte(testBody)); !errors.Is(err, ErrSignatureRequired) {
		t.Fatalf("expected missing signature, got %v", err)
	}
	headers.Set("X-Signature", testSignature)
	if err := (HeaderHMACVerifier{}).Verify(context.Background(), headers, []byte(testBody)); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected missing secret, got %v", err)
	}
}

type stubValidator struct {
	ok  bool
	err error
}

func (s stubValidator) ValidateSignature(string, []byte) (bool, error) {
	return s.ok, s.err
}

func TestHandler_DispatchesVerifiedEvent(t *testing.T) {
	var received []core.WebhookResource
	router := NewRouter().On(core.EventVerificationCompleted, EventHandlerFunc(func(_ context.Context, event core.WebhookResource) error {
		received = append(received, event)
		return nil
	}))
	handler := NewHandler(NewHMACVerifier("webhookSecret"), router)

	rec := deliver(t, handler, http.MethodPost, testSignature, testBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(received) != 1 {
		t.Fatalf("expected one dispatched event, got %d", len(received))
	}
	if received[0].Resource != "https://api.getmati.com/api/v1/verifications/db8d24783" {
		t.Fatalf("unexpected resource %q", received[0].Resource)
	}
}

func TestHandler_RejectsBadSignature(t *testing.T) {
	called := false
	handler := NewHandler(NewHMACVerifier("webhookSecret"), EventHandlerFunc(func(context.Context, core.WebhookResource) error {
		called = true
		return nil
	}))

	if rec := deliver(t, handler, http.MethodPost, "deadbeef", testBody); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for mismatch, got %d", rec.Code)
	}
	if rec := deliver(t, handler, http.MethodPost, "", testBody); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing signature, got %d", rec.Code)
	}
	if called {
		t.Fatalf("event handler must not run for unverified deliveries")
	}
}

func TestHandler_RejectsMalformedPayload(t *testing.T) {
	body := `{"metadata":{}}`
	signature := core.ComputeSignature("webhookSecret", []byte(body))
	handler := NewHandler(NewHMACVerifier("webhookSecret"), nil)

	if rec := deliver(t, handler, http.MethodPost, signature, body); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_MethodAndLimits(t *testing.T) {
	handler := NewHandler(NewHMACVerifier("webhookSecret"), nil)
	if rec := deliver(t, handler, http.MethodGet, testSignature, ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	handler.MaxBodyBytes = 8
	if rec := deliver(t, handler, http.MethodPost, testSignature, testBody); rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestHandler_EventHandlerFailureIs500(t *testing.T) {
	handler := NewHandler(NewHMACVerifier("webhookSecret"), EventHandlerFunc(func(context.Context, core.WebhookResource) error {
		return errors.New("queue unavailable")
	}))
	if rec := deliver(t, handler, http.MethodPost, testSignature, testBody); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestServiceVerifier(t *testing.T) {
	handler := NewHandler(NewServiceVerifier(stubValidator{ok: true}), nil)
	if rec := deliver(t, handler, http.MethodPost, testSignature, testBody); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	handler = NewHandler(NewServiceVerifier(stubValidator{ok: false}), nil)
	if rec := deliver(t, handler, http.MethodPost, testSignature, testBody); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	handler = NewHandler(NewServiceVerifier(stubValidator{err: errors.New("webhook secret is not configured")}), nil)
	if rec := deliver(t, handler, http.MethodPost, testSignature, testBody); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the secret is missing, got %d", rec.Code)
	}
}

func TestRouter_FallbackForUnknownEvents(t *testing.T) {
	var names []core.EventName
	router := NewRouter()
	router.Fallback = EventHandlerFunc(func(_ context.Context, event core.WebhookResource) error {
		names = append(names, event.EventName)
		return nil
	})
	if err := router.HandleEvent(context.Background(), core.WebhookResource{EventName: "identity_archived"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(names) != 1 || names[0] != "identity_archived" {
		t.Fatalf("unexpected fallback dispatch %v", names)
	}
	if err := NewRouter().HandleEvent(context.Background(), core.WebhookResource{EventName: core.EventStepCompleted}); err != nil {
		t.Fatalf("expected unrouted events to be dropped, got %v", err)
	}
}
