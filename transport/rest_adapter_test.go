package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-mati/core"
)

func TestRESTAdapter_SendsRequestAndReturnsNon2xxAsResponse(t *testing.T) {
	var gotMethod, gotAuth, gotAgent, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		payload, _ := io.ReadAll(r.Body)
		gotBody = string(payload)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"missing"}`))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.DefaultHeaders["User-Agent"] = "default-agent"

	res, err := adapter.Do(context.Background(), core.TransportRequest{
		Method:  http.MethodPost,
		URL:     server.URL + "/v2/identities",
		Headers: map[string]string{"Authorization": "Bearer abc", "User-Agent": "go-mati"},
		Body:    []byte(`{"metadata":{}}`),
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %d", res.StatusCode)
	}
	if string(res.Body) != `{"message":"missing"}` {
		t.Fatalf("unexpected body %q", res.Body)
	}
	if res.Headers["Content-Type"] != "application/json" {
		t.Fatalf("unexpected headers %v", res.Headers)
	}
	if gotMethod != http.MethodPost || gotAuth != "Bearer abc" || gotBody != `{"metadata":{}}` {
		t.Fatalf("unexpected request %s %q %q", gotMethod, gotAuth, gotBody)
	}
	if gotAgent != "go-mati" {
		t.Fatalf("expected request headers to win over defaults, got %q", gotAgent)
	}
}

func TestRESTAdapter_ResponseLimitReturnsRichError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.MaxResponseBodyBytes = 4

	_, err := adapter.Do(context.Background(), core.TransportRequest{Method: http.MethodGet, URL: server.URL})
	if err == nil {
		t.Fatalf("expected response body limit error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %q", rich.Category)
	}
	if rich.TextCode != core.ErrorTransport {
		t.Fatalf("expected %q text code, got %q", core.ErrorTransport, rich.TextCode)
	}
	if rich.Code != http.StatusBadGateway {
		t.Fatalf("expected %d code, got %d", http.StatusBadGateway, rich.Code)
	}
}

func TestRESTAdapter_RequestLimitOverridesAdapterLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.MaxResponseBodyBytes = 4

	res, err := adapter.Do(context.Background(), core.TransportRequest{URL: server.URL, MaxResponseBodyBytes: 16})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if string(res.Body) != "12345" {
		t.Fatalf("unexpected body %q", res.Body)
	}
}

func TestRESTAdapter_TimeoutKeepsContextError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	adapter := NewRESTAdapter(server.Client())
	_, err := adapter.Do(context.Background(), core.TransportRequest{URL: server.URL, Timeout: 20 * time.Millisecond})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}
	if !core.IsTransportError(err) {
		t.Fatalf("expected transport error code, got %v", err)
	}
}

func TestRESTAdapter_RejectsRelativeURL(t *testing.T) {
	adapter := NewRESTAdapter(nil)
	_, err := adapter.Do(context.Background(), core.TransportRequest{URL: "v2/identities"})
	if !core.IsBadInputError(err) {
		t.Fatalf("expected bad input error, got %v", err)
	}
}

func TestRESTAdapter_NilReturnsRichError(t *testing.T) {
	var adapter *RESTAdapter
	_, err := adapter.Do(context.Background(), core.TransportRequest{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal || rich.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected envelope %+v", rich)
	}
}

func TestNewRESTAdapterFromConfig(t *testing.T) {
	adapter := NewRESTAdapterFromConfig(core.TransportConfig{Timeout: 5 * time.Second, MaxResponseBytes: 1024})
	client, ok := adapter.Client.(*http.Client)
	if !ok || client.Timeout != 5*time.Second {
		t.Fatalf("unexpected client %#v", adapter.Client)
	}
	if adapter.MaxResponseBodyBytes != 1024 {
		t.Fatalf("unexpected limit %d", adapter.MaxResponseBodyBytes)
	}
	if adapter.Kind() != KindREST {
		t.Fatalf("unexpected kind %q", adapter.Kind())
	}
}
