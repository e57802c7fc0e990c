package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type scriptedTransport struct {
	mu       sync.Mutex
	handler  func(call int, req TransportRequest) (TransportResponse, error)
	requests []TransportRequest
}

func (*scriptedTransport) Kind() string { return "scripted" }

func (s *scriptedTransport) Do(_ context.Context, req TransportRequest) (TransportResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	call := len(s.requests)
	handler := s.handler
	s.mu.Unlock()
	if handler == nil {
		return TransportResponse{StatusCode: 200, Body: []byte(`{}`)}, nil
	}
	return handler(call, req)
}

func (s *scriptedTransport) recorded() []TransportRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TransportRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *scriptedTransport) countPath(suffix string) int {
	count := 0
	for _, req := range s.recorded() {
		if strings.HasSuffix(req.URL, suffix) {
			count++
		}
	}
	return count
}

// apiRoutes answers /oauth with sequential tokens and delegates every other
// path to resource.
func apiRoutes(resource func(req TransportRequest) (TransportResponse, error)) func(int, TransportRequest) (TransportResponse, error) {
	var mu sync.Mutex
	issued := 0
	return func(_ int, req TransportRequest) (TransportResponse, error) {
		if strings.HasSuffix(req.URL, "/oauth") {
			mu.Lock()
			issued++
			token := fmt.Sprintf("token-%d", issued)
			mu.Unlock()
			return jsonResponse(200, fmt.Sprintf(`{"access_token":%q,"token_type":"Bearer","expires_in":3600}`, token)), nil
		}
		return resource(req)
	}
}

func jsonResponse(status int, body string) TransportResponse {
	return TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ClientID = "clientId"
	cfg.ClientSecret = "clientSecret"
	cfg.WebhookSecret = "webhookSecret"
	cfg.Host = "https://api.mati.test"
	return cfg
}

func newTestService(t *testing.T, transport *scriptedTransport, opts ...Option) *Service {
	t.Helper()
	options := append([]Option{WithTransport(transport)}, opts...)
	svc, err := NewService(testConfig(), options...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
