package devkit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/goliatone/go-mati/core"
)

const KindFake = "fake"

type TransportScript struct {
	Response core.TransportResponse
	Err      error
}

type route struct {
	method  string
	path    string
	scripts []TransportScript
	served  int
}

// FakeTransportAdapter answers requests from scripts. Routed scripts match on
// method and URL path; anything else falls through to the sequential scripts.
// Each script list replays its last entry once exhausted.
type FakeTransportAdapter struct {
	mu       sync.Mutex
	scripts  []TransportScript
	routes   []*route
	requests []core.TransportRequest
	served   int
}

func NewFakeTransportAdapter(scripts ...TransportScript) *FakeTransportAdapter {
	return &FakeTransportAdapter{scripts: append([]TransportScript(nil), scripts...)}
}

// Route registers scripts for method and path. An empty method matches any
// method; path is compared against the request URL path without a leading
// slash.
func (a *FakeTransportAdapter) Route(method string, path string, scripts ...TransportScript) *FakeTransportAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes = append(a.routes, &route{
		method:  strings.ToUpper(strings.TrimSpace(method)),
		path:    strings.Trim(strings.TrimSpace(path), "/"),
		scripts: append([]TransportScript(nil), scripts...),
	})
	return a
}

func (*FakeTransportAdapter) Kind() string {
	return KindFake
}

func (a *FakeTransportAdapter) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil {
		return core.TransportResponse{}, fmt.Errorf("devkit: fake transport adapter is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, cloneTransportRequest(req))
	if matched := a.match(req); matched != nil {
		script := next(matched.scripts, matched.served)
		matched.served++
		return cloneTransportResponse(script.Response), script.Err
	}
	if len(a.scripts) > 0 {
		script := next(a.scripts, a.served)
		a.served++
		return cloneTransportResponse(script.Response), script.Err
	}
	return core.TransportResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{},
		Body:       []byte(`{}`),
		Metadata:   map[string]any{"kind": KindFake},
	}, nil
}

func (a *FakeTransportAdapter) match(req core.TransportRequest) *route {
	path := requestPath(req.URL)
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	for _, candidate := range a.routes {
		if candidate.method != "" && candidate.method != method {
			continue
		}
		if candidate.path == path && len(candidate.scripts) > 0 {
			return candidate
		}
	}
	return nil
}

func next(scripts []TransportScript, served int) TransportScript {
	if served < len(scripts) {
		return scripts[served]
	}
	return scripts[len(scripts)-1]
}

func requestPath(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.Trim(raw, "/")
	}
	return strings.Trim(parsed.Path, "/")
}

func (a *FakeTransportAdapter) Requests() []core.TransportRequest {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]core.TransportRequest, 0, len(a.requests))
	for _, item := range a.requests {
		out = append(out, cloneTransportRequest(item))
	}
	return out
}

// RequestsTo returns the recorded requests whose URL path equals path.
func (a *FakeTransportAdapter) RequestsTo(path string) []core.TransportRequest {
	path = strings.Trim(strings.TrimSpace(path), "/")
	var out []core.TransportRequest
	for _, item := range a.Requests() {
		if requestPath(item.URL) == path {
			out = append(out, item)
		}
	}
	return out
}

func cloneTransportRequest(in core.TransportRequest) core.TransportRequest {
	out := core.TransportRequest{
		Method:               in.Method,
		URL:                  in.URL,
		Headers:              map[string]string{},
		Body:                 append([]byte(nil), in.Body...),
		Metadata:             map[string]any{},
		Timeout:              in.Timeout,
		MaxResponseBodyBytes: in.MaxResponseBodyBytes,
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

func cloneTransportResponse(in core.TransportResponse) core.TransportResponse {
	out := core.TransportResponse{
		StatusCode: in.StatusCode,
		Headers:    map[string]string{},
		Body:       append([]byte(nil), in.Body...),
		Metadata:   map[string]any{},
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

var _ core.TransportAdapter = (*FakeTransportAdapter)(nil)
