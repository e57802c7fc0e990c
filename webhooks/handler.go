package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-mati/core"
)

const defaultMaxBodyBytes int64 = 1 << 20

type EventHandler interface {
	HandleEvent(ctx context.Context, event core.WebhookResource) error
}

type EventHandlerFunc func(ctx context.Context, event core.WebhookResource) error

func (f EventHandlerFunc) HandleEvent(ctx context.Context, event core.WebhookResource) error {
	return f(ctx, event)
}

// Router dispatches events by name. Events without a registered handler go
// to Fallback, or are acknowledged and dropped when Fallback is nil.
type Router struct {
	mu       sync.RWMutex
	handlers map[core.EventName]EventHandler
	Fallback EventHandler
}

func NewRouter() *Router {
	return &Router{handlers: map[core.EventName]EventHandler{}}
}

func (r *Router) On(name core.EventName, handler EventHandler) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers == nil {
		r.handlers = map[core.EventName]EventHandler{}
	}
	r.handlers[name] = handler
	return r
}

func (r *Router) HandleEvent(ctx context.Context, event core.WebhookResource) error {
	r.mu.RLock()
	handler, ok := r.handlers[event.EventName]
	r.mu.RUnlock()
	if !ok || handler == nil {
		handler = r.Fallback
	}
	if handler == nil {
		return nil
	}
	return handler.HandleEvent(ctx, event)
}

// Handler is an http.Handler for webhook deliveries: bad signatures answer
// 401, malformed bodies 400, and handler failures 500 so the sender retries.
type Handler struct {
	Verifier     Verifier
	Events       EventHandler
	MaxBodyBytes int64
	Logger       core.Logger
}

func NewHandler(verifier Verifier, events EventHandler) *Handler {
	return &Handler{
		Verifier:     verifier,
		Events:       events,
		MaxBodyBytes: defaultMaxBodyBytes,
		Logger:       glog.Nop(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeStatus(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()
	logger := h.logger().WithContext(ctx)

	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		logger.Warn("webhook body read failed", "error", err)
		writeStatus(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if int64(len(body)) > limit {
		logger.Warn("webhook body too large", "limit_bytes", limit)
		writeStatus(w, http.StatusRequestEntityTooLarge, "body too large")
		return
	}

	if h.Verifier == nil {
		logger.Error("webhook verifier is not configured")
		writeStatus(w, http.StatusInternalServerError, "verifier not configured")
		return
	}
	if err := h.Verifier.Verify(ctx, r.Header, body); err != nil {
		if errors.Is(err, ErrSignatureRequired) || errors.Is(err, ErrSignatureMismatch) {
			logger.Warn("webhook signature rejected", "error", err)
			writeStatus(w, http.StatusUnauthorized, "invalid signature")
			return
		}
		logger.Error("webhook verification failed", "error", err)
		writeStatus(w, http.StatusInternalServerError, "verification unavailable")
		return
	}

	event, err := core.DecodeWebhookResource(body)
	if err != nil {
		logger.Warn("webhook payload rejected", "error", err)
		writeStatus(w, http.StatusBadRequest, "malformed payload")
		return
	}
	if !event.EventName.Known() {
		logger.Info("webhook event name not recognised", "event_name", string(event.EventName))
	}

	if h.Events != nil {
		if err := h.Events.HandleEvent(ctx, event); err != nil {
			logger.Error("webhook event handler failed", "event_name", string(event.EventName), "error", err)
			writeStatus(w, http.StatusInternalServerError, "event handler failed")
			return
		}
	}
	logger.Debug("webhook event accepted", "event_name", string(event.EventName), "resource", event.Resource)
	writeStatus(w, http.StatusOK, "ok")
}

func (h *Handler) logger() core.Logger {
	if h == nil || h.Logger == nil {
		return glog.Nop()
	}
	return h.Logger
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": strings.ReplaceAll(message, " ", "_")})
}

var (
	_ http.Handler = (*Handler)(nil)
	_ EventHandler = (*Router)(nil)
)
