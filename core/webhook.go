package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const HeaderSignature = "x-signature"

type EventName string

const (
	EventStepCompleted               EventName = "step_completed"
	EventVerificationCompleted       EventName = "verification_completed"
	EventVerificationExpired         EventName = "verification_expired"
	EventVerificationInputsCompleted EventName = "verification_inputs_completed"
	EventVerificationStarted         EventName = "verification_started"
	EventVerificationUpdated         EventName = "verification_updated"
)

// Known reports whether the event name is one of the documented events.
// Unknown names are still delivered verbatim.
func (e EventName) Known() bool {
	switch e {
	case EventStepCompleted,
		EventVerificationCompleted,
		EventVerificationExpired,
		EventVerificationInputsCompleted,
		EventVerificationStarted,
		EventVerificationUpdated:
		return true
	default:
		return false
	}
}

type WebhookResource struct {
	EventName EventName
	Metadata  any
	Resource  string
	Timestamp *time.Time
	Raw       json.RawMessage
}

type webhookResourceWire struct {
	EventName string          `json:"eventName"`
	Metadata  json.RawMessage `json:"metadata"`
	Resource  string          `json:"resource"`
	Timestamp string          `json:"timestamp"`
}

// DecodeWebhookResource parses a webhook body. Signature validation must run
// on the same bytes before they are decoded.
func DecodeWebhookResource(body []byte) (WebhookResource, error) {
	var wire webhookResourceWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return WebhookResource{}, fmt.Errorf("core: decode webhook: %w", err)
	}
	if strings.TrimSpace(wire.EventName) == "" {
		return WebhookResource{}, fmt.Errorf("core: webhook is missing eventName")
	}
	if strings.TrimSpace(wire.Resource) == "" {
		return WebhookResource{}, fmt.Errorf("core: webhook is missing resource")
	}
	out := WebhookResource{
		EventName: EventName(strings.TrimSpace(wire.EventName)),
		Resource:  strings.TrimSpace(wire.Resource),
		Raw:       append(json.RawMessage(nil), body...),
	}
	if len(wire.Metadata) > 0 && string(wire.Metadata) != "null" {
		var metadata any
		if err := json.Unmarshal(wire.Metadata, &metadata); err != nil {
			return WebhookResource{}, fmt.Errorf("core: decode webhook metadata: %w", err)
		}
		out.Metadata = metadata
	}
	timestamp, err := parseTimestamp("timestamp", wire.Timestamp)
	if err != nil {
		return WebhookResource{}, err
	}
	out.Timestamp = timestamp
	return out, nil
}
