package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the normalized event record moving through the broadcast
// channel. Immutable once published.
type Envelope struct {
	Type      string   `json:"type"`
	URIs      []string `json:"uris"`
	Timestamp int64    `json:"timestamp"`
}

// WebhookPayload is the raw inbound webhook body. Ephemeral: it exists for
// the duration of ingestion and classification and is never persisted.
type WebhookPayload struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// EncodeEnvelope renders the envelope in the broadcast wire format.
func EncodeEnvelope(env Envelope) ([]byte, error) {
	if strings.TrimSpace(env.Type) == "" {
		return nil, fmt.Errorf("core: envelope type is required")
	}
	if len(env.URIs) == 0 {
		return nil, fmt.Errorf("core: envelope uris are required")
	}
	return json.Marshal(env)
}

// DecodeEnvelope parses a broadcast payload. Anything that does not decode
// into a typed envelope is reported as an error so dispatch loops can log
// and drop it.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("core: decode envelope: %w", err)
	}
	if strings.TrimSpace(env.Type) == "" {
		return Envelope{}, fmt.Errorf("core: envelope type is required")
	}
	return env, nil
}

// NormalizeData coerces a loosely typed webhook data field into a map.
// Upstream senders are not fully trusted to honor the schema, so anything
// that is not map-shaped degrades to an empty map instead of failing.
func NormalizeData(value any) map[string]any {
	if value == nil {
		return map[string]any{}
	}
	if data, ok := value.(map[string]any); ok {
		return data
	}
	return map[string]any{}
}
