package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// SignatureHeader carries the HMAC-SHA256 signature of the raw body.
	SignatureHeader = "X-Webhook-Signature"
	// SignaturePrefix precedes the hex digest in the header value.
	SignaturePrefix = "sha256="
)

// Verifier authenticates one inbound webhook request before any payload
// parsing happens.
type Verifier interface {
	Verify(ctx context.Context, headers map[string]string, body []byte) error
}

// HeaderHMACVerifier checks the sha256=<hex> signature Planka sends when a
// shared webhook secret is configured. Comparison is constant time.
type HeaderHMACVerifier struct {
	Secret string
}

func (v HeaderHMACVerifier) Verify(_ context.Context, headers map[string]string, body []byte) error {
	secret := strings.TrimSpace(v.Secret)
	if secret == "" {
		return fmt.Errorf("webhooks: signature secret is required")
	}
	header := strings.TrimSpace(headerValue(headers, SignatureHeader))
	if header == "" {
		return fmt.Errorf("webhooks: missing signature")
	}
	signature, ok := strings.CutPrefix(header, SignaturePrefix)
	if !ok {
		return fmt.Errorf("webhooks: invalid signature")
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return fmt.Errorf("webhooks: invalid signature")
	}

	decoded, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("webhooks: invalid signature")
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	if subtle.ConstantTimeCompare(decoded, mac.Sum(nil)) != 1 {
		return fmt.Errorf("webhooks: invalid signature")
	}
	return nil
}

// SignBody computes the header value for a body and secret. Used by tests
// and by local tooling that replays captured deliveries.
func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return SignaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
