package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/mintopia/planka-mcp-sub001/core"
)

// JobIDProcessWebhook names the queue job the ingestor enqueues for every
// accepted delivery.
const JobIDProcessWebhook = "planka.notifications.webhook.process"

// IngestResult is the boundary outcome handed back to the HTTP layer.
type IngestResult struct {
	Accepted   bool
	StatusCode int
	Response   map[string]any
}

// Ingestor is the webhook ingestion endpoint. It verifies authenticity,
// does the minimum shape validation, enqueues exactly one processing job,
// and answers immediately; it never waits for classification or dispatch.
type Ingestor struct {
	Enabled  bool
	Secret   string
	Enqueuer core.JobEnqueuer
	Logger   core.Logger
}

func NewIngestor(cfg core.Config, enqueuer core.JobEnqueuer, logger core.Logger) *Ingestor {
	return &Ingestor{
		Enabled:  cfg.Subscriptions.Enabled,
		Secret:   strings.TrimSpace(cfg.Webhook.Secret),
		Enqueuer: enqueuer,
		Logger:   glog.Ensure(logger),
	}
}

// Ingest applies the boundary checks in order: feature gate, signature,
// payload shape. Signature verification happens before any parsing so a
// forged request never drives JSON decoding of attacker-controlled bytes.
func (i *Ingestor) Ingest(ctx context.Context, headers map[string]string, body []byte) (IngestResult, error) {
	if i == nil || i.Enqueuer == nil {
		return IngestResult{}, ingestInternal("webhooks: ingestor requires an enqueuer", nil)
	}

	if !i.Enabled {
		return IngestResult{
			StatusCode: http.StatusNotFound,
			Response:   map[string]any{"error": "Subscriptions not enabled"},
		}, ingestNotEnabled("webhooks: subscriptions not enabled", nil)
	}

	if i.Secret != "" {
		if strings.TrimSpace(headerValue(headers, SignatureHeader)) == "" {
			return IngestResult{
				StatusCode: http.StatusUnauthorized,
				Response:   map[string]any{"error": "Missing signature"},
			}, ingestUnauthenticated("webhooks: missing signature", nil)
		}
		verifier := HeaderHMACVerifier{Secret: i.Secret}
		if err := verifier.Verify(ctx, headers, body); err != nil {
			return IngestResult{
				StatusCode: http.StatusUnauthorized,
				Response:   map[string]any{"error": "Invalid signature"},
			}, ingestUnauthenticated("webhooks: invalid signature", nil)
		}
	}

	var payload core.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil || strings.TrimSpace(payload.Type) == "" {
		return IngestResult{
			StatusCode: http.StatusBadRequest,
			Response:   map[string]any{"error": "Missing event type"},
		}, ingestBadInput("webhooks: event type is required", nil)
	}

	msg := &core.JobExecutionMessage{
		JobID: JobIDProcessWebhook,
		Parameters: map[string]any{
			"type": strings.TrimSpace(payload.Type),
			"data": payload.Data,
		},
	}
	if err := i.Enqueuer.Enqueue(ctx, msg); err != nil {
		i.logError(ctx, "webhook enqueue failed", map[string]any{
			"event_type": payload.Type,
			"error":      err.Error(),
		})
		return IngestResult{}, ingestError(
			"webhooks: enqueue processing job",
			goerrors.CategoryOperation,
			http.StatusInternalServerError,
			core.NotifyErrorTransient,
			map[string]any{"event_type": payload.Type},
		)
	}

	i.logInfo(ctx, "webhook accepted", map[string]any{"event_type": payload.Type})
	return IngestResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
		Response:   map[string]any{"status": "accepted"},
	}, nil
}

// Handler adapts the ingestor to net/http for mounting at the webhook path.
func (i *Ingestor) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
			return
		}
		body, err := readBody(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
			return
		}
		headers := map[string]string{}
		for name := range r.Header {
			headers[name] = r.Header.Get(name)
		}
		result, _ := i.Ingest(r.Context(), headers, body)
		if result.StatusCode == 0 {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal error"})
			return
		}
		writeJSON(w, result.StatusCode, result.Response)
	})
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (i *Ingestor) logInfo(ctx context.Context, message string, fields map[string]any) {
	if i == nil || i.Logger == nil {
		return
	}
	logger := i.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Info(message, flatten(fields)...)
}

func (i *Ingestor) logError(ctx context.Context, message string, fields map[string]any) {
	if i == nil || i.Logger == nil {
		return
	}
	logger := i.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Error(message, flatten(fields)...)
}
