package core

import (
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestNotifyErrorMapperClassifiesByMessage(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category goerrors.Category
		textCode string
		code     int
	}{
		{
			name:     "signature failures map to auth",
			err:      fmt.Errorf("webhooks: invalid signature"),
			category: goerrors.CategoryAuth,
			textCode: NotifyErrorUnauthenticated,
			code:     http.StatusUnauthorized,
		},
		{
			name:     "feature gate maps to not found",
			err:      fmt.Errorf("webhooks: subscriptions not enabled"),
			category: goerrors.CategoryNotFound,
			textCode: NotifyErrorNotEnabled,
			code:     http.StatusNotFound,
		},
		{
			name:     "missing fields map to bad input",
			err:      fmt.Errorf("core: session id is required"),
			category: goerrors.CategoryBadInput,
			textCode: NotifyErrorBadInput,
			code:     http.StatusBadRequest,
		},
		{
			name:     "publish failures map to transient",
			err:      fmt.Errorf("broker: publish failed"),
			category: goerrors.CategoryOperation,
			textCode: NotifyErrorTransient,
			code:     http.StatusBadGateway,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := notifyErrorMapper(tc.err)
			if mapped == nil {
				t.Fatal("expected mapped error")
			}
			if mapped.Category != tc.category {
				t.Fatalf("expected category %s, got %s", tc.category, mapped.Category)
			}
			if mapped.TextCode != tc.textCode {
				t.Fatalf("expected text code %s, got %s", tc.textCode, mapped.TextCode)
			}
			if mapped.Code != tc.code {
				t.Fatalf("expected code %d, got %d", tc.code, mapped.Code)
			}
		})
	}
}

func TestNotifyErrorMapperPreservesRichErrors(t *testing.T) {
	original := goerrors.New("already classified", goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(NotifyErrorUnauthenticated)

	mapped := notifyErrorMapper(original)
	if mapped.TextCode != NotifyErrorUnauthenticated {
		t.Fatalf("expected preserved text code, got %s", mapped.TextCode)
	}
	if mapped.Code != http.StatusUnauthorized {
		t.Fatalf("expected preserved code, got %d", mapped.Code)
	}
}

func TestEnsureNotifyErrorEnvelopeFillsGaps(t *testing.T) {
	bare := goerrors.New("", goerrors.CategoryInternal)
	filled := ensureNotifyErrorEnvelope(bare)
	if filled.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", filled.Code)
	}
	if filled.TextCode != NotifyErrorInternal {
		t.Fatalf("expected internal text code, got %s", filled.TextCode)
	}
	if filled.Message == "" {
		t.Fatal("expected stand-in message for blank internal errors")
	}
}

func TestNotifyErrorMapperNil(t *testing.T) {
	if notifyErrorMapper(nil) != nil {
		t.Fatal("expected nil mapping for nil error")
	}
}
