package subscriptions

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/mintopia/planka-mcp-sub001/core"
)

func storeError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func storeBadInput(message string, metadata map[string]any) error {
	return storeError(
		message,
		goerrors.CategoryBadInput,
		http.StatusBadRequest,
		core.NotifyErrorBadInput,
		metadata,
	)
}

func storeInternal(message string, metadata map[string]any) error {
	return storeError(
		message,
		goerrors.CategoryInternal,
		http.StatusInternalServerError,
		core.NotifyErrorInternal,
		metadata,
	)
}
