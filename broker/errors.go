package broker

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/mintopia/planka-mcp-sub001/core"
)

func brokerError(
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

func brokerBadInput(message string, metadata map[string]any) error {
	return brokerError(
		message,
		goerrors.CategoryBadInput,
		http.StatusBadRequest,
		core.NotifyErrorBadInput,
		metadata,
	)
}

func brokerInternal(message string, metadata map[string]any) error {
	return brokerError(
		message,
		goerrors.CategoryInternal,
		http.StatusInternalServerError,
		core.NotifyErrorInternal,
		metadata,
	)
}

func brokerUnavailable(message string, metadata map[string]any) error {
	return brokerError(
		message,
		goerrors.CategoryOperation,
		http.StatusServiceUnavailable,
		core.NotifyErrorTransient,
		metadata,
	)
}
