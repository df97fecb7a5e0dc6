package webhooks

import (
	"sort"

	goerrors "github.com/goliatone/go-errors"
	"github.com/mintopia/planka-mcp-sub001/core"
)

func ingestError(message string, category goerrors.Category, code int, textCode string, metadata map[string]any) error {
	err := goerrors.New(message, category).WithCode(code).WithTextCode(textCode)
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

func ingestBadInput(message string, metadata map[string]any) error {
	return ingestError(message, goerrors.CategoryBadInput, 400, core.NotifyErrorBadInput, metadata)
}

func ingestUnauthenticated(message string, metadata map[string]any) error {
	return ingestError(message, goerrors.CategoryAuth, 401, core.NotifyErrorUnauthenticated, metadata)
}

func ingestNotEnabled(message string, metadata map[string]any) error {
	return ingestError(message, goerrors.CategoryNotFound, 404, core.NotifyErrorNotEnabled, metadata)
}

func ingestTransient(message string, metadata map[string]any) error {
	return ingestError(message, goerrors.CategoryOperation, 503, core.NotifyErrorTransient, metadata)
}

func ingestInternal(message string, metadata map[string]any) error {
	return ingestError(message, goerrors.CategoryInternal, 500, core.NotifyErrorInternal, metadata)
}

func flatten(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(fields)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
