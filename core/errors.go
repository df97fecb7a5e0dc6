package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	NotifyErrorBadInput        = "NOTIFY_BAD_INPUT"
	NotifyErrorUnauthenticated = "NOTIFY_UNAUTHENTICATED"
	NotifyErrorNotEnabled      = "NOTIFY_NOT_ENABLED"
	NotifyErrorTransient       = "NOTIFY_TRANSIENT"
	NotifyErrorInternal        = "NOTIFY_INTERNAL_ERROR"
)

func notifyErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureNotifyErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "signature"):
		return newNotifyError(err.Error(), goerrors.CategoryAuth, NotifyErrorUnauthenticated)
	case strings.Contains(msg, "not enabled"):
		return newNotifyError(err.Error(), goerrors.CategoryNotFound, NotifyErrorNotEnabled)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newNotifyError(err.Error(), goerrors.CategoryBadInput, NotifyErrorBadInput)
	case strings.Contains(msg, "unavailable"), strings.Contains(msg, "publish"):
		return newNotifyError(err.Error(), goerrors.CategoryOperation, NotifyErrorTransient)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureNotifyErrorEnvelope(mapped)
}

func newNotifyError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureNotifyErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureNotifyErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = notifyHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultNotifyTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultNotifyTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return NotifyErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return NotifyErrorUnauthenticated
	case goerrors.CategoryNotFound:
		return NotifyErrorNotEnabled
	case goerrors.CategoryOperation, goerrors.CategoryExternal:
		return NotifyErrorTransient
	default:
		return NotifyErrorInternal
	}
}

func notifyHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return http.StatusUnauthorized
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryOperation, goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
