package transport

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-mati/core"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// transportWrapError keeps source reachable through errors.Is/As so callers
// can still detect context cancellation and deadline errors.
func transportWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	metadata map[string]any,
) error {
	if source == nil {
		return transportError(message, category, code, metadata)
	}
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	err.Source = source
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.ErrorBadInput
	default:
		return core.ErrorTransport
	}
}
