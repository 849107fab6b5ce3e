package engine

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidPayload = "INVALID_PAYLOAD"
	TextCodeForbidden      = "WEBHOOK_FORBIDDEN"
	TextCodeTenantNotFound = "TENANT_NOT_FOUND"
	TextCodeRuleNotFound   = "RULE_NOT_FOUND"
	TextCodeUpstream       = "UPSTREAM_FAILURE"
)

func newError(message string, category goerrors.Category, code int, textCode string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// ValidationError reports a malformed payload or rule.
func ValidationError(message string, metadata map[string]any) error {
	return newError(message, goerrors.CategoryBadInput, http.StatusBadRequest, TextCodeInvalidPayload, metadata)
}

// AuthError reports a failed webhook handshake or signature check.
func AuthError(message string) error {
	return newError(message, goerrors.CategoryAuth, http.StatusForbidden, TextCodeForbidden, nil)
}

// NotFoundError reports a missing tenant or rule. textCode is one of
// TextCodeTenantNotFound or TextCodeRuleNotFound.
func NotFoundError(message string, textCode string, metadata map[string]any) error {
	return newError(message, goerrors.CategoryNotFound, http.StatusNotFound, textCode, metadata)
}

// UpstreamError wraps a failed platform or AI call.
func UpstreamError(cause error, message string, metadata map[string]any) error {
	if cause == nil {
		return newError(message, goerrors.CategoryOperation, http.StatusBadGateway, TextCodeUpstream, metadata)
	}
	err := goerrors.Wrap(cause, goerrors.CategoryOperation, message).
		WithCode(http.StatusBadGateway).
		WithTextCode(TextCodeUpstream)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func hasCategory(err error, category goerrors.Category) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == category
}

func IsValidation(err error) bool { return hasCategory(err, goerrors.CategoryBadInput) }
func IsAuth(err error) bool       { return hasCategory(err, goerrors.CategoryAuth) }
func IsNotFound(err error) bool   { return hasCategory(err, goerrors.CategoryNotFound) }
func IsUpstream(err error) bool   { return hasCategory(err, goerrors.CategoryOperation) }

// StatusCode maps err to the HTTP status a handler should answer with.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Code > 0 {
		return rich.Code
	}
	return http.StatusInternalServerError
}
