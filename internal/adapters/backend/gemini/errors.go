package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bnema/cascade-chat/internal/domain"
)

const maxErrorBodyBytes = 64 << 10

func decodeAPIError(resp *http.Response) apiError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Message == "" {
		return apiError{Code: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return envelope.Error
}

func classify(status int, apiErr apiError) domain.ErrorKind {
	message := strings.ToLower(apiErr.Message)

	switch {
	case status == http.StatusTooManyRequests, apiErr.Status == "RESOURCE_EXHAUSTED":
		return domain.ErrorKindQuotaExceeded
	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		apiErr.Status == "UNAUTHENTICATED", apiErr.Status == "PERMISSION_DENIED",
		strings.Contains(message, "api key not valid"):
		return domain.ErrorKindAuth
	case status == http.StatusNotFound, apiErr.Status == "NOT_FOUND":
		return domain.ErrorKindInvalidModel
	case status == http.StatusBadRequest && strings.Contains(message, "model") &&
		(strings.Contains(message, "not found") || strings.Contains(message, "not supported")):
		return domain.ErrorKindInvalidModel
	default:
		return domain.ErrorKindOther
	}
}

func responseError(model domain.ModelID, resp *http.Response) error {
	apiErr := decodeAPIError(resp)
	message := apiErr.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	if apiErr.Status != "" {
		message = apiErr.Status + ": " + message
	}

	return &domain.BackendError{
		Kind:   classify(resp.StatusCode, apiErr),
		Model:  model,
		Status: resp.StatusCode,
		Err:    errors.New(message),
	}
}

func transportError(model domain.ModelID, op string, err error) error {
	return &domain.BackendError{
		Kind:  domain.ErrorKindOther,
		Model: model,
		Err:   fmt.Errorf("%s: %w", op, err),
	}
}
