package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/lifecycle"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/session"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, session.ErrNotFound) {
		return http.StatusNotFound, "NOT_FOUND", "Contract session not found", nil
	}
	if errors.Is(err, lifecycle.ErrInvalidStage) {
		return http.StatusBadRequest, "INVALID_STAGE", err.Error(), nil
	}
	if errors.Is(err, lifecycle.ErrValidation) {
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
