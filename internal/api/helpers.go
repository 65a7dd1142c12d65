package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/etdpk/etdclient/internal/entity"
)

const errInternalText = "Something went wrong. Please try again."

type ResponseError struct {
	Message string `json:"message"`
}

func sendErr(ctx context.Context, w http.ResponseWriter, code int, err error, msg string) {
	slog.ErrorContext(ctx, msg, "error", err.Error(), "http_code", code)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if encErr := json.NewEncoder(w).Encode(ResponseError{Message: msg}); encErr != nil {
		slog.ErrorContext(ctx, "failed to encode error response",
			"error", encErr.Error(),
			"http_code", http.StatusInternalServerError)
	}
}

func sendJSON(ctx context.Context, w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		sendErr(ctx, w, http.StatusInternalServerError, err, errInternalText)
	}
}

func authErrText(err error) string {
	switch {
	case errors.Is(err, entity.ErrMissingCredentials):
		return "Please enter both username and password"
	case errors.Is(err, entity.ErrUnknownRole):
		return "Please select a valid role"
	case errors.Is(err, entity.ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, entity.ErrServiceUnavailable):
		return "Authentication service is temporarily unavailable, please try again later"
	case errors.Is(err, entity.ErrUnauthorized), errors.Is(err, entity.ErrNoToken):
		return "Your session has expired. Please sign in again"
	default:
		return errInternalText
	}
}

func applicationErrText(err error) string {
	switch {
	case errors.Is(err, entity.ErrFirstNameRequired):
		return "First name is required"
	case errors.Is(err, entity.ErrLastNameRequired):
		return "Last name is required"
	case errors.Is(err, entity.ErrCitizenIDRequired):
		return "CNIC is required"
	case errors.Is(err, entity.ErrCitizenIDFormat):
		return "CNIC must match the format 12345-1234567-1"
	case errors.Is(err, entity.ErrBirthDateInFuture):
		return "Date of birth cannot be in the future"
	case errors.Is(err, entity.ErrStatusTransition):
		return "This application cannot move to the requested status"
	case errors.Is(err, entity.ErrNotFound):
		return "Application not found"
	default:
		return errInternalText
	}
}

func uploadErrText(err error) string {
	switch {
	case errors.Is(err, entity.ErrFileTooLarge):
		return "File is too large. The limit is 10 MB"
	case errors.Is(err, entity.ErrFileType):
		return "Only PDF, JPG, PNG and Word files are accepted"
	case errors.Is(err, entity.ErrFileNameTooLong):
		return "File name is too long"
	case errors.Is(err, entity.ErrNotFound):
		return "Document not found"
	default:
		return errInternalText
	}
}

// statusFor picks a response code from the error taxonomy. Validation errors
// are 422, auth failures 401, unknown failures 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrMissingCredentials),
		errors.Is(err, entity.ErrUnknownRole),
		errors.Is(err, entity.ErrFirstNameRequired),
		errors.Is(err, entity.ErrLastNameRequired),
		errors.Is(err, entity.ErrCitizenIDRequired),
		errors.Is(err, entity.ErrCitizenIDFormat),
		errors.Is(err, entity.ErrBirthDateInFuture),
		errors.Is(err, entity.ErrFileTooLarge),
		errors.Is(err, entity.ErrFileType),
		errors.Is(err, entity.ErrFileNameTooLong):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrStatusTransition):
		return http.StatusConflict
	case errors.Is(err, entity.ErrInvalidCredentials),
		errors.Is(err, entity.ErrUnauthorized),
		errors.Is(err, entity.ErrNoToken),
		errors.Is(err, entity.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrServiceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
