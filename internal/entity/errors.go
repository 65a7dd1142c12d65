package entity

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoToken          = errors.New("no token to refresh")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrPageDenied       = errors.New("page access denied")
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUnknownRole        = errors.New("valid role selection is required")
	ErrServiceUnavailable = errors.New("authentication service unavailable")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var (
	ErrFirstNameRequired = errors.New("first name is required")
	ErrLastNameRequired  = errors.New("last name is required")
	ErrCitizenIDRequired = errors.New("citizen id is required")
	ErrCitizenIDFormat   = errors.New("citizen id must be a 13-digit CNIC")
	ErrBirthDateInFuture = errors.New("date of birth cannot be in the future")
	ErrStatusTransition  = errors.New("invalid status transition")
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrFileType        = errors.New("unsupported file format")
	ErrFileNameTooLong = errors.New("file name exceeds 255 characters")
)

var (
	ErrVerificationTimeout     = errors.New("verification request timed out")
	ErrVerificationFailed      = errors.New("verification failed")
	ErrVerificationUnavailable = errors.New("verification service unavailable")
)
