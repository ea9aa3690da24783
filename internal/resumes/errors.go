package resumes

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no resume matches the lookup.
	ErrNotFound = errors.New("resume not found")
	// ErrAuthenticationRequired is returned when no identity is present.
	ErrAuthenticationRequired = errors.New("you must be logged in to perform this action")
	// ErrAuthorizationDenied is returned when the caller does not own the
	// resume and is not an admin.
	ErrAuthorizationDenied = errors.New("you do not have permission to access this resume")
	// ErrNoFile is returned when the upload carries no file.
	ErrNoFile = errors.New("no file was uploaded")
	// ErrFileTooLarge is returned when the upload exceeds the size ceiling.
	ErrFileTooLarge = errors.New("file size exceeds maximum limit")
	// ErrInvalidFileType is returned for extensions outside the allow-list.
	ErrInvalidFileType = errors.New("invalid file type. Only PDF and DOCX files are allowed")
	// ErrInvalidJSON is returned when the completion output is not valid JSON.
	ErrInvalidJSON = errors.New("failed to parse API response")
)

// MissingFieldError reports a required field absent from parsed output.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}
