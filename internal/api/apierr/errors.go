package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mcoot/quizgame/internal/model"
)

// ErrorResponse is the error body the server sends on failure
type ErrorResponse struct {
	Error string `json:"error"`
}

// TransportError means the request never produced a usable response
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AppError is a failure reported by the server
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Is lets callers match an unauthenticated response against model.ErrNotAuthenticated
func (e *AppError) Is(target error) bool {
	return target == model.ErrNotAuthenticated && e.Status == http.StatusUnauthorized
}

// FromResponse builds an AppError from a non-2xx response.
// Redirects are treated as unauthenticated since protected endpoints redirect to the login page.
func FromResponse(status int, body []byte) error {
	if status >= 300 && status < 400 {
		return &AppError{Status: http.StatusUnauthorized}
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &AppError{Status: status, Message: errResp.Error}
	}
	return &AppError{Status: status}
}

// UserMessage returns what to show the user for err: the server's message verbatim,
// a local validation message, or the generic fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Message != "" {
			return appErr.Message
		}
		if appErr.Status == http.StatusUnauthorized {
			return "Please log in first"
		}
		return fallback
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fallback
	}

	return err.Error()
}

// IsStatus reports whether err is an AppError with the given status
func IsStatus(err error, status int) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Status == status
}

// WriteError writes a server-style error body with the given status
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
