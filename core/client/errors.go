// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// APIError is a non-2xx response from the backend. Message carries the
// server's {error} payload when present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// PermissionDenied reports whether the backend rejected the call with 403.
func (e *APIError) PermissionDenied() bool {
	return e.StatusCode == http.StatusForbidden
}

// errorFromResponse builds an *APIError from a failed response. All error
// responses are expected to carry {"error": "..."}; anything else falls back
// to the raw body text.
func errorFromResponse(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		message = payload.Error
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	return &APIError{StatusCode: status, Message: message}
}

// UserMessage extracts the server-supplied error text for display, falling
// back to the given generic message. A 403 always yields the permission
// notice regardless of payload.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.PermissionDenied() {
			return "权限不足，无法执行此操作"
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return fallback
}

// IsPermissionDenied reports whether err is a 403 from the backend.
func IsPermissionDenied(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.PermissionDenied()
}
