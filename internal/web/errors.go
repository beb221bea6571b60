package web

// errors.go turns service errors into JSON responses.
//
// The error flow:
//  1. A handler gets an error from core or from request parsing
//  2. It calls respondError, with statusFor(err) unless it knows better
//  3. core.MapError picks the user message and support code
//  4. The technical error is logged with the request id
//  5. The client receives {error, message, action, code}

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/xls2vcard/internal/core"
	"github.com/JonMunkholm/xls2vcard/internal/logging"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	switch core.KindOf(err) {
	case core.KindBadRequest:
		return http.StatusBadRequest
	case core.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped user message. Internal errors
// never echo their text to the client.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	detail := msg.Message
	if status < http.StatusInternalServerError {
		detail = err.Error()
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	writeJSON(w, status, ErrorResponse{
		Error:   detail,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}
