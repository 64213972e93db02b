// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"go.uber.org/zap"
)

// body is the JSON error shape every endpoint uses.
type body struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": msg} with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, body{Error: msg})
}

// StatusFor maps an error to its HTTP status and client message.
func StatusFor(err error) (int, string) {
	var ve *apperr.ValidationError
	switch {
	case stderrors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case stderrors.Is(err, apperr.ErrDuplicateUsername):
		return http.StatusBadRequest, "Username already exists"
	case stderrors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, "Invalid credentials"
	case stderrors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, "Access denied"
	case stderrors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// ErrorLogger writes error responses and logs the ones the client cannot fix.
type ErrorLogger struct {
	Log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// Write maps err onto the response. Server errors are logged with the
// underlying cause; the client only sees a generic message.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status, clientMsg := StatusFor(err)
	if status >= http.StatusInternalServerError {
		e.LogServerError(w, r, msg, err)
		return
	}

	var ve *apperr.ValidationError
	if stderrors.As(err, &ve) && len(ve.Messages) > 1 {
		WriteJSON(w, status, body{Error: ve.Messages[0], Errors: ve.Messages})
		return
	}
	WriteError(w, status, clientMsg)
}

// LogServerError logs err and responds 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
	var se *apperr.StorageError
	if stderrors.As(err, &se) {
		fields = append(fields, zap.String("op", se.Op))
	}
	e.Log.Error(msg, fields...)
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}

// LogBadRequest logs at warn level and responds 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Warn(msg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	WriteError(w, http.StatusBadRequest, userMsg)
}
