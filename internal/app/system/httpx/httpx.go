// Package httpx holds the JSON response helpers shared by all feature
// handlers. The API speaks JSON only; error payloads always carry a single
// "error" string safe to show to the user.
package httpx

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// JSON writes v with the given status. Encoding failures are logged by the
// caller's ErrorLogger path; at this point headers are already out.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Decode reads a JSON request body into dst.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ErrorLogger pairs a zap logger with the response helpers so handlers can
// log the internal error and answer the client in one call. The internal
// error never reaches the response body.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: log}
}

// LogServerError logs err at error level and answers 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, public string) {
	e.log.Error(msg,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err))
	Error(w, http.StatusInternalServerError, public)
}

// LogBadRequest logs err at warn level and answers 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, public string) {
	e.log.Warn(msg,
		zap.String("path", r.URL.Path),
		zap.Error(err))
	Error(w, http.StatusBadRequest, public)
}
