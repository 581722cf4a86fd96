package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"surveyservice/internal/apperr"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var statusByCode = map[string]int{
	apperr.EInvalid:      http.StatusBadRequest,
	apperr.EUnauthorized: http.StatusUnauthorized,
	apperr.ENotFound:     http.StatusNotFound,
	apperr.EConflict:     http.StatusConflict,
	apperr.EInternal:     http.StatusInternalServerError,
}

// StatusFor maps an error code to its HTTP status
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// writeAppError renders err with the status of its code. Internal details
// are logged, never returned to the client.
func writeAppError(w http.ResponseWriter, logger *zap.Logger, err error) {
	code := apperr.ErrorCode(err)
	msg := apperr.ErrorMessage(err)
	if code == apperr.EInternal {
		logger.Error("request failed", zap.Error(err))
		msg = "internal error"
	}
	writeError(w, StatusFor(code), code, msg)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, apperr.EInvalid, "invalid request body")
		return false
	}
	return true
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
