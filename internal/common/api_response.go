package common

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/models/dtos"
)

// GetResponseTime formats the time since init as "<n>ms".
func GetResponseTime(init time.Time) string {
	return strconv.FormatInt(time.Since(init).Milliseconds(), 10) + "ms"
}

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	writeJSON(w, code, response)
}

// RespondError sends a standardized JSON error response. A non-nil err
// replaces message, so callers pass only errors whose text is safe to show.
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	msg := message
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      msg,
		ResponseTime: GetResponseTime(initTime),
	}

	writeJSON(w, code, response)
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body dtos.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
