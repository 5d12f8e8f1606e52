package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/userkeeper/internal/common"
)

// ErrorBody is the JSON body of every failed request except validation
// failures, which use ValidationErrorBody.
type ErrorBody struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type ValidationErrorBody struct {
	Status string   `json:"status"`
	Errors []string `json:"errors"`
}

// statusName renders a status code the way clients expect it in bodies,
// e.g. 404 -> "NOT_FOUND".
func statusName(code int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_"))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorBody{Status: statusName(code), Error: msg})
}

func writeValidationErrors(w http.ResponseWriter, msgs []string) {
	writeJSON(w, http.StatusBadRequest, ValidationErrorBody{Status: statusName(http.StatusBadRequest), Errors: msgs})
}

// writeServiceError maps service errors to HTTP statuses. Anything that is
// not a known kind is logged and reported as a generic internal error.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrorRegistration),
		errors.Is(err, common.ErrorInvalidArgument),
		errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.loggerFrom(r).Error(r.Context(), "request failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
	}
}
