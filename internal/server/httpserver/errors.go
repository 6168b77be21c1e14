package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/userauth/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

// publicErrors are the sentinels whose text may reach the client; anything
// else is reported as an internal error.
var publicErrors = []struct {
	err    error
	status int
}{
	{common.ErrInvalidCredentials, http.StatusUnauthorized},
	{common.ErrTokenExpired, http.StatusUnauthorized},
	{common.ErrInvalidSignature, http.StatusUnauthorized},
	{common.ErrTokenMalformed, http.StatusUnauthorized},
	{common.ErrUnauthorized, http.StatusUnauthorized},
	{common.ErrNotFound, http.StatusNotFound},
	{common.ErrDuplicateEmail, http.StatusConflict},
	{common.ErrValidation, http.StatusUnprocessableEntity},
}

func statusFor(err error) (int, string) {
	for _, pe := range publicErrors {
		if errors.Is(err, pe.err) {
			return pe.status, pe.err.Error()
		}
	}
	return http.StatusInternalServerError, common.ErrInternal.Error()
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	if errors.Is(err, common.ErrValidation) {
		// validation details are safe and useful to show
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
